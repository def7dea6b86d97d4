package risk

// recommendationCategory keys the fixed factor-category to recommendation
// lookup. Each triggered category maps to at most one string; duplicates are
// suppressed while first-trigger order is kept.
type recommendationCategory int

const (
	recommendAIReview recommendationCategory = iota
	recommendLeastPrivilege
	recommendBotAccount
	recommendVendorReview
	recommendAssignOwner
)

var recommendationText = map[recommendationCategory]string{
	recommendAIReview:       "Review what organizational data this automation shares with the AI provider and require explicit approval",
	recommendLeastPrivilege: "Reduce the OAuth grant to least-privilege scopes",
	recommendBotAccount:     "Confirm this actor is a sanctioned bot account and label it as such",
	recommendVendorReview:   "Register this third-party automation platform with vendor security review",
	recommendAssignOwner:    "Assign a named individual owner responsible for this automation",
}

func recommendationsFor(categories []recommendationCategory) []string {
	seen := make(map[recommendationCategory]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, recommendationText[c])
	}
	return out
}
