package aiplatform

// Provider is the closed set of AI platforms the classifier can name.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderAnthropic   Provider = "anthropic"
	ProviderGoogle      Provider = "google"
	ProviderMeta        Provider = "meta"
	ProviderMistral     Provider = "mistral"
	ProviderCohere      Provider = "cohere"
	ProviderHuggingFace Provider = "huggingface"
	ProviderPerplexity  Provider = "perplexity"
	ProviderDeepSeek    Provider = "deepseek"
	ProviderStability   Provider = "stability"

	// ProviderUnknown marks a generic AI-adjacent match with no specific
	// provider attribution.
	ProviderUnknown Provider = "unknown"
)

func (p Provider) String() string {
	return string(p)
}

// Confidence tiers are fixed per matcher; results are fully reproducible from
// the same input text.
const (
	// ConfidenceMarker applies when a provider-unique marker (domain or
	// product name) matches
	ConfidenceMarker = 95

	// ConfidenceHint applies when a weaker provider-specific fragment matches
	ConfidenceHint = 90

	// ConfidenceGeneric applies when only generic AI keywords match
	ConfidenceGeneric = 60

	// ConfidenceWeak applies when only a bare "ai"/"ml" token matches
	ConfidenceWeak = 40
)

// providerMatcher is one entry in the ordered cascade. Markers are
// high-specificity strings unique to the provider; hints are weaker fragments
// that still attribute but at lower confidence. Declaration order is the
// documented priority list: when two providers both match at the same tier,
// the earlier one wins.
type providerMatcher struct {
	provider Provider
	markers  []string
	hints    []string
}

var matchers = []providerMatcher{
	{
		provider: ProviderOpenAI,
		markers:  []string{"openai", "chatgpt", "api.openai.com", "dall-e"},
		hints:    []string{"gpt-4", "gpt-3.5", "gpt-5"},
	},
	{
		provider: ProviderAnthropic,
		markers:  []string{"anthropic", "claude", "api.anthropic.com"},
	},
	{
		provider: ProviderGoogle,
		markers:  []string{"generativelanguage.googleapis.com", "gemini", "bard"},
		hints:    []string{"vertex"},
	},
	{
		provider: ProviderMeta,
		markers:  []string{"llama", "meta ai"},
	},
	{
		provider: ProviderMistral,
		markers:  []string{"mistral", "mixtral"},
	},
	{
		provider: ProviderCohere,
		markers:  []string{"cohere", "api.cohere.ai"},
	},
	{
		provider: ProviderHuggingFace,
		markers:  []string{"huggingface", "hugging face", "hf.co"},
		hints:    []string{"transformers"},
	},
	{
		provider: ProviderPerplexity,
		markers:  []string{"perplexity", "api.perplexity.ai"},
	},
	{
		provider: ProviderDeepSeek,
		markers:  []string{"deepseek"},
	},
	{
		provider: ProviderStability,
		markers:  []string{"stability.ai", "stable diffusion"},
		hints:    []string{"sdxl"},
	},
}

// genericKeywords attribute no provider but still indicate AI-bound traffic.
var genericKeywords = []string{
	"llm",
	"language model",
	"generative ai",
	"genai",
	"ai assistant",
	"copilot",
	"chat completion",
	"machine learning",
	"embedding",
	"openrouter",
}

// weakTokens are matched as standalone tokens only, never substrings, so
// "email" or "retail" do not trip the classifier.
var weakTokens = []string{"ai", "ml"}
