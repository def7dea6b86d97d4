package scopes

// Fallback severity weights for scopes missing from the reference library.
// Rules are checked in declared order; the first matching class wins.
const (
	// WeightAdminClass covers admin and directory scopes
	WeightAdminClass = 40

	// WeightSecurityClass covers security and audit-log scopes
	WeightSecurityClass = 35

	// WeightIdentityClass covers identity-read scopes (userinfo, openid, profile)
	WeightIdentityClass = 10

	// WeightMutationClass covers write/delete/manage scopes
	WeightMutationClass = 30

	// WeightDataClass covers content stores (drive, mail, calendar, contacts)
	WeightDataClass = 25

	// WeightUnknownBaseline is the floor for unrecognized scopes, nonzero so
	// that more unknown scopes still nudge risk upward
	WeightUnknownBaseline = 5
)

// Excessive-permission signal defaults
const (
	// DefaultExcessiveScopeThreshold is the scope count above which the flat
	// penalty applies
	DefaultExcessiveScopeThreshold = 10

	// DefaultExcessiveScopePenalty is the flat penalty added once the
	// threshold is exceeded
	DefaultExcessiveScopePenalty = 15
)
