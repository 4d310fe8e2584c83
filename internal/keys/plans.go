package keys

// Plan tiers. Each tier carries a default requests-per-hour quota; the
// credential's own rate_limit can override it at issuance or later.
const (
	PlanFree  = "free"
	PlanBasic = "basic"
	PlanPro   = "pro"
	PlanAdmin = "admin"
)

var planRateLimits = map[string]int{
	PlanFree:  100,
	PlanBasic: 1000,
	PlanPro:   10000,
	PlanAdmin: 100000,
}

// DefaultRateLimit returns the hourly quota for a plan tier.
func DefaultRateLimit(tier string) (int, bool) {
	limit, ok := planRateLimits[tier]
	return limit, ok
}
