package auth

// Scopes accepted by the insight API.
const (
	ScopeTrigger = "insights:trigger"
	ScopeAnalyze = "insights:analyze"
	ScopeRead    = "insights:read"
)
