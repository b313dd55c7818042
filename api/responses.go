package api

// CheckResponse is the response for an authorization check.
type CheckResponse struct {
	Allowed    bool       `json:"allowed" description:"Whether the request is allowed"`
	Decision   string     `json:"decision" description:"Decision code (allow, deny_explicit, deny_default)"`
	Reason     string     `json:"reason,omitempty" description:"Human-readable reason"`
	MatchedBy  *MatchInfo `json:"matched_by,omitempty" description:"Winning rule, when one matched"`
	EvalTimeNs int64      `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// MatchInfo identifies the rule that decided a check.
type MatchInfo struct {
	Source string `json:"source" description:"Rule source (self, role, membership, grant)"`
	RuleID string `json:"rule_id,omitempty" description:"Originating role tag, membership ID or grant ID"`
	Detail string `json:"detail,omitempty" description:"Match detail"`
}

// BatchCheckResponse contains results for multiple checks.
type BatchCheckResponse struct {
	Results []CheckResponse `json:"results" description:"Check results in request order"`
}

// PurgeCheckLogsResponse reports how many entries a purge removed.
type PurgeCheckLogsResponse struct {
	Deleted int64 `json:"deleted" description:"Number of entries removed"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
