package models

// RescaleRequest asks for a proportional rebalance of the given items
// toward per-bucket target weights. Targets must sum to 100 (+/- 1).
type RescaleRequest struct {
	Items   []PortfolioItem `json:"items" binding:"required"`
	Targets BucketWeights   `json:"targets" binding:"required"`
}

// RescaleResponse carries the rescaled portfolio plus the realized
// per-bucket weights after rescaling.
type RescaleResponse struct {
	Items   []PortfolioItem `json:"items"`
	Buckets BucketWeights   `json:"buckets"`
}

// DiscoverRequest asks for substitute candidates for one held fund.
// Region "" matches the target's region; "all" disables region filtering.
type DiscoverRequest struct {
	TargetISIN   string   `json:"target_isin" binding:"required"`
	Exclude      []string `json:"exclude"`
	Region       string   `json:"region"`
	DesiredCount int      `json:"desired_count"`
}

// DiscoverResponse carries the bounded candidate set. An empty Candidates
// slice means "no alternatives found", not an error.
type DiscoverResponse struct {
	Candidates []NormalizedFund `json:"candidates"`
	Warnings   []Warning        `json:"warnings,omitempty"`
}

// RankRequest asks for the marginal-impact ranking of candidate funds
// against the given portfolio. Candidates are referenced by ISIN and
// resolved server-side. BaselineSharpe may be omitted, in which case the
// current portfolio is backtested first to establish it.
type RankRequest struct {
	Items          []PortfolioItem `json:"items" binding:"required"`
	CandidateISINs []string        `json:"candidate_isins" binding:"required"`
	BaselineSharpe *float64        `json:"baseline_sharpe"`
	Period         string          `json:"period"`
}

// RankResponse carries the ranked results, best impact first.
type RankResponse struct {
	Results        []CandidateResult `json:"results"`
	BaselineSharpe float64           `json:"baseline_sharpe"`
	Warnings       []Warning         `json:"warnings,omitempty"`
}

// OptimizeProposalRequest proxies an optimization request to the remote
// solver. The asset universe is the portfolio itself; items the user locked
// keep their current allocation in the proposal. ExtraAssets widens the
// universe with funds not yet held.
type OptimizeProposalRequest struct {
	Items       []PortfolioItem `json:"items" binding:"required"`
	RiskLevel   int             `json:"risk_level" binding:"required"`
	ExtraAssets []string        `json:"extra_assets"`
}

// OptimizeProposalResponse carries the solver outcome. Suggestions are
// actionable hints attached to degraded or infeasible statuses.
type OptimizeProposalResponse struct {
	Status      string             `json:"status"`
	Weights     map[string]float64 `json:"weights,omitempty"`
	Suggestions []string           `json:"suggestions,omitempty"`
	Warnings    []Warning          `json:"warnings,omitempty"`
}

// CSVPosition is one imported/exported portfolio row: isin;name;value.
// Value is a monetary amount, converted to portfolio weights on import.
type CSVPosition struct {
	ISIN  string  `json:"isin"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ImportResponse carries the portfolio assembled from a CSV upload, with
// values converted to portfolio-relative percentage weights.
type ImportResponse struct {
	Items    []PortfolioItem `json:"items"`
	Warnings []Warning       `json:"warnings,omitempty"`
}

// ExportRequest asks for a CSV export of the given portfolio. Format is
// "european" (Valor header, ',' decimal) or "plain" (default). TotalValue
// converts weights into monetary row values; it defaults to 100.
type ExportRequest struct {
	Items      []PortfolioItem `json:"items" binding:"required"`
	Format     string          `json:"format"`
	TotalValue float64         `json:"total_value"`
}

// ErrorResponse represents an API error response. Buckets is set only for
// infeasible-rebalance errors and names the unsatisfiable buckets.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Buckets []Bucket `json:"buckets,omitempty"`
}
