package quant

// Optimizer response statuses.
const (
	StatusOptimal               = "optimal"
	StatusFallback              = "fallback"
	StatusInfeasibleEquityFloor = "infeasible_equity_floor"
	StatusFallbackNoHistory     = "fallback_no_history"
)

// Backtest periods accepted by the service.
const (
	Period1Y = "1y"
	Period3Y = "3y"
	Period5Y = "5y"
)

// OptimizeRequest is the wire request for the remote mean-variance solver.
type OptimizeRequest struct {
	Assets       []string `json:"assets"`
	RiskLevel    int      `json:"riskLevel"`
	LockedAssets []string `json:"lockedAssets,omitempty"`
}

// OptimizeResponse is the solver's wire response. Weights are decimal
// fractions keyed by ISIN and present only for solvable requests.
type OptimizeResponse struct {
	Status   string             `json:"status"`
	Weights  map[string]float64 `json:"weights,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

// BacktestPosition is one holding in a backtest request. Weight is a
// decimal fraction of the portfolio.
type BacktestPosition struct {
	ISIN   string  `json:"isin"`
	Weight float64 `json:"weight"`
}

// BacktestRequest is the wire request for the historical backtest service.
type BacktestRequest struct {
	Portfolio []BacktestPosition `json:"portfolio"`
	Period    string             `json:"period"`
}

// BacktestMetrics holds the portfolio-level metrics of a backtest run.
type BacktestMetrics struct {
	Sharpe      float64 `json:"sharpe"`
	Volatility  float64 `json:"volatility"`
	CAGR        float64 `json:"cagr"`
	MaxDrawdown float64 `json:"maxDrawdown"`
}

// SeriesPoint is one point of the backtested portfolio value series.
type SeriesPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BacktestResponse is the backtest service's wire response.
type BacktestResponse struct {
	Metrics         BacktestMetrics `json:"metrics"`
	PortfolioSeries []SeriesPoint   `json:"portfolioSeries,omitempty"`
}
