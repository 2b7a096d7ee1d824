// Package domain holds the core data types of the advisory chat client.
package domain

// FundSummary is a scored fund as received from the advisory engine.
// Normalized metrics are in [0,1]; the struct is never mutated locally.
type FundSummary struct {
	SchemeName       string  `json:"scheme_name"`
	Category         string  `json:"category"`
	Score            float64 `json:"recommendation_score"`
	NormCAGR3Y       float64 `json:"norm_cagr_3y"`
	NormCAGR5Y       float64 `json:"norm_cagr_5y"`
	NormConsistency  float64 `json:"norm_consistency"`
	NormMaxDrawdown  float64 `json:"norm_max_drawdown"`
	NormExpenseRatio float64 `json:"norm_expense_ratio"`
}
