// Package comparison derives the side-by-side fund comparison panel.
package comparison

import (
	"fmt"
	"sync"

	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
)

// Row is one metric line of the comparison table.
type Row struct {
	Label string
	A     string
	B     string
}

// View holds the state of the comparison panel. State lives only while the
// panel is open; closing discards it and reopening starts from a fresh pair.
type View struct {
	mu           sync.Mutex
	open         bool
	funds        [2]domain.FundSummary
	horizonYears float64
	narrative    string
}

// NewView creates a closed comparison view.
func NewView() *View {
	return &View{}
}

// Open shows the panel for a fund pair with its narrative and horizon.
func (v *View) Open(a, b domain.FundSummary, narrative string, horizonYears float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.open = true
	v.funds = [2]domain.FundSummary{a, b}
	v.horizonYears = horizonYears
	v.narrative = narrative
}

// SyncNarrative appends assistant text arriving through the main channel onto
// the panel narrative, keeping it consistent with the conversation. No-op
// while the panel is closed.
func (v *View) SyncNarrative(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open || text == "" {
		return
	}
	if v.narrative == "" {
		v.narrative = text
		return
	}
	v.narrative += " " + text
}

// Close hides the panel and discards its state.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.open = false
	v.funds = [2]domain.FundSummary{}
	v.horizonYears = 0
	v.narrative = ""
}

// IsOpen reports whether the panel is showing.
func (v *View) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// Narrative returns the current narrative text.
func (v *View) Narrative() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.narrative
}

// Funds returns the compared pair.
func (v *View) Funds() [2]domain.FundSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.funds
}

// HorizonYears returns the horizon the comparison was requested for.
func (v *View) HorizonYears() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.horizonYears
}

// Rows derives the metric table for the current pair. The CAGR row uses the
// 3-year metric for horizons under 5 years and the 5-year metric from 5 years
// up; all other rows are horizon-independent.
func (v *View) Rows() []Row {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open {
		return nil
	}
	a, b := v.funds[0], v.funds[1]

	cagrLabel := "CAGR (5Y)"
	cagrA, cagrB := a.NormCAGR5Y, b.NormCAGR5Y
	if v.horizonYears < 5 {
		cagrLabel = "CAGR (3Y)"
		cagrA, cagrB = a.NormCAGR3Y, b.NormCAGR3Y
	}

	return []Row{
		{Label: "Category", A: a.Category, B: b.Category},
		{Label: "Score", A: fmt.Sprintf("%.1f", a.Score), B: fmt.Sprintf("%.1f", b.Score)},
		{Label: cagrLabel, A: percent(cagrA), B: percent(cagrB)},
		{Label: "Consistency", A: ratio(a.NormConsistency), B: ratio(b.NormConsistency)},
		{Label: "Max Drawdown", A: percent(a.NormMaxDrawdown), B: percent(b.NormMaxDrawdown)},
		{Label: "Expense Ratio", A: percent(a.NormExpenseRatio), B: percent(b.NormExpenseRatio)},
	}
}

func percent(normalized float64) string {
	return fmt.Sprintf("%.2f%%", normalized*100)
}

func ratio(normalized float64) string {
	return fmt.Sprintf("%.4f", normalized)
}
