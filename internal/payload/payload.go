// Package payload normalizes inbound engine messages into typed presentation
// intents. All tolerance for the wire format's legacy field shapes lives here.
package payload

import (
	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
)

// Kind is the presentation intent of a classified payload.
type Kind string

const (
	// KindText is plain assistant text (questions, explanations, spoken text).
	KindText Kind = "text"
	// KindGeneric is an untyped assistant message.
	KindGeneric Kind = "generic"
	// KindRecommendation carries a ranked fund list.
	KindRecommendation Kind = "recommendation"
	// KindComparison carries a two-fund comparison result.
	KindComparison Kind = "comparison"
)

// Comparison is a side-by-side comparison of two funds.
type Comparison struct {
	Funds        [2]domain.FundSummary
	Narrative    string
	HorizonYears float64
}

// Payload is a classified inbound message.
type Payload struct {
	Kind       Kind
	Text       string
	Funds      []domain.FundSummary
	Comparison *Comparison
}
