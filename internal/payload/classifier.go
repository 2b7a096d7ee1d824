package payload

import (
	"encoding/json"
	"log/slog"

	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
)

// textPaths is the priority-ordered list of field paths the realtime channel
// has historically used to carry assistant text.
var textPaths = [][]string{
	{"text"},
	{"message"},
	{"content"},
	{"data", "text"},
	{"data", "content"},
}

// Classify maps a raw inbound message from either channel to a typed payload.
// Returns nil when the message carries neither probe-able text nor a
// recognized structured shape; such messages are dropped without rendering.
func Classify(raw json.RawMessage) *Payload {
	var msg map[string]any
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Debug("Dropping unparseable inbound payload", "error", err)
		return nil
	}

	kind, _ := msg["type"].(string)
	switch kind {
	case "recommendation":
		if p := classifyRecommendation(msg); p != nil {
			return p
		}
	case "comparison_result":
		if p := classifyComparison(msg); p != nil {
			return p
		}
	case "text", "bot-tts-text", "bot-llm-text", "question", "explanation":
		if text := probeText(msg); text != "" {
			return &Payload{Kind: KindText, Text: text}
		}
	case "message":
		if text := probeText(msg); text != "" {
			return &Payload{Kind: KindGeneric, Text: text}
		}
	default:
		// Unknown discriminator: still accept the message if any text path
		// yields a body.
		if text := probeText(msg); text != "" {
			return &Payload{Kind: KindText, Text: text}
		}
	}

	slog.Debug("Dropping unclassifiable inbound payload", "type", kind)
	return nil
}

func classifyRecommendation(msg map[string]any) *Payload {
	funds := decodeFunds(msg["data"])
	if len(funds) == 0 {
		return nil
	}
	return &Payload{
		Kind:  KindRecommendation,
		Text:  probeText(msg),
		Funds: funds,
	}
}

func classifyComparison(msg map[string]any) *Payload {
	funds := decodeFunds(msg["data"])
	if len(funds) != 2 {
		return nil
	}

	horizon, ok := asFloat(msg["horizon_years"])
	if !ok {
		horizon, _ = asFloat(msg["horizon"])
	}

	return &Payload{
		Kind: KindComparison,
		Comparison: &Comparison{
			Funds:        [2]domain.FundSummary{funds[0], funds[1]},
			Narrative:    probeText(msg),
			HorizonYears: horizon,
		},
	}
}

// probeText walks the candidate field paths in priority order and returns the
// first non-empty string body found.
func probeText(msg map[string]any) string {
	for _, path := range textPaths {
		node := any(msg)
		for _, field := range path {
			m, ok := node.(map[string]any)
			if !ok {
				node = nil
				break
			}
			node = m[field]
		}
		if text, ok := node.(string); ok && text != "" {
			return text
		}
	}
	return ""
}

func decodeFunds(v any) []domain.FundSummary {
	if v == nil {
		return nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var funds []domain.FundSummary
	if err := json.Unmarshal(buf, &funds); err != nil {
		return nil
	}
	return funds
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
