// Package stubengine is a local stand-in for the remote advisory engine,
// used for development and demos without the real recommendation backend.
// It speaks the same request/response and room contract the client expects.
package stubengine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
)

// sampleFunds is the canned universe the stub recommends from.
var sampleFunds = []domain.FundSummary{
	{
		SchemeName:       "Quantum Bluechip Equity Fund",
		Category:         "Large Cap",
		Score:            88.4,
		NormCAGR3Y:       0.82,
		NormCAGR5Y:       0.77,
		NormConsistency:  0.91,
		NormMaxDrawdown:  0.12,
		NormExpenseRatio: 0.0065,
	},
	{
		SchemeName:       "Meridian Flexi Cap Growth Fund",
		Category:         "Flexi Cap",
		Score:            84.1,
		NormCAGR3Y:       0.79,
		NormCAGR5Y:       0.81,
		NormConsistency:  0.86,
		NormMaxDrawdown:  0.17,
		NormExpenseRatio: 0.0089,
	},
	{
		SchemeName:       "Harbor Short Duration Debt Fund",
		Category:         "Debt",
		Score:            72.6,
		NormCAGR3Y:       0.41,
		NormCAGR5Y:       0.44,
		NormConsistency:  0.95,
		NormMaxDrawdown:  0.03,
		NormExpenseRatio: 0.0042,
	},
}

// Handler serves the stub engine's HTTP and room endpoints.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a stub engine handler.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// RegisterRoutes mounts the engine contract on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/connect", h.handleConnect)
	r.Delete("/session/{sessionID}", h.handleResetSession)
	r.Get("/room/{roomID}", h.handleRoom)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.logger.Info("Chat request", "session_id", req.SessionID, "text", req.Text)
	writeJSON(w, h.logger, replyFor(req.Text))
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	// Body is optional on connect.
	_ = json.NewDecoder(r.Body).Decode(&req)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "stub-session"
	}

	scheme := "ws"
	if r.TLS != nil {
		scheme = "wss"
	}
	writeJSON(w, h.logger, map[string]string{
		"room_url":   fmt.Sprintf("%s://%s/room/%s", scheme, r.Host, sessionID),
		"session_id": sessionID,
	})
}

func (h *Handler) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.logger.Info("Session reset", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handleRoom upgrades to a websocket and answers each inbound text message
// the same way the HTTP chat endpoint would, as a stream of typed events.
func (h *Handler) handleRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("Failed to accept room connection", "error", err, "room_id", roomID)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "room closed")

	h.logger.Info("Room joined", "room_id", roomID)
	ctx := r.Context()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			h.logger.Info("Room connection closed", "room_id", roomID)
			return
		}

		text := inboundText(data)
		if text == "" {
			continue
		}
		if err := h.writeRoomReply(ctx, conn, text); err != nil {
			h.logger.Warn("Failed to write room reply", "error", err)
			return
		}
	}
}

func (h *Handler) writeRoomReply(ctx context.Context, conn *websocket.Conn, text string) error {
	reply, err := json.Marshal(replyFor(text))
	if err != nil {
		return fmt.Errorf("encode room reply: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, reply); err != nil {
		return fmt.Errorf("write room reply: %w", err)
	}
	return nil
}

// inboundText extracts the user text from either outbound envelope shape.
func inboundText(data []byte) string {
	var msg struct {
		Type string `json:"type"`
		Text string `json:"text"`
		Data struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return ""
	}
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Data.Content
}

// replyFor derives a canned typed reply from the user's text.
func replyFor(text string) map[string]any {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "compare"):
		return map[string]any{
			"type":          "comparison_result",
			"text":          "Over five years the bluechip fund compounds more steadily, while the flexi cap fund carries a deeper drawdown.",
			"horizon_years": 5,
			"data":          sampleFunds[:2],
		}
	case strings.Contains(lower, "recommend"), strings.Contains(lower, "suggest"), strings.Contains(lower, "fund"):
		return map[string]any{
			"type": "recommendation",
			"text": "Based on your profile, here are my top picks.",
			"data": sampleFunds,
		}
	case strings.Contains(lower, "why"), strings.Contains(lower, "explain"):
		return map[string]any{
			"type": "explanation",
			"text": "The ranking weighs normalized CAGR, consistency, drawdown and expense ratio for your horizon.",
		}
	default:
		return map[string]any{
			"type": "question",
			"text": "What investment horizon and risk level are you comfortable with?",
		}
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}
