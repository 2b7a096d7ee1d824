package stubengine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, srv *httptest.Server, text string) map[string]any {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"session_id": "s1", "text": text})
	resp, err := http.Post(srv.URL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /chat failed: %v", err)
	}
	defer resp.Body.Close()

	var reply map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("Failed to decode reply: %v", err)
	}
	return reply
}

func TestChat_RecommendationReply(t *testing.T) {
	srv := newTestServer(t)

	reply := postChat(t, srv, "recommend some funds for me")
	if reply["type"] != "recommendation" {
		t.Fatalf("Expected recommendation, got %v", reply["type"])
	}
	funds, ok := reply["data"].([]any)
	if !ok || len(funds) == 0 {
		t.Errorf("Expected fund data, got %v", reply["data"])
	}
}

func TestChat_ComparisonReply(t *testing.T) {
	srv := newTestServer(t)

	reply := postChat(t, srv, "compare the top two")
	if reply["type"] != "comparison_result" {
		t.Fatalf("Expected comparison_result, got %v", reply["type"])
	}
	funds, ok := reply["data"].([]any)
	if !ok || len(funds) != 2 {
		t.Errorf("Expected exactly 2 funds, got %v", reply["data"])
	}
	if reply["horizon_years"] != float64(5) {
		t.Errorf("Expected horizon_years 5, got %v", reply["horizon_years"])
	}
}

func TestChat_DefaultsToQuestion(t *testing.T) {
	srv := newTestServer(t)

	reply := postChat(t, srv, "hello there")
	if reply["type"] != "question" {
		t.Errorf("Expected question, got %v", reply["type"])
	}
}

func TestConnect_ReturnsRoomURL(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"session_id": "sess-42"})
	resp, err := http.Post(srv.URL+"/connect", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /connect failed: %v", err)
	}
	defer resp.Body.Close()

	var info struct {
		RoomURL   string `json:"room_url"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode connect info: %v", err)
	}
	if info.SessionID != "sess-42" {
		t.Errorf("Expected session echo, got %q", info.SessionID)
	}
	if !strings.HasPrefix(info.RoomURL, "ws://") || !strings.HasSuffix(info.RoomURL, "/room/sess-42") {
		t.Errorf("Unexpected room URL: %q", info.RoomURL)
	}
}

func TestResetSession_NoContent(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/session/sess-42", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /session failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}

func TestRoom_AnswersOverWebsocket(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	roomURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/room/sess-1"
	conn, _, err := websocket.Dial(ctx, roomURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	out, _ := json.Marshal(map[string]string{"type": "text", "text": "recommend funds"})
	if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	var reply map[string]any
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("Reply is not JSON: %v", err)
	}
	if reply["type"] != "recommendation" {
		t.Errorf("Expected recommendation over the room, got %v", reply["type"])
	}
}

func TestInboundText_EnvelopeShapes(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"plain", `{"type":"text","text":"hello"}`, "hello"},
		{"action", `{"id":"1","label":"rtvi-ai","type":"send-text","data":{"content":"hi"}}`, "hi"},
		{"garbage", `not json`, ""},
		{"empty", `{"type":"text"}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := inboundText([]byte(tc.data)); got != tc.want {
				t.Errorf("inboundText(%s) = %q, want %q", tc.data, got, tc.want)
			}
		})
	}
}
