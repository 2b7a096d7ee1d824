package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// ErrNotJoined is returned for data-channel operations while disconnected.
var ErrNotJoined = errors.New("realtime: not joined")

const inboundBuffer = 32

// WebsocketTransport implements Transport over a websocket data channel.
type WebsocketTransport struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	inbound chan []byte
	logger  *slog.Logger
}

// NewWebsocketTransport creates an unjoined websocket transport.
func NewWebsocketTransport(logger *slog.Logger) *WebsocketTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebsocketTransport{
		inbound: make(chan []byte, inboundBuffer),
		logger:  logger,
	}
}

// Join dials the room and starts the read loop. Joining while already joined
// replaces the previous connection.
func (t *WebsocketTransport) Join(ctx context.Context, roomURL string) error {
	conn, _, err := websocket.Dial(ctx, roomURL, nil)
	if err != nil {
		return fmt.Errorf("dial room %s: %w", roomURL, err)
	}

	t.mu.Lock()
	if t.conn != nil {
		if closeErr := t.conn.Close(websocket.StatusNormalClosure, "rejoining"); closeErr != nil {
			t.logger.Debug("Failed to close previous room connection", "error", closeErr)
		}
	}
	t.conn = conn
	t.mu.Unlock()

	go t.readLoop(conn)
	return nil
}

// Leave closes the room connection. No-op when not joined.
func (t *WebsocketTransport) Leave(_ context.Context) error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(websocket.StatusNormalClosure, "session ended"); err != nil {
		return fmt.Errorf("close room connection: %w", err)
	}
	return nil
}

// SendMessage writes one text frame to the data channel.
func (t *WebsocketTransport) SendMessage(ctx context.Context, data []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return ErrNotJoined
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write data channel message: %w", err)
	}
	return nil
}

// SetLocalAudio toggles the local audio track via a control frame.
func (t *WebsocketTransport) SetLocalAudio(ctx context.Context, enabled bool) error {
	data, err := json.Marshal(map[string]any{"type": "local-audio", "enabled": enabled})
	if err != nil {
		return fmt.Errorf("encode audio control frame: %w", err)
	}
	if err := t.SendMessage(ctx, data); err != nil {
		return fmt.Errorf("toggle local audio: %w", err)
	}
	return nil
}

// Inbound returns the stream of raw data-channel messages.
func (t *WebsocketTransport) Inbound() <-chan []byte {
	return t.inbound
}

func (t *WebsocketTransport) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				t.logger.Debug("Room connection closed", "status", websocket.CloseStatus(err))
			} else {
				t.logger.Warn("Room read error", "error", err)
			}
			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()
			return
		}

		select {
		case t.inbound <- message:
		default:
			t.logger.Warn("Inbound buffer full, dropping message")
		}
	}
}
