// Package session orchestrates the advisory chat: it owns the realtime
// connection lifecycle, dispatches outbound user text over the active
// channel and routes classified inbound payloads to the conversation log
// and the comparison view.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/karth1ksr/mf-recommendation-engine/internal/comparison"
	"github.com/karth1ksr/mf-recommendation-engine/internal/config"
	"github.com/karth1ksr/mf-recommendation-engine/internal/conversation"
	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
	"github.com/karth1ksr/mf-recommendation-engine/internal/engine"
	"github.com/karth1ksr/mf-recommendation-engine/internal/identity"
	"github.com/karth1ksr/mf-recommendation-engine/internal/payload"
	"github.com/karth1ksr/mf-recommendation-engine/internal/realtime"
)

// State is the realtime connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateJoined
	StateFailed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrConnectInFlight is returned when Connect is called while a connection
// attempt is already in progress. The caller must not start a second
// handshake.
var ErrConnectInFlight = errors.New("session: connection attempt already in flight")

const (
	connectApology = "Sorry, I couldn't reach the realtime session. Please try again."
	sendApology    = "Sorry, I'm having trouble connecting to the engine. Is the backend running?"
	defaultSummary = "I've generated your personalized recommendations!"
	resetGreeting  = "Session reset. How can I help you find mutual funds today?"
)

// Orchestrator ties the session identity, the two channels and the two
// presentation surfaces together. All state transitions happen under one
// mutex which is never held across a network call; the Connecting state is
// the in-flight marker that keeps concurrent connect attempts out.
type Orchestrator struct {
	mu                sync.Mutex
	state             State
	listenerInstalled bool

	mode     string
	envelope string

	ids       *identity.Store
	engine    *engine.Client
	transport realtime.Transport
	log       *conversation.Log
	view      *comparison.View
	logger    *slog.Logger
	updates   chan struct{}
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(cfg *config.Config, ids *identity.Store, client *engine.Client, transport realtime.Transport, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		mode:      cfg.Mode,
		envelope:  cfg.Envelope,
		ids:       ids,
		engine:    client,
		transport: transport,
		log:       conversation.NewLog(),
		view:      comparison.NewView(),
		logger:    logger,
		updates:   make(chan struct{}, 1),
	}
}

// Log exposes the conversation bubble log.
func (o *Orchestrator) Log() *conversation.Log { return o.log }

// View exposes the comparison panel state.
func (o *Orchestrator) View() *comparison.View { return o.view }

// State returns the current connection state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Updates signals after every visible state change; consumers re-render on
// receive. The channel is buffered and never blocks a mutation.
func (o *Orchestrator) Updates() <-chan struct{} { return o.updates }

func (o *Orchestrator) notify() {
	select {
	case o.updates <- struct{}{}:
	default:
	}
}

// Connect establishes the realtime channel. Idempotent success when already
// joined; returns ErrConnectInFlight without a second handshake when a
// connect attempt is in progress. Any handshake or join failure moves the
// state to Failed and surfaces exactly one apology bubble.
func (o *Orchestrator) Connect(ctx context.Context) error {
	o.mu.Lock()
	switch o.state {
	case StateJoined:
		o.mu.Unlock()
		return nil
	case StateConnecting:
		o.mu.Unlock()
		return ErrConnectInFlight
	}
	o.state = StateConnecting
	o.mu.Unlock()
	o.notify()

	tentative := o.ids.GetOrCreate(ctx)
	info, err := o.engine.Connect(ctx, tentative)
	if err != nil {
		o.failConnect(fmt.Errorf("allocate room: %w", err))
		return err
	}

	// The backend's session identity is authoritative; adopt it before
	// joining so subsequent sends carry the right id.
	o.ids.Adopt(ctx, info.SessionID)

	if err := o.transport.Join(ctx, info.RoomURL); err != nil {
		o.failConnect(fmt.Errorf("join room: %w", err))
		return err
	}

	o.mu.Lock()
	if !o.listenerInstalled {
		o.listenerInstalled = true
		go o.listen()
	}
	o.state = StateJoined
	o.mu.Unlock()

	o.logger.Info("Realtime session joined", "room_url", info.RoomURL)
	o.notify()
	return nil
}

func (o *Orchestrator) failConnect(err error) {
	o.logger.Error("Realtime connect failed", "error", err)

	o.mu.Lock()
	o.state = StateFailed
	o.mu.Unlock()

	o.log.Append(domain.RoleAssistant, connectApology, false)
	o.notify()
}

// Leave gracefully closes the realtime channel. No-op when not joined.
func (o *Orchestrator) Leave(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateJoined {
		o.mu.Unlock()
		return nil
	}
	o.state = StateDisconnected
	o.mu.Unlock()

	err := o.transport.Leave(ctx)
	if err != nil {
		o.logger.Warn("Failed to leave room cleanly", "error", err)
	}
	o.notify()
	return err
}

// SetLocalAudioEnabled toggles the local audio track. Audio intent expressed
// before the channel is up triggers a connect attempt instead of erroring.
func (o *Orchestrator) SetLocalAudioEnabled(ctx context.Context, enabled bool) error {
	if o.State() != StateJoined {
		if err := o.Connect(ctx); err != nil {
			return err
		}
	}
	if err := o.transport.SetLocalAudio(ctx, enabled); err != nil {
		return fmt.Errorf("set local audio: %w", err)
	}
	return nil
}

// Send dispatches user text over the active channel. It never returns an
// error: every failure surfaces as one apology bubble and a log entry, and
// the loading indicator is cleared on every outcome path.
func (o *Orchestrator) Send(ctx context.Context, text string) {
	o.log.ShowLoading()
	o.notify()

	if o.mode == config.ModeRealtime {
		o.sendRealtime(ctx, text)
	} else {
		o.sendHTTP(ctx, text)
	}
}

func (o *Orchestrator) sendHTTP(ctx context.Context, text string) {
	defer func() {
		o.log.ClearLoading()
		o.notify()
	}()

	raw, err := o.engine.Chat(ctx, o.ids.GetOrCreate(ctx), text)
	if err != nil {
		o.logger.Error("Chat request failed", "error", err)
		o.log.Append(domain.RoleAssistant, sendApology, false)
		return
	}

	p := payload.Classify(raw)
	if p == nil {
		return
	}
	o.route(p)
}

func (o *Orchestrator) sendRealtime(ctx context.Context, text string) {
	defer func() {
		o.log.ClearLoading()
		o.notify()
	}()

	if err := o.Connect(ctx); err != nil {
		// Handshake failures already surfaced their apology; an in-flight
		// attempt just means this send cannot proceed yet.
		if errors.Is(err, ErrConnectInFlight) {
			o.logger.Warn("Send skipped, connection attempt in flight")
		}
		return
	}

	data, err := encodeEnvelope(o.envelope, text)
	if err != nil {
		o.logger.Error("Failed to encode outbound envelope", "error", err)
		o.log.Append(domain.RoleAssistant, sendApology, false)
		return
	}

	if err := o.transport.SendMessage(ctx, data); err != nil {
		// A single failed send does not tear down the channel.
		o.logger.Error("Realtime send failed", "error", err)
		o.log.Append(domain.RoleAssistant, sendApology, false)
	}
}

// encodeEnvelope builds the configured outbound realtime message shape.
func encodeEnvelope(style, text string) ([]byte, error) {
	switch style {
	case config.EnvelopeAction:
		return json.Marshal(map[string]any{
			"id":    uuid.NewString(),
			"label": "rtvi-ai",
			"type":  "send-text",
			"data":  map[string]string{"content": text},
		})
	default:
		return json.Marshal(map[string]string{"type": "text", "text": text})
	}
}

// listen drains the transport's inbound stream. Installed at most once per
// transport instance; the stream stays valid across rejoins.
func (o *Orchestrator) listen() {
	for raw := range o.transport.Inbound() {
		o.HandleInbound(raw)
	}
}

// HandleInbound classifies and routes one raw inbound message. Unclassifiable
// payloads are dropped without rendering.
func (o *Orchestrator) HandleInbound(raw []byte) {
	p := payload.Classify(raw)
	if p == nil {
		return
	}
	o.route(p)
}

func (o *Orchestrator) route(p *payload.Payload) {
	switch p.Kind {
	case payload.KindText, payload.KindGeneric:
		o.log.Append(domain.RoleAssistant, p.Text, false)
		// Keep the open comparison panel textually consistent with the
		// conversation stream.
		o.view.SyncNarrative(p.Text)

	case payload.KindRecommendation:
		summary := p.Text
		if summary == "" {
			summary = defaultSummary
		}
		o.log.Append(domain.RoleAssistant, summary, false)
		o.log.AppendFunds(p.Funds)

	case payload.KindComparison:
		c := p.Comparison
		o.view.Open(c.Funds[0], c.Funds[1], c.Narrative, c.HorizonYears)
		if c.Narrative != "" {
			o.log.Append(domain.RoleAssistant, c.Narrative, false)
		}
	}
	o.notify()
}

// CloseComparison hides the comparison panel and discards its state.
func (o *Orchestrator) CloseComparison() {
	o.view.Close()
	o.notify()
}

// Reset discards the session on both ends: it leaves any active realtime
// room, asks the engine to drop the server-side session, rotates the local
// identity and clears the conversation back to a greeting.
func (o *Orchestrator) Reset(ctx context.Context) (string, error) {
	// Leave before the old identity is discarded.
	if err := o.Leave(ctx); err != nil {
		o.logger.Warn("Leaving room during reset failed", "error", err)
	}

	old := o.ids.GetOrCreate(ctx)
	if err := o.engine.ResetSession(ctx, old); err != nil {
		o.logger.Error("Server-side session reset failed", "error", err)
		return "", fmt.Errorf("reset session: %w", err)
	}

	fresh := o.ids.Reset(ctx)
	o.log.Reset(resetGreeting)
	o.view.Close()

	o.mu.Lock()
	o.state = StateDisconnected
	o.mu.Unlock()

	o.logger.Info("Session reset", "session_id", fresh)
	o.notify()
	return fresh, nil
}
