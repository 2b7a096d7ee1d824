// Package realtime provides the bidirectional data/media channel to the
// advisory engine's room infrastructure.
package realtime

import "context"

// Transport is the narrow capability surface of the realtime media SDK. The
// orchestration layer only ever talks to this interface, so it can run
// against a fake in tests.
type Transport interface {
	// Join opens the channel against the given room reference.
	Join(ctx context.Context, roomURL string) error

	// Leave gracefully closes the channel. Safe to call when not joined.
	Leave(ctx context.Context) error

	// SendMessage transmits one outbound message over the data channel.
	SendMessage(ctx context.Context, data []byte) error

	// SetLocalAudio toggles the local audio track. Valid only while joined.
	SetLocalAudio(ctx context.Context, enabled bool) error

	// Inbound is the stream of raw data-channel messages. The channel is
	// owned by the transport and stays valid across joins.
	Inbound() <-chan []byte
}
