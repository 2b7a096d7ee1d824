// Package conversation maintains the ordered bubble log of the chat.
package conversation

import (
	"sync"

	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
)

// Log is the append-only sequence of message bubbles. It is the sole source
// of truth for the rendered conversation.
//
// Successive assistant plain-text contributions coalesce into one bubble so
// that chunked delivery of a single utterance renders as one message; any
// other contribution starts a new bubble. Bubbles are never removed; the
// transient loading indicator is tracked separately.
type Log struct {
	mu      sync.Mutex
	bubbles []domain.Bubble
	loading bool
	nextSeq int
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a contribution to the log. Assistant plain text is concatenated
// onto a trailing assistant plain bubble with a single separating space;
// everything else appends a new bubble. Special contributions never merge.
func (l *Log) Append(role domain.Role, text string, special bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !special && role == domain.RoleAssistant && len(l.bubbles) > 0 {
		last := &l.bubbles[len(l.bubbles)-1]
		if last.Role == domain.RoleAssistant && last.Kind == domain.BubblePlain {
			last.Text += " " + text
			return
		}
	}

	kind := domain.BubblePlain
	if special {
		kind = domain.BubbleFundList
	}
	l.appendLocked(domain.Bubble{Role: role, Kind: kind, Text: text})
}

// AppendFunds appends a special fund-list bubble.
func (l *Log) AppendFunds(funds []domain.FundSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.appendLocked(domain.Bubble{
		Role:  domain.RoleAssistant,
		Kind:  domain.BubbleFundList,
		Funds: funds,
	})
}

func (l *Log) appendLocked(b domain.Bubble) {
	b.Seq = l.nextSeq
	l.nextSeq++
	l.bubbles = append(l.bubbles, b)
}

// ShowLoading marks an outbound send as in flight.
func (l *Log) ShowLoading() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = true
}

// ClearLoading removes the loading indicator. Clearing an absent indicator is
// a no-op; callers invoke this on every send outcome path.
func (l *Log) ClearLoading() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
}

// Loading reports whether a send is in flight.
func (l *Log) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Bubbles returns a snapshot of the bubble sequence in append order.
func (l *Log) Bubbles() []domain.Bubble {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Bubble, len(l.bubbles))
	copy(out, l.bubbles)
	return out
}

// Len returns the number of bubbles.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bubbles)
}

// Reset discards the conversation and starts over with a single assistant
// greeting bubble.
func (l *Log) Reset(greeting string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.bubbles = nil
	l.loading = false
	l.appendLocked(domain.Bubble{Role: domain.RoleAssistant, Kind: domain.BubblePlain, Text: greeting})
}
