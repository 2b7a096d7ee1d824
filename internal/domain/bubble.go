package domain

// Role identifies who a conversation bubble belongs to.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BubbleKind distinguishes plain text bubbles from structured content.
type BubbleKind string

const (
	BubblePlain    BubbleKind = "plain"
	BubbleFundList BubbleKind = "fund_list"
)

// Bubble is one entry in the rendered conversation. The bubble sequence is
// append-only; only the text of the last assistant plain bubble may be
// extended in place.
type Bubble struct {
	Role  Role
	Kind  BubbleKind
	Text  string
	Funds []FundSummary
	Seq   int
}
