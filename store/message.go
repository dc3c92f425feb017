package store

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type Message struct {
	// ID is assigned on insert and orders messages within a session.
	ID        int64
	UserID    string
	SessionID string
	Sender    Sender
	Text      string
	// Timestamp is epoch seconds at insertion.
	Timestamp float64
}

type FindMessage struct {
	UserID    string
	SessionID string

	// Pagination
	Pagination *Pagination
}

type DeleteMessage struct {
	UserID    string
	SessionID string
}
