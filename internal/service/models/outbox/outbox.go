package outbox

import (
	"time"
)

// Message is an event stored next to the order it describes and published
// to the broker by the outbox worker.
type Message struct {
	ID            int64
	Queue         string
	Key           string
	Payload       []byte
	ContentType   string
	Attempts      int
	MaxAttempts   int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	NextAttemptAt time.Time
}

// Exhausted reports whether the message has used up its attempts.
func (m Message) Exhausted() bool {
	return m.Attempts >= m.MaxAttempts
}

// Backoff returns the delay before attempt number attempts+1: 30s, 1m, 2m, 4m...
func Backoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}

	return time.Duration(1<<attempts) * 30 * time.Second
}
