package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
)

type memoryOutbox struct {
	mu          sync.Mutex
	messages    map[int64]outbox.Message
	rescheduled map[int64]time.Time
}

func newMemoryOutbox(msgs ...outbox.Message) *memoryOutbox {
	o := &memoryOutbox{messages: map[int64]outbox.Message{}, rescheduled: map[int64]time.Time{}}
	for _, m := range msgs {
		o.messages[m.ID] = m
	}

	return o
}

func (o *memoryOutbox) Insert(_ context.Context, msg outbox.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[msg.ID] = msg

	return nil
}

func (o *memoryOutbox) GetPending(_ context.Context, limit int) ([]outbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []outbox.Message
	for _, m := range o.messages {
		if len(out) == limit {
			break
		}
		if !m.Exhausted() {
			out = append(out, m)
		}
	}

	return out, nil
}

func (o *memoryOutbox) Delete(_ context.Context, id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.messages, id)

	return nil
}

func (o *memoryOutbox) Reschedule(_ context.Context, id int64, attempts int, lastError string, next time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	m := o.messages[id]
	m.Attempts = attempts
	m.LastError = lastError
	m.NextAttemptAt = next
	o.messages[id] = m
	o.rescheduled[id] = next

	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	failOn map[string]error
	sent   []string
}

func (p *fakePublisher) Publish(_ context.Context, _, messageID, _ string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.failOn[messageID]; err != nil {
		return err
	}
	p.sent = append(p.sent, messageID)

	return nil
}

func TestProcessMessages(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newMemoryOutbox(
		outbox.Message{ID: 1, Key: "ok", MaxAttempts: 5},
		outbox.Message{ID: 2, Key: "broken", MaxAttempts: 5},
	)
	pub := &fakePublisher{failOn: map[string]error{"broken": errors.New("channel closed")}}

	w := NewWorker(repo, pub, time.Hour, 10)
	w.now = func() time.Time { return now }
	w.processMessages(context.Background())

	assert.Equal(t, []string{"ok"}, pub.sent)
	require.Len(t, repo.messages, 1)

	failed := repo.messages[2]
	assert.Equal(t, 1, failed.Attempts)
	assert.Equal(t, "channel closed", failed.LastError)
	assert.Equal(t, now.Add(time.Minute), repo.rescheduled[2])
}

func TestStartStops(t *testing.T) {
	w := NewWorker(newMemoryOutbox(), &fakePublisher{}, time.Millisecond, 1)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()
	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 30*time.Second, outbox.Backoff(0))
	assert.Equal(t, time.Minute, outbox.Backoff(1))
	assert.Equal(t, 4*time.Minute, outbox.Backoff(3))
	assert.Equal(t, outbox.Backoff(10), outbox.Backoff(50))
}
