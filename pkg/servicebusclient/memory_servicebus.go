package servicebusclient

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryPublisher records published messages in memory, for tests.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
	seq      int
	fail     error
}

// NewMemoryPublisher creates an empty publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// FailWith makes subsequent Publish calls return err.
func (m *MemoryPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *MemoryPublisher) Publish(ctx context.Context, body []byte, opts ...SendOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return "", m.fail
	}

	o := applyOptions(opts)
	m.seq++
	if o.MessageID == "" {
		o.MessageID = fmt.Sprintf("memory-%d", m.seq)
	}
	m.messages = append(m.messages, Message{
		ID:          o.MessageID,
		Body:        append([]byte(nil), body...),
		ContentType: o.ContentType,
		Properties:  o.Properties,
		EnqueuedAt:  time.Now(),
	})
	return o.MessageID, nil
}

func (m *MemoryPublisher) Close(ctx context.Context) error {
	return nil
}

// Messages returns a copy of the published messages.
func (m *MemoryPublisher) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}
