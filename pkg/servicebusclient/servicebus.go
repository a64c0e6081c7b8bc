// Package servicebusclient publishes conversion events to a message queue.
package servicebusclient

import (
	"context"
	"time"
)

// Publisher sends messages to one queue or topic.
type Publisher interface {
	// Publish sends body and returns the message id.
	Publish(ctx context.Context, body []byte, opts ...SendOption) (messageID string, err error)
	// Close releases the underlying sender.
	Close(ctx context.Context) error
}

// Message is a published message as recorded by MemoryPublisher.
type Message struct {
	ID          string
	Body        []byte
	ContentType string
	Properties  map[string]interface{}
	EnqueuedAt  time.Time
}

// SendOption represents optional parameters for send operations.
type SendOption func(*SendOptions)

// SendOptions contains options for send operations.
type SendOptions struct {
	ContentType string
	Properties  map[string]interface{}
	MessageID   string
}

// WithContentType sets the content type for a message.
func WithContentType(contentType string) SendOption {
	return func(opts *SendOptions) {
		opts.ContentType = contentType
	}
}

// WithProperties sets custom application properties for a message.
func WithProperties(properties map[string]interface{}) SendOption {
	return func(opts *SendOptions) {
		opts.Properties = properties
	}
}

// WithMessageID sets a custom message ID.
func WithMessageID(messageID string) SendOption {
	return func(opts *SendOptions) {
		opts.MessageID = messageID
	}
}

func applyOptions(opts []SendOption) *SendOptions {
	o := &SendOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
