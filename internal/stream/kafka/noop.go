package kafka

import "context"

// NoopPublisher drops every message. Used when the event stream is disabled
// so the redirect path keeps a non-nil publisher.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
