package queue

import "context"

// Writer is an interface for components that can write messages to a named
// queue.
type Writer interface {
	// Write writes a single message to the queue.
	Write(ctx context.Context, message string) error
	// Close closes the writer, releasing any connections it holds.
	Close(ctx context.Context) error
}
