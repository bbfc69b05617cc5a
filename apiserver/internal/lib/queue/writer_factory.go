package queue

import "context"

// WriterFactory is an interface for components that can instantiate Writers
// for named queues.
type WriterFactory interface {
	NewQueueWriter(queueName string) (Writer, error)
	Close(context.Context) error
}
