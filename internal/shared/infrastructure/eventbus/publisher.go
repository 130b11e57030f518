// Package eventbus moves domain events between the scheduling core and the
// background worker, either in-process (local mode) or over RabbitMQ.
package eventbus

import (
	"context"
)

// Publisher sends serialized events to the bus.
type Publisher interface {
	// Publish sends a message under the given routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close releases the underlying connection.
	Close() error
}
