package queue

import (
	"context"
	"time"
)

// Job is the scrape-request message exchanged between the restaurant upsert
// flow (producer) and the scrape worker (consumer). Delivery is
// at-least-once; consumers must tolerate duplicates.
type Job struct {
	RestaurantID string    `json:"restaurant_id"`
	URL          string    `json:"url"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

// Delivery is one received message. A delivery left un-acked becomes
// visible again after the queue's visibility timeout and is redelivered,
// until the queue dead-letters it.
type Delivery struct {
	Job          Job
	ReceiveCount int

	ack func(ctx context.Context) error
}

// Ack removes the message from the queue. Call only after the work is
// durably complete.
func (d *Delivery) Ack(ctx context.Context) error {
	if d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error

	// Receive blocks until a message is available or ctx is done.
	// Returns (nil, nil) when the wait timed out without a message.
	Receive(ctx context.Context) (*Delivery, error)
}
