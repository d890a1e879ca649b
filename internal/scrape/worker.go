package scrape

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/rolzy/mealsteals/internal/apperr"
	"github.com/rolzy/mealsteals/internal/queue"
)

// Worker runs a pool of goroutines draining the scrape queue.
type Worker struct {
	queue       queue.Queue
	service     *Service
	concurrency int
}

func NewWorker(q queue.Queue, service *Service, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{queue: q, service: service, concurrency: concurrency}
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		group.Go(func() error {
			return w.loop(ctx)
		})
	}
	return group.Wait()
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delivery, err := w.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("⚠️ Queue receive failed: %v", err)
			continue
		}
		if delivery == nil {
			continue
		}

		job := delivery.Job
		log.Printf("📥 Processing scrape job for restaurant %s (attempt %d)", job.RestaurantID, delivery.ReceiveCount)

		if err := w.service.Process(ctx, job); err != nil {
			if apperr.IsValidation(err) {
				// The job itself is unusable; retrying cannot help.
				log.Printf("❌ Dropping invalid scrape job for restaurant %s: %v", job.RestaurantID, err)
				if ackErr := delivery.Ack(ctx); ackErr != nil {
					log.Printf("⚠️ Failed to ack invalid job: %v", ackErr)
				}
				continue
			}
			// Leave unacked: the queue redelivers after the
			// visibility timeout, and dead-letters on budget.
			log.Printf("⚠️ Scrape job for restaurant %s failed, will retry: %v", job.RestaurantID, err)
			continue
		}

		if err := delivery.Ack(ctx); err != nil {
			log.Printf("⚠️ Failed to ack scrape job for restaurant %s: %v", job.RestaurantID, err)
		}
	}
}
