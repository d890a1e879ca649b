package queue

import (
	"context"
	"sync"
	"time"
)

type memoryMessage struct {
	job          Job
	receiveCount int
	invisibleTo  time.Time
}

// Memory is an in-process Queue with SQS-like semantics: visibility
// timeout, redelivery, and a dead-letter pile after maxReceive attempts.
// Used by tests and local runs without AWS credentials.
type Memory struct {
	mu                sync.Mutex
	messages          []*memoryMessage
	dead              []Job
	visibilityTimeout time.Duration
	maxReceive        int
}

func NewMemory(visibilityTimeout time.Duration, maxReceive int) *Memory {
	return &Memory{
		visibilityTimeout: visibilityTimeout,
		maxReceive:        maxReceive,
	}
}

func (m *Memory) Enqueue(ctx context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, &memoryMessage{job: job})
	return nil
}

func (m *Memory) Receive(ctx context.Context) (*Delivery, error) {
	for {
		if delivery := m.tryReceive(); delivery != nil {
			return delivery, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (m *Memory) tryReceive() *Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for i := 0; i < len(m.messages); {
		msg := m.messages[i]
		if now.Before(msg.invisibleTo) {
			i++
			continue
		}

		if msg.receiveCount >= m.maxReceive {
			m.dead = append(m.dead, msg.job)
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			continue
		}

		msg.receiveCount++
		msg.invisibleTo = now.Add(m.visibilityTimeout)

		captured := msg
		return &Delivery{
			Job:          msg.job,
			ReceiveCount: msg.receiveCount,
			ack: func(ctx context.Context) error {
				m.remove(captured)
				return nil
			},
		}
	}
	return nil
}

func (m *Memory) remove(msg *memoryMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(msg)
}

func (m *Memory) removeLocked(msg *memoryMessage) {
	for i, candidate := range m.messages {
		if candidate == msg {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return
		}
	}
}

// DeadLetters returns jobs that exhausted their retry budget.
func (m *Memory) DeadLetters() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Job(nil), m.dead...)
}

// Len reports the number of messages still queued (visible or not).
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
