package action

import (
	"context"
	"sync"

	"github.com/optrader/optrader/internal/observ"
)

// Queue is an unbounded FIFO of actions. Enqueue never blocks, so a slow
// consumer backs work up in memory rather than stalling the fetch loop.
type Queue struct {
	mu    sync.Mutex
	items []Action
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Enqueue appends the action and wakes the consumer if it is waiting.
func (q *Queue) Enqueue(a Action) {
	q.mu.Lock()
	q.items = append(q.items, a)
	depth := len(q.items)
	q.mu.Unlock()

	observ.QueueDepth.Set(float64(depth))
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Dequeue blocks until an action is available or the context ends.
func (q *Queue) Dequeue(ctx context.Context) (Action, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			a := q.items[0]
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			if more {
				select {
				case q.ready <- struct{}{}:
				default:
				}
			}
			return a, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len reports the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
