package action

import (
	"context"
	"fmt"

	"github.com/optrader/optrader/internal/observ"
)

// Processor drains the queue one action at a time. A failing or panicking
// action is logged and dropped; the loop itself only stops when the context
// ends.
type Processor struct {
	queue *Queue
}

func NewProcessor(q *Queue) *Processor {
	return &Processor{queue: q}
}

func (p *Processor) Run(ctx context.Context) {
	for {
		a, err := p.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		if err := p.process(ctx, a); err != nil {
			observ.ActionFailures.WithLabelValues(a.Name()).Inc()
			observ.LogError("action_failed", err, map[string]any{"action": a.Name()})
		} else {
			observ.ActionsProcessed.WithLabelValues(a.Name()).Inc()
		}
		observ.QueueDepth.Set(float64(p.queue.Len()))
	}
}

func (p *Processor) process(ctx context.Context, a Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action %s panicked: %v", a.Name(), r)
		}
	}()
	return a.Process(ctx)
}
