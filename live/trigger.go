package live

import (
	"context"
)

// Trigger runs a refetch on a single worker and coalesces signals: any number
// of Fire calls made while a run is in flight produce exactly one follow-up.
type Trigger struct {
	run    func(ctx context.Context)
	signal chan struct{}
}

func NewTrigger(run func(ctx context.Context)) *Trigger {
	return &Trigger{run: run, signal: make(chan struct{}, 1)}
}

// Fire requests a run; it never blocks
func (t *Trigger) Fire() {
	select {
	case t.signal <- struct{}{}:
	default:
	}
}

// Start processes signals until ctx is done. A run already in flight
// finishes with the context it was given.
func (t *Trigger) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.signal:
			t.run(ctx)
		}
	}
}

// Forward fires the trigger for every event until events closes
func (t *Trigger) Forward(events <-chan Event, onEvent func(Event)) {
	for ev := range events {
		if onEvent != nil {
			onEvent(ev)
		}
		t.Fire()
	}
}
