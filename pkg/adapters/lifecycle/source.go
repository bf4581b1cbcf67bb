// Package lifecycle exposes store change events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/lintas/pkg/core"
)

type datasetSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits dataset store events
// (as obtained from core.Service.Watch).
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &datasetSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *datasetSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the upstream channel closes.
func (s *datasetSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				// core.Event satisfies lifecycle.Event through String().
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
