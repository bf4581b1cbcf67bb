// Package broker fans out store change events to pattern-filtered subscribers.
package broker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/lintas/pkg/core"
)

// DefaultBufferSize is the per-subscriber buffer used when none is configured.
const DefaultBufferSize = 100

type subscriber struct {
	pattern string
	ch      chan core.Event
}

// Broker delivers published events to every subscriber whose pattern matches
// the event ID. Publishing never blocks: a subscriber with a full buffer misses
// the event.
type Broker struct {
	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	bufSize int
	logger  *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
	watchers  sync.WaitGroup // one per subscription, waiting on ctx or done
}

// New creates a broker. bufSize <= 0 selects DefaultBufferSize.
func New(bufSize int, logger *slog.Logger) *Broker {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Broker{
		subs:    make(map[*subscriber]struct{}),
		bufSize: bufSize,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Subscribe registers a subscriber for IDs matching pattern (doublestar syntax).
// The returned channel is closed when ctx is done or the broker is closed.
func (b *Broker) Subscribe(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}

	sub := &subscriber{pattern: pattern, ch: make(chan core.Event, b.bufSize)}

	b.mu.Lock()
	if b.subs == nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("broker closed")
	}
	b.subs[sub] = struct{}{}
	b.watchers.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.watchers.Done()
		select {
		case <-ctx.Done():
			b.remove(sub)
		case <-b.done:
		}
	}()

	return sub.ch, nil
}

// Publish delivers e to matching subscribers.
func (b *Broker) Publish(e core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		ok, err := doublestar.Match(sub.pattern, e.ID)
		if err != nil || !ok {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			if b.logger != nil {
				b.logger.Warn("event dropped, subscriber buffer full", "id", e.ID, "type", e.Type)
			}
		}
	}
}

// Len returns the number of active subscribers.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel and releases their goroutines.
// Later subscriptions fail.
func (b *Broker) Close() {
	b.mu.Lock()
	for sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
	b.mu.Unlock()

	b.closeOnce.Do(func() { close(b.done) })
	b.watchers.Wait()
}

func (b *Broker) remove(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}
