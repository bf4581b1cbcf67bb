package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lintas/pkg/core"
)

func receive(t *testing.T, ch <-chan core.Event) (core.Event, bool) {
	t.Helper()
	select {
	case e, ok := <-ch:
		return e, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return core.Event{}, false
	}
}

func TestBroker_PatternFiltering(t *testing.T) {
	b := New(0, nil)
	ctx := context.Background()

	all, err := b.Subscribe(ctx, "")
	require.NoError(t, err)
	uploads, err := b.Subscribe(ctx, "upload-*")
	require.NoError(t, err)

	b.Publish(core.Event{Type: core.EventPut, ID: "id-1"})
	b.Publish(core.Event{Type: core.EventPut, ID: "upload-7"})

	e, _ := receive(t, all)
	assert.Equal(t, "id-1", e.ID)
	e, _ = receive(t, all)
	assert.Equal(t, "upload-7", e.ID)

	e, _ = receive(t, uploads)
	assert.Equal(t, "upload-7", e.ID)
	assert.Empty(t, uploads)
}

func TestBroker_InvalidPattern(t *testing.T) {
	b := New(0, nil)
	_, err := b.Subscribe(context.Background(), "[")
	assert.Error(t, err)
}

func TestBroker_FullBufferDrops(t *testing.T) {
	b := New(1, nil)
	ch, err := b.Subscribe(context.Background(), "**")
	require.NoError(t, err)

	b.Publish(core.Event{ID: "a"})
	b.Publish(core.Event{ID: "b"})

	e, _ := receive(t, ch)
	assert.Equal(t, "a", e.ID)
	assert.Empty(t, ch)
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := New(0, nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "**")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	cancel()
	_, ok := receive(t, ch)
	assert.False(t, ok, "channel closes when the context is done")
	assert.Equal(t, 0, b.Len())
}

func TestBroker_Close(t *testing.T) {
	b := New(0, nil)
	ch, err := b.Subscribe(context.Background(), "**")
	require.NoError(t, err)

	b.Close()
	_, ok := receive(t, ch)
	assert.False(t, ok)

	_, err = b.Subscribe(context.Background(), "**")
	assert.Error(t, err)

	// Publishing after close is a no-op.
	b.Publish(core.Event{ID: "late"})
}

func TestBroker_CloseReleasesSubscribers(t *testing.T) {
	b := New(0, nil)
	for i := 0; i < 5; i++ {
		_, err := b.Subscribe(context.Background(), "**")
		require.NoError(t, err)
	}

	closed := make(chan struct{})
	go func() {
		b.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not release subscriber goroutines")
	}
	// Close returns only after every subscription goroutine exited.
	b.watchers.Wait()
	b.Close()
}
