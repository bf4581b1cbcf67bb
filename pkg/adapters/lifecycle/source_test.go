package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lintas/pkg/adapters/lifecycle"
	"github.com/aretw0/lintas/pkg/adapters/memory"
	"github.com/aretw0/lintas/pkg/core"
)

func TestSource_ForwardsStoreEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := core.NewService(memory.NewRepository(), nil)
	events, err := svc.Watch(ctx, "**")
	require.NoError(t, err)

	src := lifecycle.NewSource(events)
	require.NoError(t, src.Start(ctx))

	_, err = svc.Put(ctx, core.Dataset{ID: "d1"})
	require.NoError(t, err)

	select {
	case e := <-src.Events():
		assert.Equal(t, "PUT d1", e.String())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSource_ClosesWithUpstream(t *testing.T) {
	upstream := make(chan core.Event)
	src := lifecycle.NewSource(upstream)
	require.NoError(t, src.Start(context.Background()))

	close(upstream)

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("source did not close")
	}
}
