package firebaseapp

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializer_BuildsOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	want := &Clients{}
	initr := NewInitializer(func(ctx context.Context) (*Clients, error) {
		calls.Add(1)
		return want, nil
	})

	const callers = 32
	var wg sync.WaitGroup
	results := make([]*Clients, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			got, err := initr.Initialize(context.Background())
			assert.NoError(t, err)
			results[idx] = got
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, got := range results {
		assert.Same(t, want, got)
	}
	assert.True(t, initr.Initialized())
}

func TestInitializer_RetriesAfterFailure(t *testing.T) {
	var calls int
	want := &Clients{}
	initr := NewInitializer(func(ctx context.Context) (*Clients, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("metadata server unreachable")
		}
		return want, nil
	})

	_, err := initr.Initialize(context.Background())
	require.Error(t, err)
	assert.False(t, initr.Initialized())

	got, err := initr.Initialize(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)

	got, err = initr.Initialize(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, 2, calls, "no rebuild after the first success")
}

func TestInitializer_NilBuild(t *testing.T) {
	_, err := NewInitializer(nil).Initialize(context.Background())
	assert.Error(t, err)
}

func TestClients_CloseNil(t *testing.T) {
	var c *Clients
	assert.NoError(t, c.Close())
	assert.NoError(t, (&Clients{}).Close())
}
