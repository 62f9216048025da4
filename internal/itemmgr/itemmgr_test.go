package itemmgr

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deephaven/mcp-systems-server/internal/mcperr"
)

type fakeItem struct {
	id int
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "community:community:local", FullName("community", "community", "local"))
}

func TestGetCreatesOnceAcrossConcurrentCallers(t *testing.T) {
	var createCount int32
	create := func(ctx context.Context) (*fakeItem, error) {
		n := atomic.AddInt32(&createCount, 1)
		return &fakeItem{id: int(n)}, nil
	}
	alive := func(ctx context.Context, item *fakeItem) bool { return true }

	m := New[*fakeItem]("community", "community", "local", create, alive, nil)

	const n = 20
	var wg sync.WaitGroup
	results := make([]*fakeItem, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			item, err := m.Get(context.Background())
			require.NoError(t, err)
			results[idx] = item
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, createCount)
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestGetSurfacesCreationError(t *testing.T) {
	create := func(ctx context.Context) (*fakeItem, error) {
		return nil, assertErr{}
	}
	alive := func(ctx context.Context, item *fakeItem) bool { return true }

	m := New[*fakeItem]("community", "community", "local", create, alive, nil)
	_, err := m.Get(context.Background())
	require.Error(t, err)
	assert.True(t, mcperr.Is(err, mcperr.KindCreation))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestRecreatesWhenProbeFails(t *testing.T) {
	var createCount int32
	create := func(ctx context.Context) (*fakeItem, error) {
		n := atomic.AddInt32(&createCount, 1)
		return &fakeItem{id: int(n)}, nil
	}
	aliveFlag := false
	alive := func(ctx context.Context, item *fakeItem) bool { return aliveFlag }

	m := New[*fakeItem]("community", "community", "local", create, alive, nil)
	_, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, createCount)

	aliveFlag = false // dead, forces recreate
	_, err = m.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, createCount)
}

func TestProbePanicTreatedAsNotAlive(t *testing.T) {
	create := func(ctx context.Context) (*fakeItem, error) { return &fakeItem{}, nil }
	alive := func(ctx context.Context, item *fakeItem) bool { panic("probe exploded") }
	m := New[*fakeItem]("community", "community", "local", create, alive, nil)

	_, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, m.IsAlive(context.Background()))
}

func TestCloseIsIdempotentAndClearsSlot(t *testing.T) {
	create := func(ctx context.Context) (*fakeItem, error) { return &fakeItem{id: 1}, nil }
	alive := func(ctx context.Context, item *fakeItem) bool { return true }
	var closeCount int32
	closeFn := func(ctx context.Context, item *fakeItem) error {
		atomic.AddInt32(&closeCount, 1)
		return nil
	}

	m := New[*fakeItem]("community", "community", "local", create, alive, closeFn)
	_, err := m.Get(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Close(context.Background()))
	require.NoError(t, m.Close(context.Background())) // idempotent
	assert.EqualValues(t, 1, closeCount)
	assert.False(t, m.IsAlive(context.Background()))
}
