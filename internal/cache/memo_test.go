package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type square struct {
	N int `json:"n"`
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}

func TestMemoHitAndMiss(t *testing.T) {
	var calls int32
	var hits, misses, stores int32
	memo := NewMemo(NewMemoryStore(), MemoConfig[square, int]{
		Name: "square",
		TTL:  time.Minute,
		Hooks: Hooks{
			OnHit:   func(string) { atomic.AddInt32(&hits, 1) },
			OnMiss:  func(string) { atomic.AddInt32(&misses, 1) },
			OnStore: func(string) { atomic.AddInt32(&stores, 1) },
		},
	}, func(_ context.Context, args square) (int, error) {
		atomic.AddInt32(&calls, 1)
		return args.N * args.N, nil
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := memo.Call(ctx, square{N: 4})
		require.NoError(t, err)
		assert.Equal(t, 16, got)
	}
	got, err := memo.Call(ctx, square{N: 5})
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	assert.Equal(t, int32(2), calls)
	assert.Equal(t, int32(2), hits)
	assert.Equal(t, int32(2), misses)
	assert.Equal(t, int32(2), stores)
}

func TestMemoDoesNotCacheErrors(t *testing.T) {
	var calls int32
	memo := NewMemo(NewMemoryStore(), MemoConfig[square, int]{Name: "flaky", TTL: time.Minute},
		func(_ context.Context, _ square) (int, error) {
			atomic.AddInt32(&calls, 1)
			return 0, errors.New("boom")
		})

	for i := 0; i < 2; i++ {
		_, err := memo.Call(context.Background(), square{N: 1})
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), calls)
}

func TestMemoSkipsNilAndSkippedResults(t *testing.T) {
	store := NewMemoryStore()
	nilMemo := NewMemo(store, MemoConfig[square, []int]{Name: "nil", TTL: time.Minute},
		func(_ context.Context, _ square) ([]int, error) { return nil, nil })
	_, err := nilMemo.Call(context.Background(), square{})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	zeroMemo := NewMemo(store, MemoConfig[square, int]{
		Name: "zero",
		TTL:  time.Minute,
		Skip: func(v int) bool { return v == 0 },
	}, func(_ context.Context, _ square) (int, error) { return 0, nil })
	_, err = zeroMemo.Call(context.Background(), square{})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestMemoFallsThroughOnStoreFailure(t *testing.T) {
	var errorsSeen int32
	memo := NewMemo[square, int](failingStore{}, MemoConfig[square, int]{
		Name:  "resilient",
		TTL:   time.Minute,
		Hooks: Hooks{OnError: func(string) { atomic.AddInt32(&errorsSeen, 1) }},
	}, func(_ context.Context, args square) (int, error) { return args.N + 1, nil })

	got, err := memo.Call(context.Background(), square{N: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, int32(2), errorsSeen)
}

func TestMemoCustomKey(t *testing.T) {
	var calls int32
	memo := NewMemo(NewMemoryStore(), MemoConfig[square, int]{
		Name: "parity",
		TTL:  time.Minute,
		Key:  func(args square) string { return "parity" },
	}, func(_ context.Context, args square) (int, error) {
		atomic.AddInt32(&calls, 1)
		return args.N, nil
	})

	first, _ := memo.Call(context.Background(), square{N: 1})
	second, _ := memo.Call(context.Background(), square{N: 2})
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, int32(1), calls)
}

func TestMemoConcurrentCalls(t *testing.T) {
	memo := NewMemo(NewMemoryStore(), MemoConfig[square, int]{Name: "concurrent", TTL: time.Minute},
		func(_ context.Context, args square) (int, error) {
			time.Sleep(5 * time.Millisecond)
			return args.N * 2, nil
		})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := memo.Call(context.Background(), square{N: n % 4})
			assert.NoError(t, err)
			assert.Equal(t, (n%4)*2, got)
		}(i)
	}
	wg.Wait()
}

func TestDefaultKeyIsStable(t *testing.T) {
	a := DefaultKey("fn", square{N: 3})
	b := DefaultKey("fn", square{N: 3})
	c := DefaultKey("fn", square{N: 4})
	d := DefaultKey("other", square{N: 3})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
