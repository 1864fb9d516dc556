package hubbub

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoExecutorRunsAsync(t *testing.T) {
	var wg sync.WaitGroup
	var ran atomic.Bool
	wg.Add(1)
	GoExecutor{}.Go(func() {
		ran.Store(true)
		wg.Done()
	})
	wg.Wait()
	assert.True(t, ran.Load())
}

func TestCallerExecutorRunsInline(t *testing.T) {
	var order []int
	ex := CallerExecutor{}
	ex.Go(func() { order = append(order, 1) })
	ex.Go(func() { order = append(order, 2) })
	assert.Equal(t, []int{1, 2}, order)
}

func TestExecutorRecoversDeliveryPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		CallerExecutor{}.Go(func() { panic("subscriber fault") })
	})

	var wg sync.WaitGroup
	wg.Add(1)
	assert.NotPanics(t, func() {
		GoExecutor{}.Go(func() {
			defer wg.Done()
			panic("async subscriber fault")
		})
	})
	wg.Wait()
}

func TestPoolExecutorRunsAllTasks(t *testing.T) {
	p := NewPoolExecutor(4, 16)
	var count atomic.Int64
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		p.Go(func() {
			defer wg.Done()
			count.Add(1)
		})
	}
	wg.Wait()
	p.Close()
	assert.Equal(t, int64(100), count.Load())
}

func TestPoolExecutorCloseDrains(t *testing.T) {
	p := NewPoolExecutor(1, 32)
	var count atomic.Int64
	for range 10 {
		p.Go(func() { count.Add(1) })
	}
	p.Close()
	assert.Equal(t, int64(10), count.Load())

	// closing twice and submitting after close are both harmless
	assert.NotPanics(t, func() {
		p.Close()
		p.Go(func() { count.Add(1) })
	})
	assert.Equal(t, int64(10), count.Load())
}

func TestPoolExecutorDefaultWorkerCount(t *testing.T) {
	p := NewPoolExecutor(0, -1)
	var wg sync.WaitGroup
	wg.Add(1)
	p.Go(func() { wg.Done() })
	wg.Wait()
	p.Close()
}

func TestHubWithPoolExecutor(t *testing.T) {
	p := NewPoolExecutor(2, 8)
	defer p.Close()
	h := New(WithExecutor(p))
	key := Key[fooEvent]()
	s := &recorder{}
	h.Add(s, key)

	var wg sync.WaitGroup
	wg.Add(1)
	require.True(t, h.Notify(key, func(sub any) {
		sub.(*recorder).bump()
		wg.Done()
	}))
	wg.Wait()
	assert.Equal(t, 1, s.count())
}
