package starlark

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestThreadPool_GetPut(t *testing.T) {
	pool := NewThreadPool(5)

	// Get a thread
	thread := pool.Get("test1")
	require.NotNil(t, thread, "Get returned nil")
	assert.Equal(t, "test1", thread.Name, "thread.Name")

	// Return it
	pool.Put(thread)
	assert.Equal(t, 1, pool.Size(), "pool size after put")

	// Get it again - should be reused
	thread2 := pool.Get("test2")
	assert.Equal(t, 0, pool.Size(), "pool size after get")
	assert.Equal(t, "test2", thread2.Name, "thread.Name after reuse")
}

func TestThreadPool_MaxSize(t *testing.T) {
	pool := NewThreadPool(2)

	// Create and return 3 threads
	threads := make([]*starlark.Thread, 3)
	for i := 0; i < 3; i++ {
		threads[i] = pool.Get("test")
	}

	for _, thread := range threads {
		pool.Put(thread)
	}

	// Pool should only have 2 threads (max size)
	assert.Equal(t, 2, pool.Size(), "pool size should be max (2)")
}

func TestThreadPool_DefaultSize(t *testing.T) {
	pool := NewThreadPool(0) // Should use default

	// Should be able to store at least some threads
	for i := 0; i < 5; i++ {
		pool.Put(pool.Get("test"))
	}

	assert.NotEqual(t, 0, pool.Size(), "pool size should not be 0 after puts")
}

func TestThreadPool_Concurrent(t *testing.T) {
	pool := NewThreadPool(10)
	var wg sync.WaitGroup

	// Concurrently get and put threads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			thread := pool.Get("concurrent")
			// Simulate some work
			pool.Put(thread)
		}(i)
	}

	wg.Wait()

	// Pool should have some threads returned
	assert.LessOrEqual(t, pool.Size(), 10, "pool size should not exceed max of 10")
}

func TestThreadPool_StepLimit(t *testing.T) {
	pool := NewThreadPool(2)
	thread := pool.Get("loop")

	_, err := starlark.Eval(thread, "loop", "[x for x in range(10000000)]", nil) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	require.Error(t, err, "runaway evaluation is cancelled")

	pool.Put(thread)
	assert.Equal(t, 0, pool.Size(), "worn thread is not reused")
}
