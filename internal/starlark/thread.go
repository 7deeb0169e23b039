package starlark

import (
	"sync"

	"go.starlark.net/starlark"
)

// maxSteps bounds a single compute or check call.
const maxSteps = 1_000_000

// ThreadPool manages a pool of Starlark threads. Loaded rules may be
// applied from several goroutines at once and a thread must not be shared,
// so every call borrows one.
type ThreadPool struct {
	mu      sync.Mutex
	threads []*starlark.Thread
	maxSize int
}

// NewThreadPool creates a new thread pool with the specified maximum size.
func NewThreadPool(maxSize int) *ThreadPool {
	if maxSize <= 0 {
		maxSize = 10 // default pool size
	}
	return &ThreadPool{
		threads: make([]*starlark.Thread, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get retrieves a thread from the pool or creates a new one.
// The thread name is used for error reporting.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) > 0 {
		thread := p.threads[len(p.threads)-1]
		p.threads = p.threads[:len(p.threads)-1]
		thread.Name = name
		return thread
	}

	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, _ string) {
			// rule functions have no output
		},
	}
	thread.SetMaxExecutionSteps(maxSteps)
	return thread
}

// Put returns a thread to the pool for reuse.
// If the pool is full, the thread is discarded.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if thread.ExecutionSteps() > maxSteps/2 {
		// step counter is cumulative; let a worn thread go
		return
	}
	if len(p.threads) < p.maxSize {
		thread.Name = ""
		p.threads = append(p.threads, thread)
	}
}

// Size returns the current number of threads in the pool.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}
