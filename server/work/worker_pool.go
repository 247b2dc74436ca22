package work

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// WorkerPool runs jobs on a fixed number of goroutines. Jobs are held in
// memory only; nothing survives a restart.
type WorkerPool struct {
	mu          sync.RWMutex
	handlers    map[string]Handler
	workers     []*worker
	queue       chan task
	concurrency int
	started     bool
}

func newWorkerPool(concurrency int) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}

	wp := &WorkerPool{
		handlers:    make(map[string]Handler),
		queue:       make(chan task, concurrency*16),
		concurrency: concurrency,
	}

	for i := 0; i < concurrency; i++ {
		wp.workers = append(wp.workers, newWorker(wp))
	}

	return wp
}

// registerHandler binds a name to a job handler for all workers in pool
func (wp *WorkerPool) registerHandler(name string, handler Handler) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if _, ok := wp.handlers[name]; ok {
		return ErrDuplicateHandler
	}

	wp.handlers[name] = handler
	return nil
}

func (wp *WorkerPool) handler(name string) (Handler, bool) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	handler, ok := wp.handlers[name]
	return handler, ok
}

func (wp *WorkerPool) isStarted() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	return wp.started
}

// enqueue adds a job to the queue. 'done' receives the job result when it's not nil.
func (wp *WorkerPool) enqueue(ctx context.Context, job JobParams, done chan<- JobResult) error {
	if strings.TrimSpace(job.Name) == "" || strings.TrimSpace(job.Handler) == "" {
		return fmt.Errorf("both a name & handler is required for a job")
	}

	if _, ok := wp.handler(job.Handler); !ok {
		return errors.Wrapf(ErrUnknownHandler, "%v", job.Handler)
	}

	select {
	case wp.queue <- task{ctx: ctx, job: job, done: done}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes 'job' on the calling goroutine
func (wp *WorkerPool) run(ctx context.Context, job JobParams) JobResult {
	handler, ok := wp.handler(job.Handler)
	if !ok {
		return JobResult{Job: job, Err: errors.Wrapf(ErrUnknownHandler, "%v", job.Handler)}
	}

	value, err := handler(ctx, job.Args)
	return JobResult{Job: job, Value: value, Err: err}
}

func (wp *WorkerPool) process(t task, w *worker) {
	result := wp.run(t.ctx, t.job)
	if result.Err != nil && w != nil {
		w.logErrorf("job %v failed: %v", t.job.Name, result.Err)
	}

	if t.done != nil {
		t.done <- result
	}
}

// start starts all workers in pool i.e the workers can start processing jobs
func (wp *WorkerPool) start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return
	}
	wp.started = true

	for _, worker := range wp.workers {
		worker.start()
	}
}

// stop stops all workers in pool, then runs whatever is still queued so no
// waiting caller is left hanging.
func (wp *WorkerPool) stop() {
	wp.mu.Lock()
	if !wp.started {
		wp.mu.Unlock()
		return
	}
	wp.started = false
	wp.mu.Unlock()

	wg := sync.WaitGroup{}
	for _, w := range wp.workers {
		wg.Add(1)
		go func(w *worker) {
			w.stop()
			wg.Done()
		}(w)
	}
	wg.Wait()

	for {
		select {
		case t := <-wp.queue:
			wp.process(t, nil)
		default:
			return
		}
	}
}
