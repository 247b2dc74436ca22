package work

import (
	"context"
	"errors"
	"fmt"

	"github.com/Daskott/scamguard/colors"
	"github.com/Daskott/scamguard/server/logger"
	"github.com/google/uuid"
)

var (
	ErrDuplicateHandler = errors.New("handler with provided name already mapped")
	ErrUnknownHandler   = errors.New("no handler mapped for job")

	logg = logger.NewLogger()
)

type JobParams struct {
	Name    string
	Handler string
	Args    map[string]interface{}
}

// Handler runs a job. The returned value is handed back to whoever is
// waiting on the job, if anyone.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

type JobResult struct {
	Job   JobParams
	Value interface{}
	Err   error
}

type task struct {
	ctx  context.Context
	job  JobParams
	done chan<- JobResult
}

type worker struct {
	id       string
	pool     *WorkerPool
	stopChan chan struct{}
}

func newWorker(pool *WorkerPool) *worker {
	return &worker{
		id:       makeIdentifier(),
		pool:     pool,
		stopChan: make(chan struct{}),
	}
}

// start starts the worker loop that pulls tasks from the pool queue & process them
func (w *worker) start() {
	go w.loop()
}

func (w *worker) stop() {
	w.stopChan <- struct{}{}
}

func (w *worker) loop() {
	w.logInfof("started")
	for {
		select {
		case <-w.stopChan:
			w.logInfof("stopped")
			return
		case t := <-w.pool.queue:
			w.pool.process(t, w)
		}
	}
}

func (w *worker) logInfof(template string, args ...interface{}) {
	prefix := colors.Yellow(fmt.Sprintf("[worker %v] ", w.id))
	logg.Infof(prefix+template, args...)
}

func (w *worker) logErrorf(template string, args ...interface{}) {
	prefix := colors.Red(fmt.Sprintf("[worker %v] ", w.id))
	logg.Errorf(prefix+template, args...)
}

func makeIdentifier() string {
	return uuid.NewString()[:8]
}
