package work

import (
	"context"
	"fmt"

	"github.com/Daskott/scamguard/server/cron"
	"github.com/go-co-op/gocron"
)

const DEFAULT_CONCURRENCY = 4

type WorkerPoolAdapter struct {
	cronScheduler *gocron.Scheduler
	pool          *WorkerPool
}

func NewWorkerAdapter(timeZoneArg string, concurrency int) *WorkerPoolAdapter {
	return &WorkerPoolAdapter{
		cronScheduler: cron.NewCronScheduler(timeZoneArg),
		pool:          newWorkerPool(concurrency),
	}
}

// Start starts the cron scheduler & worker pool
func (adapter *WorkerPoolAdapter) Start() error {
	logg.Infof("Starting cron scheduler & worker pool of %v workers", adapter.pool.concurrency)
	adapter.cronScheduler.StartAsync()
	adapter.pool.start()

	return nil
}

// Stop stops the cron scheduler & worker pool
func (adapter *WorkerPoolAdapter) Stop() error {
	logg.Info("Stopping cron scheduler & worker pool")
	adapter.cronScheduler.Stop()
	adapter.pool.stop()

	return nil
}

// Register binds a name to a handler.
func (adapter *WorkerPoolAdapter) Register(name string, handler Handler) error {
	return adapter.pool.registerHandler(name, handler)
}

// Perform sends a new job to the queue, to be executed as soon as a worker is available.
// If the pool isn't running the job is executed right away on the calling goroutine.
func (adapter *WorkerPoolAdapter) Perform(job JobParams) error {
	if !adapter.pool.isStarted() {
		return adapter.pool.run(context.Background(), job).Err
	}

	err := adapter.pool.enqueue(context.Background(), job, nil)
	if err != nil {
		return fmt.Errorf("error enqueuing job: %v, %v", job.Name, err)
	}

	return nil
}

// PerformBatch runs every job in 'jobs' and returns the results in the order
// the jobs completed. At most 'concurrency' jobs run at once. If ctx is done
// before every job finishes, the results collected so far are returned;
// the remaining jobs still run to completion.
func (adapter *WorkerPoolAdapter) PerformBatch(ctx context.Context, jobs []JobParams) []JobResult {
	results := make([]JobResult, 0, len(jobs))

	if !adapter.pool.isStarted() {
		for _, job := range jobs {
			results = append(results, adapter.pool.run(ctx, job))
		}
		return results
	}

	done := make(chan JobResult, len(jobs))
	pending := 0
	for _, job := range jobs {
		if err := adapter.pool.enqueue(ctx, job, done); err != nil {
			results = append(results, JobResult{Job: job, Err: err})
			continue
		}
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case result := <-done:
			results = append(results, result)
		case <-ctx.Done():
			logg.Warnf("stopped waiting on %v job(s): %v", pending, ctx.Err())
			return results
		}
	}

	return results
}

// PeriodicallyPerform adds a job to the queue (to be executed)
// periodically, based on the 'cronExpression' expression provided
func (adapter *WorkerPoolAdapter) PeriodicallyPerform(cronExpression string, job JobParams) error {
	_, err := adapter.cronScheduler.Cron(cronExpression).Tag(job.Name).
		Do(
			func(job JobParams) {
				err := adapter.Perform(job)
				if err != nil {
					logg.Error(err)
				}
			},
			job,
		)
	return err
}

func (adapter *WorkerPoolAdapter) RemovePeriodicJob(jobName string) {
	adapter.cronScheduler.RemoveByTag(jobName)
}
