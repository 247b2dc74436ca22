package work

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDuplicateHandler(t *testing.T) {
	workerPool := NewWorkerAdapter("UTC", 2)
	noop := func(ctx context.Context, args map[string]interface{}) (interface{}, error) { return nil, nil }

	assert.Nil(t, workerPool.Register("noop", noop))
	assert.ErrorIs(t, workerPool.Register("noop", noop), ErrDuplicateHandler)
}

func TestPerformBatchBoundedConcurrency(t *testing.T) {
	const concurrency = 3
	var running, maxRunning int32

	workerPool := NewWorkerAdapter("UTC", concurrency)
	workerPool.Register("sleep", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		current := atomic.AddInt32(&running, 1)
		for {
			seen := atomic.LoadInt32(&maxRunning)
			if current <= seen || atomic.CompareAndSwapInt32(&maxRunning, seen, current) {
				break
			}
		}

		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return args["id"], nil
	})

	workerPool.Start()
	defer workerPool.Stop()

	jobs := []JobParams{}
	for i := 0; i < 10; i++ {
		jobs = append(jobs, JobParams{Name: "sleep", Handler: "sleep", Args: map[string]interface{}{"id": i}})
	}

	results := workerPool.PerformBatch(context.Background(), jobs)

	require.Len(t, results, 10)
	seen := map[interface{}]bool{}
	for _, result := range results {
		assert.Nil(t, result.Err)
		seen[result.Value] = true
	}
	assert.Len(t, seen, 10, "every job should report its own result")
	assert.LessOrEqual(t, atomic.LoadInt32(&maxRunning), int32(concurrency))
}

func TestPerformBatchWithoutStartRunsSequentially(t *testing.T) {
	order := []int{}

	workerPool := NewWorkerAdapter("UTC", 4)
	workerPool.Register("record", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		order = append(order, args["id"].(int))
		return nil, nil
	})

	results := workerPool.PerformBatch(context.Background(), []JobParams{
		{Name: "a", Handler: "record", Args: map[string]interface{}{"id": 1}},
		{Name: "b", Handler: "record", Args: map[string]interface{}{"id": 2}},
		{Name: "c", Handler: "missing"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, []int{1, 2}, order)
	assert.ErrorIs(t, results[2].Err, ErrUnknownHandler)
}

func TestPerformBatchCallerStopsWaiting(t *testing.T) {
	var finished int32
	release := make(chan struct{})

	workerPool := NewWorkerAdapter("UTC", 1)
	workerPool.Register("block", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		<-release
		atomic.AddInt32(&finished, 1)
		return nil, nil
	})
	workerPool.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	results := workerPool.PerformBatch(ctx, []JobParams{{Name: "block", Handler: "block"}})
	assert.Empty(t, results)

	// The job itself is not abandoned
	close(release)
	workerPool.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
}

func TestPerformReportsErrors(t *testing.T) {
	workerPool := NewWorkerAdapter("UTC", 1)
	workerPool.Register("fail", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return nil, errors.New("nope")
	})

	assert.EqualError(t, workerPool.Perform(JobParams{Name: "fail", Handler: "fail"}), "nope")
	assert.NotNil(t, workerPool.Perform(JobParams{Name: "", Handler: "fail"}))
}

func TestPeriodicallyPerform(t *testing.T) {
	workerPool := NewWorkerAdapter("UTC", 1)
	workerPool.Register("tick", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return nil, nil
	})

	require.Nil(t, workerPool.PeriodicallyPerform("* * * * *", JobParams{Name: "tick", Handler: "tick"}))
	workerPool.RemovePeriodicJob("tick")
}
