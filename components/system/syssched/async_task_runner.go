package syssched

import (
	"context"
	"time"
)

// AsyncTaskRunnerParams provides various configuration options for AsyncTaskRunner.
type AsyncTaskRunnerParams struct {
	// UpdateInterval - how often the task should be run.
	UpdateInterval time.Duration

	// ExitOnSuccess - stop the task processing after the first succeeded run.
	ExitOnSuccess bool
}

// AsyncTaskRunner periodically runs a task in the standalone goroutine.
type AsyncTaskRunner struct {
	ctx     context.Context
	doneCh  chan struct{}
	task    Task
	handler ErrorHandler
	params  AsyncTaskRunnerParams
	started bool
}

// NewAsyncTaskRunner is an initialization of AsyncTaskRunner.
//
// Parameters:
//   - ctx - parent context.
//   - task - a task to be run periodically.
//   - handler - an optional handler for task errors.
//   - params - various configuration options.
func NewAsyncTaskRunner(
	ctx context.Context,
	task Task,
	handler ErrorHandler,
	params AsyncTaskRunnerParams,
) *AsyncTaskRunner {
	return &AsyncTaskRunner{
		ctx:     ctx,
		doneCh:  make(chan struct{}),
		task:    task,
		handler: handler,
		params:  params,
	}
}

// Start begins asynchronous task processing.
func (r *AsyncTaskRunner) Start() error {
	r.started = true

	go r.run()

	return nil
}

// Close waits until the asynchronous task processing is finished.
//
// Remarks:
//   - Start() and Close() should be called from the same goroutine.
func (r *AsyncTaskRunner) Close() error {
	if !r.started {
		return nil
	}

	<-r.doneCh

	return nil
}

func (r *AsyncTaskRunner) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.params.UpdateInterval)
	defer ticker.Stop()

	if err := r.runTask(); err == nil && r.params.ExitOnSuccess {
		return
	}

	for {
		select {
		case <-ticker.C:
			if err := r.runTask(); err == nil && r.params.ExitOnSuccess {
				return
			}

		case <-r.ctx.Done():
			return
		}
	}
}

func (r *AsyncTaskRunner) runTask() error {
	err := r.task.Run()
	if err != nil && r.handler != nil {
		r.handler.HandleError(err)
	}

	return err
}
