package workers

import (
	"fmt"
	"time"

	"github.com/aatumaykin/tubedrop/internal/logger"
)

// worker is the main worker goroutine that processes tasks from the queue.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.DebugCtx(p.ctx, "worker started",
		logger.Field{Key: "worker_id", Value: id})

	for {
		select {
		case <-p.ctx.Done():
			p.logger.DebugCtx(p.ctx, "worker stopping",
				logger.Field{Key: "worker_id", Value: id})
			return
		default:
		}

		select {
		case task := <-p.taskQueue:
			p.processTask(id, task)

		case <-p.ctx.Done():
			p.logger.DebugCtx(p.ctx, "worker stopping",
				logger.Field{Key: "worker_id", Value: id})
			return
		}
	}
}

// processTask handles a single task execution with metrics and error handling.
func (p *WorkerPool) processTask(workerID int, task Task) {
	startTime := time.Now()

	p.logger.DebugCtx(p.ctx, "processing task",
		logger.Field{Key: "worker_id", Value: workerID},
		logger.Field{Key: "task_id", Value: task.ID},
		logger.Field{Key: "task_type", Value: task.Type})

	result := p.execute(task)
	result.Duration = time.Since(startTime)

	if result.Error != nil {
		p.incrementFailed()
	} else {
		p.incrementCompleted()
	}
	p.recordDuration(result.Duration)

	// reply is buffered with room for exactly this result
	task.reply <- result

	p.logger.DebugCtx(p.ctx, "task processed",
		logger.Field{Key: "worker_id", Value: workerID},
		logger.Field{Key: "task_id", Value: task.ID},
		logger.Field{Key: "duration_ms", Value: result.Duration.Milliseconds()},
		logger.Field{Key: "failed", Value: result.Error != nil})
}

// execute runs the task with panic recovery. The task context is used when
// set; otherwise tasks run under the pool context.
func (p *WorkerPool) execute(task Task) (result Result) {
	result = Result{TaskID: task.ID, Type: task.Type}

	ctx := p.ctx
	if task.Context != nil {
		ctx = task.Context
	}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("panic during task execution: %v", r)
			p.logger.ErrorCtx(ctx, "task panic recovered", result.Error,
				logger.Field{Key: "task_id", Value: task.ID})
		}
	}()

	result.Value, result.Error = task.Run(ctx)
	return result
}
