package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/aatumaykin/tubedrop/internal/logger"
)

// WorkerPool manages a pool of goroutine workers for concurrent task execution.
type WorkerPool struct {
	taskQueue chan Task
	workers   int
	wg        *taskWaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *logger.Logger
	metrics   *PoolMetrics

	mu      sync.RWMutex // guards stopped against concurrent Submit
	stopped bool
	started bool
}

// NewPool creates a new worker pool with the specified configuration.
func NewPool(workers int, bufferSize int, log *logger.Logger) *WorkerPool {
	if workers <= 0 {
		workers = DefaultPoolSize
	}
	if bufferSize < 0 {
		bufferSize = DefaultQueueSize
	}
	if log == nil {
		log = logger.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		taskQueue: make(chan Task, bufferSize),
		workers:   workers,
		wg:        newTaskWaitGroup(),
		ctx:       ctx,
		cancel:    cancel,
		logger:    log.With(logger.Field{Key: "component", Value: "workers"}),
		metrics:   &PoolMetrics{},
	}
}

// Start initializes and starts all worker goroutines. Subsequent calls do nothing.
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	p.logger.Info("starting worker pool",
		logger.Field{Key: "workers", Value: p.workers},
		logger.Field{Key: "buffer_size", Value: cap(p.taskQueue)})

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues a task and returns a channel that receives exactly one Result.
// It blocks while the queue is full, until ctx is done or the pool stops.
func (p *WorkerPool) Submit(ctx context.Context, task Task) (<-chan Result, error) {
	if task.Run == nil {
		return nil, fmt.Errorf("task %s has no run function", task.ID)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.incrementRejected()
		return nil, ErrPoolStopped
	}

	task.reply = make(chan Result, 1)

	select {
	case p.taskQueue <- task:
		p.incrementSubmitted()
		p.logger.DebugCtx(ctx, "task submitted",
			logger.Field{Key: "task_id", Value: task.ID},
			logger.Field{Key: "task_type", Value: task.Type},
			logger.Field{Key: "queued", Value: len(p.taskQueue)})
		return task.reply, nil
	case <-ctx.Done():
		p.incrementRejected()
		return nil, ctx.Err()
	case <-p.ctx.Done():
		p.incrementRejected()
		return nil, ErrPoolStopped
	}
}

// Stop shuts down the worker pool. In-flight tasks run to completion;
// tasks still queued receive ErrPoolStopped.
func (p *WorkerPool) Stop() {
	p.cancel()

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.wg.Wait()

	drained := 0
drain:
	for {
		select {
		case task := <-p.taskQueue:
			task.reply <- Result{TaskID: task.ID, Type: task.Type, Error: ErrPoolStopped}
			drained++
		default:
			break drain
		}
	}

	metrics := p.Metrics()
	p.logger.Info("worker pool stopped",
		logger.Field{Key: "tasks_submitted", Value: metrics.TasksSubmitted},
		logger.Field{Key: "tasks_completed", Value: metrics.TasksCompleted},
		logger.Field{Key: "tasks_failed", Value: metrics.TasksFailed},
		logger.Field{Key: "tasks_drained", Value: drained})
}

// WorkerCount returns the number of workers.
func (p *WorkerPool) WorkerCount() int {
	return p.workers
}

// QueueSize returns the current number of tasks waiting in the queue.
func (p *WorkerPool) QueueSize() int {
	return len(p.taskQueue)
}

// QueueCapacity returns the queue buffer size.
func (p *WorkerPool) QueueCapacity() int {
	return cap(p.taskQueue)
}

// taskWaitGroup pairs the worker WaitGroup with the lock guarding metrics.
type taskWaitGroup struct {
	sync.RWMutex
	wg sync.WaitGroup
}

func newTaskWaitGroup() *taskWaitGroup {
	return &taskWaitGroup{}
}

func (twg *taskWaitGroup) Add(delta int) {
	twg.wg.Add(delta)
}

func (twg *taskWaitGroup) Done() {
	twg.wg.Done()
}

func (twg *taskWaitGroup) Wait() {
	twg.wg.Wait()
}
