// Package worker runs jobs on a fixed set of goroutines fed by a bounded
// queue. Callers hand a job over and get its result back as a message; they
// never share memory with the job while it runs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrClosed  = errors.New("worker pool is closed")
	ErrCrashed = errors.New("worker crashed")
)

type Job func(ctx context.Context) (any, error)

type Result struct {
	Value any
	Err   error
}

type task struct {
	ctx  context.Context
	job  Job
	done chan<- Result
}

type Pool struct {
	tasks  chan task
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	log    logrus.FieldLogger
}

func NewPool(workers, queueSize int, log logrus.FieldLogger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		tasks: make(chan task, queueSize),
		log:   log.WithField("component", "worker_pool"),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
	return p
}

// Submit queues job and returns the channel its single Result is delivered on.
// It blocks while the queue is full, until ctx is done.
func (p *Pool) Submit(ctx context.Context, job Job) (<-chan Result, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	done := make(chan Result, 1)
	select {
	case p.tasks <- task{ctx: ctx, job: job, done: done}:
		return done, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop rejects new jobs, lets the workers finish what is queued and waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	for t := range p.tasks {
		t.done <- p.run(id, t)
		close(t.done)
	}
}

func (p *Pool) run(id int, t task) (res Result) {
	if err := t.ctx.Err(); err != nil {
		return Result{Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.WithFields(logrus.Fields{
				"worker": id,
				"panic":  r,
				"stack":  string(debug.Stack()),
			}).Error("job panicked")
			res = Result{Err: fmt.Errorf("%w: %v", ErrCrashed, r)}
		}
	}()

	v, err := t.job(t.ctx)
	return Result{Value: v, Err: err}
}
