package master

import (
	"context"
	"log"
	"time"

	"github.com/dimfu/mrwordrank/shared"
)

// Runner executes a single task on host and returns its output lines.
type Runner interface {
	Run(ctx context.Context, host string, t shared.Task) ([]string, error)
}

// Executor starts tasks concurrently on a Runner. A failing task never
// surfaces as an error to the caller; it just has no result.
type Executor struct {
	runner  Runner
	timeout time.Duration
	logger  *log.Logger
}

func NewExecutor(r Runner, timeout time.Duration, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{runner: r, timeout: timeout, logger: logger}
}

type Handle struct {
	Host string
	Task shared.Task

	done  chan struct{}
	lines []string
	err   error
}

// Submit starts t on host and returns immediately.
func (e *Executor) Submit(ctx context.Context, host string, t shared.Task) *Handle {
	h := &Handle{Host: host, Task: t, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		runCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		h.lines, h.err = e.runner.Run(runCtx, host, t)
		if h.err != nil {
			e.logger.Printf("[%v] %v failed: %v", host, t.Kind, h.err)
		}
	}()
	return h
}

// Await blocks until the task returned or ctx is done. ok is false when
// there is no result, either because the task failed or because the wait
// was cancelled; Err tells which.
func (h *Handle) Await(ctx context.Context) (lines []string, ok bool) {
	if !h.wait(ctx) {
		return nil, false
	}
	return h.lines, h.err == nil
}

// Err returns the task error, or the wait error if the task is still
// running when ctx is done.
func (h *Handle) Err(ctx context.Context) error {
	if !h.wait(ctx) {
		return ctx.Err()
	}
	return h.err
}

// wait reports whether the task completed. A completed task wins over a
// cancelled ctx.
func (h *Handle) wait(ctx context.Context) bool {
	select {
	case <-h.done:
		return true
	case <-ctx.Done():
		select {
		case <-h.done:
			return true
		default:
			return false
		}
	}
}

// AwaitAll is the batch barrier: it returns once every handle completed,
// or with ctx.Err() if ctx is done first.
func AwaitAll(ctx context.Context, handles []*Handle) error {
	for _, h := range handles {
		if !h.wait(ctx) {
			return ctx.Err()
		}
	}
	return nil
}
