// Package kernel executes Go code cells with the yaegi interpreter and
// drives their run state. Interpretation avoids compile round-trips and
// keeps execution inside the process; only stdlib symbols are exposed to
// cell code. The kernel is the external execution collaborator of the
// rendering core: the renderer observes it purely through run-state and
// output notifications on the cell.
package kernel

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"nerdbook/internal/config"
	"nerdbook/internal/logging"
	"nerdbook/internal/notebook"
)

// Kernel runs one cell at a time. Each execution gets a fresh interpreter,
// so cells do not share state across runs.
type Kernel struct {
	timeout  time.Duration
	sem      *semaphore.Weighted
	dispatch func(func())

	mu      sync.Mutex
	counter int
	running map[string]context.CancelFunc

	log *zap.Logger
}

// New creates a kernel with the configured execution timeout.
func New(cfg config.KernelConfig) *Kernel {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Kernel{
		timeout:  timeout,
		sem:      semaphore.NewWeighted(1),
		dispatch: func(fn func()) { fn() },
		running:  map[string]context.CancelFunc{},
		log:      logging.Get(logging.CategoryKernel),
	}
}

// SetDispatcher routes every cell state mutation through fn. Cell change
// notifications fire inside the mutation, so a UI passes a dispatcher that
// runs fn on its event loop and widget updates stay off the kernel
// goroutine. The default runs mutations inline. Set before the first
// Execute; not safe to swap while a cell is running.
func (k *Kernel) SetDispatcher(fn func(func())) {
	if fn != nil {
		k.dispatch = fn
	}
}

// Execute runs the cell's source and blocks until it finishes, is cancelled,
// or times out. Run state moves Idle/previous -> Running -> Success or
// Error; outputs are replaced by this run's output. Callers wanting
// asynchrony run Execute on their own goroutine and observe the cell.
func (k *Kernel) Execute(ctx context.Context, cell *notebook.Cell) error {
	if cell.Kind() != notebook.CodeCell {
		return fmt.Errorf("execute: cell %s is not a code cell", cell.ID())
	}
	if !cell.Metadata().Runnable {
		return fmt.Errorf("execute: cell %s is not runnable", cell.ID())
	}

	if err := k.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	defer k.sem.Release(1)

	runCtx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	k.mu.Lock()
	k.running[cell.ID()] = cancel
	k.mu.Unlock()
	defer func() {
		k.mu.Lock()
		delete(k.running, cell.ID())
		k.mu.Unlock()
	}()

	k.dispatch(func() {
		cell.ClearOutputs()
		cell.SetRunState(notebook.RunRunning)
	})

	var buf bytes.Buffer
	i := interp.New(interp.Options{Stdout: &buf, Stderr: &buf})
	if err := i.Use(stdlib.Symbols); err != nil {
		k.dispatch(func() { cell.SetRunState(notebook.RunError) })
		return fmt.Errorf("load stdlib: %w", err)
	}

	start := time.Now()
	res, err := i.EvalWithContext(runCtx, cell.Source())
	elapsed := time.Since(start)

	out := strings.TrimRight(buf.String(), "\n")

	if err != nil {
		k.dispatch(func() {
			if out != "" {
				cell.AppendOutput(notebook.Output{Text: out})
			}
			cell.AppendOutput(notebook.Output{Text: err.Error(), IsError: true})
			cell.SetRunState(notebook.RunError)
		})
		k.log.Warn("cell execution failed",
			zap.String("cell", cell.ID()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil
	}

	k.mu.Lock()
	k.counter++
	order := k.counter
	k.mu.Unlock()

	k.dispatch(func() {
		if out != "" {
			cell.AppendOutput(notebook.Output{Text: out})
		} else if res.IsValid() && res.CanInterface() {
			// Echo a trailing expression value when the cell printed
			// nothing, REPL style.
			cell.AppendOutput(notebook.Output{Text: fmt.Sprintf("%v", res.Interface())})
		}
		cell.SetExecutionOrder(order)
		cell.SetRunState(notebook.RunSuccess)
	})
	k.log.Debug("cell executed",
		zap.String("cell", cell.ID()),
		zap.Int("order", order),
		zap.Duration("elapsed", elapsed))
	return nil
}

// Cancel interrupts a running cell. Cancelling an idle cell is a no-op.
func (k *Kernel) Cancel(cell *notebook.Cell) {
	k.mu.Lock()
	cancel := k.running[cell.ID()]
	k.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ExecutionCount returns the number of successful executions.
func (k *Kernel) ExecutionCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.counter
}
