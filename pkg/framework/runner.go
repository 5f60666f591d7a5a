package framework

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name used in logs.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Runner starts Runnables on a shared context and collects their
// errors.
type Runner struct {
	Context context.Context

	count int
	wg    sync.WaitGroup
	lock  sync.Mutex
	errs  AggregatedError
}

// NewRunner creates a runner with a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with the specified context.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{Context: ctx}
}

// HandleSignals cancels the context on SIGINT/SIGTERM. The process
// exits on a second signal.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	r.Context = ctx
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		glog.Infof("%v: stopping", sig)
		cancel()
		sig = <-sigCh
		glog.Exitf("%v: stopped while stopping", sig)
	}()
	return r
}

// Go spawns Runnables with the runner context.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := "#" + strconv.Itoa(r.count)
		if named, ok := runnable.(Named); ok {
			name = named.Name()
		}
		r.count++
		r.wg.Add(1)
		go r.run(name, runnable)
	}
	return r
}

func (r *Runner) run(name string, runnable Runnable) {
	defer r.wg.Done()
	if glog.V(4) {
		glog.Infof("runnable %s started", name)
	}
	err := runnable.Run(r.Context)
	if glog.V(4) {
		glog.Infof("runnable %s stopped: %v", name, err)
	}
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	r.lock.Lock()
	r.errs.Add(err)
	r.lock.Unlock()
}

// Wait waits until all Runnables stop and aggregates their errors.
// Context cancellation is not reported as an error.
func (r *Runner) Wait() error {
	r.wg.Wait()
	r.lock.Lock()
	defer r.lock.Unlock()
	errs := r.errs
	r.errs = AggregatedError{}
	return errs.Aggregate()
}
