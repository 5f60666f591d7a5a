package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the poll period used when Loop.Interval is zero.
const DefaultInterval = 5 * time.Millisecond

// Loop is a single-threaded cooperative poll loop. Every cycle runs
// all stages in order; nothing else mutates controller state.
type Loop struct {
	Interval time.Duration
	// Clock overrides time.Now, mostly for tests.
	Clock func() time.Time

	stages  [StageCount][]Controller
	runners []Runnable
	cycle   uint64

	lock     sync.Mutex
	pending  []Message
	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom gets LoopControl from the context given to runnables.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to a stage.
func (l *Loop) AddController(stage int, ctls ...Controller) *Loop {
	l.stages[stage] = append(l.stages[stage], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds background runnables started by Run.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.pending = append(l.pending, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	l.lock.Lock()
	ch := l.wakeUpCh
	l.lock.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Run starts the runnables and polls until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.lock.Lock()
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	l.lock.Unlock()

	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, LoopControl(l)))
	runner.Go(l.runners...)
	defer func() {
		if err := runner.Wait(); err != nil {
			glog.Warningf("runners stopped: %v", err)
		}
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.RunCycle(ctx)
		case <-l.wakeUpCh:
			l.RunCycle(ctx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail(ctx context.Context) {
	if err := l.Run(ctx); err != nil && err != context.Canceled {
		glog.Exitf("loop: %v", err)
	}
}

// RunCycle executes exactly one poll cycle.
func (l *Loop) RunCycle(ctx context.Context) {
	c := &cycle{loop: l, ctx: ctx, time: l.now()}
	l.lock.Lock()
	c.messages, l.pending = l.pending, nil
	l.cycle++
	c.seq = l.cycle
	l.lock.Unlock()

	for stage := 0; stage < StageCount; stage++ {
		c.stage = stage
		for _, ctl := range l.stages[stage] {
			if err := ctl.Control(c); err != nil {
				glog.Errorf("controller error (stage %d): %v", stage, err)
			}
		}
	}
	if n := len(c.messages); n > 0 && glog.V(2) {
		glog.Infof("cycle %d: %d message(s) not consumed", c.seq, n)
	}
}

func (l *Loop) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

type cycle struct {
	loop     *Loop
	ctx      context.Context
	time     time.Time
	seq      uint64
	stage    int
	messages []Message
}

func (c *cycle) Context() context.Context { return c.ctx }
func (c *cycle) Time() time.Time          { return c.time }
func (c *cycle) Cycle() uint64            { return c.seq }
func (c *cycle) Stage() int               { return c.stage }
func (c *cycle) Messages() MessageStore   { return c }
func (c *cycle) PostMessage(msg Message)  { c.loop.PostMessage(msg) }
func (c *cycle) TriggerNext()             { c.loop.TriggerNext() }
func (c *cycle) Len() int                 { return len(c.messages) }

func (c *cycle) ProcessMessages(proc MessageProcessor) {
	remains := c.messages[:0]
	for _, msg := range c.messages {
		if !proc.ProcessMessage(msg) {
			remains = append(remains, msg)
		}
	}
	for i := len(remains); i < len(c.messages); i++ {
		c.messages[i] = nil
	}
	c.messages = remains
}
