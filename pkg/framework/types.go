package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
// Runnables never touch loop-owned state directly, they post
// messages through the LoopControl found in their context.
type Runnable interface {
	Run(context.Context) error
}

// Message is anything posted to the loop for controllers to consume.
type Message interface{}

// Controller defines the logic executed in one stage of a poll cycle.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext provides the context of the current poll cycle.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// Cycle is the sequence number of the current poll cycle.
	Cycle() uint64
	// Stage is the stage currently being executed.
	Stage() int
	// Messages retrieves messages collected when this cycle started.
	Messages() MessageStore

	LoopControl
}

// Stages of a poll cycle, executed in order. Controllers of
// the same stage run in registration order.
const (
	// StageService handles host traffic (protocol lines, reloads).
	StageService int = iota
	// StageScan scans physical inputs and dispatches actions.
	StageScan
	// StageRender refreshes outputs such as the display.
	StageRender

	// StageCount is the total number of stages.
	StageCount
)

// LoopControl exposes access to the poll loop. It is safe to use
// from any goroutine.
type LoopControl interface {
	// PostMessage enqueues the message for the next cycle.
	PostMessage(Message)
	// TriggerNext schedules the next cycle to run immediately.
	TriggerNext()
}

// MessageStore provides access to the messages of a cycle.
type MessageStore interface {
	// ProcessMessages visits messages in arrival order.
	ProcessMessages(MessageProcessor)
	// Len returns the number of messages not yet consumed.
	Len() int
}

// MessageProcessor consumes messages. It returns true when the
// message is taken and must not be offered to later controllers.
type MessageProcessor interface {
	ProcessMessage(Message) bool
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(Message) bool

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(msg Message) bool {
	return f(msg)
}
