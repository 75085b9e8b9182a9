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
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Message is anything posted into a Loop between iterations.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller runs once per loop iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// ControlContext provides the context of current control
// iteration.
type ControlContext interface {
	// Context retrieves context.Context.
	Context() context.Context
	// Time is when this iteration started.
	Time() time.Time
	// PriorityLevel gets the current priority level.
	PriorityLevel() int
	// Messages retrieves all messages collected when
	// this iteration starts.
	Messages() MessageStore

	LoopControl
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 16

// Predefined priority levels, lower runs first.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	// PrLvCapture is for controllers turning captures into messages.
	PrLvCapture = PrLvHigh
	// PrLvCompute is for controllers deriving values from messages.
	PrLvCompute = PrLvNormal
	// PrLvEmit is for controllers forwarding values to outputs.
	PrLvEmit = PrLvLow
	// PrLvPostProc is for housekeeping after everything else.
	PrLvPostProc = PrLvIdle - 1
)

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules the next iteration to be executed
	// without waiting for the interval.
	TriggerNext()
}

// MessageStore provides read/write access to a list of messages.
type MessageStore interface {
	// ProcessMessages uses a processor to process all messages.
	ProcessMessages(MessageProcessor)
	// AddMessages appends messages for controllers at later levels.
	AddMessages(msgs ...Message)
}

// MessageProcessor is used by MessageStore to process messages.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext provides context for current message.
type MessageProcessingContext interface {
	// CurrentMessage gets the current message being processed.
	CurrentMessage() Message
	// MessageTaken removes the message so later controllers
	// in this iteration won't see it.
	MessageTaken()
	// StopProcessing indicates no need to examine further messages.
	StopProcessing()
}

// EachMessage calls fn for every message in the store, leaving
// them in place for other controllers.
func EachMessage(cc ControlContext, fn func(Message)) {
	cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
		fn(mc.CurrentMessage())
	}))
}
