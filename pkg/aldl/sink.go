package aldl

import "sync"

// Sink receives fuel rate samples.
type Sink interface {
	EmitSample(Sample)
}

// SinkFunc is the func form of Sink.
type SinkFunc func(Sample)

// EmitSample implements Sink.
func (f SinkFunc) EmitSample(s Sample) {
	f(s)
}

// MessageSink is optionally implemented by a Sink to also receive every
// decoded message.
type MessageSink interface {
	EmitMessage(Message)
}

// MultiSink fans out to multiple sinks.
type MultiSink []Sink

// EmitSample implements Sink.
func (m MultiSink) EmitSample(s Sample) {
	for _, sink := range m {
		sink.EmitSample(s)
	}
}

// EmitMessage implements MessageSink.
func (m MultiSink) EmitMessage(msg Message) {
	for _, sink := range m {
		if ms, ok := sink.(MessageSink); ok {
			ms.EmitMessage(msg)
		}
	}
}

// LastMessage is the single-slot retained message. It has one writer,
// the scheduler, and any number of readers.
type LastMessage struct {
	lock sync.RWMutex
	msg  Message
	ok   bool
}

// Load returns the retained message, if any.
func (c *LastMessage) Load() (Message, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.msg, c.ok
}

// Swap stores msg and returns the previous one.
func (c *LastMessage) Swap(msg Message) (prev Message, ok bool) {
	c.lock.Lock()
	prev, ok = c.msg, c.ok
	c.msg, c.ok = msg, true
	c.lock.Unlock()
	return
}
