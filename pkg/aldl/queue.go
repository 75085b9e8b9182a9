package aldl

import "sync/atomic"

// SymbolQueue is a lock-free single-producer/single-consumer ring of
// symbols. Push must only be called from the producer goroutine and
// Pop/Drain only from the consumer goroutine.
type SymbolQueue struct {
	buf  []Symbol
	mask uint64

	head atomic.Uint64 // next write, owned by producer
	tail atomic.Uint64 // next read, owned by consumer

	overruns atomic.Uint64
	readyCh  chan struct{}
}

// NewSymbolQueue creates a queue holding at least size symbols.
func NewSymbolQueue(size int) *SymbolQueue {
	n := 1
	for n < size {
		n <<= 1
	}
	return &SymbolQueue{
		buf:     make([]Symbol, n),
		mask:    uint64(n - 1),
		readyCh: make(chan struct{}, 1),
	}
}

// Cap returns the capacity.
func (q *SymbolQueue) Cap() int {
	return len(q.buf)
}

// Len returns the number of queued symbols.
func (q *SymbolQueue) Len() int {
	return int(q.head.Load() - q.tail.Load())
}

// Push appends a symbol. It returns false and counts an overrun when
// the queue is full.
func (q *SymbolQueue) Push(s Symbol) bool {
	head := q.head.Load()
	if head-q.tail.Load() >= uint64(len(q.buf)) {
		q.overruns.Add(1)
		return false
	}
	q.buf[head&q.mask] = s
	q.head.Store(head + 1)
	select {
	case q.readyCh <- struct{}{}:
	default:
	}
	return true
}

// Pop removes the oldest symbol.
func (q *SymbolQueue) Pop() (Symbol, bool) {
	tail := q.tail.Load()
	if tail == q.head.Load() {
		return Ambiguous, false
	}
	s := q.buf[tail&q.mask]
	q.tail.Store(tail + 1)
	return s, true
}

// Drain discards all queued symbols and returns how many were dropped.
func (q *SymbolQueue) Drain() int {
	head, tail := q.head.Load(), q.tail.Load()
	q.tail.Store(head)
	select {
	case <-q.readyCh:
	default:
	}
	return int(head - tail)
}

// Ready is signalled after a Push. A signal may be stale so the
// consumer must Pop until empty after each receive.
func (q *SymbolQueue) Ready() <-chan struct{} {
	return q.readyCh
}

// Overruns returns the number of symbols dropped by Push.
func (q *SymbolQueue) Overruns() uint64 {
	return q.overruns.Load()
}
