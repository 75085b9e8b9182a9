package aldl

import (
	"sync"
	"time"
)

// fakeClock fires After at once, advancing to the deadline.
type fakeClock struct {
	lock sync.Mutex
	now  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.lock.Lock()
	c.now = c.now.Add(d)
	c.lock.Unlock()
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.Sleep(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

// windowBuilder lays out symbols in an all-Ambiguous capture window.
type windowBuilder struct {
	conf *Config
	syms []Symbol
}

func newWindow(conf *Config) *windowBuilder {
	return &windowBuilder{conf: conf, syms: make([]Symbol, conf.WindowSymbols)}
}

func (b *windowBuilder) frame(offset int, data ...byte) *windowBuilder {
	copy(b.syms[offset:], b.conf.EncodeFrame(data))
	return b
}

func (b *windowBuilder) set(index int, sym Symbol) *windowBuilder {
	b.syms[index] = sym
	return b
}

func (b *windowBuilder) build() []Symbol {
	return b.syms
}

// scriptedSource pushes one prepared window per Arm.
type scriptedSource struct {
	queue   *SymbolQueue
	windows [][]Symbol
	armed   int
	disarms int
}

func newScriptedSource(conf *Config, windows ...[]Symbol) *scriptedSource {
	return &scriptedSource{queue: NewSymbolQueue(conf.WindowSymbols), windows: windows}
}

func (s *scriptedSource) Arm(n int) {
	if s.armed < len(s.windows) {
		w := s.windows[s.armed]
		if len(w) > n {
			w = w[:n]
		}
		for _, sym := range w {
			s.queue.Push(sym)
		}
	}
	s.armed++
}

func (s *scriptedSource) Disarm()               { s.disarms++ }
func (s *scriptedSource) Symbols() *SymbolQueue { return s.queue }

type recordingSink struct {
	samples  []Sample
	messages []Message
}

func (s *recordingSink) EmitSample(sample Sample) { s.samples = append(s.samples, sample) }
func (s *recordingSink) EmitMessage(msg Message)  { s.messages = append(s.messages, msg) }
