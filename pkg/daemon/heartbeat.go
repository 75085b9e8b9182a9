package daemon

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	fx "github.com/robotalks/aldl.go/pkg/framework"
	"github.com/robotalks/aldl.go/pkg/stats"
)

// StatusSource reports the scheduler status.
type StatusSource interface {
	State() aldl.State
	Stats() aldl.Stats
}

// Heartbeat is a controller adding a heartbeat message to the iteration
// every Interval. It also accounts trip fuel from the samples passing by.
type Heartbeat struct {
	Interval time.Duration
	Source   StatusSource

	started time.Time
	last    time.Time
	meter   *stats.TripMeter
	window  *stats.Window
}

// NewHeartbeat creates a Heartbeat.
func NewHeartbeat(interval time.Duration, src StatusSource, maxInterval time.Duration) *Heartbeat {
	return &Heartbeat{
		Interval: interval,
		Source:   src,
		meter:    stats.NewTripMeter(maxInterval),
		window:   stats.NewWindow(64),
	}
}

// FuelUsedLb returns fuel used since start.
func (h *Heartbeat) FuelUsedLb() float64 {
	return h.meter.FuelUsedLb
}

// Summary summarizes recent samples.
func (h *Heartbeat) Summary() stats.Summary {
	return h.window.Summary()
}

// AddToLoop implements LoopAdder.
func (h *Heartbeat) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvCompute, h)
}

// Control implements Controller.
func (h *Heartbeat) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if h.started.IsZero() {
		h.started = now
	}
	fx.EachMessage(cc, func(msg fx.Message) {
		if rate, ok := msg.(*msgs.FuelRate); ok {
			h.meter.Add(rate.Sample())
			h.window.Add(rate.Sample())
		}
	})
	if h.Interval <= 0 || (!h.last.IsZero() && now.Sub(h.last) < h.Interval) {
		return nil
	}
	h.last = now
	hb := msgs.HeartbeatFrom(now.Sub(h.started).Milliseconds(), h.Source.State(), h.Source.Stats())
	hb.FuelUsedLb = h.meter.FuelUsedLb
	glog.V(1).Infof("heartbeat %s, %s", hb, h.window.Summary())
	cc.Messages().AddMessages(hb)
	return nil
}
