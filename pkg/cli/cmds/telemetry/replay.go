package telemetry

import (
	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/stats"
)

// Replayed is the result of re-pairing recorded messages.
type Replayed struct {
	Samples    []aldl.Sample `json:"samples"`
	Summary    stats.Summary `json:"summary"`
	FuelUsedLb float64       `json:"fuel_used_lb"`
	Stats      aldl.Stats    `json:"stats"`
}

// Replay pairs recorded messages again under conf, e.g. after changing
// the plausibility limits, and summarizes the samples produced.
func Replay(conf *aldl.Config, messages []aldl.Message) *Replayed {
	res := &Replayed{}
	window := stats.NewWindow(len(messages))
	meter := stats.NewTripMeter(conf.MaxInterval)
	sched := aldl.NewScheduler(conf, nil, nil, aldl.MultiSink{
		aldl.SinkFunc(func(s aldl.Sample) { res.Samples = append(res.Samples, s) }),
		aldl.SinkFunc(window.Add),
		aldl.SinkFunc(func(s aldl.Sample) { meter.Add(s) }),
	})
	for _, m := range messages {
		sched.Accept(m)
	}
	res.Summary = window.Summary()
	res.FuelUsedLb = meter.FuelUsedLb
	res.Stats = sched.Stats()
	return res
}
