package sim

import (
	"context"

	"github.com/robotalks/aldl.go/pkg/aldl"
)

// Drive decodes a simulated ECU on a virtual clock until ctx is done,
// emitting into sink. Virtual time advances as fast as the sampler
// polls, so minutes of line time take a fraction of a second.
func Drive(ctx context.Context, conf *aldl.Config, ecuConf ECUConfig, sink aldl.Sink) *aldl.Scheduler {
	clock := NewClock()
	ecu := NewECU(ecuConf, conf, clock)
	sampler := aldl.NewSampler(conf, ecu, clock)
	sched := aldl.NewScheduler(conf, sampler, clock, sink)

	done := make(chan struct{})
	go func() {
		sampler.Run(ctx)
		close(done)
	}()
	sched.Run(ctx)
	<-done
	return sched
}
