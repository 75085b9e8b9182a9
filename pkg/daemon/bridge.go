// Package daemon assembles the decoder pipeline with its telemetry
// outputs on a framework loop.
package daemon

import (
	"github.com/golang/glog"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	fx "github.com/robotalks/aldl.go/pkg/framework"
)

// Bridge implements aldl.Sink and aldl.MessageSink by posting into a
// loop, so outputs run on the loop rather than the scheduler.
type Bridge struct {
	Loop fx.LoopControl
}

// EmitSample implements aldl.Sink.
func (b *Bridge) EmitSample(s aldl.Sample) {
	glog.V(1).Infof("sample %s", s)
	b.Loop.PostMessage(msgs.FuelRateFrom(s))
	b.Loop.TriggerNext()
}

// EmitMessage implements aldl.MessageSink.
func (b *Bridge) EmitMessage(m aldl.Message) {
	b.Loop.PostMessage(msgs.ECUDataFrom(m))
	b.Loop.TriggerNext()
}
