package daemon

import (
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/aldl.go/pkg/framework"
)

// Publisher is a telemetry output.
type Publisher interface {
	Publish(fx.Message) error
}

// PublishFunc is the func form of Publisher.
type PublishFunc func(fx.Message) error

// Publish implements Publisher.
func (f PublishFunc) Publish(msg fx.Message) error {
	return f(msg)
}

// Output is a named Publisher.
type Output struct {
	Name string
	Publisher
}

// Emitter is a controller forwarding every message of an iteration
// to all outputs.
type Emitter struct {
	Outputs []Output
}

// Add appends an output.
func (e *Emitter) Add(name string, p Publisher) *Emitter {
	e.Outputs = append(e.Outputs, Output{Name: name, Publisher: p})
	return e
}

// AddToLoop implements LoopAdder.
func (e *Emitter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvEmit, e)
}

// Control implements Controller. A failing output doesn't prevent
// others from receiving the message.
func (e *Emitter) Control(cc fx.ControlContext) error {
	var errs fx.AggregatedError
	fx.EachMessage(cc, func(msg fx.Message) {
		for _, out := range e.Outputs {
			if err := out.Publish(msg); err != nil {
				glog.V(1).Infof("%s: %v", out.Name, err)
				errs.Add(fmt.Errorf("%s: %w", out.Name, err))
			}
		}
	})
	return errs.Aggregate()
}
