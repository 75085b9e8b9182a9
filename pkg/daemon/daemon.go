package daemon

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/env"
	fx "github.com/robotalks/aldl.go/pkg/framework"
	"github.com/robotalks/aldl.go/pkg/gpio"
	"github.com/robotalks/aldl.go/pkg/sim"
	"github.com/robotalks/aldl.go/pkg/store"
	"github.com/robotalks/aldl.go/pkg/telemetry/hostlink"
	"github.com/robotalks/aldl.go/pkg/telemetry/mqtt"
	"github.com/robotalks/aldl.go/pkg/telemetry/websocket"
)

// Daemon is the assembled decoder.
type Daemon struct {
	Loop      *fx.Loop
	Sampler   *aldl.Sampler
	Scheduler *aldl.Scheduler
	Heartbeat *Heartbeat
	Emitter   *Emitter

	closers []io.Closer
}

// New assembles the pipeline. The pin comes from GPIO unless simulation
// is enabled in envConf, outputs with empty endpoints are disabled.
func New(conf *aldl.Config, envConf *env.Config, ecuConf *sim.ECUConfig) (*Daemon, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	d := &Daemon{Loop: fx.NewLoop(), Emitter: &Emitter{}}
	assembled := false
	defer func() {
		if !assembled {
			d.Close()
		}
	}()

	var pin aldl.Pin
	if envConf.Simulate {
		glog.Infof("simulating ECU at %.2f lb/hr", ecuConf.FuelFlow)
		pin = sim.NewECU(*ecuConf, conf, aldl.RealClock{})
	} else {
		line, err := gpio.Open(envConf.Pin, envConf.PinInverted)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, line)
		pin = line
	}

	d.Sampler = aldl.NewSampler(conf, pin, aldl.RealClock{})
	d.Scheduler = aldl.NewScheduler(conf, d.Sampler, aldl.RealClock{}, &Bridge{Loop: d.Loop})
	d.Heartbeat = NewHeartbeat(envConf.HeartbeatInterval, d.Scheduler, conf.MaxInterval)
	d.Loop.AddRunnable(
		fx.NamedRun("sampler", d.Sampler),
		fx.NamedRun("scheduler", d.Scheduler),
	)

	if err := d.addOutputs(conf, envConf); err != nil {
		return nil, err
	}
	d.Loop.Add(d.Heartbeat, d.Emitter)
	assembled = true
	return d, nil
}

var openHost = hostlink.Open

func (d *Daemon) addOutputs(conf *aldl.Config, envConf *env.Config) error {
	if envConf.HostPort != "" {
		link, err := openHost(envConf.HostPort, envConf.HostBaud)
		if err != nil {
			return fmt.Errorf("host link %s: %w", envConf.HostPort, err)
		}
		link.Raw = envConf.HostRaw
		d.closers = append(d.closers, link)
		d.Emitter.Add("host", link)
		d.Loop.AddRunnable(fx.NamedRun("host", link))
	}
	if envConf.MQTTBrokerURL != "" {
		pub, err := mqtt.NewPublisher(envConf.MQTTBrokerURL, envConf.DeviceID)
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		d.closers = append(d.closers, pub)
		d.Emitter.Add("mqtt", pub)
		d.Loop.AddRunnable(fx.NamedRun("mqtt", pub))
	}
	if envConf.WebSocketAddr != "" {
		hub := websocket.NewHub(envConf.WebSocketAddr)
		d.Emitter.Add("websocket", hub)
		d.Loop.AddRunnable(fx.NamedRun("websocket", hub))
	}
	if envConf.DBPath != "" {
		db, err := store.Open(envConf.DBPath, conf.MaxInterval)
		if err != nil {
			return fmt.Errorf("store %s: %w", envConf.DBPath, err)
		}
		d.closers = append(d.closers, db)
		id, err := db.StartTrip(time.Now())
		if err != nil {
			return fmt.Errorf("store trip: %w", err)
		}
		glog.Infof("recording trip %d in %s", id, envConf.DBPath)
		d.Emitter.Add("store", db)
	}
	return nil
}

// Run runs the loop until the context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	return d.Loop.Run(ctx)
}

// Close releases the outputs and the pin.
func (d *Daemon) Close() error {
	var errs fx.AggregatedError
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs.Add(d.closers[i].Close())
	}
	d.closers = nil
	return errs.Aggregate()
}
