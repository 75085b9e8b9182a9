package main

import (
	"context"
	"flag"
	"log"
	"reflect"
	"sync"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	"github.com/robotalks/aldl.go/pkg/env"
	fx "github.com/robotalks/aldl.go/pkg/framework"
	"github.com/robotalks/aldl.go/pkg/stats"
	"github.com/robotalks/aldl.go/pkg/telemetry/hostlink"
	"github.com/robotalks/aldl.go/pkg/telemetry/mqtt"
)

var (
	deviceID   = "+"
	windowSize = 32
)

func init() {
	env.SetupFlags()
	flag.StringVar(&deviceID, "device", deviceID, "Device ID to monitor, + for all.")
	flag.IntVar(&windowSize, "window", windowSize, "Samples in the rolling summary.")
}

type monitor struct {
	lock   sync.Mutex
	window *stats.Window
}

func (m *monitor) fuel(source string, lbPerHour float64, sample string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.window.Add(aldl.Sample{LbPerHour: lbPerHour})
	log.Printf("%s: %s | %s", source, sample, m.window.Summary())
}

func (m *monitor) message(source string, msg fx.Message) {
	if rate, ok := msg.(*msgs.FuelRate); ok {
		m.fuel(source, rate.LbPerHour, rate.Sample().String())
		return
	}
	log.Printf("%s: [%s] %s", source,
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		msg.(msgs.SerializableMessage).Serializable().String())
}

// watchHost reads the host line protocol from a serial port.
func (m *monitor) watchHost(ctx context.Context, conf *env.Config) error {
	link, err := hostlink.Open(conf.HostPort, conf.HostBaud)
	if err != nil {
		return err
	}
	defer link.Close()
	return link.ReadLines(ctx, func(line *hostlink.Line, err error) {
		if err != nil {
			log.Printf("%s: %v", conf.HostPort, err)
			return
		}
		switch line.Kind {
		case hostlink.KindFuel:
			m.fuel(conf.HostPort, line.Fuel, hostlink.FormatFuel(line.Fuel))
		case hostlink.KindECUData:
			log.Printf("%s: %s", conf.HostPort, hostlink.FormatECUData(line.ECU))
		case hostlink.KindECURaw:
			log.Printf("%s: %s", conf.HostPort, hostlink.FormatECURaw(line.Raw))
		case hostlink.KindReady:
			log.Printf("%s: ready", conf.HostPort)
		case hostlink.KindHeartbeat:
			log.Printf("%s: heartbeat", conf.HostPort)
		}
	})
}

// watchMQTT subscribes telemetry and presence from the broker.
func (m *monitor) watchMQTT(ctx context.Context, conf *env.Config) error {
	q, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL)
	if err != nil {
		return err
	}
	mqtt.SubscribeMeta(q, func(id string, meta *mqtt.Meta) {
		if meta == nil {
			log.Printf("%s: offline", id)
			return
		}
		log.Printf("%s: online since %s", id, meta.Started)
	})
	mqtt.SubscribeTelemetry(q, deviceID, m.message)
	if err := q.Connect(); err != nil {
		return err
	}
	defer q.Close()
	<-ctx.Done()
	return ctx.Err()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := env.NewConfig()
	m := &monitor{window: stats.NewWindow(windowSize)}
	runner := fx.NewRunner().HandleSignals()
	if conf.HostPort != "" {
		runner.Go(fx.NamedRun("host", fx.RunFunc(func(ctx context.Context) error {
			return m.watchHost(ctx, conf)
		})))
	} else {
		runner.Go(fx.NamedRun("mqtt", fx.RunFunc(func(ctx context.Context) error {
			return m.watchMQTT(ctx, conf)
		})))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
