// Package telemetry provides shell commands reading recorded and live
// telemetry.
package telemetry

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	"github.com/robotalks/aldl.go/pkg/cli/sh"
	fx "github.com/robotalks/aldl.go/pkg/framework"
	"github.com/robotalks/aldl.go/pkg/stats"
	"github.com/robotalks/aldl.go/pkg/store"
	"github.com/robotalks/aldl.go/pkg/telemetry/mqtt"
)

// WatchTimeout bounds how long watch waits for samples.
var WatchTimeout = time.Minute

func openStore(c *ishell.Context) (*store.Store, bool) {
	envConf := sh.ShellFrom(c).Env
	if envConf.DBPath == "" {
		c.Err(fmt.Errorf("no database, set -db or ALDL_DB"))
		return nil, false
	}
	db, err := store.Open(envConf.DBPath, sh.ShellFrom(c).Config.MaxInterval)
	if err != nil {
		c.Err(err)
		return nil, false
	}
	return db, true
}

var (
	// WatchCmd prints live samples from MQTT with a rolling summary.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[DEVICE-ID|+] [SAMPLES]",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			deviceID, want := "+", 10
			if len(c.Args) > 0 {
				deviceID = c.Args[0]
			}
			if len(c.Args) > 1 {
				n, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(err)
					return
				}
				want = n
			}
			q, err := mqtt.NewQueueFromURL(s.Env.MQTTBrokerURL)
			if err != nil {
				c.Err(err)
				return
			}
			var lock sync.Mutex
			window := stats.NewWindow(want)
			done := make(chan struct{})
			subs := mqtt.SubscribeTelemetry(q, deviceID, func(id string, msg fx.Message) {
				rate, ok := msg.(*msgs.FuelRate)
				if !ok {
					return
				}
				lock.Lock()
				defer lock.Unlock()
				if window.Len() >= want {
					return
				}
				window.Add(rate.Sample())
				c.Printf("%s %s | %s\n", id, rate.Sample(), window.Summary())
				if window.Len() >= want {
					close(done)
				}
			})
			if err := q.Connect(); err != nil {
				c.Err(err)
				return
			}
			defer q.Close()
			select {
			case <-done:
			case <-time.After(WatchTimeout):
				c.Println("timeout")
			}
			for _, sub := range subs {
				sub.Close()
			}
			lock.Lock()
			sum := window.Summary()
			lock.Unlock()
			sh.Output(c, sum, sum.String())
		},
	}

	// TripsCmd lists recorded trips.
	TripsCmd = ishell.Cmd{
		Name:    "trips",
		Aliases: []string{"t"},
		Help:    "",
		Func: func(c *ishell.Context) {
			db, ok := openStore(c)
			if !ok {
				return
			}
			defer db.DB.Close()
			trips, err := db.Trips()
			if err != nil {
				c.Err(err)
				return
			}
			if sh.ShellFrom(c).OutputJSON {
				if trips == nil {
					trips = []store.Trip{}
				}
				sh.Output(c, trips, "")
				return
			}
			if len(trips) == 0 {
				c.Println("No trips recorded")
				return
			}
			for _, trip := range trips {
				c.Printf("%4d %s %6d samples %.3f lb (%.3f gal)\n",
					trip.ID, trip.StartedAt.Format(time.RFC3339), trip.Samples,
					trip.FuelUsedLb, trip.FuelUsedLb/stats.LbPerGallon)
			}
		},
	}

	// TripCmd summarizes the samples of a trip.
	TripCmd = ishell.Cmd{
		Name: "trip",
		Help: "ID",
		Func: sh.MinArgs(1, "ID", func(c *ishell.Context) {
			id, err := strconv.ParseInt(c.Args[0], 10, 64)
			if err != nil {
				c.Err(err)
				return
			}
			db, ok := openStore(c)
			if !ok {
				return
			}
			defer db.DB.Close()
			samples, err := db.Samples(id)
			if err != nil {
				c.Err(err)
				return
			}
			values := make([]float64, len(samples))
			for n, s := range samples {
				values[n] = s.LbPerHour
			}
			sum := stats.Summarize(values)
			sh.Output(c, sum, sum.String())
		}),
	}

	// ReplayCmd pairs the recorded messages of a trip again with the
	// current decoder configuration.
	ReplayCmd = ishell.Cmd{
		Name: "replay",
		Help: "ID",
		Func: sh.MinArgs(1, "ID", func(c *ishell.Context) {
			id, err := strconv.ParseInt(c.Args[0], 10, 64)
			if err != nil {
				c.Err(err)
				return
			}
			db, ok := openStore(c)
			if !ok {
				return
			}
			defer db.DB.Close()
			messages, err := db.Messages(id)
			if err != nil {
				c.Err(err)
				return
			}
			res := Replay(sh.ShellFrom(c).Config, messages)
			sh.Output(c, res, fmt.Sprintf("%d messages, %d samples, %d rejected\n%s\n%.3f lb (%.3f gal)",
				len(messages), res.Stats.Samples, res.Stats.Implausible+res.Stats.Stale+res.Stats.NoFlow,
				res.Summary, res.FuelUsedLb, res.FuelUsedLb/stats.LbPerGallon))
		}),
	}
)

func init() {
	sh.AddCmds(
		&WatchCmd,
		&TripsCmd,
		&TripCmd,
		&ReplayCmd,
	)
}
