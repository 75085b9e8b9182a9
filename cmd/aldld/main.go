package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/daemon"
	"github.com/robotalks/aldl.go/pkg/env"
	fx "github.com/robotalks/aldl.go/pkg/framework"
	"github.com/robotalks/aldl.go/pkg/sim"
)

func init() {
	aldl.SetupFlags()
	env.SetupFlags()
	sim.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	d, err := daemon.New(aldl.NewConfig(), env.NewConfig(), sim.NewECUConfig())
	if err != nil {
		log.Fatalln(err)
	}
	defer d.Close()
	glog.Infof("aldld %s started", env.Default().DeviceID)
	d.Loop.RunOrFail(fx.NewRunner().HandleSignals().Context)
}
