package main

import (
	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/cli/sh"
	"github.com/robotalks/aldl.go/pkg/env"

	_ "github.com/robotalks/aldl.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	aldl.SetupFlags()
	env.SetupFlags()
}

func main() {
	sh.Main()
}
