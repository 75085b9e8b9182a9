// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/aldl.go/pkg/cli/cmds/decoder"
	_ "github.com/robotalks/aldl.go/pkg/cli/cmds/telemetry"
)
