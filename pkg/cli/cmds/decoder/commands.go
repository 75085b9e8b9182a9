package decoder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/cli/sh"
	"github.com/robotalks/aldl.go/pkg/sim"
	"github.com/robotalks/aldl.go/pkg/telemetry/hostlink"
)

var (
	// DecodeCmd decodes a symbol string.
	DecodeCmd = ishell.Cmd{
		Name:    "decode",
		Aliases: []string{"d"},
		Help:    "SYMBOLS... (0, 1 or ?)",
		Func: sh.MinArgs(1, "SYMBOLS", func(c *ishell.Context) {
			conf := sh.ShellFrom(c).Config
			res, err := DecodeSymbols(conf, strings.Join(c.Args, ""))
			if err != nil {
				c.Err(err)
				return
			}
			sh.Output(c, res, fmt.Sprintf("@%d %s\n%s",
				res.Offset, res.Message, hostlink.FormatECURaw(res.Bytes)))
		}),
	}

	// EncodeCmd renders bytes as symbols.
	EncodeCmd = ishell.Cmd{
		Name:    "encode",
		Aliases: []string{"e"},
		Help:    "STATUS CYL FUEL DIST CONST (hex)",
		Func: sh.MinArgs(1, "BYTES", func(c *ishell.Context) {
			syms, err := EncodeBytes(sh.ShellFrom(c).Config, c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			str := aldl.FormatSymbols(syms)
			sh.Output(c, str, str)
		}),
	}

	// RateCmd computes a fuel rate.
	RateCmd = ishell.Cmd{
		Name:    "rate",
		Aliases: []string{"r"},
		Help:    "LAST CUR ELAPSED(ms) CONST",
		Func: sh.MinArgs(4, "LAST CUR ELAPSED CONST", func(c *ishell.Context) {
			var vals [4]uint64
			for n := range vals {
				bits := 8
				if n == 2 {
					bits = 63
				}
				v, err := strconv.ParseUint(c.Args[n], 10, bits)
				if err != nil {
					c.Err(fmt.Errorf("invalid %q: %v", c.Args[n], err))
					return
				}
				vals[n] = v
			}
			sample, err := Rate(sh.ShellFrom(c).Config,
				byte(vals[0]), byte(vals[1]), time.Duration(vals[2])*time.Millisecond, byte(vals[3]))
			if err != nil {
				c.Err(err)
				return
			}
			sh.Output(c, sample, hostlink.FormatFuel(sample.LbPerHour))
		}),
	}

	// ClassifyCmd classifies a low time.
	ClassifyCmd = ishell.Cmd{
		Name:    "classify",
		Aliases: []string{"cls"},
		Help:    "LOW(ms)",
		Func: sh.MinArgs(1, "LOW", func(c *ishell.Context) {
			ms, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(err)
				return
			}
			sym := sh.ShellFrom(c).Config.Classify(time.Duration(ms * float64(time.Millisecond)))
			sh.Output(c, sym.String(), sym.String())
		}),
	}

	// ConfigCmd shows the decoder configuration.
	ConfigCmd = ishell.Cmd{
		Name:    "config",
		Aliases: []string{"conf"},
		Help:    "",
		Func: func(c *ishell.Context) {
			conf := sh.ShellFrom(c).Config
			sh.Output(c, conf, fmt.Sprintf(
				"bit %v poll %v\nzero [%v, %v] one [%v, %v]\nwindow %d preamble %d frame %d bytes\nmax delta %d max interval %v\npass interval %v timeout %v",
				conf.BitPeriod, conf.PollInterval,
				conf.ZeroLowMin, conf.ZeroLowMax, conf.OneLowMin, conf.OneLowMax,
				conf.WindowSymbols, conf.PreambleLen, conf.FrameBytes,
				conf.MaxFuelDelta, conf.MaxInterval,
				conf.PassInterval, conf.PassTimeout()))
		},
	}

	// SimulateCmd decodes samples from a simulated ECU.
	SimulateCmd = ishell.Cmd{
		Name:    "simulate",
		Aliases: []string{"sim"},
		Help:    "[FLOW(lb/hr)] [SAMPLES] [NOISE]",
		Func: func(c *ishell.Context) {
			ecuConf := *sim.NewECUConfig()
			n := 5
			var err error
			if len(c.Args) > 0 {
				if ecuConf.FuelFlow, err = strconv.ParseFloat(c.Args[0], 64); err != nil {
					c.Err(err)
					return
				}
			}
			if len(c.Args) > 1 {
				if n, err = strconv.Atoi(c.Args[1]); err != nil {
					c.Err(err)
					return
				}
			}
			if len(c.Args) > 2 {
				if ecuConf.Noise, err = strconv.ParseFloat(c.Args[2], 64); err != nil {
					c.Err(err)
					return
				}
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			samples, stats := Simulate(ctx, sh.ShellFrom(c).Config, ecuConf, n)
			if sh.ShellFrom(c).OutputJSON {
				sh.Output(c, map[string]interface{}{"samples": samples, "stats": stats}, "")
				return
			}
			for _, s := range samples {
				c.Println(s)
			}
			c.Printf("passes %d decoded %d samples %d timeouts %d no-sync %d invalid %d\n",
				stats.Passes, stats.Decoded, stats.Samples, stats.Timeouts, stats.NoSync, stats.Invalid)
		},
	}
)

func init() {
	sh.AddCmds(
		&DecodeCmd,
		&EncodeCmd,
		&RateCmd,
		&ClassifyCmd,
		&ConfigCmd,
		&SimulateCmd,
	)
}
