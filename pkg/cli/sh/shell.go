// Package sh provides the interactive shell of the offline tools.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/env"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *aldl.Config
	Env    *env.Config
}

const (
	shellKey = "$shell"
	prompt   = "aldl > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	commands []*ishell.Cmd
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *aldl.Config, envConf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Env:    envConf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Output prints v as JSON in JSON mode, or text otherwise.
func Output(c *ishell.Context, v interface{}, text string) {
	if !ShellFrom(c).OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// MinArgs wraps a command func requiring at least n arguments.
func MinArgs(n int, usage string, fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) < n {
			c.Err(fmt.Errorf("%s required", usage))
			return
		}
		fn(c)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Printf("ALDL decoder shell, bit period %v, window %d bits\n",
			s.Config.BitPeriod, s.Config.WindowSymbols)
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := aldl.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}
	New(conf, env.NewConfig()).Run(flag.Args()...)
}
