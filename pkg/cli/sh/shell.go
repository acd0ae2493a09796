package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/gate.go/pkg/l1/env"
)

// Shell provides ishell backed interactive bench shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *env.Config
	Bench  *Bench
}

const shellKey = "$shell"

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

// New creates a new shell, the config is validated first.
func New(conf *env.Config) (*Shell, error) {
	bench, err := NewBench(conf)
	if err != nil {
		return nil, err
	}
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Bench:  bench,
	}
	s.Shell.Set(shellKey, s)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	s.updatePrompt()
	return s, nil
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// BenchFrom gets the Bench from ishell context.
func BenchFrom(c *ishell.Context) *Bench {
	return ShellFrom(c).Bench
}

// Print prints a value as JSON or with a formatter.
func Print(c *ishell.Context, v interface{}, format func() string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(format())
}

// Report prints err if any and refreshes the prompt after a command.
func Report(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
	}
	ShellFrom(c).updatePrompt()
}

func (s *Shell) updatePrompt() {
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", s.Bench.Machine.State()))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if err := s.Bench.Start(); err != nil {
		log.Fatalln(err)
	}
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	s, err := New(env.NewConfig())
	if err != nil {
		log.Fatalln(err)
	}
	s.Run(flag.Args()...)
}
