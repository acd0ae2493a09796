package main

import (
	"github.com/robotalks/gate.go/pkg/cli/sh"
	"github.com/robotalks/gate.go/pkg/l1/env"

	_ "github.com/robotalks/gate.go/pkg/cli/cmds/bench"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
