package main

import (
	"github.com/robotalks/fmtx/pkg/cli/sh"
	env "github.com/robotalks/fmtx/pkg/l1/env/connector"

	_ "github.com/robotalks/fmtx/pkg/cli/cmds/fm"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
