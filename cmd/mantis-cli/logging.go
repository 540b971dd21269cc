package cmd

import (
	"github.com/aock/mantis/log"
	"github.com/urfave/cli"
)

var logger = log.New("mantis-cli")

func setupLogging(ctx *cli.Context) {
	log.SetLevel(log.LevelForVerbosity(ctx.GlobalBool("v"), ctx.GlobalBool("vv")))
}
