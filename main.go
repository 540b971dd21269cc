package main

import (
	"os"

	cmd "github.com/aock/mantis/cmd/mantis-cli"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "mantis"
	app.Usage = "exact closest-point-on-mesh queries"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "demo",
			Usage:     "run sample queries against a built-in mesh",
			ArgsUsage: "[triangle|tetrahedron|cube]",
			Action:    cmd.Demo,
		},
		{
			Name:  "bench",
			Usage: "build a synthetic mesh and report query throughput",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "grid",
					Value: 64,
					Usage: "grid resolution (grid x grid squares, 2 triangles each)",
				},
				cli.IntFlag{
					Name:  "queries",
					Value: 100000,
					Usage: "number of random queries to run",
				},
			},
			Action: cmd.Bench,
		},
	}

	app.Run(os.Args)
}
