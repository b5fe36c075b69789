package main

import (
	"os"

	"github.com/df07/go-gi-shading/cmd"
	"github.com/df07/go-gi-shading/pkg/log"
	"github.com/urfave/cli"
)

var logger = log.New("gi")

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "gi"
	app.Usage = "render scenes with approximate ambient occlusion, indirect light and subsurface scattering"
	app.Version = "0.1.0"
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
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Build the occlusion tree and the scatter trees of subsurface materials for
a built-in scene, then shade every tile of the frame and write the combined
pass as an image. Extra render channels can be saved next to it.`,
			ArgsUsage: "[scene]",
			Flags:     cmd.RenderFlags,
			Action:    cmd.RenderFrame,
		},
		{
			Name:  "list-scenes",
			Usage: "list the built-in scenes",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "print the scene list as JSON",
				},
			},
			Action: cmd.ListScenes,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
