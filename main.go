//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"

	"github.com/jschwinger233/elfsection/version"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Print(version.String())
	}
}

func main() {
	app := &cli.App{
		Name:      "elfsection",
		Usage:     "copy a named section out of an ELF64 image",
		ArgsUsage: "[ELF]",
		Version:   version.VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "exe",
				Aliases: []string{"e"},
				EnvVars: []string{"ELFSECTION_EXE"},
				Usage:   "ELF64 image to read, defaults to this executable",
			},
			&cli.StringFlag{
				Name:    "section",
				Aliases: []string{"s"},
				EnvVars: []string{"ELFSECTION_SECTION"},
				Value:   "sname",
				Usage:   "section name, matched exactly",
			},
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Value:   false,
				Usage:   "list the section header table",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the section bytes to a file",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Value: false,
				Usage: "write raw bytes to stdout instead of a hex dump",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Value: false,
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Action: func(ctx *cli.Context) (err error) {
			bin := ctx.String("exe")
			if bin == "" {
				bin = ctx.Args().First()
			}
			if bin == "" {
				bin = SelfExecutable()
			}
			log.Debugf("reading %s", bin)

			extractor := NewExtractor(bin, ctx.String("section"), ctx.String("output"), ctx.Bool("raw"))
			if ctx.Bool("list") {
				return extractor.List()
			}
			return extractor.Extract()
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
