package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/jsonstore"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/schollz/arranger/arrange"
	"github.com/schollz/arranger/schedule"
)

var version string

func main() {

	app := cli.NewApp()
	app.Version = version
	app.Compiled = time.Now()
	app.Name = "arranger"
	app.Usage = "decide when each voice of a song plays"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "file,f",
			Value: "arranger.json",
			Usage: "settings file with voices and engine knobs",
		},
		cli.StringFlag{
			Name:  "out,o",
			Value: "arrangements.json",
			Usage: "store to save finished arrangements to",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 0,
			Usage: "random seed (0 keeps the settings file's seed)",
		},
		cli.IntFlag{
			Name:  "sections",
			Value: 0,
			Usage: "override the number of sections",
		},
		cli.IntFlag{
			Name:  "length",
			Value: 0,
			Usage: "override the ticks per section",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "verbose logging",
		},
	}

	app.Action = func(c *cli.Context) (err error) {
		fmt.Println(`
	 bass  ####....####....
	 lead  ..######..####..
	 pad   ....########....

	 Lets arrange some voices!
						`)
		if !c.GlobalBool("debug") {
			log.SetLevel(log.InfoLevel)
		}
		logger := log.WithFields(log.Fields{
			"function": "main",
		})

		config, errOpening := LoadConfig(c.GlobalString("file"))
		if errOpening != nil {
			logger.Warn(errOpening.Error())
			logger.Info("Using default configuration")
			config = DefaultConfig()
		}
		if seed := c.GlobalInt64("seed"); seed != 0 {
			config.Seed = seed
		}
		if sections := c.GlobalInt("sections"); sections != 0 {
			config.Sections = sections
		}
		if length := c.GlobalInt("length"); length != 0 {
			config.SectionLength = length
		}

		timeline, voices, settings, err := config.Build()
		if err != nil {
			return
		}
		a, err := arrange.New(timeline, voices, settings)
		if err != nil {
			return
		}
		m, err := a.Run()
		if err != nil {
			return
		}

		fmt.Println(m.Render())

		timelines := schedule.Materialize(m, timeline, voices)
		id := a.ID()
		ks, errLoading := jsonstore.Open(c.GlobalString("out"))
		if errLoading != nil {
			ks = new(jsonstore.JSONStore)
		}
		err = ks.Set("matrix:"+id, m.Vectors)
		if err != nil {
			return
		}
		err = ks.Set("arrangement:"+id, timelines)
		if err != nil {
			return
		}
		err = jsonstore.Save(ks, c.GlobalString("out"))
		if err != nil {
			return
		}
		logger.Infof("Saved arrangement %s to %s", id, c.GlobalString("out"))
		return
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
