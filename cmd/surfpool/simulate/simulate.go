package simulate

import (
	"context"
	sp "github.com/openziti/surfpool"
	"github.com/openziti/surfpool/cmd/surfpool/surfpool"
	"github.com/openziti/surfpool/loop"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
)

func init() {
	simulateCmd.Flags().IntVarP(&units, "units", "u", 0, "Override the number of decode units")
	simulateCmd.Flags().IntVarP(&skipEvery, "skip", "s", -1, "Override the skipped frame cadence")
	surfpool.RootCmd.AddCommand(simulateCmd)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive a surface pool with a synthetic decode/display loop",
	Args:  cobra.NoArgs,
	Run:   simulate,
}
var units int
var skipEvery int

func simulate(_ *cobra.Command, _ []string) {
	p, err := surfpool.SelectedProfile()
	if err != nil {
		logrus.Fatalf("error selecting profile (%v)", err)
	}
	cfg := loop.NewDefaultConfig()
	if p.Loop != nil {
		if err := cfg.Load(p.Loop); err != nil {
			logrus.Fatalf("error loading loop config (%v)", err)
		}
	}
	if units > 0 {
		cfg.Units = units
	}
	if skipEvery >= 0 {
		cfg.SkipEvery = skipEvery
	}
	logrus.Infof(cfg.Dump())

	i, err := p.NewInstrument()
	if err != nil {
		logrus.Fatalf("error creating instrument (%v)", err)
	}
	pool := sp.NewSurfacePool(p.Id, i)
	if err := pool.Initialize(p.Handles(), nil); err != nil {
		logrus.Fatalf("error initializing pool (%v)", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt)
		<-sigs
		logrus.Warn("interrupted")
		cancel()
	}()

	if stats, err := loop.Run(ctx, pool, cfg); err == nil {
		logrus.Infof("stats %s", stats)
	} else {
		logrus.Errorf("loop failed (%v)", err)
	}

	pool.Dump()
	if err := pool.Close(); err != nil {
		logrus.Fatalf("error closing pool (%v)", err)
	}

	if mi, ok := i.(*sp.MetricsInstrument); ok && mi.Enabled() {
		if err := mi.WriteAllSamples(); err != nil {
			logrus.Errorf("error writing samples (%v)", err)
		}
	}
}
