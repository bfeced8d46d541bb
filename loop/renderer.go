package loop

import (
	"context"
	"github.com/openziti/surfpool"
	"github.com/openziti/surfpool/util"
	"github.com/sirupsen/logrus"
	"sync/atomic"
	"time"
)

// Renderer consumes decoded frames in order. The frame on screen is held until its successor arrives, so the
// renderer always owns at most one frame.
//
type Renderer struct {
	cfg     *Config
	in      chan *surfpool.Frame
	current *surfpool.Frame
	stats   *Stats
	rate    *displayReporter
}

func NewRenderer(cfg *Config, in chan *surfpool.Frame, stats *Stats) *Renderer {
	return &Renderer{
		cfg:   cfg,
		in:    in,
		stats: stats,
		rate:  newDisplayReporter(ms(cfg.ReportMs)),
	}
}

func (self *Renderer) Run(ctx context.Context) error {
	logrus.Info("started")
	defer logrus.Info("exited")

	go self.rate.run()
	defer close(self.rate.in)

	// drain until the decoder closes in, even after cancellation
	for f := range self.in {
		self.display(f)
		if self.cfg.RenderMs > 0 && ctx.Err() == nil {
			_ = sleep(ctx, ms(self.cfg.RenderMs)+util.Jitter(ms(self.cfg.RenderMs)))
		}
	}
	if self.current != nil {
		self.current.Unref()
		self.current = nil
	}
	return nil
}

func (self *Renderer) display(f *surfpool.Frame) {
	f.SetSyncFlag(true)
	if f.IsSkipped() {
		atomic.AddInt64(&self.stats.SkippedDisplayed, 1)
	}
	atomic.AddInt64(&self.stats.Displayed, 1)
	self.rate.in <- time.Now()

	if self.current != nil {
		self.current.Unref()
	}
	self.current = f
}
