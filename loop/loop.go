package loop

import (
	"context"
	"fmt"
	"github.com/openziti/surfpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"sync/atomic"
)

type Stats struct {
	Decoded          int64
	Skipped          int64
	Dropped          int64
	Retries          int64
	Displayed        int64
	SkippedDisplayed int64
	HighWaterMark    int
}

func (self *Stats) String() string {
	return fmt.Sprintf("{decoded=%d, skipped=%d, dropped=%d, retries=%d, displayed=%d, hwm=%d}",
		atomic.LoadInt64(&self.Decoded),
		atomic.LoadInt64(&self.Skipped),
		atomic.LoadInt64(&self.Dropped),
		atomic.LoadInt64(&self.Retries),
		atomic.LoadInt64(&self.Displayed),
		self.HighWaterMark,
	)
}

// Run pushes cfg.Units decode units through pool, from a Decoder to a Renderer. When Run returns every frame it
// acquired has been released, whether or not it succeeded.
//
func Run(ctx context.Context, pool *surfpool.SurfacePool, cfg *Config) (*Stats, error) {
	if pool == nil {
		return nil, surfpool.ErrNullPointer
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if err := pool.CheckAvailable(); err != nil {
		return nil, errors.Wrapf(err, "pool [%s] unavailable", pool.Id())
	}

	stats := &Stats{}
	frames := make(chan *surfpool.Frame, cfg.QueueLen)
	decoder := NewDecoder(pool, cfg, frames, stats)
	renderer := NewRenderer(cfg, frames, stats)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return decoder.Run(gCtx) })
	g.Go(func() error { return renderer.Run(gCtx) })
	err := g.Wait()

	stats.HighWaterMark = pool.Stats().HighWaterMark
	logrus.Infof("pool [%s] %s", pool.Id(), stats)
	return stats, err
}
