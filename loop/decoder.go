package loop

import (
	"context"
	"github.com/openziti/surfpool"
	"github.com/openziti/surfpool/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"sync/atomic"
	"time"
)

// Decoder stands in for a hardware decoder. Each unit takes a surface from the pool, stamps presentation metadata on
// it and hands it downstream. Every SkipEvery-th unit is treated as dropped and emitted as a skip alias of the last
// decoded frame, as is any unit for which no surface frees up within MaxRetries attempts.
//
type Decoder struct {
	pool  *surfpool.SurfacePool
	cfg   *Config
	seq   *util.Sequence
	out   chan *surfpool.Frame
	last  *surfpool.Frame
	stats *Stats
}

func NewDecoder(pool *surfpool.SurfacePool, cfg *Config, out chan *surfpool.Frame, stats *Stats) *Decoder {
	return &Decoder{
		pool:  pool,
		cfg:   cfg,
		seq:   util.NewSequence(0),
		out:   out,
		stats: stats,
	}
}

func (self *Decoder) Run(ctx context.Context) error {
	logrus.Info("started")
	defer logrus.Info("exited")
	defer close(self.out)
	defer self.releaseLast()

	for i := 0; i < self.cfg.Units; i++ {
		f, err := self.decode(ctx, i)
		if err != nil {
			return err
		}
		select {
		case self.out <- f:
		case <-ctx.Done():
			f.Unref()
			return ctx.Err()
		}
		if self.cfg.DecodeMs > 0 {
			if err := sleep(ctx, ms(self.cfg.DecodeMs)+util.Jitter(ms(self.cfg.DecodeMs))); err != nil {
				return err
			}
		}
	}
	return nil
}

func (self *Decoder) decode(ctx context.Context, unit int) (*surfpool.Frame, error) {
	if self.cfg.SkipEvery > 0 && unit%self.cfg.SkipEvery == self.cfg.SkipEvery-1 && self.last != nil {
		f, err := surfpool.NewSkippedFrame(self.last)
		if err != nil {
			return nil, errors.Wrap(err, "unable to alias last frame")
		}
		atomic.AddInt64(&self.stats.Skipped, 1)
		return f, nil
	}

	f, err := self.acquire(ctx)
	if err != nil {
		if errors.Cause(err) == surfpool.ErrNoMemory && self.last != nil {
			logrus.Warnf("no surface for unit [%d], emitting skipped frame", unit)
			alias, aErr := surfpool.NewSkippedFrame(self.last)
			if aErr != nil {
				return nil, errors.Wrap(aErr, "unable to alias last frame")
			}
			atomic.AddInt64(&self.stats.Dropped, 1)
			return alias, nil
		}
		return nil, err
	}

	f.SetTimestamp(uint64(unit) * uint64(self.cfg.TimestampStep))
	discontinuity := unit == 0
	if discontinuity {
		self.seq.ResetTo(0)
	}
	f.SetDiscontinuity(discontinuity)
	f.SetDisplayOrder(self.seq.Next())
	f.SetFrameType(frameTypeFor(unit, self.cfg.GopLen))
	atomic.AddInt64(&self.stats.Decoded, 1)

	// the decoder keeps its own reference to the last frame so later units can alias it
	if self.last != nil {
		self.last.Unref()
	}
	self.last = f.Ref()

	return f, nil
}

func (self *Decoder) acquire(ctx context.Context) (*surfpool.Frame, error) {
	for attempt := 0; ; attempt++ {
		f, err := self.pool.Get()
		if err == nil {
			return f, nil
		}
		if errors.Cause(err) != surfpool.ErrNoMemory || attempt >= self.cfg.MaxRetries {
			return nil, err
		}
		atomic.AddInt64(&self.stats.Retries, 1)
		if err := sleep(ctx, ms(self.cfg.BackoffMs)+util.Jitter(ms(self.cfg.BackoffMs))); err != nil {
			return nil, err
		}
	}
}

func (self *Decoder) releaseLast() {
	if self.last != nil {
		self.last.Unref()
		self.last = nil
	}
}

func frameTypeFor(unit, gopLen int) surfpool.FrameType {
	pos := unit % gopLen
	switch {
	case pos == 0:
		return surfpool.FrameTypeI
	case pos%3 == 0:
		return surfpool.FrameTypeP
	default:
		return surfpool.FrameTypeB
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
