package loop

import (
	"github.com/sirupsen/logrus"
	"time"
)

type displayReporter struct {
	in         chan time.Time
	interval   time.Duration
	pending    int64
	lastReport time.Time
}

func newDisplayReporter(interval time.Duration) *displayReporter {
	return &displayReporter{
		in:       make(chan time.Time, 1024),
		interval: interval,
	}
}

func (self *displayReporter) run() {
	self.lastReport = time.Now()
	for stamp := range self.in {
		self.pending++
		if self.interval > 0 && stamp.Sub(self.lastReport) >= self.interval {
			rate := float64(self.pending) / stamp.Sub(self.lastReport).Seconds()
			logrus.Infof("%.1f frames/sec [%d frames]", rate, self.pending)
			self.pending = 0
			self.lastReport = stamp
		}
	}
}
