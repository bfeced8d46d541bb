package surfpool

import (
	"fmt"
	"github.com/openziti/surfpool/cf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"sync"
)

type traceInstrument struct {
	config *traceInstrumentConfig
	out    io.Writer
}

type traceInstrumentConfig struct {
	Lifecycle bool `cf:"lifecycle"`
	Frames    bool `cf:"frames"`
	Errors    bool `cf:"errors"`
}

type traceInstrumentInstance struct {
	id   string
	lock sync.Mutex
	i    *traceInstrument
}

func NewTraceInstrument(config map[string]interface{}) (Instrument, error) {
	i := &traceInstrument{
		config: &traceInstrumentConfig{Lifecycle: true, Errors: true},
		out:    os.Stdout,
	}
	if err := cf.Load(config, i.config); err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}
	logrus.Infof(cf.Dump("traceInstrumentConfig", i.config))
	return i, nil
}

func (self *traceInstrument) NewInstance(id string) InstrumentInstance {
	return &traceInstrumentInstance{
		id: id,
		i:  self,
	}
}

/*
 * lifecycle
 */

func (self *traceInstrumentInstance) Initialized(capacity int) {
	if self.i.config.Lifecycle {
		self.println(fmt.Sprintf("&& %-24s %-12s capacity %d", self.id, "INIT", capacity))
	}
}

func (self *traceInstrumentInstance) Deinitialized() {
	if self.i.config.Lifecycle {
		self.println(fmt.Sprintf("&& %-24s %-12s", self.id, "DEINIT"))
	}
}

/*
 * frames
 */

func (self *traceInstrumentInstance) Acquired(surfaceId SurfaceId, ciIndex int, inUse int) {
	if self.i.config.Frames {
		self.println(fmt.Sprintf("&& %-24s %-12s #%-8s idx %-4d in_use %d", self.id, "GET", surfaceId, ciIndex, inUse))
	}
}

func (self *traceInstrumentInstance) Returned(surfaceId SurfaceId, ciIndex int, free int) {
	if self.i.config.Frames {
		self.println(fmt.Sprintf("&& %-24s %-12s #%-8s idx %-4d free %d", self.id, "PUT", surfaceId, ciIndex, free))
	}
}

func (self *traceInstrumentInstance) HighWaterMark(hwm int) {
	if self.i.config.Frames {
		self.println(fmt.Sprintf("&& %-24s %-12s %d", self.id, "HWM", hwm))
	}
}

func (self *traceInstrumentInstance) Exhausted(free int) {
	if self.i.config.Frames {
		self.println(fmt.Sprintf("&& %-24s %-12s free %d", self.id, "EXHAUSTED", free))
	}
}

func (self *traceInstrumentInstance) SkipCascade(surfaceId SurfaceId) {
	if self.i.config.Frames {
		self.println(fmt.Sprintf("&& %-24s %-12s #%s", self.id, "SKIP_RELEASE", surfaceId))
	}
}

/*
 * errors
 */

func (self *traceInstrumentInstance) IntegrityError(err error) {
	if self.i.config.Errors {
		self.println(fmt.Sprintf("&& %-24s INTEGRITY ERROR: %v", self.id, err))
	}
}

/*
 * instrument lifecycle
 */

func (self *traceInstrumentInstance) Shutdown() {}

func (self *traceInstrumentInstance) println(line string) {
	self.lock.Lock()
	defer self.lock.Unlock()
	_, _ = fmt.Fprintln(self.i.out, line)
}
