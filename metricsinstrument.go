package surfpool

import (
	"fmt"
	"github.com/openziti/surfpool/cf"
	"github.com/openziti/surfpool/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io/ioutil"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const MetricsId = "surfpool.1"

type MetricsInstrument struct {
	lock      sync.Mutex
	Config    *MetricsInstrumentConfig
	instances []*metricsInstrumentInstance
	enabled   int32
}

type MetricsInstrumentConfig struct {
	Path       string `cf:"path"`
	SnapshotMs int    `cf:"snapshot_ms"`
	Enabled    bool   `cf:"enabled"`
	Ctrl       bool   `cf:"ctrl"`
}

func NewMetricsInstrument(config map[string]interface{}) (Instrument, error) {
	i := &MetricsInstrument{
		Config: &MetricsInstrumentConfig{
			Path:       os.TempDir(),
			SnapshotMs: 1000,
			Ctrl:       true,
		},
	}
	if err := cf.Load(config, i.Config); err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}
	if i.Config.SnapshotMs < 1 {
		return nil, errors.Errorf("invalid snapshot_ms [%d]", i.Config.SnapshotMs)
	}
	i.setEnabled(i.Config.Enabled)
	if i.Config.Ctrl {
		if err := addCtrlListener(i); err != nil {
			return nil, err
		}
	}
	logrus.Infof(cf.Dump("MetricsInstrumentConfig", i.Config))
	return i, nil
}

func addCtrlListener(i *MetricsInstrument) error {
	cl, err := util.GetCtrlListener(i.Config.Path, "surfpool")
	if err != nil {
		return errors.Wrap(err, "unable to get metrics ctrl listener")
	}
	cl.AddCallback("start", func(string, net.Conn) (int64, error) {
		i.setEnabled(true)
		return 0, nil
	})
	cl.AddCallback("stop", func(string, net.Conn) (int64, error) {
		i.setEnabled(false)
		return 0, nil
	})
	cl.AddCallback("write", func(string, net.Conn) (int64, error) {
		err := i.WriteAllSamples()
		if err != nil {
			logrus.Errorf("error writing samples (%v)", err)
		}
		return 0, err
	})
	cl.AddCallback("clean", func(string, net.Conn) (int64, error) {
		i.clean()
		return 0, nil
	})
	cl.Start()
	return nil
}

func (self *MetricsInstrument) setEnabled(enabled bool) {
	if enabled {
		atomic.StoreInt32(&self.enabled, 1)
	} else {
		atomic.StoreInt32(&self.enabled, 0)
	}
}

func (self *MetricsInstrument) Enabled() bool {
	return atomic.LoadInt32(&self.enabled) == 1
}

func (self *MetricsInstrument) NewInstance(id string) InstrumentInstance {
	self.lock.Lock()
	defer self.lock.Unlock()
	ii := &metricsInstrumentInstance{
		id:    id,
		i:     self,
		close: make(chan struct{}),
	}
	go ii.snapshotter(self.Config.SnapshotMs)
	self.instances = append(self.instances, ii)
	return ii
}

func (self *MetricsInstrument) WriteAllSamples() error {
	self.lock.Lock()
	defer self.lock.Unlock()

	if err := os.MkdirAll(self.Config.Path, os.ModePerm); err != nil {
		return err
	}
	for _, ii := range self.instances {
		poolName := strings.ReplaceAll(fmt.Sprintf("%s_", ii.id), ":", "-")
		outPath, err := ioutil.TempDir(self.Config.Path, poolName)
		if err != nil {
			return err
		}
		logrus.Infof("writing metrics to: %s", outPath)

		if err := util.WriteMetricsId(MetricsId, outPath, map[string]string{"pool": ii.id}); err != nil {
			return err
		}
		for name, samples := range ii.series() {
			if err := util.WriteSamples(name, outPath, samples); err != nil {
				return err
			}
		}
	}
	return nil
}

func (self *MetricsInstrument) clean() {
	self.lock.Lock()
	defer self.lock.Unlock()

	var open []*metricsInstrumentInstance
	for _, ii := range self.instances {
		if ii.isClosed() {
			logrus.Infof("removed metricsInstrumentInstance #%p", ii)
		} else {
			open = append(open, ii)
		}
	}
	self.instances = open
}

var MetricsDatasets = []string{
	"acquired",
	"returned",
	"exhausted",
	"skip_cascades",
	"integrity_errors",
	"capacity",
	"free",
	"in_use",
	"high_water_mark",
}

type metricsInstrumentInstance struct {
	id        string
	i         *MetricsInstrument
	close     chan struct{}
	closeOnce sync.Once
	closed    int32

	lock    sync.Mutex
	samples map[string][]*util.Sample

	acquiredAccum        int64
	returnedAccum        int64
	exhaustedAccum       int64
	skipCascadesAccum    int64
	integrityErrorsAccum int64
	capacityVal          int64
	freeVal              int64
	inUseVal             int64
	highWaterMarkVal     int64
}

/*
 * lifecycle
 */

func (self *metricsInstrumentInstance) Initialized(capacity int) {
	atomic.StoreInt64(&self.capacityVal, int64(capacity))
	atomic.StoreInt64(&self.freeVal, int64(capacity))
	atomic.StoreInt64(&self.inUseVal, 0)
	atomic.StoreInt64(&self.highWaterMarkVal, 0)
}

func (self *metricsInstrumentInstance) Deinitialized() {
	atomic.StoreInt64(&self.capacityVal, 0)
	atomic.StoreInt64(&self.freeVal, 0)
	atomic.StoreInt64(&self.inUseVal, 0)
	atomic.StoreInt64(&self.highWaterMarkVal, 0)
}

/*
 * frames
 */

func (self *metricsInstrumentInstance) Acquired(_ SurfaceId, _ int, inUse int) {
	atomic.StoreInt64(&self.inUseVal, int64(inUse))
	atomic.AddInt64(&self.freeVal, -1)
	if self.i.Enabled() {
		atomic.AddInt64(&self.acquiredAccum, 1)
	}
}

func (self *metricsInstrumentInstance) Returned(_ SurfaceId, _ int, free int) {
	atomic.StoreInt64(&self.freeVal, int64(free))
	atomic.AddInt64(&self.inUseVal, -1)
	if self.i.Enabled() {
		atomic.AddInt64(&self.returnedAccum, 1)
	}
}

func (self *metricsInstrumentInstance) HighWaterMark(hwm int) {
	atomic.StoreInt64(&self.highWaterMarkVal, int64(hwm))
}

func (self *metricsInstrumentInstance) Exhausted(int) {
	if self.i.Enabled() {
		atomic.AddInt64(&self.exhaustedAccum, 1)
	}
}

func (self *metricsInstrumentInstance) SkipCascade(SurfaceId) {
	if self.i.Enabled() {
		atomic.AddInt64(&self.skipCascadesAccum, 1)
	}
}

/*
 * errors
 */

func (self *metricsInstrumentInstance) IntegrityError(err error) {
	if self.i.Enabled() {
		logrus.Errorf("integrity error (%v)", err)
		atomic.AddInt64(&self.integrityErrorsAccum, 1)
	}
}

/*
 * instrument lifecycle
 */

func (self *metricsInstrumentInstance) Shutdown() {
	self.closeOnce.Do(func() {
		atomic.StoreInt32(&self.closed, 1)
		close(self.close)
	})
}

func (self *metricsInstrumentInstance) isClosed() bool {
	return atomic.LoadInt32(&self.closed) == 1
}

func (self *metricsInstrumentInstance) snapshotter(ms int) {
	logrus.Infof("[%s] started", self.id)
	defer logrus.Infof("[%s] exited", self.id)

	ticker := time.NewTicker(time.Duration(ms) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if self.i.Enabled() {
				self.snapshot()
			}
		case <-self.close:
			self.snapshot()
			return
		}
	}
}

func (self *metricsInstrumentInstance) snapshot() {
	now := time.Now()
	values := map[string]int64{
		"acquired":         atomic.SwapInt64(&self.acquiredAccum, 0),
		"returned":         atomic.SwapInt64(&self.returnedAccum, 0),
		"exhausted":        atomic.SwapInt64(&self.exhaustedAccum, 0),
		"skip_cascades":    atomic.SwapInt64(&self.skipCascadesAccum, 0),
		"integrity_errors": atomic.SwapInt64(&self.integrityErrorsAccum, 0),
		"capacity":         atomic.LoadInt64(&self.capacityVal),
		"free":             atomic.LoadInt64(&self.freeVal),
		"in_use":           atomic.LoadInt64(&self.inUseVal),
		"high_water_mark":  atomic.LoadInt64(&self.highWaterMarkVal),
	}

	self.lock.Lock()
	defer self.lock.Unlock()
	if self.samples == nil {
		self.samples = make(map[string][]*util.Sample)
	}
	for name, v := range values {
		self.samples[name] = append(self.samples[name], &util.Sample{Ts: now, V: v})
	}
}

func (self *metricsInstrumentInstance) series() map[string][]*util.Sample {
	self.lock.Lock()
	defer self.lock.Unlock()
	out := make(map[string][]*util.Sample)
	for _, name := range MetricsDatasets {
		out[name] = append([]*util.Sample(nil), self.samples[name]...)
	}
	return out
}
