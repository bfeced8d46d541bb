package loop

import (
	"github.com/openziti/surfpool/cf"
	"github.com/pkg/errors"
	"time"
)

type Config struct {
	Units         int `cf:"units"`
	SkipEvery     int `cf:"skip_every"`
	GopLen        int `cf:"gop_len"`
	QueueLen      int `cf:"queue_len"`
	TimestampStep int `cf:"timestamp_step"`
	BackoffMs     int `cf:"backoff_ms"`
	MaxRetries    int `cf:"max_retries"`
	DecodeMs      int `cf:"decode_ms"`
	RenderMs      int `cf:"render_ms"`
	ReportMs      int `cf:"report_ms"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Units:         300,
		SkipEvery:     0,
		GopLen:        12,
		QueueLen:      2,
		TimestampStep: 3003,
		BackoffMs:     2,
		MaxRetries:    16,
		DecodeMs:      0,
		RenderMs:      1,
		ReportMs:      1000,
	}
}

func (self *Config) Load(data map[string]interface{}) error {
	if err := cf.Load(data, self); err != nil {
		return err
	}
	return self.validate()
}

func (self *Config) validate() error {
	if self.Units < 1 {
		return errors.Errorf("invalid units [%d]", self.Units)
	}
	if self.SkipEvery < 0 || self.GopLen < 1 || self.QueueLen < 0 || self.TimestampStep < 0 {
		return errors.New("negative cadence value")
	}
	if self.BackoffMs < 0 || self.MaxRetries < 0 || self.DecodeMs < 0 || self.RenderMs < 0 || self.ReportMs < 0 {
		return errors.New("negative timing value")
	}
	return nil
}

func (self *Config) Dump() string {
	return cf.Dump("loop.Config", self)
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
