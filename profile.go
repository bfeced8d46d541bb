package surfpool

import (
	"github.com/openziti/surfpool/cf"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"io/ioutil"
)

const profileVersion = 1

// Profile describes a pool to build: its id, how many synthetic surfaces it wraps, and which instrument observes it.
//
type Profile struct {
	Id               string                 `cf:"id"`
	Surfaces         int                    `cf:"surfaces"`
	SurfaceBase      uint32                 `cf:"surface_base"`
	Instrument       string                 `cf:"instrument"`
	InstrumentConfig map[string]interface{} `cf:"instrument_config"`
	Loop             map[string]interface{} `cf:"loop"`
}

func NewBaselineProfile() *Profile {
	return &Profile{
		Surfaces:    8,
		SurfaceBase: 0x1000,
		Instrument:  "nil",
	}
}

func LoadProfile(path string) (*Profile, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read profile [%s]", path)
	}
	dataMap := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &dataMap); err != nil {
		return nil, errors.Wrapf(err, "unable to unmarshal profile [%s]", path)
	}
	p := NewBaselineProfile()
	if err := p.Load(dataMap); err != nil {
		return nil, errors.Wrapf(err, "unable to load profile [%s]", path)
	}
	return p, nil
}

func (self *Profile) Load(data map[string]interface{}) error {
	if v, found := data["profile_version"]; found {
		if i, ok := v.(int); ok {
			if i != profileVersion {
				return errors.Errorf("invalid profile version [%d != %d]", i, profileVersion)
			}
		} else {
			return errors.New("invalid 'profile_version' value")
		}
	} else {
		return errors.New("missing 'profile_version'")
	}
	if err := cf.Load(data, self); err != nil {
		return err
	}
	if self.Surfaces < 0 {
		return errors.Errorf("invalid surfaces [%d]", self.Surfaces)
	}
	if uint64(self.SurfaceBase)+uint64(self.Surfaces) > uint64(InvalidSurface) {
		return errors.Errorf("surface range [%d + %d] reaches the invalid surface", self.SurfaceBase, self.Surfaces)
	}
	return nil
}

func (self *Profile) Handles() []SurfaceId {
	handles := make([]SurfaceId, 0, self.Surfaces)
	for i := 0; i < self.Surfaces; i++ {
		handles = append(handles, SurfaceId(self.SurfaceBase+uint32(i)))
	}
	return handles
}

func (self *Profile) NewInstrument() (Instrument, error) {
	return NewInstrument(self.Instrument, self.InstrumentConfig)
}

func (self *Profile) NewPool() (*SurfacePool, error) {
	i, err := self.NewInstrument()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create instrument [%s]", self.Instrument)
	}
	return NewSurfacePool(self.Id, i), nil
}

func (self *Profile) Dump() string {
	return cf.Dump("surfpool.Profile", self)
}
