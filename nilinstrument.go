package surfpool

type nilInstrument struct{}

func NewNilInstrument() Instrument {
	return &nilInstrument{}
}

func (self *nilInstrument) NewInstance(_ string) InstrumentInstance {
	return &nilInstrumentInstance{}
}

type nilInstrumentInstance struct{}

func (self *nilInstrumentInstance) Initialized(int)              {}
func (self *nilInstrumentInstance) Deinitialized()               {}
func (self *nilInstrumentInstance) Acquired(SurfaceId, int, int) {}
func (self *nilInstrumentInstance) Returned(SurfaceId, int, int) {}
func (self *nilInstrumentInstance) HighWaterMark(int)            {}
func (self *nilInstrumentInstance) Exhausted(int)                {}
func (self *nilInstrumentInstance) SkipCascade(SurfaceId)        {}
func (self *nilInstrumentInstance) IntegrityError(error)         {}
func (self *nilInstrumentInstance) Shutdown()                    {}
