package surfpool

import "github.com/pkg/errors"

type Instrument interface {
	NewInstance(id string) InstrumentInstance
}

// InstrumentInstance callbacks may run under the pool lock.
type InstrumentInstance interface {
	// lifecycle
	Initialized(capacity int)
	Deinitialized()

	// frames
	Acquired(surfaceId SurfaceId, ciIndex int, inUse int)
	Returned(surfaceId SurfaceId, ciIndex int, free int)
	HighWaterMark(hwm int)
	Exhausted(free int)
	SkipCascade(surfaceId SurfaceId)

	// errors
	IntegrityError(err error)

	// instrument lifecycle
	Shutdown()
}

func NewInstrument(name string, config map[string]interface{}) (i Instrument, err error) {
	switch name {
	case "", "nil":
		return NewNilInstrument(), nil
	case "trace":
		return NewTraceInstrument(config)
	case "metrics":
		return NewMetricsInstrument(config)
	default:
		return nil, errors.Errorf("unknown instrument '%s'", name)
	}
}
