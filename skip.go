package surfpool

import (
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
)

// NewSkippedFrame returns a placeholder standing in for real, used when a decode unit was dropped but the consumer
// still expects a frame. The placeholder takes a reference on real and gives it back when the placeholder itself is
// released. Only real frames can be aliased, which keeps every alias chain one level deep.
//
func NewSkippedFrame(real *Frame) (*Frame, error) {
	if real == nil {
		return nil, ErrNullPointer
	}

	real.lock.Lock()
	if real.real != nil {
		real.lock.Unlock()
		return nil, errors.Wrapf(ErrFail, "frame [%s] is already a skipped frame", real.surfaceId)
	}
	if real.refs < 1 {
		real.lock.Unlock()
		return nil, errors.Wrapf(ErrFail, "frame [%s] is finalized", real.surfaceId)
	}
	real.refs++
	skipped := NewFrame()
	skipped.surfaceId = real.surfaceId
	skipped.ciIndex = real.ciIndex
	skipped.timestamp = real.timestamp
	skipped.real = real
	if real.pool != nil {
		skipped.cascadeIi = real.pool.ii
	}
	real.lock.Unlock()

	pfxlog.Logger().Debugf("skipped frame aliasing [%s]", skipped.surfaceId)
	return skipped, nil
}

func (self *Frame) IsSkipped() bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.real != nil
}

func (self *Frame) RealFrame() *Frame {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.real
}

func (self *Frame) SetSyncFlag(syncFlag bool) {
	self.lock.Lock()
	self.syncFlag = syncFlag
	real := self.real
	self.lock.Unlock()

	if real != nil && real != self {
		real.SetSyncFlag(syncFlag)
	}
}

func (self *Frame) SyncFlag() bool {
	self.lock.Lock()
	real := self.real
	if real == nil || real == self {
		defer self.lock.Unlock()
		return self.syncFlag
	}
	self.lock.Unlock()
	return real.SyncFlag()
}

func (self *Frame) SetDisplay(display Display) {
	self.lock.Lock()
	self.display = display
	real := self.real
	self.lock.Unlock()

	if real != nil && real != self {
		real.SetDisplay(display)
	}
}

func (self *Frame) Display() Display {
	self.lock.Lock()
	real := self.real
	if real == nil || real == self {
		defer self.lock.Unlock()
		return self.display
	}
	self.lock.Unlock()
	return real.Display()
}
