package surfpool

import (
	"fmt"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"sync"
)

type frameState uint8

const (
	frameDetached frameState = iota
	frameFree
	frameInUse
	frameFinalized
)

func (self frameState) String() string {
	switch self {
	case frameDetached:
		return "detached"
	case frameFree:
		return "free"
	case frameInUse:
		return "in_use"
	case frameFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", uint8(self))
	}
}

// Frame wraps one hardware surface along with the presentation metadata the decoder attaches to it.
//
// A pooled frame holds one reference on behalf of the pool's set that contains it. While it sits in the free list its
// count is 1; Get hands it out with a count of 2. Dropping the count from 2 to 1 returns the frame to its pool. Frames
// only reach 0, and are finalized, when the pool is deinitialized or when they were never pooled.
//
type Frame struct {
	lock  sync.Mutex
	refs  int32
	state frameState

	surfaceId     SurfaceId
	ciIndex       int
	timestamp     uint64
	discontinuity bool
	structure     FrameStructure
	frameType     FrameType
	displayOrder  uint32
	syncFlag      bool
	display       Display

	pool *SurfacePool

	real      *Frame
	cascadeIi InstrumentInstance
}

func NewFrame() *Frame {
	return &Frame{
		refs:      1,
		state:     frameDetached,
		surfaceId: InvalidSurface,
		ciIndex:   -1,
		structure: FramePicture,
		frameType: FrameTypeInvalid,
	}
}

func NewFrameWithSurface(surfaceId SurfaceId) *Frame {
	f := NewFrame()
	f.surfaceId = surfaceId
	return f
}

func newPooledFrame(surfaceId SurfaceId, ciIndex int, pool *SurfacePool, display Display) *Frame {
	f := NewFrame()
	f.surfaceId = surfaceId
	f.ciIndex = ciIndex
	f.pool = pool
	f.display = display
	f.state = frameFree
	return f
}

func (self *Frame) Ref() *Frame {
	self.lock.Lock()
	defer self.lock.Unlock()

	self.refs++
	pfxlog.Logger().Debugf("frame [%s] refs now [%d]", self.surfaceId, self.refs)
	return self
}

func (self *Frame) Unref() {
	if self == nil {
		pfxlog.Logger().Error("unref of nil frame")
		return
	}

	self.lock.Lock()
	defer self.lock.Unlock()

	log := pfxlog.Logger().WithField("surface", self.surfaceId.String())
	if self.refs < 1 {
		log.Errorf("unref of finalized frame")
		return
	}
	if self.refs == 1 && self.state == frameFree && self.pool != nil {
		err := errors.Wrapf(ErrFail, "frame [%s] is still held by pool [%s]", self.surfaceId, self.pool.id)
		log.Errorf("refusing to release pooled frame (%v)", err)
		self.pool.ii.IntegrityError(err)
		return
	}
	log.Debugf("refs now [%d]", self.refs-1)

	if self.refs-1 == 1 && self.real == nil && self.state == frameInUse {
		if self.pool == nil {
			log.Error("in-use frame has no pool")
		} else {
			self.resetLocked()
			if err := self.pool.release(self); err != nil {
				log.Errorf("unable to return frame to pool (%v)", err)
			} else {
				self.state = frameFree
			}
		}
	}

	if self.refs-1 == 0 && self.real != nil {
		log.Debugf("releasing real frame of skipped frame")
		if self.cascadeIi != nil {
			self.cascadeIi.SkipCascade(self.surfaceId)
		}
		self.real.Unref()
	}

	self.refs--
	if self.refs == 0 {
		self.finalizeLocked()
	}
}

func (self *Frame) finalizeLocked() {
	self.state = frameFinalized
	self.pool = nil
	self.display = nil
}

// Reset clears the presentation metadata. Surface identity, pool membership and the display context are left alone.
// The skip alias link also survives, so releasing a skipped frame still gives back its reference on the real frame.
//
func (self *Frame) Reset() {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.resetLocked()
}

func (self *Frame) resetLocked() {
	self.timestamp = 0
	self.discontinuity = false
	self.syncFlag = false
	self.structure = FramePicture
	self.frameType = FrameTypeInvalid
	self.displayOrder = 0
}

func (self *Frame) RefCount() int32 {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.refs
}

func (self *Frame) InUse() bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.state == frameInUse
}

func (self *Frame) SurfaceId() SurfaceId {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.surfaceId
}

func (self *Frame) CiIndex() int {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.ciIndex
}

func (self *Frame) Timestamp() uint64 {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.timestamp
}

func (self *Frame) SetTimestamp(timestamp uint64) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.timestamp = timestamp
}

func (self *Frame) Discontinuity() bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.discontinuity
}

func (self *Frame) SetDiscontinuity(discontinuity bool) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.discontinuity = discontinuity
}

func (self *Frame) FrameStructure() FrameStructure {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.structure
}

func (self *Frame) SetFrameStructure(structure FrameStructure) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.structure = structure
}

func (self *Frame) FrameType() FrameType {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.frameType
}

func (self *Frame) SetFrameType(frameType FrameType) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.frameType = frameType
}

func (self *Frame) DisplayOrder() uint32 {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.displayOrder
}

func (self *Frame) SetDisplayOrder(displayOrder uint32) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.displayOrder = displayOrder
}

func (self *Frame) Pool() *SurfacePool {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.pool
}

func (self *Frame) Equal(other *Frame) bool {
	if self == nil || other == nil {
		return false
	}
	if self == other {
		return true
	}
	a := self.identity()
	b := other.identity()
	return a == b
}

// CopyFrom copies surface id, timestamp and discontinuity from src. A pooled frame owns its surface for the lifetime of
// the pool and cannot be a copy target.
//
func (self *Frame) CopyFrom(src *Frame) error {
	if self == nil || src == nil {
		return ErrNullPointer
	}
	if self == src {
		return nil
	}
	id := src.identity()

	self.lock.Lock()
	defer self.lock.Unlock()
	if self.pool != nil {
		return errors.Wrapf(ErrFail, "frame [%s] belongs to a pool", self.surfaceId)
	}
	self.surfaceId = id.surfaceId
	self.timestamp = id.timestamp
	self.discontinuity = id.discontinuity
	return nil
}

func (self *Frame) Dup() (*Frame, error) {
	if self == nil {
		return nil, ErrNullPointer
	}
	dup := NewFrame()
	if err := dup.CopyFrom(self); err != nil {
		return nil, err
	}
	return dup, nil
}

type frameIdentity struct {
	surfaceId     SurfaceId
	timestamp     uint64
	discontinuity bool
}

func (self *Frame) identity() frameIdentity {
	self.lock.Lock()
	defer self.lock.Unlock()
	return frameIdentity{self.surfaceId, self.timestamp, self.discontinuity}
}

func (self *Frame) String() string {
	self.lock.Lock()
	defer self.lock.Unlock()
	return fmt.Sprintf("{surface=%s, idx=%d, refs=%d, state=%s, ts=%d}", self.surfaceId, self.ciIndex, self.refs, self.state, self.timestamp)
}
