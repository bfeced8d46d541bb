package surfpool

import (
	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/surfpool/util"
	"github.com/pkg/errors"
	"sync"
)

// SurfacePool multiplexes a fixed set of hardware surfaces across decode and display. Every frame is always in exactly
// one of the free list or the in-use set, so free + in-use == capacity once the pool is initialized.
//
// Lock order is frame lock, then pool lock. Nothing here acquires a frame lock while holding the pool lock.
//
type SurfacePool struct {
	id            string
	lock          sync.Mutex
	free          *freeList
	inUse         *inUseSet
	capacity      int
	freeCount     int
	highWaterMark int
	initialized   bool
	ii            InstrumentInstance
}

func NewSurfacePool(id string, i Instrument) *SurfacePool {
	if id == "" {
		id = util.GenerateId()
	}
	if i == nil {
		i = NewNilInstrument()
	}
	return &SurfacePool{
		id:    id,
		free:  newFreeList(),
		inUse: newInUseSet(),
		ii:    i.NewInstance(id),
	}
}

func (self *SurfacePool) Id() string {
	if self == nil {
		return ""
	}
	return self.id
}

// Initialize wraps each handle in a frame, in order, and places them all in the free list. Construction is
// transactional: if any handle cannot be wrapped, no frame is published and the pool is unchanged.
//
func (self *SurfacePool) Initialize(handles []SurfaceId, display Display) error {
	if self == nil {
		return ErrNullPointer
	}
	log := pfxlog.ContextLogger(self.id)
	log.Debug("begin")

	self.lock.Lock()
	defer self.lock.Unlock()

	if self.free.size() > 0 || self.inUse.size() > 0 {
		return errors.Wrapf(ErrAlreadyInitialized, "pool [%s] holds [%d] frames", self.id, self.free.size()+self.inUse.size())
	}

	staged, err := self.stage(handles, display)
	if err != nil {
		log.Errorf("unable to stage frames (%v)", err)
		return err
	}
	for _, f := range staged {
		self.free.pushBack(f)
	}
	self.capacity = len(staged)
	self.freeCount = len(staged)
	self.highWaterMark = 0
	self.initialized = true
	self.ii.Initialized(self.capacity)

	log.Debugf("end, capacity [%d]", self.capacity)
	return nil
}

func (self *SurfacePool) stage(handles []SurfaceId, display Display) ([]*Frame, error) {
	seen := make(map[SurfaceId]int)
	staged := make([]*Frame, 0, len(handles))
	for i, handle := range handles {
		if handle == InvalidSurface {
			discardStaged(staged)
			return nil, errors.Wrapf(ErrNoMemory, "invalid surface at index [%d]", i)
		}
		if j, found := seen[handle]; found {
			discardStaged(staged)
			return nil, errors.Wrapf(ErrNoMemory, "surface [%s] at index [%d] duplicates index [%d]", handle, i, j)
		}
		seen[handle] = i
		staged = append(staged, newPooledFrame(handle, i, self, display))
	}
	return staged, nil
}

// staged frames were never published, so they are finalized without taking their locks.
func discardStaged(staged []*Frame) {
	for _, f := range staged {
		f.refs = 0
		f.finalizeLocked()
	}
}

// Get lends out the frame at the head of the free list. The last free frame is never lent: a display pipeline needs
// one idle surface across vertical blanking, so Get reports exhaustion while free <= 1.
//
func (self *SurfacePool) Get() (*Frame, error) {
	if self == nil {
		return nil, ErrNullPointer
	}
	return self.acquire(func() (*Frame, error) {
		if self.freeCount <= 1 {
			self.ii.Exhausted(self.freeCount)
			pfxlog.ContextLogger(self.id).Warnf("out of surfaces [free %d]", self.freeCount)
			return nil, errors.Wrapf(ErrNoMemory, "out of surfaces [free %d]", self.freeCount)
		}
		f := self.free.popFront()
		if f == nil {
			err := errors.Wrapf(ErrFail, "free list empty with free count [%d]", self.freeCount)
			self.ii.IntegrityError(err)
			return nil, err
		}
		return f, nil
	})
}

// GetByIndex lends out the free frame whose pool index is index. Unlike Get it will hand out the last free frame; it
// only reports exhaustion when the free list is empty.
//
func (self *SurfacePool) GetByIndex(index int) (*Frame, error) {
	if self == nil {
		return nil, ErrNullPointer
	}
	return self.acquire(func() (*Frame, error) {
		if self.free.size() == 0 {
			self.ii.Exhausted(0)
			pfxlog.ContextLogger(self.id).Warn("out of surfaces")
			return nil, errors.Wrap(ErrNoMemory, "out of surfaces")
		}
		f := self.free.removeCiIndex(index)
		if f == nil {
			return nil, errors.Wrapf(ErrFail, "no free frame with index [%d]", index)
		}
		return f, nil
	})
}

func (self *SurfacePool) GetLike(like *Frame) (*Frame, error) {
	if self == nil || like == nil {
		return nil, ErrNullPointer
	}
	return self.GetByIndex(like.CiIndex())
}

func (self *SurfacePool) acquire(pick func() (*Frame, error)) (*Frame, error) {
	self.lock.Lock()
	f, err := pick()
	if err != nil {
		self.lock.Unlock()
		return nil, err
	}
	self.inUse.add(f)
	self.freeCount--
	inUse := self.inUse.size()
	if inUse > self.highWaterMark {
		self.highWaterMark = inUse
		self.ii.HighWaterMark(inUse)
	}
	self.ii.Acquired(f.surfaceId, f.ciIndex, inUse)
	pfxlog.ContextLogger(self.id).Debugf("lent [%s], in use [%d]", f.surfaceId, inUse)
	self.lock.Unlock()

	f.lock.Lock()
	if f.refs < 1 {
		f.lock.Unlock()
		return nil, self.discardFinalized(f)
	}
	f.refs++
	f.state = frameInUse
	f.lock.Unlock()

	return f, nil
}

// discardFinalized drops a finalized frame that was found in the free list. Its surface is lost to the pool, so the
// capacity shrinks with it.
func (self *SurfacePool) discardFinalized(f *Frame) error {
	self.lock.Lock()
	defer self.lock.Unlock()

	self.inUse.remove(f)
	self.capacity--
	err := errors.Wrapf(ErrFail, "frame [%s] in pool [%s] is finalized", f.surfaceId, self.id)
	self.ii.IntegrityError(err)
	pfxlog.ContextLogger(self.id).Errorf("discarding frame (%v)", err)
	return err
}

// Put moves frame from the in-use set back to the free list. It does not change the reference count; frames normally
// come back through Unref when their count drops to 1.
//
func (self *SurfacePool) Put(frame *Frame) error {
	if self == nil || frame == nil {
		return ErrNullPointer
	}

	frame.lock.Lock()
	defer frame.lock.Unlock()

	if err := self.release(frame); err != nil {
		return err
	}
	frame.state = frameFree
	return nil
}

// release requires the caller to hold frame.lock.
func (self *SurfacePool) release(frame *Frame) error {
	self.lock.Lock()
	defer self.lock.Unlock()

	if self.inUse.size() == 0 {
		err := errors.Wrapf(ErrFail, "frame [%s] returned with nothing in use", frame.surfaceId)
		self.ii.IntegrityError(err)
		return err
	}
	if !self.inUse.remove(frame) {
		err := errors.Wrapf(ErrFail, "frame [%s] is not in use by pool [%s]", frame.surfaceId, self.id)
		self.ii.IntegrityError(err)
		return err
	}
	frame.timestamp = 0
	self.free.pushBack(frame)
	self.freeCount++
	self.ii.Returned(frame.surfaceId, frame.ciIndex, self.freeCount)
	pfxlog.ContextLogger(self.id).Debugf("returned [%s], free [%d]", frame.surfaceId, self.freeCount)

	return nil
}

func (self *SurfacePool) CheckAvailable() error {
	if self == nil {
		return ErrNullPointer
	}

	self.lock.Lock()
	defer self.lock.Unlock()

	if !self.initialized {
		pfxlog.ContextLogger(self.id).Warn("surface pool is not initialized")
		return ErrNotInitialized
	}
	if self.freeCount <= 1 {
		pfxlog.ContextLogger(self.id).Warnf("pool empty [free %d]", self.freeCount)
		return ErrPoolEmpty
	}
	return nil
}

func (self *SurfacePool) Deinitialize() error {
	if self == nil {
		return ErrNullPointer
	}

	self.lock.Lock()
	if self.inUse.size() > 0 || self.free.size() != self.capacity {
		inUse := self.inUse.size()
		free := self.free.size()
		self.lock.Unlock()
		return errors.Wrapf(ErrFail, "outstanding frames [in use %d, free %d, capacity %d]", inUse, free, self.capacity)
	}
	frames := self.free.frames()
	self.free.clear()
	self.inUse.clear()
	self.capacity = 0
	self.freeCount = 0
	self.highWaterMark = 0
	self.initialized = false
	self.ii.Deinitialized()
	self.lock.Unlock()

	for _, f := range frames {
		f.lock.Lock()
		f.state = frameDetached
		f.lock.Unlock()
		f.Unref()
	}
	pfxlog.ContextLogger(self.id).Debugf("released [%d] frames", len(frames))
	return nil
}

func (self *SurfacePool) Close() error {
	if err := self.Deinitialize(); err != nil {
		return err
	}
	self.ii.Shutdown()
	return nil
}
