package surfpool

import (
	"github.com/michaelquigley/pfxlog"
)

type PoolStats struct {
	Capacity      int
	Free          int
	InUse         int
	HighWaterMark int
	Initialized   bool
}

type FrameInfo struct {
	SurfaceId     SurfaceId
	CiIndex       int
	Refs          int32
	Timestamp     uint64
	Discontinuity bool
	Skipped       bool
}

type PoolSnapshot struct {
	Id    string
	Stats PoolStats
	Free  []FrameInfo
	InUse []FrameInfo
}

func (self *SurfacePool) Stats() PoolStats {
	if self == nil {
		return PoolStats{}
	}
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.statsLocked()
}

func (self *SurfacePool) statsLocked() PoolStats {
	return PoolStats{
		Capacity:      self.capacity,
		Free:          self.freeCount,
		InUse:         self.inUse.size(),
		HighWaterMark: self.highWaterMark,
		Initialized:   self.initialized,
	}
}

// Snapshot copies the pool's counters and the state of every frame it holds. Frame state is read after the pool lock
// is dropped, so a frame may have moved between sets by the time its fields are captured. A nil pool has no snapshot.
//
func (self *SurfacePool) Snapshot() *PoolSnapshot {
	if self == nil {
		return nil
	}
	self.lock.Lock()
	stats := self.statsLocked()
	free := self.free.frames()
	inUse := self.inUse.frames()
	self.lock.Unlock()

	return &PoolSnapshot{
		Id:    self.id,
		Stats: stats,
		Free:  frameInfos(free),
		InUse: frameInfos(inUse),
	}
}

func frameInfos(frames []*Frame) []FrameInfo {
	infos := make([]FrameInfo, 0, len(frames))
	for _, f := range frames {
		f.lock.Lock()
		infos = append(infos, FrameInfo{
			SurfaceId:     f.surfaceId,
			CiIndex:       f.ciIndex,
			Refs:          f.refs,
			Timestamp:     f.timestamp,
			Discontinuity: f.discontinuity,
			Skipped:       f.real != nil,
		})
		f.lock.Unlock()
	}
	return infos
}

// Equal is a shallow comparison: both pools must hold the very same frame objects, in the same order, with the same
// counters. Two independently initialized pools over the same surfaces are never Equal.
//
func (self *SurfacePool) Equal(other *SurfacePool) bool {
	if self == nil || other == nil {
		return false
	}
	if self == other {
		return true
	}

	self.lock.Lock()
	aStats, aFree, aInUse := self.statsLocked(), self.free.frames(), self.inUse.frames()
	self.lock.Unlock()

	other.lock.Lock()
	bStats, bFree, bInUse := other.statsLocked(), other.free.frames(), other.inUse.frames()
	other.lock.Unlock()

	aStats.Initialized, bStats.Initialized = false, false
	return aStats == bStats && sameFrames(aFree, bFree) && sameFrames(aInUse, bInUse)
}

func sameFrames(a, b []*Frame) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (self *SurfacePool) Dump() {
	s := self.Snapshot()
	if s == nil {
		pfxlog.Logger().Error("dump of nil pool")
		return
	}
	log := pfxlog.ContextLogger(s.Id)
	log.Infof("surface pool dump")
	log.Infof("free list size is [%d]", s.Stats.Free)
	log.Infof("in use list size is [%d]", s.Stats.InUse)
	log.Infof("high water mark is [%d]", s.Stats.HighWaterMark)
	log.Infof("free list contents:")
	for _, fi := range s.Free {
		log.Infof("\tframe id [%s], idx [%d], refs [%d], ts [%d]", fi.SurfaceId, fi.CiIndex, fi.Refs, fi.Timestamp)
	}
	log.Infof("in use list contents:")
	for _, fi := range s.InUse {
		log.Infof("\tframe id [%s], idx [%d], refs [%d], ts [%d]", fi.SurfaceId, fi.CiIndex, fi.Refs, fi.Timestamp)
	}
}
