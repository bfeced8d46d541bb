package surfpool

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/emirpasic/gods/trees/btree"
	"github.com/emirpasic/gods/utils"
)

const inUseTreeOrder = 16

// freeList and inUseSet are only touched under the pool lock. They read a frame's ciIndex without taking the frame
// lock; the index is written once before the frame is published to the pool and never changes.

type freeList struct {
	l *doublylinkedlist.List
}

func newFreeList() *freeList {
	return &freeList{l: doublylinkedlist.New()}
}

func (self *freeList) pushBack(f *Frame) {
	self.l.Add(f)
}

func (self *freeList) popFront() *Frame {
	v, found := self.l.Get(0)
	if !found {
		return nil
	}
	self.l.Remove(0)
	return v.(*Frame)
}

func (self *freeList) removeCiIndex(ciIndex int) *Frame {
	i, v := self.l.Find(func(_ int, v interface{}) bool {
		return v.(*Frame).ciIndex == ciIndex
	})
	if i == -1 {
		return nil
	}
	self.l.Remove(i)
	return v.(*Frame)
}

func (self *freeList) size() int {
	return self.l.Size()
}

func (self *freeList) frames() []*Frame {
	var out []*Frame
	self.l.Each(func(_ int, v interface{}) {
		out = append(out, v.(*Frame))
	})
	return out
}

func (self *freeList) clear() {
	self.l.Clear()
}

type inUseSet struct {
	t *btree.Tree
}

func newInUseSet() *inUseSet {
	return &inUseSet{t: btree.NewWith(inUseTreeOrder, utils.IntComparator)}
}

func (self *inUseSet) add(f *Frame) {
	self.t.Put(f.ciIndex, f)
}

func (self *inUseSet) contains(f *Frame) bool {
	v, found := self.t.Get(f.ciIndex)
	return found && v.(*Frame) == f
}

func (self *inUseSet) remove(f *Frame) bool {
	if !self.contains(f) {
		return false
	}
	self.t.Remove(f.ciIndex)
	return true
}

func (self *inUseSet) size() int {
	return self.t.Size()
}

func (self *inUseSet) frames() []*Frame {
	var out []*Frame
	for _, v := range self.t.Values() {
		out = append(out, v.(*Frame))
	}
	return out
}

func (self *inUseSet) clear() {
	self.t.Clear()
}
