package util

import (
	"sync/atomic"
)

type Sequence struct {
	issued uint32
}

func NewSequence(first uint32) *Sequence {
	return &Sequence{issued: first - 1}
}

func (self *Sequence) ResetTo(first uint32) {
	atomic.StoreUint32(&self.issued, first-1)
}

func (self *Sequence) Next() uint32 {
	return atomic.AddUint32(&self.issued, 1)
}
