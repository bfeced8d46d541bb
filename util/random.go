package util

import (
	"math/rand"
	"sync"
	"time"
)

func init() {
	r = rand.New(rand.NewSource(time.Now().UnixNano()))
}

var r *rand.Rand
var rLock sync.Mutex

func Jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	rLock.Lock()
	defer rLock.Unlock()
	return time.Duration(r.Int63n(int64(max)))
}
