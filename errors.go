package surfpool

import "github.com/pkg/errors"

var (
	ErrNullPointer        = errors.New("null pointer")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrNoMemory           = errors.New("no memory")
	ErrPoolEmpty          = errors.New("pool empty")
	ErrFail               = errors.New("fail")
)
