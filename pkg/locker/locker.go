package locker

import (
	"context"
	"errors"
)

var (
	ErrLockNotAcquired = errors.New("locker: lock not acquired")
	ErrEmptyKey        = errors.New("locker: empty key")
)

// Locker blocks until the key is held or ctx is done. The returned release
// func is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}
