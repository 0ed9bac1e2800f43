package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a ProjectLocker.
type UnlockFunc func(ctx context.Context) error

// ProjectLocker serializes writers of the same project across processes.
// Within one process the graph's own mutex is enough; the locker covers
// several editors saving the same project through a shared store.
type ProjectLocker interface {
	// Lock blocks until the lock for key is held, the context is done, or the
	// implementation gives up. The returned UnlockFunc must be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
