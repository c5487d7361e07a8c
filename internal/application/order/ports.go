package order

import "context"

// Locker serialises completions of one order across concurrent requests.
// TryAcquire never waits: ok=false means another completion holds the key.
type Locker interface {
	TryAcquire(ctx context.Context, key string) (release func(), ok bool, err error)
}
