package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const passLockKey = "lf:dispatch:lock"

// PassLock serializes orchestrator passes across dispatcher instances.
// Overlapping scheduler ticks would otherwise race the trigger scanner's
// check-then-write. The lease expires on its own if a holder dies mid-pass.
type PassLock struct {
	client redis.UniversalClient
	ttl    time.Duration
	token  string
}

func NewPassLock(client redis.UniversalClient, ttl time.Duration) *PassLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PassLock{
		client: client,
		ttl:    ttl,
		token:  uuid.NewString(),
	}
}

// Acquire returns false when another instance holds the lease.
func (l *PassLock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, passLockKey, l.token, l.ttl).Result()
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Release deletes the lease only if we still own it.
func (l *PassLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{passLockKey}, l.token).Err()
}
