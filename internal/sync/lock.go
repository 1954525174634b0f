package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// ErrScopeBusy is returned when another worker already holds a scope's run
// lock.
var ErrScopeBusy = errors.New("scope already has a run in progress")

// lockRelease deletes the lock only if the token still matches, so an
// expired lock re-acquired by another worker is never released by the old
// holder.
const lockRelease = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// RunLock serializes runs per scope across workers. The TTL bounds how long
// a crashed worker can wedge a scope.
type RunLock struct {
	client valkey.Client
	ttl    time.Duration
}

func NewRunLock(client valkey.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RunLock{client: client, ttl: ttl}
}

// Acquire takes the per-scope lock. It returns a release func on success
// and ErrScopeBusy when the lock is held elsewhere.
func (l *RunLock) Acquire(ctx context.Context, scopeID uuid.UUID) (func(), error) {
	key := "emailpilot:synclock:" + scopeID.String()
	token := uuid.NewString()

	resp := l.client.Do(ctx, l.client.B().Set().
		Key(key).Value(token).
		Nx().Ex(l.ttl).
		Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrScopeBusy
		}
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}

	release := func() {
		// Best-effort: an unreleased lock still expires with the TTL.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.client.Do(ctx, l.client.B().Eval().
			Script(lockRelease).
			Numkeys(1).Key(key).Arg(token).
			Build())
	}
	return release, nil
}
