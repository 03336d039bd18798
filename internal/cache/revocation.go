package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session revocation marks every outstanding token of a banned user invalid.
// The JWT middleware rejects tokens issued before the revocation instant, so
// a ban terminates sessions without tracking individual tokens.

func revocationKey(userUID string) string {
	return fmt.Sprintf("session:revoked:%s", userUID)
}

// RevokeSessions invalidates all sessions of a user for the given window.
// The window should cover at least the token TTL.
func (c *Cache) RevokeSessions(ctx context.Context, userUID string, window time.Duration) error {
	const op = "cache.RevokeSessions"
	now := time.Now().UTC().Unix()
	if err := c.Db.Set(ctx, revocationKey(userUID), now, window).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SessionsRevokedSince returns the unix second of the user's revocation mark,
// or zero when none is active.
func (c *Cache) SessionsRevokedSince(ctx context.Context, userUID string) (int64, error) {
	const op = "cache.SessionsRevokedSince"
	ts, err := c.Db.Get(ctx, revocationKey(userUID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ts, nil
}
