// Package shipmentlock provides a Redis-backed per-order lock used to
// serialize shipment updates across writer processes. It is optional
// hardening on top of the repository's version-conditional write: the version
// check stays authoritative, the lock only reduces wasted retry attempts
// under contention.
package shipmentlock

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "fulfillment:shipment-lock:"

	// lockTTL caps how long a crashed holder can block other writers.
	lockTTL = 10 * time.Second

	// retryInterval is the polling cadence while another holder owns the lock.
	retryInterval = 50 * time.Millisecond
)

// releaseScript deletes the lock only when the stored token still matches,
// so an expired lock reacquired by another writer is never released by us.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// RedisShipmentLocker implements ports.ShipmentLocker with a SET NX EX lock
// keyed per order.
type RedisShipmentLocker struct {
	client *redis.Client
}

// NewRedisShipmentLocker creates a locker on the given Redis client.
func NewRedisShipmentLocker(client *redis.Client) *RedisShipmentLocker {
	return &RedisShipmentLocker{client: client}
}

// Lock acquires the per-order lock, polling until acquisition succeeds or the
// context is done. The returned release function is safe to call after the
// lock TTL has expired; it never releases a lock held by someone else.
func (l *RedisShipmentLocker) Lock(ctx context.Context, orderID kernel.UUID) (func(), error) {
	key := keyPrefix + orderID.String()
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	release := func() {
		// Detached from the request context: a cancelled request must still
		// release its lock instead of leaving it to expire.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}

	return release, nil
}
