package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrClaimNotAcquired = errors.New("reminder dispatch claim not acquired")
)

// Claimer guards the delivery of a single reminder so that two dispatcher
// replicas polling the same store never send the same notification twice.
type Claimer interface {
	WithReminderClaim(ctx context.Context, reminderID uuid.UUID, fn func(ctx context.Context) error) error
}

type redisReminderClaimer struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReminderClaimer creates a claimer that uses a per reminder Redis key.
func NewRedisReminderClaimer(client *redis.Client, ttl time.Duration) Claimer {
	return &redisReminderClaimer{
		client: client,
		ttl:    ttl,
	}
}

func (c *redisReminderClaimer) WithReminderClaim(ctx context.Context, reminderID uuid.UUID, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("claim:reminder:%s", reminderID.String())
	token := uuid.NewString()

	ok, err := c.client.SetNX(ctx, key, token, c.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire reminder claim: %w", err)
	}
	if !ok {
		return ErrClaimNotAcquired
	}

	defer func() {
		_ = c.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var releaseScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (c *redisReminderClaimer) release(ctx context.Context, key, token string) error {
	_, err := releaseScript.Run(ctx, c.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release reminder claim: %w", err)
	}
	return nil
}
