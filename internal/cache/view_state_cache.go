package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"tutordesk/internal/model"
)

const maxUpdateAttempts = 5

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
}

type ViewStateCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewViewStateCache(client *redisv9.Client, ttl time.Duration) *ViewStateCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ViewStateCache{client: client, ttl: ttl}
}

func (c *ViewStateCache) Load(ctx context.Context, sessionID string) (model.ViewState, error) {
	return c.get(ctx, c.client, sessionID)
}

// Update applies fn inside a WATCH transaction so concurrent requests of the
// same session never lose a generation bump.
func (c *ViewStateCache) Update(ctx context.Context, sessionID string, fn func(*model.ViewState) error) (model.ViewState, error) {
	key := c.stateKey(sessionID)
	var result model.ViewState

	txf := func(tx *redisv9.Tx) error {
		state, err := c.get(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(&state); err != nil {
			return err
		}
		payload, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal view state failed: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		if err == nil {
			result = state
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := c.client.Watch(ctx, txf, key)
		if errors.Is(err, redisv9.TxFailedErr) {
			continue
		}
		if err != nil {
			return model.ViewState{}, err
		}
		return result, nil
	}
	return model.ViewState{}, fmt.Errorf("redis update view state failed: too much contention")
}

func (c *ViewStateCache) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.stateKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete view state failed: %w", err)
	}
	return nil
}

func (c *ViewStateCache) get(ctx context.Context, cmd stringGetter, sessionID string) (model.ViewState, error) {
	raw, err := cmd.Get(ctx, c.stateKey(sessionID)).Result()
	if err == redisv9.Nil {
		return model.ViewState{}, nil
	}
	if err != nil {
		return model.ViewState{}, fmt.Errorf("redis get view state failed: %w", err)
	}
	var state model.ViewState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return model.ViewState{}, fmt.Errorf("unmarshal cached view state failed: %w", err)
	}
	return state, nil
}

func (c *ViewStateCache) stateKey(sessionID string) string {
	return fmt.Sprintf("tutordesk:view:%s", sessionID)
}

// RevocationCache stores signed-out session ids until their tokens expire.
type RevocationCache struct {
	client *redisv9.Client
}

func NewRevocationCache(client *redisv9.Client) *RevocationCache {
	return &RevocationCache{client: client}
}

func (c *RevocationCache) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.revokedKey(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set revocation failed: %w", err)
	}
	return nil
}

func (c *RevocationCache) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	exists, err := c.client.Exists(ctx, c.revokedKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check revocation failed: %w", err)
	}
	return exists > 0, nil
}

func (c *RevocationCache) revokedKey(sessionID string) string {
	return fmt.Sprintf("tutordesk:revoked:%s", sessionID)
}
