package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mossy-p/socio-relay/config"
	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/redis/go-redis/v9"
)

// PresenceStore keeps the last known status per user under presence:{userID}
// and publishes every transition for other instances.
type PresenceStore struct {
	client *redis.Client
	cfg    config.PresenceConfig
}

func NewPresenceStore(client *redis.Client, cfg config.PresenceConfig) *PresenceStore {
	return &PresenceStore{client: client, cfg: cfg}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

// Record writes the status with its TTL and publishes the change.
func (s *PresenceStore) Record(ctx context.Context, change models.StatusChange) error {
	ttl := s.cfg.OnlineTTL
	if change.Status == models.StatusOffline {
		ttl = s.cfg.OfflineTTL
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, presenceKey(change.UserID), string(change.Status), ttl)
		pipe.Publish(ctx, s.cfg.Channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record presence for %s: %w", change.UserID, err)
	}
	return nil
}

// Status returns the stored status; an unknown or expired user is offline.
func (s *PresenceStore) Status(ctx context.Context, userID string) (models.Status, error) {
	val, err := s.client.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.StatusOffline, nil
	}
	if err != nil {
		return "", fmt.Errorf("get presence for %s: %w", userID, err)
	}
	if models.Status(val) == models.StatusOnline {
		return models.StatusOnline, nil
	}
	return models.StatusOffline, nil
}
