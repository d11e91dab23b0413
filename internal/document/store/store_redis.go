package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docverify/pkg/platform/sentinel"
)

const (
	recordKeyPrefix   = "docverify:verification:"
	identityKeyPrefix = "docverify:identity:"
)

// RedisStore keeps verification records in Redis with a TTL. The identity
// index is a set refreshed to the same TTL on every save.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func recordKey(id uuid.UUID) string { return recordKeyPrefix + id.String() }

func identityKey(hash string) string { return identityKeyPrefix + hash }

func (s *RedisStore) Save(ctx context.Context, record *VerificationRecord) error {
	if record == nil {
		return fmt.Errorf("verification record is required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode verification: %w", err)
	}

	created, err := s.client.SetNX(ctx, recordKey(record.ID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("save verification: %w", err)
	}
	if !created {
		return fmt.Errorf("save verification %s: %w", record.ID, sentinel.ErrConflict)
	}

	if record.IdentityHash == "" {
		return nil
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, identityKey(record.IdentityHash), record.ID.String())
		pipe.Expire(ctx, identityKey(record.IdentityHash), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("index verification: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*VerificationRecord, error) {
	payload, err := s.client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	var record VerificationRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}
	return &record, nil
}

// ListByIdentityHash returns live records for hash, oldest first. Index
// entries whose record has expired are skipped.
func (s *RedisStore) ListByIdentityHash(ctx context.Context, hash string) ([]*VerificationRecord, error) {
	ids, err := s.client.SMembers(ctx, identityKey(hash)).Result()
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	if len(ids) == 0 {
		return []*VerificationRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKeyPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}

	out := make([]*VerificationRecord, 0, len(values))
	for _, v := range values {
		payload, ok := v.(string)
		if !ok {
			continue
		}
		var record VerificationRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("decode verification: %w", err)
		}
		out = append(out, &record)
	}
	sortByCreatedAt(out)
	return out, nil
}
