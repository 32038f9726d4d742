package registry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each roster as a JSON array under <prefix>:roster:<activity>.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "activities"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(activity string) string {
	return fmt.Sprintf("%s:roster:%s", s.prefix, activity)
}

func (s *RedisStore) LoadParticipants(ctx context.Context, activity string) ([]string, bool, error) {
	raw, err := s.client.Get(ctx, s.key(activity)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get roster: %w", err)
	}

	var participants []string
	if err := json.Unmarshal(raw, &participants); err != nil {
		return nil, false, fmt.Errorf("decode roster for %s: %w", activity, err)
	}
	if participants == nil {
		participants = []string{}
	}
	return participants, true, nil
}

func (s *RedisStore) SaveParticipants(ctx context.Context, activity string, participants []string) error {
	if participants == nil {
		participants = []string{}
	}
	data, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("encode roster for %s: %w", activity, err)
	}
	if err := s.client.Set(ctx, s.key(activity), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set roster: %w", err)
	}
	return nil
}
