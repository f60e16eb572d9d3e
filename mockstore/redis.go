package mockstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is the default key prefix of RedisStore.
const DefaultRedisPrefix = "faux:"

// RedisStore keeps each collection in a Redis hash mapping record IDs to
// JSON documents.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Default: DefaultRedisPrefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore returns a store using client. The client is not closed by
// the store.
func NewRedisStore(client redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(collection string) string {
	return s.prefix + collection
}

func (s *RedisStore) List(ctx context.Context, collection string) ([]Record, error) {
	docs, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("mockstore: redis hgetall: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := decodeRecord(docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (Record, error) {
	doc, err := s.client.HGet(ctx, s.key(collection), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mockstore: redis hget: %w", err)
	}
	return decodeRecord(doc)
}

func (s *RedisStore) Put(ctx context.Context, collection, id string, rec Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("mockstore: encode record: %w", err)
	}

	if err := s.client.HSet(ctx, s.key(collection), id, doc).Err(); err != nil {
		return fmt.Errorf("mockstore: redis hset: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	n, err := s.client.HDel(ctx, s.key(collection), id).Result()
	if err != nil {
		return fmt.Errorf("mockstore: redis hdel: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeRecord(doc string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("mockstore: decode record: %w", err)
	}
	return rec, nil
}
