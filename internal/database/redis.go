package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKVStore provides simple kv store interface based on redis.
// Keys are namespaced with prefix and expire after expiration (0 means never).
type RedisKVStore struct {
	client     *redis.Client
	prefix     string
	expiration time.Duration
	timeout    time.Duration
}

// NewRedisKVStore creates new RedisKVStore instance and checks the connection.
func NewRedisKVStore(opts *redis.Options, prefix string, expiration time.Duration) (*RedisKVStore, error) {
	s := RedisKVStore{
		client:     redis.NewClient(opts),
		prefix:     prefix,
		expiration: expiration,
		timeout:    5 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	return &s, nil
}

// ReadKey returns data saved for given key. Returns nil if there's no data stored.
func (s *RedisKVStore) ReadKey(key []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from redis: %w", err)
	}

	return data, nil
}

// UpdateKey stores given data under given key.
func (s *RedisKVStore) UpdateKey(key []byte, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), data, s.expiration).Err(); err != nil {
		return fmt.Errorf("writing to redis: %w", err)
	}

	return nil
}

// Close closes redis connections.
func (s *RedisKVStore) Close() error {
	return s.client.Close()
}

func (s *RedisKVStore) key(key []byte) string {
	return s.prefix + ":" + string(key)
}
