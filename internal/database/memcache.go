package database

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// memcached rejects keys longer than 250 bytes.
const memcacheMaxKeyLen = 250

// MemcacheKVStore provides simple kv store interface based on memcached.
// Values larger than the server's item size limit (1MB by default) are rejected by the server.
type MemcacheKVStore struct {
	client     *memcache.Client
	prefix     string
	expiration int32
}

// NewMemcacheKVStore creates new MemcacheKVStore instance and checks the connection.
func NewMemcacheKVStore(servers []string, prefix string, expiration time.Duration) (*MemcacheKVStore, error) {
	if len(servers) == 0 {
		return nil, errors.New("no memcached servers given")
	}

	c := memcache.New(servers...)
	if err := c.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to memcached: %w", err)
	}

	return &MemcacheKVStore{
		client:     c,
		prefix:     prefix,
		expiration: int32(expiration / time.Second),
	}, nil
}

// ReadKey returns data saved for given key. Returns nil if there's no data stored.
func (s *MemcacheKVStore) ReadKey(key []byte) ([]byte, error) {
	item, err := s.client.Get(s.key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from memcached: %w", err)
	}

	return item.Value, nil
}

// UpdateKey stores given data under given key.
func (s *MemcacheKVStore) UpdateKey(key []byte, data []byte) error {
	if err := s.client.Set(&memcache.Item{
		Key:        s.key(key),
		Value:      data,
		Expiration: s.expiration,
	}); err != nil {
		return fmt.Errorf("writing to memcached: %w", err)
	}

	return nil
}

// Close closes idle memcached connections.
func (s *MemcacheKVStore) Close() error {
	return s.client.Close()
}

func (s *MemcacheKVStore) key(key []byte) string {
	k := s.prefix + ":" + string(key)
	if len(k) > memcacheMaxKeyLen || !legalMemcacheKey(k) {
		sum := sha1.Sum([]byte(k))
		k = s.prefix + ":h:" + hex.EncodeToString(sum[:])
	}
	return k
}

func legalMemcacheKey(key string) bool {
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}
