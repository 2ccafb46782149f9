package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Supported store drivers.
const (
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
	DriverMemcache = "memcached"
)

// KVStore is a closable kv store.
type KVStore interface {
	ReadKey(key []byte) ([]byte, error)
	UpdateKey(key []byte, data []byte) error
	Close() error
}

var (
	_ KVStore = &BoltKVStore{}
	_ KVStore = &RedisKVStore{}
	_ KVStore = &MemcacheKVStore{}
)

// Config describes kv store connection.
type Config struct {
	// Driver is one of: bolt, redis, memcached.
	Driver string
	// Path of bolt database file.
	Path string
	// Bucket is bolt bucket name, or key prefix for redis and memcached.
	Bucket string
	// Addr is redis address, or comma separated list of memcached servers.
	Addr     string
	Username string
	Password string
	DB       int
	// Expiration of redis and memcached entries. 0 means no expiration.
	Expiration time.Duration
}

// NewKVStore opens kv store selected by cfg.Driver.
func NewKVStore(cfg Config) (KVStore, error) {
	switch cfg.Driver {
	case DriverBolt, "":
		return NewBoltKVStore(cfg.Path, cfg.Bucket)
	case DriverRedis:
		return NewRedisKVStore(&redis.Options{
			Addr:     cfg.Addr,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		}, cfg.Bucket, cfg.Expiration)
	case DriverMemcache:
		var servers []string
		for _, s := range strings.Split(cfg.Addr, ",") {
			if s = strings.TrimSpace(s); s != "" {
				servers = append(servers, s)
			}
		}
		return NewMemcacheKVStore(servers, cfg.Bucket, cfg.Expiration)
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
