/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tomoncle/storefront/database"
	"github.com/tomoncle/storefront/repository"
	"github.com/vmihailenco/msgpack/v5"
)

// Config holds the configuration of the entity read cache.
type Config struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	Addr         string        `json:"addr" yaml:"addr"`
	Password     string        `json:"password" yaml:"password"`
	DB           int           `json:"db" yaml:"db"`
	Prefix       string        `json:"prefix" yaml:"prefix"`
	TTL          time.Duration `json:"ttl" yaml:"ttl"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// DefaultConfig returns a disabled cache pointing at a local redis.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		Prefix:       "storefront",
		TTL:          10 * time.Minute,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisCache caches committed rows by table and id. Every table has a
// version counter that is part of each key; bumping it orphans all cached
// rows of the table, which then expire through their TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger database.Logger
}

var _ repository.EntityCache = (*RedisCache)(nil)

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(ctx context.Context, config *Config) (*RedisCache, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("addr cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisCacheWithClient(client, config), nil
}

// NewRedisCacheWithClient wraps an existing client. Only Prefix and TTL of
// config are used.
func NewRedisCacheWithClient(client *redis.Client, config *Config) *RedisCache {
	if config == nil {
		config = DefaultConfig()
	}
	prefix := config.Prefix
	if prefix == "" {
		prefix = "storefront"
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    config.TTL,
		logger: database.GetLogger(),
	}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Load decodes the cached row of table/id into dest. It also returns the
// table version it looked under; a row read from the database after a miss
// must be stored under that version.
func (r *RedisCache) Load(ctx context.Context, table, id string, dest any) (bool, int64, error) {
	version, err := r.version(ctx, table)
	if err != nil {
		return false, 0, err
	}
	key := EntryKey(r.prefix, table, version, id)
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, version, nil
	}
	if err != nil {
		return false, version, err
	}
	if err := msgpack.Unmarshal(b, dest); err != nil {
		// unreadable entries are dropped rather than served
		_ = r.client.Del(ctx, key).Err()
		return false, version, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, version, nil
}

// Store caches value under version. A commit that bumped the table since
// version was read leaves the entry unreachable.
func (r *RedisCache) Store(ctx context.Context, table, id string, version int64, value any) error {
	b, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, EntryKey(r.prefix, table, version, id), b, r.ttl).Err()
}

// Invalidate bumps the version of every table in one round trip.
func (r *RedisCache) Invalidate(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, table := range tables {
			pipe.Incr(ctx, r.versionKey(table))
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Debug("cache invalidated", "tables", tables)
	return nil
}

func (r *RedisCache) versionKey(table string) string {
	return r.prefix + ":" + table + ":ver"
}

func (r *RedisCache) version(ctx context.Context, table string) (int64, error) {
	v, err := r.client.Get(ctx, r.versionKey(table)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// EntryKey formats the key of one cached row.
func EntryKey(prefix, table string, version int64, id string) string {
	return fmt.Sprintf("%s:%s:v%d:%s", prefix, table, version, strconv.FormatUint(xxhash.Sum64String(id), 16))
}
