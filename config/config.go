// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the docsearch service configuration from defaults, an
// optional config file and DOCSEARCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/ratelimit"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DOCSEARCH_STORAGE_DRIVER.
const EnvPrefix = "DOCSEARCH"

const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects and locates the document and user store.
type StorageConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// RedisConfig locates the Redis result cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	LRUSize int           `mapstructure:"lru_size"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RateLimitConfig selects the admission policy.
type RateLimitConfig struct {
	Policy string        `mapstructure:"policy"`
	Limit  int64         `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// EmbeddingConfig selects the embedder.
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	Host      string `mapstructure:"host"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

// AIConfig converts to the ai package's configuration.
func (e EmbeddingConfig) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(e.Provider),
		ai.WithHost(e.Host),
		ai.WithModel(e.Model),
		ai.WithDimension(e.Dimension),
	)
}

// IndexConfig tunes the startup bulk load.
type IndexConfig struct {
	BatchSize   int           `mapstructure:"batch_size"`
	PoolSize    int           `mapstructure:"pool_size"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// Config holds the complete service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Index     IndexConfig     `mapstructure:"index"`
}

// Load builds a Config. configFile may be empty; when set it must exist.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.driver", DriverBadger)
	v.SetDefault("storage.path", "./data/docsearch")
	v.SetDefault("storage.in_memory", false)

	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("cache.lru_size", 10000)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "docsearch:")

	v.SetDefault("ratelimit.policy", ratelimit.PolicyLifetime)
	v.SetDefault("ratelimit.limit", ratelimit.DefaultLimit)
	v.SetDefault("ratelimit.window", time.Hour)

	v.SetDefault("embedding.provider", ai.ProviderHash)
	v.SetDefault("embedding.host", "http://localhost:11434/v1")
	v.SetDefault("embedding.model", "embeddinggemma")
	v.SetDefault("embedding.dimension", ai.DefaultDimension)

	v.SetDefault("index.batch_size", 100)
	v.SetDefault("index.pool_size", 0)
	v.SetDefault("index.max_attempts", 3)
	v.SetDefault("index.retry_delay", time.Second)
}

// Validate rejects unknown backends and non-positive sizes.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverBadger, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is required unless storage.in_memory is set", ErrInvalidConfig)
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalidConfig)
	}
	if c.Cache.Backend == CacheMemory && c.Cache.LRUSize < 1 {
		return fmt.Errorf("%w: cache.lru_size must be positive", ErrInvalidConfig)
	}

	switch c.RateLimit.Policy {
	case ratelimit.PolicyLifetime:
	case ratelimit.PolicyWindow:
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("%w: ratelimit.window must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown rate limit policy %q", ErrInvalidConfig, c.RateLimit.Policy)
	}
	if c.RateLimit.Limit < 1 {
		return fmt.Errorf("%w: ratelimit.limit must be positive", ErrInvalidConfig)
	}

	if err := c.Embedding.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Index.BatchSize < 1 {
		return fmt.Errorf("%w: index.batch_size must be positive", ErrInvalidConfig)
	}
	if c.Index.PoolSize < 0 {
		return fmt.Errorf("%w: index.pool_size must not be negative", ErrInvalidConfig)
	}
	if c.Index.MaxAttempts < 1 {
		return fmt.Errorf("%w: index.max_attempts must be positive", ErrInvalidConfig)
	}
	return nil
}
