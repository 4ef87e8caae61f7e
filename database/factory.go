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

package database

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/tomoncle/storefront/utils"
	"github.com/uptrace/bun"
)

var supportedTypes = []string{"mysql", "postgres", "sqlite"}

// BaseDatabaseFactory creates and manages a configured database manager and
// provides helpers for initialization, health checks, and statistics.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a new database factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{
		logger: GetLogger(),
	}
}

// CreateFromConfig constructs a database manager from the given connection
// configuration, applying environment overrides and setting the factory logger.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *ConnectionConfig) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	// Environment wins over file values, including the type.
	f.overrideFromEnv(cfg)

	if !slices.Contains(supportedTypes, cfg.Type) {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", cfg.Type, supportedTypes)
	}

	manager := NewDatabaseManager(cfg)
	manager.SetLogger(f.logger)

	f.manager = manager
	return manager, nil
}

type envOverride struct {
	name  string
	apply func(cfg *ConnectionConfig, name string) error
}

// envOverrides lists the environment variables that override connection
// settings. Durations are given in seconds.
var envOverrides = []envOverride{
	{"DB_TYPE", stringEnv(func(c *ConnectionConfig) *string { return &c.Type })},
	{"DB_DSN", stringEnv(func(c *ConnectionConfig) *string { return &c.DSN })},
	{"DB_HOST", stringEnv(func(c *ConnectionConfig) *string { return &c.Host })},
	{"DB_PORT", intEnv(func(c *ConnectionConfig) *int { return &c.Port })},
	{"DB_USERNAME", stringEnv(func(c *ConnectionConfig) *string { return &c.Username })},
	{"DB_PASSWORD", stringEnv(func(c *ConnectionConfig) *string { return &c.Password })},
	{"DB_NAME", stringEnv(func(c *ConnectionConfig) *string { return &c.DBName })},
	{"DB_SSLMODE", stringEnv(func(c *ConnectionConfig) *string { return &c.SSLMode })},
	{"DB_MAX_IDLE_CONNS", intEnv(func(c *ConnectionConfig) *int { return &c.MaxIdleConns })},
	{"DB_MAX_OPEN_CONNS", intEnv(func(c *ConnectionConfig) *int { return &c.MaxOpenConns })},
	{"DB_CONN_MAX_LIFETIME", secondsEnv(func(c *ConnectionConfig) *time.Duration { return &c.ConnMaxLifetime })},
	{"DB_CONN_MAX_IDLE_TIME", secondsEnv(func(c *ConnectionConfig) *time.Duration { return &c.ConnMaxIdleTime })},
	{"DB_ENABLE_RECONNECT", boolEnv(func(c *ConnectionConfig) *bool { return &c.EnableReconnect })},
	{"DB_RECONNECT_INTERVAL", secondsEnv(func(c *ConnectionConfig) *time.Duration { return &c.ReconnectInterval })},
	{"DB_MAX_RECONNECT_TRIES", intEnv(func(c *ConnectionConfig) *int { return &c.MaxReconnectTries })},
	{"DB_HEALTH_CHECK_INTERVAL", secondsEnv(func(c *ConnectionConfig) *time.Duration { return &c.HealthCheckInterval })},
	{"DB_ENABLE_QUERY_LOG", boolEnv(func(c *ConnectionConfig) *bool { return &c.EnableQueryLog })},
}

func stringEnv(field func(*ConnectionConfig) *string) func(*ConnectionConfig, string) error {
	return func(cfg *ConnectionConfig, name string) error {
		if v := os.Getenv(name); v != "" {
			*field(cfg) = v
		}
		return nil
	}
}

func intEnv(field func(*ConnectionConfig) *int) func(*ConnectionConfig, string) error {
	return func(cfg *ConnectionConfig, name string) error {
		v := os.Getenv(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(cfg) = n
		return nil
	}
}

func secondsEnv(field func(*ConnectionConfig) *time.Duration) func(*ConnectionConfig, string) error {
	return func(cfg *ConnectionConfig, name string) error {
		v := os.Getenv(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(cfg) = time.Duration(n) * time.Second
		return nil
	}
}

func boolEnv(field func(*ConnectionConfig) *bool) func(*ConnectionConfig, string) error {
	return func(cfg *ConnectionConfig, name string) error {
		p := field(cfg)
		*p = utils.EnvDefaultBool(name, *p)
		return nil
	}
}

// overrideFromEnv applies envOverrides to cfg. A value that does not parse
// is logged and leaves the setting unchanged.
func (f *BaseDatabaseFactory) overrideFromEnv(cfg *ConnectionConfig) {
	for _, o := range envOverrides {
		if err := o.apply(cfg, o.name); err != nil {
			f.logger.Warn("ignoring invalid environment override", "name", o.name, "error", err)
		}
	}
}

// InitializeDatabase connects to the database and, when opts is non-nil,
// runs migrations with it.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, opts *MigrationOptions) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}

	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if opts != nil {
		if err := f.manager.RunMigrations(ctx, *opts); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.logger.Info("database initialized", "migrated", opts != nil)
	return nil
}

// GetManager returns the underlying database manager.
func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the Bun database instance, or nil if not initialized.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close closes the database connection managed by the factory.
func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus returns the current database health status from the manager.
func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			Healthy:       false,
			Connected:     false,
			LastError:     "database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats returns database connection statistics from the manager.
func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
