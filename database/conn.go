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

	"github.com/uptrace/bun"
)

var (
	globalFactory *BaseDatabaseFactory
	globalConfig  *Config
)

// GetDB returns the current global Bun handle. The handle changes on
// reconnect; long-lived callers should call GetDB again rather than keep it.
func GetDB() *bun.DB {
	if globalFactory != nil {
		return globalFactory.GetDB()
	}
	return nil
}

// GetDatabaseManager returns the global database manager.
func GetDatabaseManager() AbstractDatabaseManager {
	if globalFactory != nil {
		return globalFactory.GetManager()
	}
	return nil
}

// InitDB connects the global database and migrates it when the config asks
// for migrations on startup.
func InitDB(ctx context.Context, cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	var opts *MigrationOptions
	if cfg.DataMigrateConfig.EnableMigrateOnStartup {
		o := cfg.MigrationOptions()
		opts = &o
	}
	return InitDatabaseWithOptions(ctx, cfg, opts)
}

// InitDatabaseWithOptions connects the global database and runs migrations
// with opts when it is non-nil.
func InitDatabaseWithOptions(ctx context.Context, cfg *Config, opts *MigrationOptions) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	globalConfig = cfg
	globalFactory = NewDatabaseFactory()
	manager, err := globalFactory.CreateFromConfig(&cfg.ConnectionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := globalFactory.InitializeDatabase(ctx, opts); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return manager.GetDB(), nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	if globalFactory == nil {
		return nil
	}
	err := globalFactory.Close()
	globalFactory = nil
	return err
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalFactory != nil {
		return globalFactory.GetHealthStatus(ctx)
	}
	return &HealthStatus{
		Healthy:   false,
		Connected: false,
		LastError: "database not initialized",
	}
}

// GetDatabaseStats returns global database statistics.
func GetDatabaseStats() *DBStats {
	if globalFactory != nil {
		return globalFactory.GetStats()
	}
	return &DBStats{}
}

// RunMigrations migrates the global database using the options of the
// config it was opened with.
func RunMigrations(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil || globalConfig == nil {
		return fmt.Errorf("database not initialized")
	}
	return manager.RunMigrations(ctx, globalConfig.MigrationOptions())
}

// InitData runs the seed scripts of environment against the global database.
// An empty environment falls back to the configured one, then "prod".
func InitData(ctx context.Context, environment string) error {
	db := GetDB()
	if db == nil || globalConfig == nil {
		return fmt.Errorf("database not initialized")
	}

	if environment == "" {
		environment = globalConfig.DataInitConfig.Environment
	}
	if environment == "" {
		environment = "prod"
	}
	root := globalConfig.DataInitConfig.Filepath
	if root == "" {
		root = "configs/sql"
	}

	sqlManager := NewSQLInitManager(db, environment)
	sqlManager.SetSQLRootPath(root)
	return sqlManager.ExecuteInitialization(ctx)
}
