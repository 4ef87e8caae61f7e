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
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// defaultDatabaseManager holds one bun handle at a time. Reconnect opens the
// replacement before closing the current handle, so GetDB never returns a
// handle that was already closed by the manager.
type defaultDatabaseManager struct {
	config *ConnectionConfig

	mu      sync.RWMutex
	db      *bun.DB
	logger  Logger
	stopMon context.CancelFunc
	monDone chan struct{}
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun.
// A nil config selects DefaultConnectionConfig.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	return &defaultDatabaseManager{config: config}
}

func (dm *defaultDatabaseManager) currentLogger() Logger {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	if dm.logger == nil {
		return GetLogger()
	}
	return dm.logger
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	logger := dm.currentLogger()

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.db != nil {
		return nil
	}

	db, err := dm.open(ctx, logger)
	if err != nil {
		return err
	}
	dm.db = db
	if dm.config.HealthCheckInterval > 0 {
		dm.startMonitor()
	}
	logger.Info("database connected", "type", dm.config.Type, "host", dm.config.Host, "dbname", dm.config.DBName)
	return nil
}

// Reconnect swaps in a freshly opened handle and closes the previous one.
// Queries already running on the previous handle finish before it closes.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	logger := dm.currentLogger()
	logger.Info("reconnecting to database")

	db, err := dm.open(ctx, logger)
	if err != nil {
		return err
	}

	dm.mu.Lock()
	prev := dm.db
	dm.db = db
	if prev == nil && dm.config.HealthCheckInterval > 0 {
		dm.startMonitor()
	}
	dm.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			logger.Warn("failed to close previous connection", "error", err)
		}
	}
	return nil
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.stopMonitor()

	logger := dm.currentLogger()
	dm.mu.Lock()
	db := dm.db
	dm.db = nil
	dm.mu.Unlock()

	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database connection", "error", err)
		return err
	}
	logger.Info("database connection closed")
	return nil
}

// open dials a new handle, sizes its pool, checks that it answers and
// prepares it for use: model registration and query hooks.
func (dm *defaultDatabaseManager) open(ctx context.Context, logger Logger) (*bun.DB, error) {
	db, err := dm.dial()
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	dm.configurePool(db.DB)

	pingCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	db.RegisterModel(RegisteredModelInstances()...)
	if dm.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	db.AddQueryHook(NewQueryHook(logger, dm.config.SlowQueryTime, false))
	return db, nil
}

func (dm *defaultDatabaseManager) dial() (*bun.DB, error) {
	switch dm.config.Type {
	case "mysql":
		sqlDB, err := sql.Open("mysql", dm.mysqlDSN())
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqlDB, mysqldialect.New()), nil
	case "postgres", "postgresql":
		sqlDB, err := sql.Open("postgres", dm.postgresDSN())
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	case "sqlite", "sqlite3":
		sqlDB, err := sql.Open(sqliteshim.ShimName, dm.sqliteDSN())
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}
}

func (dm *defaultDatabaseManager) mysqlDSN() string {
	if dm.config.DSN != "" {
		return dm.config.DSN
	}
	mc := mysql.NewConfig()
	mc.User = dm.config.Username
	mc.Passwd = dm.config.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(dm.config.Host, strconv.Itoa(dm.config.Port))
	mc.DBName = dm.config.DBName
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Timeout = dm.config.ConnectTimeout
	mc.ReadTimeout = dm.config.ReadTimeout
	mc.WriteTimeout = dm.config.WriteTimeout
	charset := dm.config.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	mc.Params = map[string]string{"charset": charset}
	return mc.FormatDSN()
}

func (dm *defaultDatabaseManager) postgresDSN() string {
	if dm.config.DSN != "" {
		return dm.config.DSN
	}
	sslMode := dm.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("connect_timeout", strconv.Itoa(int(dm.config.ConnectTimeout.Seconds())))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dm.config.Username, dm.config.Password),
		Host:     net.JoinHostPort(dm.config.Host, strconv.Itoa(dm.config.Port)),
		Path:     "/" + dm.config.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func (dm *defaultDatabaseManager) sqliteDSN() string {
	switch {
	case dm.config.DSN != "":
		return dm.config.DSN
	case dm.config.DBName == "" || dm.config.DBName == ":memory:":
		return "file::memory:?cache=shared"
	case strings.Contains(dm.config.DBName, "."):
		return dm.config.DBName
	default:
		return dm.config.DBName + ".db"
	}
}

// isMemory reports whether the connection targets an in-memory sqlite
// database, which lives only while one connection stays open.
func (dm *defaultDatabaseManager) isMemory() bool {
	if dm.config.Type != "sqlite" && dm.config.Type != "sqlite3" {
		return false
	}
	dsn := dm.sqliteDSN()
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func (dm *defaultDatabaseManager) configurePool(sqlDB *sql.DB) {
	if dm.isMemory() {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return
	}
	sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	if db := dm.GetDB(); db != nil {
		return db.DB
	}
	return nil
}

func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	db := dm.GetDB()
	if db == nil {
		status.LastError = "database not initialized"
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := db.PingContext(pingCtx)
	status.ResponseTime = time.Since(start)
	status.Healthy = err == nil
	status.Connected = err == nil
	if err != nil {
		status.LastError = err.Error()
	}

	stats := db.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

// startMonitor runs the health loop until stopMonitor. dm.mu must be held.
func (dm *defaultDatabaseManager) startMonitor() {
	if dm.stopMon != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	dm.stopMon, dm.monDone = cancel, done
	go func() {
		defer close(done)
		dm.monitor(ctx)
	}()
}

func (dm *defaultDatabaseManager) stopMonitor() {
	dm.mu.Lock()
	stop, done := dm.stopMon, dm.monDone
	dm.stopMon, dm.monDone = nil, nil
	dm.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
}

// monitor checks the handle every HealthCheckInterval. With reconnects
// enabled an unhealthy handle is replaced, giving up after
// MaxReconnectTries consecutive failures until the database answers again.
func (dm *defaultDatabaseManager) monitor(ctx context.Context) {
	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()

	tries := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if dm.HealthCheck(ctx).Healthy {
			tries = 0
			continue
		}
		if !dm.config.EnableReconnect || tries >= dm.config.MaxReconnectTries {
			continue
		}
		tries++

		select {
		case <-ctx.Done():
			return
		case <-time.After(dm.config.ReconnectInterval):
		}

		logger := dm.currentLogger()
		reconnectCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
		err := dm.Reconnect(reconnectCtx)
		cancel()
		if err != nil {
			logger.Error("reconnect failed", "try", tries, "error", err)
			if tries == dm.config.MaxReconnectTries {
				logger.Error("reconnect attempts exhausted", "tries", tries)
			}
			continue
		}
		logger.Info("reconnected", "try", tries)
		tries = 0
	}
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	sqlDB := dm.GetSQLDB()
	if sqlDB == nil {
		return &DBStats{}
	}

	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context, opts MigrationOptions) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, dm.currentLogger(), opts).RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
