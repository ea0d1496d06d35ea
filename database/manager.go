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
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// opener opens an unpinged pool for one database type.
type opener func(cfg *ConnectionConfig) (*sql.DB, schema.Dialect, error)

var openers = map[string]opener{
	"mysql":      openMySQL,
	"postgres":   openPostgres,
	"postgresql": openPostgres,
	"sqlite":     openSQLite,
	"sqlite3":    openSQLite,
}

// supportedTypes lists the accepted ConnectionConfig.Type values.
func supportedTypes() []string {
	names := make([]string, 0, len(openers))
	for name := range openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func openMySQL(cfg *ConnectionConfig) (*sql.DB, schema.Dialect, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout)
	sqlDB, err := sql.Open("mysql", dsn)
	return sqlDB, mysqldialect.New(), err
}

func openPostgres(cfg *ConnectionConfig) (*sql.DB, schema.Dialect, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		sslMode, int(cfg.ConnectTimeout.Seconds()))
	sqlDB, err := sql.Open("postgres", dsn)
	return sqlDB, pgdialect.New(), err
}

func openSQLite(cfg *ConnectionConfig) (*sql.DB, schema.Dialect, error) {
	sqlDB, err := sql.Open(sqliteshim.ShimName, sqliteDSN(cfg.DBName))
	return sqlDB, sqlitedialect.New(), err
}

// sqliteDSN turns DBName into a sqlite data source. In-memory databases
// live only as long as their connection, so callers using them should
// also cap the pool at one connection.
func sqliteDSN(name string) string {
	switch {
	case name == ":memory:":
		return "file::memory:?cache=shared"
	case strings.HasPrefix(name, "file:"):
		return name
	case strings.HasSuffix(name, ".db"):
		return name
	default:
		return name + ".db"
	}
}

type defaultDatabaseManager struct {
	config   *ConnectionConfig
	logger   Logger
	provider ConnectionProvider

	mu             sync.RWMutex
	db             *bun.DB
	healthStatus   *HealthStatus
	reconnectTries int
	stopWatch      context.CancelFunc
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun. A nil
// config falls back to DefaultConnectionConfig.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	dm := &defaultDatabaseManager{
		config:       config,
		logger:       GetLogger(),
		healthStatus: &HealthStatus{},
	}
	dm.provider = NewResolvingProvider(dm.GetDB)
	return dm
}

// open creates, tunes and pings a new pool without touching the current one.
func (dm *defaultDatabaseManager) open(ctx context.Context) (*bun.DB, error) {
	openPool, ok := openers[dm.config.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}
	sqlDB, dialect, err := openPool(dm.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)

	db := bun.NewDB(sqlDB, dialect)
	if dm.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true), bundebug.FromEnv("BUNDEBUG")))
	}
	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(dm.config.SlowQueryTime, dm.logger))
	}

	pingCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}
	return db, nil
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.db != nil {
		return nil
	}

	db, err := dm.open(ctx)
	if err != nil {
		return err
	}
	dm.db = db
	dm.reconnectTries = 0
	if dm.config.HealthCheckInterval > 0 && dm.stopWatch == nil {
		watchCtx, cancel := context.WithCancel(context.Background())
		dm.stopWatch = cancel
		go dm.watch(watchCtx)
	}
	dm.logger.Info("Database connected", "type", dm.config.Type, "host", dm.config.Host, "dbname", dm.config.DBName)
	return nil
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.stopWatch != nil {
		dm.stopWatch()
		dm.stopWatch = nil
	}
	if dm.db == nil {
		return nil
	}
	err := dm.db.Close()
	dm.db = nil
	if err != nil {
		dm.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	dm.logger.Info("Database connection closed")
	return nil
}

// Reconnect opens a fresh pool and swaps it in before closing the old one,
// so callers holding the provider never see a gap. The health watcher keeps
// running.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	dm.logger.Info("Reconnecting to the database", "type", dm.config.Type)
	db, err := dm.open(ctx)
	if err != nil {
		return err
	}

	dm.mu.Lock()
	old := dm.db
	dm.db = db
	dm.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			dm.logger.Warn("Error closing replaced pool", "error", err)
		}
	}
	return nil
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return ErrNotInitialized
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) Provider() ConnectionProvider {
	return dm.provider
}

func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	db := dm.GetDB()
	if db == nil {
		status.LastError = ErrNotInitialized.Error()
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		status.ResponseTime = time.Since(start)
		if err != nil {
			status.LastError = err.Error()
		} else {
			status.Healthy = true
			status.Connected = true
		}
		stats := db.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}

	dm.mu.Lock()
	dm.healthStatus = status
	dm.mu.Unlock()
	return status
}

// watch runs checkAndReconnect on every health check tick until ctx is cancelled.
func (dm *defaultDatabaseManager) watch(ctx context.Context) {
	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			dm.checkAndReconnect(checkCtx)
			cancel()
		}
	}
}

// checkAndReconnect checks the pool and reconnects when it is unhealthy, giving up
// after MaxReconnectTries consecutive failures. It reports whether the pool
// is healthy afterwards.
func (dm *defaultDatabaseManager) checkAndReconnect(ctx context.Context) bool {
	if dm.HealthCheck(ctx).Healthy {
		dm.setReconnectTries(0)
		return true
	}
	if !dm.config.EnableReconnect {
		return false
	}

	dm.mu.Lock()
	tries := dm.reconnectTries
	if tries < dm.config.MaxReconnectTries {
		dm.reconnectTries++
	}
	dm.mu.Unlock()
	if tries >= dm.config.MaxReconnectTries {
		dm.logger.Error("Max reconnect attempts reached", "tries", tries)
		return false
	}

	if dm.config.ReconnectInterval > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(dm.config.ReconnectInterval):
		}
	}
	if err := dm.Reconnect(ctx); err != nil {
		dm.logger.Error("Reconnect failed", "error", err, "try", tries+1)
		return false
	}
	dm.setReconnectTries(0)
	dm.logger.Info("Reconnect succeeded", "try", tries+1)
	return true
}

func (dm *defaultDatabaseManager) setReconnectTries(n int) {
	dm.mu.Lock()
	dm.reconnectTries = n
	dm.mu.Unlock()
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	db := dm.GetDB()
	if db == nil {
		return &DBStats{}
	}
	stats := db.Stats()
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
		return ErrNotInitialized
	}
	return NewMigrationManager(db, dm.logger, opts).RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) InitData(ctx context.Context, opts MigrationOptions) error {
	db := dm.GetDB()
	if db == nil {
		return ErrNotInitialized
	}
	return NewMigrationManager(db, dm.logger, opts).InitData(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
