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
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// BaseDatabaseFactory builds the database manager from configuration and
// runs the startup sequence against it.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a new database factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{logger: GetLogger()}
}

// CreateFromConfig applies the DB_* environment overrides to cfg and
// constructs a manager for it.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *ConnectionConfig) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	applyConnectionEnv(cfg)
	if _, ok := openers[cfg.Type]; !ok {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", cfg.Type, supportedTypes())
	}

	manager := NewDatabaseManager(cfg)
	manager.SetLogger(f.logger)
	f.manager = manager
	return manager, nil
}

// connectionEnv maps environment variables onto connection settings.
// Values that fail to parse are ignored.
var connectionEnv = map[string]func(cfg *ConnectionConfig, v string){
	"DB_TYPE":                  func(cfg *ConnectionConfig, v string) { cfg.Type = v },
	"DB_HOST":                  func(cfg *ConnectionConfig, v string) { cfg.Host = v },
	"DB_PORT":                  func(cfg *ConnectionConfig, v string) { setInt(&cfg.Port, v) },
	"DB_USERNAME":              func(cfg *ConnectionConfig, v string) { cfg.Username = v },
	"DB_PASSWORD":              func(cfg *ConnectionConfig, v string) { cfg.Password = v },
	"DB_NAME":                  func(cfg *ConnectionConfig, v string) { cfg.DBName = v },
	"DB_SSLMODE":               func(cfg *ConnectionConfig, v string) { cfg.SSLMode = v },
	"DB_MAX_IDLE_CONNS":        func(cfg *ConnectionConfig, v string) { setInt(&cfg.MaxIdleConns, v) },
	"DB_MAX_OPEN_CONNS":        func(cfg *ConnectionConfig, v string) { setInt(&cfg.MaxOpenConns, v) },
	"DB_CONN_MAX_LIFETIME":     func(cfg *ConnectionConfig, v string) { setSeconds(&cfg.ConnMaxLifetime, v) },
	"DB_ENABLE_RECONNECT":      func(cfg *ConnectionConfig, v string) { cfg.EnableReconnect = v == "true" },
	"DB_RECONNECT_INTERVAL":    func(cfg *ConnectionConfig, v string) { setSeconds(&cfg.ReconnectInterval, v) },
	"DB_MAX_RECONNECT_TRIES":   func(cfg *ConnectionConfig, v string) { setInt(&cfg.MaxReconnectTries, v) },
	"DB_HEALTH_CHECK_INTERVAL": func(cfg *ConnectionConfig, v string) { setDuration(&cfg.HealthCheckInterval, v) },
	"DB_ENABLE_QUERY_LOG":      func(cfg *ConnectionConfig, v string) { cfg.EnableQueryLog = v == "true" },
	"DB_SLOW_QUERY_TIME":       func(cfg *ConnectionConfig, v string) { setDuration(&cfg.SlowQueryTime, v) },
}

func applyConnectionEnv(cfg *ConnectionConfig) {
	for key, apply := range connectionEnv {
		if v := os.Getenv(key); v != "" {
			apply(cfg, v)
		}
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setSeconds(dst *time.Duration, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
	}
}

func setDuration(dst *time.Duration, v string) {
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

// InitializeDatabase connects and, when opts is not nil, runs the menu
// migrations with them.
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
	f.logger.Info("Database initialization completed")
	return nil
}

func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the current pool of the manager, or nil before it connects.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{LastError: ErrNotInitialized.Error(), LastCheckTime: time.Now()}
	}
	return f.manager.HealthCheck(ctx)
}

func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
