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
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// AbstractDatabaseManager owns the connection pool of one database. A
// reconnect replaces the pool; the ConnectionProvider returned by Provider
// always takes connections from the current one.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	GetDB() *bun.DB
	Provider() ConnectionProvider
	HealthCheck(ctx context.Context) *HealthStatus
	GetStats() *DBStats
	RunMigrations(ctx context.Context, opts MigrationOptions) error
	InitData(ctx context.Context, opts MigrationOptions) error
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type                string        `yaml:"type"` // postgres, mysql or sqlite
	Host                string        `yaml:"host"`
	Port                int           `yaml:"port"`
	Username            string        `yaml:"username"`
	Password            string        `yaml:"password"`
	DBName              string        `yaml:"dbname"` // sqlite: file name without .db, ":memory:" or a "file:" DSN
	SSLMode             string        `yaml:"sslmode"`
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxOpenConns        int           `yaml:"max_open_conns"`
	ConnMaxLifetime     time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `yaml:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `yaml:"connect_timeout"`
	ReadTimeout         time.Duration `yaml:"read_timeout"`
	WriteTimeout        time.Duration `yaml:"write_timeout"`
	EnableReconnect     bool          `yaml:"enable_reconnect"`
	ReconnectInterval   time.Duration `yaml:"reconnect_interval"`
	MaxReconnectTries   int           `yaml:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	EnableQueryLog      bool          `yaml:"enable_query_log"`
	SlowQueryTime       time.Duration `yaml:"slow_query_time"`
}

// DataMigrateConfig controls schema migration behavior on startup.
type DataMigrateConfig struct {
	EnableMigrateOnStartup bool `yaml:"enable_migrate_on_startup"`
	EnableForeignKey       bool `yaml:"enable_foreign_key"`
}

// DataInitConfig controls seeding. Filepath, when set, replaces the embedded
// seed with <filepath>/common and <filepath>/environments/<environment>.
type DataInitConfig struct {
	AutoInitOnMigration bool   `yaml:"auto_init_on_migration"`
	Filepath            string `yaml:"filepath"`
	Environment         string `yaml:"environment"`
}

// IdentifierConfig tunes identifier allocation for inserts without an id.
type IdentifierConfig struct {
	// LockOnAllocate takes a table lock before the counter is resynchronized
	// so that no other writer can insert between allocation and insert.
	LockOnAllocate bool `yaml:"lock_on_allocate"`
}

// Config aggregates connection, migration, data initialization and
// identifier allocation settings.
type Config struct {
	ConnectionConfig  ConnectionConfig  `yaml:"connection"`
	DataMigrateConfig DataMigrateConfig `yaml:"migrate"`
	DataInitConfig    DataInitConfig    `yaml:"init"`
	IdentifierConfig  IdentifierConfig  `yaml:"identifier"`
}

// MigrationOptions returns the options the migration manager runs with.
func (c *Config) MigrationOptions() MigrationOptions {
	return MigrationOptions{
		ForeignKeys: c.DataMigrateConfig.EnableForeignKey,
		Seed:        c.DataInitConfig.AutoInitOnMigration,
		SeedPath:    c.DataInitConfig.Filepath,
		Environment: c.DataInitConfig.Environment,
	}
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: time.Minute * 5,
		EnableQueryLog:      false,
		SlowQueryTime:       time.Second * 2,
	}
}

// DefaultConfig returns a local sqlite configuration that installs the
// schema on startup.
func DefaultConfig() *Config {
	conn := DefaultConnectionConfig()
	conn.Type = "sqlite"
	conn.DBName = "galley"
	return &Config{
		ConnectionConfig: *conn,
		DataMigrateConfig: DataMigrateConfig{
			EnableMigrateOnStartup: true,
			EnableForeignKey:       true,
		},
		DataInitConfig: DataInitConfig{
			Environment: "prod",
		},
	}
}

// dialectDir maps a bun dialect to the directory holding its SQL files.
func dialectDir(name dialect.Name) (string, bool) {
	switch name {
	case dialect.PG:
		return "postgres", true
	case dialect.MySQL:
		return "mysql", true
	case dialect.SQLite:
		return "sqlite", true
	default:
		return "", false
	}
}
