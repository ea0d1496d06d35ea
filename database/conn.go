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

// GetDB returns the current global pool, or nil before InitDB.
func GetDB() *bun.DB {
	if globalFactory == nil {
		return nil
	}
	return globalFactory.GetDB()
}

// GetConfig returns the configuration passed to InitDB, or DefaultConfig
// when the database has not been initialized.
func GetConfig() *Config {
	if globalConfig != nil {
		return globalConfig
	}
	return DefaultConfig()
}

// GetProvider returns a ConnectionProvider over the global database. The
// pool is looked up on every Acquire, so the provider may be obtained
// before InitDB and keeps working across reconnects.
func GetProvider() ConnectionProvider {
	return NewResolvingProvider(GetDB)
}

// GetDatabaseManager returns the global database manager.
func GetDatabaseManager() AbstractDatabaseManager {
	if globalFactory == nil {
		return nil
	}
	return globalFactory.GetManager()
}

// InitDB initializes the global database and runs the migrations when
// migrate.enable_migrate_on_startup is set.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	factory := NewDatabaseFactory()
	manager, err := factory.CreateFromConfig(&cfg.ConnectionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	var opts *MigrationOptions
	if cfg.DataMigrateConfig.EnableMigrateOnStartup {
		o := cfg.MigrationOptions()
		opts = &o
	}
	if err := factory.InitializeDatabase(context.Background(), opts); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	globalFactory = factory
	globalConfig = cfg
	return manager.GetDB(), nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	if globalFactory == nil {
		return nil
	}
	return globalFactory.Close()
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalFactory == nil {
		return &HealthStatus{LastError: ErrNotInitialized.Error()}
	}
	return globalFactory.GetHealthStatus(ctx)
}

// GetDatabaseStats returns global database statistics.
func GetDatabaseStats() *DBStats {
	if globalFactory == nil {
		return &DBStats{}
	}
	return globalFactory.GetStats()
}

// RunMigrations applies pending migrations to the global database.
func RunMigrations(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return ErrNotInitialized
	}
	return manager.RunMigrations(ctx, GetConfig().MigrationOptions())
}

// InitData seeds the menu tables of the global database.
func InitData(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return ErrNotInitialized
	}
	return manager.InitData(ctx, GetConfig().MigrationOptions())
}
