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
	"path"
	"sort"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// MigrationOptions selects the optional migration steps.
type MigrationOptions struct {
	ForeignKeys bool
	Seed        bool
	// SeedPath is a directory holding common/ and environments/<env>/ seed
	// files. Empty means the embedded seed.
	SeedPath    string
	Environment string
}

// MigrationManager applies the menu schema, constraints and seed data.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	opts   MigrationOptions
}

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name,notnull"`
	AppliedAt   time.Time `bun:"applied_at,notnull"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

func NewMigrationManager(db *bun.DB, logger Logger, opts MigrationOptions) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{db: db, logger: logger, opts: opts}
}

// RunMigrations creates the tracking table if needed and applies pending
// migrations in version order, each in its own transaction.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableQueryLogSilent(true)
		defer EnableQueryLogSilent(false)
	}

	if err := mm.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := mm.getAllMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}

	mm.logger.Info("Database migrations completed!", "dialect", mm.db.Dialect().Name().String())
	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	migrations := []MigrationItem{
		{
			Version:     "001",
			Name:        "create_menu_schema",
			Description: "Create dish and ingredient tables",
			Up:          mm.createMenuSchema,
		},
	}
	if mm.opts.ForeignKeys && mm.db.Dialect().Name() != dialect.SQLite {
		migrations = append(migrations, MigrationItem{
			Version:     "002",
			Name:        "add_foreign_keys",
			Description: "Link ingredient.id_dish to dish.id",
			Up:          mm.addForeignKeys,
		})
	}
	if mm.opts.Seed {
		migrations = append(migrations, MigrationItem{
			Version:     "003",
			Name:        "seed_menu_data",
			Description: "Load the dish and ingredient catalogue",
			Up:          mm.seedMenuData,
		})
	}
	return migrations
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := mm.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func(tx bun.Tx) {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				mm.logger.Error("Failed to rollback transaction", "error", rollbackErr)
			}
		}
	}(tx)

	if err := migration.Up(ctx, tx); err != nil {
		return err
	}

	record := &Migration{
		Version:     migration.Version,
		Name:        migration.Name,
		AppliedAt:   time.Now(),
		Description: migration.Description,
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	mm.logger.Info("Migration executed successfully", "version", migration.Version, "name", migration.Name)
	return nil
}

func (mm *MigrationManager) createMenuSchema(ctx context.Context, db bun.IDB) error {
	dir, ok := dialectDir(db.Dialect().Name())
	if !ok {
		return fmt.Errorf("no menu schema for dialect %s", db.Dialect().Name())
	}
	fsys, err := EmbeddedSQL("schema")
	if err != nil {
		return err
	}
	results, err := NewSQLInitManager(fsys, mm.logger).Execute(ctx, db, dir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("menu schema for %s is empty", dir)
	}
	return nil
}

func (mm *MigrationManager) addForeignKeys(ctx context.Context, db bun.IDB) error {
	return NewForeignKeyManager(mm.logger).AddAllForeignKeys(ctx, db)
}

// InitData loads the seed files outside the migration bookkeeping.
func (mm *MigrationManager) InitData(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return mm.seedMenuData(ctx, tx)
	})
}

func (mm *MigrationManager) seedMenuData(ctx context.Context, db bun.IDB) error {
	fsys, err := SeedFS(mm.opts.SeedPath)
	if err != nil {
		return err
	}
	dirs := []string{"common"}
	if mm.opts.Environment != "" {
		dirs = append(dirs, path.Join("environments", mm.opts.Environment))
	}

	mm.logger.Info("Starting data initialization using SQL files",
		"environment", mm.opts.Environment, "source", seedSource(mm.opts.SeedPath))
	results, err := NewSQLInitManager(fsys, mm.logger).Execute(ctx, db, dirs...)
	if err != nil {
		return fmt.Errorf("SQL file initialization failed: %w", err)
	}
	mm.logger.Info("SQL file initialization completed", "files", len(results))
	return nil
}

func seedSource(seedPath string) string {
	if seedPath == "" {
		return "embedded"
	}
	return seedPath
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}
