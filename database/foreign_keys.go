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
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	ConstraintName  string
}

// GenerateConstraintName returns the explicit name or fk_<table>_<column>.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// GenerateSQL returns the ALTER TABLE statement adding the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		fk.Table, fk.GenerateConstraintName(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		sql += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	return sql
}

// Validate checks that every side of the relation is named and the delete
// action is one the supported dialects accept.
func (fk *ForeignKeyConstraint) Validate() error {
	if fk.Table == "" || fk.Column == "" || fk.ReferenceTable == "" || fk.ReferenceColumn == "" {
		return fmt.Errorf("incomplete foreign key %s: %s.%s -> %s.%s",
			fk.GenerateConstraintName(), fk.Table, fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	}
	switch strings.ToUpper(fk.OnDelete) {
	case "", "CASCADE", "RESTRICT", "SET NULL", "NO ACTION":
		return nil
	default:
		return fmt.Errorf("invalid delete policy %q on %s", fk.OnDelete, fk.GenerateConstraintName())
	}
}

// MenuForeignKeys lists the constraints of the menu schema. Deleting a dish
// leaves its ingredients in the catalogue, unlinked.
func MenuForeignKeys() []ForeignKeyConstraint {
	return []ForeignKeyConstraint{
		{
			Table:           "ingredient",
			Column:          "id_dish",
			ReferenceTable:  "dish",
			ReferenceColumn: "id",
			OnDelete:        "SET NULL",
			ConstraintName:  "fk_ingredient_id_dish",
		},
	}
}

// ForeignKeyManager adds the menu constraints to an existing schema.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &ForeignKeyManager{constraints: MenuForeignKeys(), logger: logger}
}

// AddAllForeignKeys adds each constraint that the database does not have yet.
// sqlite cannot add constraints to existing tables, its schema declares them
// inline instead.
func (fkm *ForeignKeyManager) AddAllForeignKeys(ctx context.Context, db bun.IDB) error {
	if db.Dialect().Name() == dialect.SQLite {
		fkm.logger.Debug("Foreign keys declared inline on sqlite, skipping")
		return nil
	}
	for _, fk := range fkm.constraints {
		if err := fk.Validate(); err != nil {
			return err
		}
		name := fk.GenerateConstraintName()
		exists, err := fkm.constraintExists(ctx, db, fk)
		if err != nil {
			return fmt.Errorf("failed to inspect constraint %s: %w", name, err)
		}
		if exists {
			fkm.logger.Debug("Foreign key constraint already present", "constraint", name)
			continue
		}
		if _, err := db.ExecContext(ctx, fk.GenerateSQL()); err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", name, err)
		}
		fkm.logger.Info("Added foreign key constraint", "constraint", name)
	}
	return nil
}

func (fkm *ForeignKeyManager) constraintExists(ctx context.Context, db bun.IDB, fk ForeignKeyConstraint) (bool, error) {
	q := db.NewSelect().
		TableExpr("information_schema.table_constraints").
		Where("constraint_type = 'FOREIGN KEY'").
		Where("table_name = ?", fk.Table).
		Where("constraint_name = ?", fk.GenerateConstraintName())
	if db.Dialect().Name() == dialect.MySQL {
		q = q.Where("table_schema = DATABASE()")
	} else {
		q = q.Where("table_schema = current_schema()")
	}
	n, err := q.Count(ctx)
	return n > 0, err
}

// ListAllConstraints returns the managed constraints.
func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}
