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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// identifierAllocator hands out ids for rows inserted with an explicit id.
// Seed data and imports write explicit ids without moving the table's
// counter, so the counter is first reset to the current maximum and then
// advanced, which keeps the next id past every existing row.
//
// Between the reset and the insert another writer may take the same value.
// lockTable closes that window on postgres; mysql reads the maximum with a
// locking read and sqlite serializes writers on the database lock.
type identifierAllocator struct {
	lockTable bool
}

// Next returns the next free id of table.column. db must be the transaction
// that performs the insert.
func (a identifierAllocator) Next(ctx context.Context, db bun.IDB, table, column string) (int64, error) {
	switch db.Dialect().Name() {
	case dialect.PG:
		return a.nextPostgres(ctx, db, table, column)
	case dialect.SQLite:
		return a.nextSQLite(ctx, db, table, column)
	case dialect.MySQL:
		return a.nextMySQL(ctx, db, table, column)
	default:
		return 0, &NoSequenceError{Table: table, Column: column}
	}
}

func (a identifierAllocator) nextPostgres(ctx context.Context, db bun.IDB, table, column string) (int64, error) {
	var seq sql.NullString
	if err := db.NewRaw("SELECT pg_get_serial_sequence(?, ?)", table, column).Scan(ctx, &seq); err != nil {
		return 0, fmt.Errorf("resolve sequence of %s.%s: %w", table, column, err)
	}
	if !seq.Valid || seq.String == "" {
		return 0, &NoSequenceError{Table: table, Column: column}
	}

	if a.lockTable {
		if _, err := db.ExecContext(ctx, "LOCK TABLE ? IN SHARE ROW EXCLUSIVE MODE", bun.Ident(table)); err != nil {
			return 0, fmt.Errorf("lock %s: %w", table, err)
		}
	}

	// is_called = false: the following nextval returns max+1 itself, which
	// also holds for an empty table.
	var reset int64
	if err := db.NewRaw("SELECT setval(?, COALESCE((SELECT MAX(?) FROM ?), 0) + 1, false)",
		seq.String, bun.Ident(column), bun.Ident(table)).Scan(ctx, &reset); err != nil {
		return 0, fmt.Errorf("reset sequence %s: %w", seq.String, err)
	}

	var id int64
	if err := db.NewRaw("SELECT nextval(?)", seq.String).Scan(ctx, &id); err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", seq.String, err)
	}
	return id, nil
}

func (a identifierAllocator) nextSQLite(ctx context.Context, db bun.IDB, table, column string) (int64, error) {
	// Only AUTOINCREMENT tables keep a row in sqlite_sequence, and only for
	// their INTEGER PRIMARY KEY column.
	var ddl sql.NullString
	err := db.NewRaw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(ctx, &ddl)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !strings.Contains(strings.ToUpper(ddl.String), "AUTOINCREMENT")) {
		return 0, &NoSequenceError{Table: table, Column: column}
	}
	if err != nil {
		return 0, fmt.Errorf("inspect %s: %w", table, err)
	}
	var pk int
	if err := db.NewRaw("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ? AND pk = 1", table, column).Scan(ctx, &pk); err != nil {
		return 0, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	if pk == 0 {
		return 0, &NoSequenceError{Table: table, Column: column}
	}

	var max int64
	if err := db.NewRaw("SELECT COALESCE(MAX(?), 0) FROM ?", bun.Ident(column), bun.Ident(table)).Scan(ctx, &max); err != nil {
		return 0, fmt.Errorf("read max %s.%s: %w", table, column, err)
	}
	res, err := db.ExecContext(ctx, "UPDATE sqlite_sequence SET seq = ? WHERE name = ?", max, table)
	if err != nil {
		return 0, fmt.Errorf("reset sequence of %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := db.ExecContext(ctx, "INSERT INTO sqlite_sequence (name, seq) VALUES (?, ?)", table, max); err != nil {
			return 0, fmt.Errorf("create sequence of %s: %w", table, err)
		}
	}
	if _, err := db.ExecContext(ctx, "UPDATE sqlite_sequence SET seq = seq + 1 WHERE name = ?", table); err != nil {
		return 0, fmt.Errorf("advance sequence of %s: %w", table, err)
	}

	var id int64
	if err := db.NewRaw("SELECT seq FROM sqlite_sequence WHERE name = ?", table).Scan(ctx, &id); err != nil {
		return 0, fmt.Errorf("read sequence of %s: %w", table, err)
	}
	return id, nil
}

func (a identifierAllocator) nextMySQL(ctx context.Context, db bun.IDB, table, column string) (int64, error) {
	var auto int
	err := db.NewRaw(`SELECT COUNT(*) FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?
		AND EXTRA LIKE '%auto_increment%'`, table, column).Scan(ctx, &auto)
	if err != nil {
		return 0, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	if auto == 0 {
		return 0, &NoSequenceError{Table: table, Column: column}
	}

	// InnoDB moves AUTO_INCREMENT past an explicitly inserted id, so max+1
	// under a locking read is both the reset and the advance.
	var id int64
	if err := db.NewRaw("SELECT COALESCE(MAX(?), 0) + 1 FROM ? FOR UPDATE",
		bun.Ident(column), bun.Ident(table)).Scan(ctx, &id); err != nil {
		return 0, fmt.Errorf("read max %s.%s: %w", table, column, err)
	}
	return id, nil
}
