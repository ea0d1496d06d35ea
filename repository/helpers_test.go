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
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tomoncle/galley/database"
)

// openTestDB returns a private in-memory sqlite database with the menu
// schema and the common seed applied.
func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	mm := database.NewMigrationManager(db, nil, database.MigrationOptions{Seed: true})
	if err := mm.RunMigrations(context.Background()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func newTestRepository(t *testing.T) (Repository, *bun.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewRepository(database.NewPoolProvider(db)), db
}

// countingProvider counts the connections handed out by the wrapped
// provider.
type countingProvider struct {
	database.ConnectionProvider
	acquired atomic.Int32
	released atomic.Int32
}

func (p *countingProvider) Acquire(ctx context.Context) (bun.Conn, error) {
	p.acquired.Add(1)
	return p.ConnectionProvider.Acquire(ctx)
}

func (p *countingProvider) Release(conn bun.Conn) error {
	p.released.Add(1)
	return p.ConnectionProvider.Release(conn)
}
