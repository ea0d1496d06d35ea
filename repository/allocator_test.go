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
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tomoncle/galley/model"
)

func TestAllocatorResynchronizesCounter(t *testing.T) {
	ctx := context.Background()
	repo, db := newTestRepository(t)

	explicit := model.NewIngredient("Safran", model.CategoryOther, decimal.NewFromInt(9000))
	explicit.ID = 50
	if _, err := repo.CreateIngredients(ctx, []*model.Ingredient{explicit}); err != nil {
		t.Fatalf("CreateIngredients(id 50) error = %v", err)
	}
	if _, err := db.ExecContext(ctx, "UPDATE sqlite_sequence SET seq = 10 WHERE name = 'ingredient'"); err != nil {
		t.Fatalf("rewind sequence: %v", err)
	}

	out, err := repo.CreateIngredients(ctx, []*model.Ingredient{
		model.NewIngredient("Vanille", model.CategoryOther, decimal.NewFromInt(7000)),
	})
	if err != nil {
		t.Fatalf("CreateIngredients() error = %v", err)
	}
	if out[0].ID != 51 {
		t.Fatalf("id = %d, want 51", out[0].ID)
	}
}

func TestAllocatorEmptyTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if _, err := db.ExecContext(ctx, "CREATE TABLE supplier (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	var alloc identifierAllocator
	for want := int64(1); want <= 2; want++ {
		id, err := alloc.Next(ctx, db, "supplier", "id")
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if id != want {
			t.Fatalf("Next() = %d, want %d", id, want)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO supplier (id, name) VALUES (?, ?)", id, "s"); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
}

func TestAllocatorNoSequence(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if _, err := db.ExecContext(ctx, "CREATE TABLE plain (id INTEGER PRIMARY KEY, name TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	cases := []struct {
		table  string
		column string
	}{
		{"plain", "id"},
		{"missing", "id"},
		{"ingredient", "name"},
	}
	var alloc identifierAllocator
	for _, tc := range cases {
		t.Run(tc.table+"."+tc.column, func(t *testing.T) {
			_, err := alloc.Next(ctx, db, tc.table, tc.column)
			var ns *NoSequenceError
			if !errors.As(err, &ns) {
				t.Fatalf("Next() error = %v, want *NoSequenceError", err)
			}
			if ns.Table != tc.table || ns.Column != tc.column {
				t.Fatalf("NoSequenceError = %+v", ns)
			}
		})
	}
}
