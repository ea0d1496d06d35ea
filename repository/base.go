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
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"

	"github.com/tomoncle/galley/types"
)

// table holds the generic row operations shared by the dish and ingredient
// tables. Every method runs against the bun.IDB it is given, so the same
// code serves a connection or a transaction.
type table[T any] struct {
	name string
}

func (t table[T]) valsToSlice(entity ...*T) []*T {
	entities := make([]*T, len(entity))
	copy(entities, entity)
	return entities
}

func (t table[T]) getOne(ctx context.Context, db bun.IDB, id int64) (*T, error) {
	var entity T
	err := db.NewSelect().Model(&entity).Where("? = ?", bun.Ident("id"), id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// query builds a select over the table with the filters of pr applied in
// order. Joins are added before the filters so joined columns can be used.
func (t table[T]) query(db bun.IDB, dest *[]*T, pr *types.PageRequest, joins ...string) *bun.SelectQuery {
	q := db.NewSelect().Model(dest)
	for _, join := range joins {
		q = q.Join(join)
	}
	for _, f := range pr.GetFilters() {
		q = q.Where(f.Schema, f.Args...)
	}
	return q
}

// page returns one page of rows together with the total row count.
func (t table[T]) page(ctx context.Context, db bun.IDB, pr *types.PageRequest, joins ...string) (*types.Pagination[T], error) {
	if err := pr.Validate(); err != nil {
		return nil, err
	}
	var entities []*T
	query := t.query(db, &entities, pr, joins...)
	pagination := types.NewDefaultPagination[T](pr.GetPage(), pr.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	if err := t.paged(query, pr).Scan(ctx); err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (t table[T]) paged(q *bun.SelectQuery, pr *types.PageRequest) *bun.SelectQuery {
	return q.
		Order(pr.GetOrders()...).
		Limit(pr.GetPageSize()).
		Offset(pr.GetOffset())
}

func (t table[T]) insert(ctx context.Context, db bun.IDB, entity ...*T) error {
	entities := t.valsToSlice(entity...)
	_, err := db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

// upsert inserts the rows and, on a conflict over duplicateKeys (default
// id), overwrites fields with the incoming values.
func (t table[T]) upsert(ctx context.Context, db bun.IDB, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	entities := t.valsToSlice(entity...)
	features := db.Dialect().Features()

	switch {
	case features.Has(feature.InsertOnConflict):
		return t.upsertOnConflict(ctx, db.NewInsert(), fields, duplicateKeys, entities)
	case features.Has(feature.InsertOnDuplicateKey):
		return t.upsertOnDuplicateKey(ctx, db.NewInsert(), fields, entities)
	default:
		return t.upsertFallback(ctx, db, entities)
	}
}

func (t table[T]) upsertOnDuplicateKey(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, entities []*T) error {
	var assignments []string
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", field, field))
	}
	_, err := insertQuery.
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

func (t table[T]) upsertOnConflict(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{"id"}
	}
	var assignments []string
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", field, field))
	}
	_, err := insertQuery.
		Model(&entities).
		On("CONFLICT (" + strings.Join(duplicateKeys, ", ") + ") DO UPDATE").
		Set(strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

// upsertFallback updates each row by primary key and inserts the ones that
// did not exist.
func (t table[T]) upsertFallback(ctx context.Context, db bun.IDB, entities []*T) error {
	for _, entity := range entities {
		res, err := db.NewUpdate().Model(entity).WherePK().Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert %s: update: %w", t.name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			continue
		}
		if _, err := db.NewInsert().Model(entity).Exec(ctx); err != nil {
			return fmt.Errorf("upsert %s: insert: %w", t.name, err)
		}
	}
	return nil
}
