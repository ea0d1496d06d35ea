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

	"github.com/uptrace/bun"

	"github.com/tomoncle/galley/database"
	"github.com/tomoncle/galley/model"
	"github.com/tomoncle/galley/types"
)

type repositoryImpl struct {
	provider    database.ConnectionProvider
	logger      database.Logger
	allocator   identifierAllocator
	dishes      table[dishRow]
	ingredients table[ingredientRow]
}

var _ Repository = (*repositoryImpl)(nil)

// NewRepository returns a Repository taking its connections from provider.
func NewRepository(provider database.ConnectionProvider, opts ...Option) Repository {
	r := &repositoryImpl{
		provider:    provider,
		logger:      database.GetLogger(),
		dishes:      table[dishRow]{name: "dish"},
		ingredients: table[ingredientRow]{name: "ingredient"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithLogger sets the logger used for transaction events.
func WithLogger(logger database.Logger) Option {
	return func(r *repositoryImpl) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func (r *repositoryImpl) FindDishByID(ctx context.Context, id int64) (*model.Dish, error) {
	var dish *model.Dish
	err := r.withConn(ctx, func(conn bun.Conn) error {
		var err error
		dish, err = r.findDishByID(ctx, conn, id)
		return err
	})
	return dish, err
}

func (r *repositoryImpl) findDishByID(ctx context.Context, db bun.IDB, id int64) (*model.Dish, error) {
	row, err := r.dishes.getOne(ctx, db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "dish", ID: id}
	}
	if err != nil {
		return nil, &QueryError{Op: "find dish", Cause: err}
	}
	dish, err := mapDish(row)
	if err != nil {
		return nil, err
	}
	dish.Ingredients, err = r.findIngredientsByDishID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return dish, nil
}

func (r *repositoryImpl) FindDishesByIngredientName(ctx context.Context, term string) ([]*model.Dish, error) {
	var dishes []*model.Dish
	err := r.withConn(ctx, func(conn bun.Conn) error {
		var rows []*dishRow
		err := conn.NewSelect().
			Model(&rows).
			Distinct().
			Join("JOIN ingredient AS i ON i.id_dish = d.id").
			Where("LOWER(i.name) LIKE ?", containsPattern(term)).
			OrderExpr("d.id ASC").
			Scan(ctx)
		if err != nil {
			return &QueryError{Op: "find dishes by ingredient name", Cause: err}
		}
		dishes, err = mapDishes(rows)
		return err
	})
	return dishes, err
}

func (r *repositoryImpl) FindIngredients(ctx context.Context, page, size int) (*types.Pagination[model.Ingredient], error) {
	pr := types.NewPageRequestWithOrders(page, size, "i.name ASC", "i.id ASC")
	if err := pr.Validate(); err != nil {
		return nil, &QueryError{Op: "find ingredients", Cause: err}
	}

	var result *types.Pagination[model.Ingredient]
	err := r.withConn(ctx, func(conn bun.Conn) error {
		rows, err := r.ingredients.page(ctx, conn, pr)
		if err != nil {
			return &QueryError{Op: "find ingredients", Cause: err}
		}
		items, err := mapIngredients(rows.Items)
		if err != nil {
			return err
		}
		result = &types.Pagination[model.Ingredient]{
			Page:     rows.Page,
			PageSize: rows.PageSize,
			Total:    rows.Total,
			Items:    items,
		}
		return nil
	})
	return result, err
}

func (r *repositoryImpl) FindIngredientsByCriteria(ctx context.Context, criteria Criteria) ([]*model.Ingredient, error) {
	var ingredients []*model.Ingredient
	err := r.withConn(ctx, func(conn bun.Conn) error {
		var rows []*ingredientRow
		q, err := buildCriteriaQuery(conn, criteria, &rows)
		if err != nil {
			return err
		}
		if err := q.Scan(ctx); err != nil {
			return &QueryError{Op: "find ingredients by criteria", Cause: err}
		}
		ingredients, err = mapIngredients(rows)
		return err
	})
	return ingredients, err
}

func (r *repositoryImpl) FindIngredientsByDishID(ctx context.Context, dishID int64) ([]*model.Ingredient, error) {
	var ingredients []*model.Ingredient
	err := r.withConn(ctx, func(conn bun.Conn) error {
		var err error
		ingredients, err = r.findIngredientsByDishID(ctx, conn, dishID)
		return err
	})
	return ingredients, err
}

func (r *repositoryImpl) findIngredientsByDishID(ctx context.Context, db bun.IDB, dishID int64) ([]*model.Ingredient, error) {
	var rows []*ingredientRow
	err := db.NewSelect().
		Model(&rows).
		Where("i.id_dish = ?", dishID).
		OrderExpr("i.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, &QueryError{Op: "find ingredients of dish", Cause: err}
	}
	return mapIngredients(rows)
}

func (r *repositoryImpl) CreateIngredients(ctx context.Context, ingredients []*model.Ingredient) ([]*model.Ingredient, error) {
	if len(ingredients) == 0 {
		return make([]*model.Ingredient, 0), nil
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, &CreateError{Index: -1, Kind: database.UnknownErr, Cause: err}
	}
	defer r.release(conn)

	created := make([]*model.Ingredient, 0, len(ingredients))
	index := 0
	err = r.inTx(ctx, conn, "create_ingredients", func(tx bun.Tx) error {
		for i, ing := range ingredients {
			index = i
			if ing == nil {
				return fmt.Errorf("ingredient is nil")
			}
			if !ing.Category.IsValid() {
				_, err := model.ParseCategory(string(ing.Category))
				return err
			}
			c := ing.Clone()
			if c.ID == 0 {
				id, err := r.allocator.Next(ctx, tx, "ingredient", "id")
				if err != nil {
					return err
				}
				c.ID = id
			}
			if err := r.ingredients.insert(ctx, tx, toIngredientRow(c)); err != nil {
				return err
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, &CreateError{Index: index, Kind: database.ClassifySQLError(err), Cause: err}
	}
	return created, nil
}

func (r *repositoryImpl) SaveDish(ctx context.Context, dish *model.Dish) (*model.Dish, error) {
	if dish == nil {
		return nil, &SaveError{Kind: database.UnknownErr, Cause: fmt.Errorf("dish is nil")}
	}
	if !dish.DishType.IsValid() {
		_, err := model.ParseDishType(string(dish.DishType))
		return nil, &SaveError{DishID: dish.ID, Kind: database.UnknownErr, Cause: err}
	}
	ids, err := relinkSet(dish.Ingredients)
	if err != nil {
		return nil, &SaveError{DishID: dish.ID, Kind: database.UnknownErr, Cause: err}
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, &SaveError{DishID: dish.ID, Kind: database.UnknownErr, Cause: err}
	}
	defer r.release(conn)

	dishID := dish.ID
	err = r.inTx(ctx, conn, "save_dish", func(tx bun.Tx) error {
		if dishID == 0 {
			id, err := r.allocator.Next(ctx, tx, "dish", "id")
			if err != nil {
				return err
			}
			dishID = id
		}
		row := toDishRow(dish)
		row.ID = dishID
		if err := r.dishes.upsert(ctx, tx, dishUpsertFields, []string{"id"}, row); err != nil {
			return fmt.Errorf("upsert dish %d: %w", dishID, err)
		}
		return relink(ctx, tx, dishID, ids)
	})
	if err != nil {
		return nil, &SaveError{DishID: dishID, Kind: database.ClassifySQLError(err), Cause: err}
	}

	return r.findDishByID(ctx, conn, dishID)
}
