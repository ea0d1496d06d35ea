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

	"github.com/tomoncle/galley/model"
	"github.com/tomoncle/galley/types"
)

// DishRepository reads and saves dishes.
type DishRepository interface {
	// FindDishByID returns the dish with its ingredients, or *NotFoundError.
	FindDishByID(ctx context.Context, id int64) (*model.Dish, error)

	// FindDishesByIngredientName returns the distinct dishes using an
	// ingredient whose name contains term, ignoring case. Ingredients are
	// not loaded.
	FindDishesByIngredientName(ctx context.Context, term string) ([]*model.Dish, error)

	// SaveDish inserts or overwrites the dish and makes its ingredient list
	// the exact set of ingredients linked to it. It returns the dish as
	// stored.
	SaveDish(ctx context.Context, dish *model.Dish) (*model.Dish, error)
}

// IngredientRepository reads and creates ingredients.
type IngredientRepository interface {
	FindIngredients(ctx context.Context, page, size int) (*types.Pagination[model.Ingredient], error)
	FindIngredientsByCriteria(ctx context.Context, criteria Criteria) ([]*model.Ingredient, error)
	FindIngredientsByDishID(ctx context.Context, dishID int64) ([]*model.Ingredient, error)

	// CreateIngredients inserts all ingredients in one transaction and
	// returns copies carrying their ids.
	CreateIngredients(ctx context.Context, ingredients []*model.Ingredient) ([]*model.Ingredient, error)
}

// Repository is the full menu data-access surface.
type Repository interface {
	DishRepository
	IngredientRepository
}

// Criteria filters ingredients. Empty fields do not filter.
type Criteria struct {
	Name     string
	Category model.Category
	DishName string
	Page     int
	Size     int
}

// Option configures a repository.
type Option func(*repositoryImpl)

// WithTableLock makes the identifier allocator lock the target table before
// resynchronizing its counter.
func WithTableLock(lock bool) Option {
	return func(r *repositoryImpl) {
		r.allocator.lockTable = lock
	}
}
