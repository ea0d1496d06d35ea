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

// Package galley is the menu service: dishes, their ingredients and the
// ingredient catalogue, stored through the global database.
package galley

import (
	"context"

	"github.com/tomoncle/galley/database"
	"github.com/tomoncle/galley/model"
	"github.com/tomoncle/galley/repository"
	"github.com/tomoncle/galley/types"
)

type MenuService interface {
	// FindDishByID returns a dish with its ingredients.
	FindDishByID(ctx context.Context, id int64) (*model.Dish, error)

	// FindIngredients returns one page of the catalogue ordered by name.
	FindIngredients(ctx context.Context, page, size int) (*types.Pagination[model.Ingredient], error)

	// FindIngredientsByCriteria filters the catalogue by name, category and
	// dish name.
	FindIngredientsByCriteria(ctx context.Context, criteria repository.Criteria) ([]*model.Ingredient, error)

	// FindDishesByIngredientName returns the dishes using a matching
	// ingredient.
	FindDishesByIngredientName(ctx context.Context, term string) ([]*model.Dish, error)

	// CreateIngredients adds ingredients to the catalogue, all or none.
	CreateIngredients(ctx context.Context, ingredients ...*model.Ingredient) ([]*model.Ingredient, error)

	// SaveDish creates or updates a dish and its ingredient links.
	SaveDish(ctx context.Context, dish *model.Dish) (*model.Dish, error)
}

type menuServiceImpl struct {
	repo repository.Repository
}

// NewMenuService returns a MenuService over the global database. Every call
// resolves the current pool and configuration, so the service may be created
// before database.InitDB runs and survives reconnects.
func NewMenuService() MenuService {
	return &menuServiceImpl{}
}

// NewMenuServiceWithRepository returns a MenuService over repo.
func NewMenuServiceWithRepository(repo repository.Repository) MenuService {
	return &menuServiceImpl{repo: repo}
}

func (s *menuServiceImpl) menuRepo() repository.Repository {
	if s.repo != nil {
		return s.repo
	}
	return repository.NewRepository(
		database.GetProvider(),
		repository.WithTableLock(database.GetConfig().IdentifierConfig.LockOnAllocate),
	)
}

func (s *menuServiceImpl) FindDishByID(ctx context.Context, id int64) (*model.Dish, error) {
	return s.menuRepo().FindDishByID(ctx, id)
}

func (s *menuServiceImpl) FindIngredients(ctx context.Context, page, size int) (*types.Pagination[model.Ingredient], error) {
	return s.menuRepo().FindIngredients(ctx, page, size)
}

func (s *menuServiceImpl) FindIngredientsByCriteria(ctx context.Context, criteria repository.Criteria) ([]*model.Ingredient, error) {
	return s.menuRepo().FindIngredientsByCriteria(ctx, criteria)
}

func (s *menuServiceImpl) FindDishesByIngredientName(ctx context.Context, term string) ([]*model.Dish, error) {
	return s.menuRepo().FindDishesByIngredientName(ctx, term)
}

func (s *menuServiceImpl) CreateIngredients(ctx context.Context, ingredients ...*model.Ingredient) ([]*model.Ingredient, error) {
	return s.menuRepo().CreateIngredients(ctx, ingredients)
}

func (s *menuServiceImpl) SaveDish(ctx context.Context, dish *model.Dish) (*model.Dish, error) {
	return s.menuRepo().SaveDish(ctx, dish)
}
