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

package galley

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tomoncle/galley/database"
	"github.com/tomoncle/galley/model"
	"github.com/tomoncle/galley/repository"
)

func initTestDB(t *testing.T) {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.DBName = filepath.Join(t.TempDir(), "galley.db")
	cfg.ConnectionConfig.MaxOpenConns = 1
	cfg.ConnectionConfig.HealthCheckInterval = 0
	cfg.DataInitConfig.AutoInitOnMigration = true

	if _, err := database.InitDB(cfg); err != nil {
		t.Fatalf("init database error: %v", err)
	}
	t.Cleanup(func() { _ = database.CloseDB() })
}

func TestMenuServiceBeforeInit(t *testing.T) {
	ctx := context.Background()
	svc := NewMenuService()
	if _, err := svc.FindDishByID(ctx, 1); !errors.Is(err, database.ErrNotInitialized) {
		t.Fatalf("FindDishByID() before init error = %v, want ErrNotInitialized", err)
	}

	initTestDB(t)
	dish, err := svc.FindDishByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindDishByID() after init error = %v", err)
	}
	if dish.ID != 1 {
		t.Fatalf("dish id = %d, want 1", dish.ID)
	}
}

func TestMenuServiceAfterReconnect(t *testing.T) {
	ctx := context.Background()
	initTestDB(t)
	svc := NewMenuService()
	if _, err := svc.FindDishByID(ctx, 1); err != nil {
		t.Fatalf("FindDishByID() error = %v", err)
	}

	if err := database.GetDatabaseManager().Reconnect(ctx); err != nil {
		t.Fatalf("Reconnect() error = %v", err)
	}
	dish, err := svc.FindDishByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindDishByID() after reconnect error = %v", err)
	}
	if len(dish.Ingredients) != 2 {
		t.Fatalf("ingredients = %d, want 2", len(dish.Ingredients))
	}
}

func TestMenuService(t *testing.T) {
	initTestDB(t)
	svc := NewMenuService()
	ctx := context.Background()

	dish, err := svc.FindDishByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindDishByID(1) error = %v", err)
	}
	if dish.Name != "Salade fraîche" || len(dish.Ingredients) != 2 {
		t.Fatalf("dish = %+v", dish)
	}

	var nf *repository.NotFoundError
	if _, err := svc.FindDishByID(ctx, 999); !errors.As(err, &nf) {
		t.Fatalf("FindDishByID(999) error = %v, want *NotFoundError", err)
	}

	created, err := svc.CreateIngredients(ctx,
		model.NewIngredient("Fromage", model.CategoryDairy, decimal.NewFromInt(1200)).WithQuantity(decimal.NewFromInt(1)),
		model.NewIngredient("Oignon", model.CategoryVegetable, decimal.NewFromInt(500)).WithQuantity(decimal.NewFromInt(2)),
	)
	if err != nil {
		t.Fatalf("CreateIngredients() error = %v", err)
	}

	soup := model.NewDish("Soupe à l'oignon", model.DishTypeStart, created...).WithPrice(decimal.NewFromInt(4000))
	saved, err := svc.SaveDish(ctx, soup)
	if err != nil {
		t.Fatalf("SaveDish() error = %v", err)
	}
	margin, err := saved.GrossMargin()
	if err != nil {
		t.Fatalf("GrossMargin() error = %v", err)
	}
	if !margin.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("GrossMargin() = %s, want 1800", margin)
	}

	dishes, err := svc.FindDishesByIngredientName(ctx, "oignon")
	if err != nil {
		t.Fatalf("FindDishesByIngredientName() error = %v", err)
	}
	if len(dishes) != 1 || dishes[0].ID != saved.ID {
		t.Fatalf("dishes = %+v, want [%d]", dishes, saved.ID)
	}

	dairy, err := svc.FindIngredientsByCriteria(ctx, repository.Criteria{Category: model.CategoryDairy, Page: 1, Size: 10})
	if err != nil {
		t.Fatalf("FindIngredientsByCriteria() error = %v", err)
	}
	if len(dairy) != 2 {
		t.Fatalf("dairy ingredients = %d, want 2 (Beurre, Fromage)", len(dairy))
	}

	page, err := svc.FindIngredients(ctx, 1, 10)
	if err != nil {
		t.Fatalf("FindIngredients() error = %v", err)
	}
	if page.Total != 7 {
		t.Fatalf("total = %d, want 7", page.Total)
	}
}
