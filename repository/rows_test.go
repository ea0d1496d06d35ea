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
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tomoncle/galley/model"
)

func TestMapDish(t *testing.T) {
	d, err := mapDish(&dishRow{ID: 3, Name: "Riz", DishType: "MAIN"})
	if err != nil {
		t.Fatalf("mapDish() error = %v", err)
	}
	if d.ID != 3 || d.DishType != model.DishTypeMain || d.Price != nil {
		t.Fatalf("dish = %+v", d)
	}
	if d.Ingredients == nil {
		t.Fatalf("ingredients must be empty, not nil")
	}

	_, err = mapDish(&dishRow{ID: 9, Name: "Brunch", DishType: "BRUNCH"})
	var me *model.MappingError
	if !errors.As(err, &me) || me.Enum != "dish_type" || me.Value != "BRUNCH" {
		t.Fatalf("mapDish(BRUNCH) error = %v, want MappingError", err)
	}
}

func TestMapIngredient(t *testing.T) {
	row := &ingredientRow{
		ID:               2,
		Name:             "Tomate",
		Category:         "VEGETABLE",
		Price:            decimal.NewFromInt(600),
		RequiredQuantity: decimal.NullDecimal{Decimal: decimal.NewFromInt(2), Valid: true},
		DishID:           sql.NullInt64{Int64: 1, Valid: true},
	}
	ing, err := mapIngredient(row)
	if err != nil {
		t.Fatalf("mapIngredient() error = %v", err)
	}
	if ing.Quantity == nil || !ing.Quantity.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("quantity = %v, want 2", ing.Quantity)
	}
	if ing.DishID == nil || *ing.DishID != 1 {
		t.Fatalf("dish id = %v, want 1", ing.DishID)
	}

	back := toIngredientRow(ing)
	if back.Category != "VEGETABLE" || !back.RequiredQuantity.Valid || !back.DishID.Valid {
		t.Fatalf("row = %+v", back)
	}

	unlinked, err := mapIngredient(&ingredientRow{ID: 4, Name: "Chocolat", Category: "OTHER"})
	if err != nil {
		t.Fatalf("mapIngredient() error = %v", err)
	}
	if unlinked.Quantity != nil || unlinked.DishID != nil {
		t.Fatalf("ingredient = %+v, want no quantity and no dish", unlinked)
	}

	_, err = mapIngredient(&ingredientRow{ID: 5, Category: "vegetable"})
	var me *model.MappingError
	if !errors.As(err, &me) || me.Enum != "category" {
		t.Fatalf("mapIngredient(vegetable) error = %v, want MappingError", err)
	}
}

func TestRelinkSet(t *testing.T) {
	a := &model.Ingredient{ID: 1}
	b := &model.Ingredient{ID: 2}

	ids, err := relinkSet([]*model.Ingredient{b, a, b})
	if err != nil {
		t.Fatalf("relinkSet() error = %v", err)
	}
	if !equalIDs(ids, []int64{2, 1}) {
		t.Fatalf("ids = %v, want [2 1]", ids)
	}

	if _, err := relinkSet([]*model.Ingredient{a, {Name: "new"}}); err == nil {
		t.Fatalf("relinkSet() accepted an ingredient without id")
	}
}
