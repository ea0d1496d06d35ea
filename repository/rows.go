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

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/tomoncle/galley/model"
)

type dishRow struct {
	bun.BaseModel `bun:"table:dish,alias:d"`

	ID       int64               `bun:"id,pk"`
	Name     string              `bun:"name,notnull"`
	DishType string              `bun:"dish_type,notnull"`
	Price    decimal.NullDecimal `bun:"price"`
}

type ingredientRow struct {
	bun.BaseModel `bun:"table:ingredient,alias:i"`

	ID               int64               `bun:"id,pk"`
	Name             string              `bun:"name,notnull"`
	Category         string              `bun:"category,notnull"`
	Price            decimal.Decimal     `bun:"price,notnull"`
	RequiredQuantity decimal.NullDecimal `bun:"required_quantity"`
	DishID           sql.NullInt64       `bun:"id_dish"`
}

var dishUpsertFields = []string{"name", "dish_type", "price"}

func mapDish(row *dishRow) (*model.Dish, error) {
	dishType, err := model.ParseDishType(row.DishType)
	if err != nil {
		return nil, err
	}
	d := &model.Dish{
		ID:          row.ID,
		Name:        row.Name,
		DishType:    dishType,
		Ingredients: make([]*model.Ingredient, 0),
	}
	if row.Price.Valid {
		p := row.Price.Decimal
		d.Price = &p
	}
	return d, nil
}

func mapDishes(rows []*dishRow) ([]*model.Dish, error) {
	dishes := make([]*model.Dish, 0, len(rows))
	for _, row := range rows {
		d, err := mapDish(row)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, d)
	}
	return dishes, nil
}

func mapIngredient(row *ingredientRow) (*model.Ingredient, error) {
	category, err := model.ParseCategory(row.Category)
	if err != nil {
		return nil, err
	}
	ing := &model.Ingredient{
		ID:       row.ID,
		Name:     row.Name,
		Category: category,
		Price:    row.Price,
	}
	if row.RequiredQuantity.Valid {
		q := row.RequiredQuantity.Decimal
		ing.Quantity = &q
	}
	if row.DishID.Valid {
		id := row.DishID.Int64
		ing.DishID = &id
	}
	return ing, nil
}

func mapIngredients(rows []*ingredientRow) ([]*model.Ingredient, error) {
	ingredients := make([]*model.Ingredient, 0, len(rows))
	for _, row := range rows {
		ing, err := mapIngredient(row)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

func toDishRow(d *model.Dish) *dishRow {
	row := &dishRow{ID: d.ID, Name: d.Name, DishType: d.DishType.String()}
	if d.Price != nil {
		row.Price = decimal.NullDecimal{Decimal: *d.Price, Valid: true}
	}
	return row
}

func toIngredientRow(ing *model.Ingredient) *ingredientRow {
	row := &ingredientRow{
		ID:       ing.ID,
		Name:     ing.Name,
		Category: ing.Category.String(),
		Price:    ing.Price,
	}
	if ing.Quantity != nil {
		row.RequiredQuantity = decimal.NullDecimal{Decimal: *ing.Quantity, Valid: true}
	}
	if ing.DishID != nil {
		row.DishID = sql.NullInt64{Int64: *ing.DishID, Valid: true}
	}
	return row
}
