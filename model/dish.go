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

package model

import "github.com/shopspring/decimal"

// Dish is a menu item made of ingredients.
type Dish struct {
	ID          int64 // 0 until persisted
	Name        string
	DishType    DishType
	Price       *decimal.Decimal
	Ingredients []*Ingredient
}

// NewDish returns an unpersisted dish without a price.
func NewDish(name string, dishType DishType, ingredients ...*Ingredient) *Dish {
	return &Dish{Name: name, DishType: dishType, Ingredients: ingredients}
}

// WithPrice sets the price and returns the dish.
func (d *Dish) WithPrice(p decimal.Decimal) *Dish {
	d.Price = &p
	return d
}

// IngredientCost sums price × required quantity over all ingredients.
func (d *Dish) IngredientCost() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, ing := range d.Ingredients {
		cost, err := ing.Cost()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(cost)
	}
	return total, nil
}

// GrossMargin is the dish price minus its ingredient cost.
func (d *Dish) GrossMargin() (decimal.Decimal, error) {
	if d.Price == nil {
		return decimal.Zero, ErrPriceUnset
	}
	cost, err := d.IngredientCost()
	if err != nil {
		return decimal.Zero, err
	}
	return d.Price.Sub(cost), nil
}
