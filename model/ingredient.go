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

// Ingredient is a stock item. Quantity is only meaningful while the
// ingredient is linked to a dish.
type Ingredient struct {
	ID       int64 // 0 until persisted
	Name     string
	Category Category
	Price    decimal.Decimal
	Quantity *decimal.Decimal
	DishID   *int64
}

// NewIngredient returns an unpersisted, unlinked ingredient.
func NewIngredient(name string, category Category, price decimal.Decimal) *Ingredient {
	return &Ingredient{Name: name, Category: category, Price: price}
}

// WithQuantity sets the required quantity and returns the ingredient.
func (i *Ingredient) WithQuantity(q decimal.Decimal) *Ingredient {
	i.Quantity = &q
	return i
}

// Cost is price multiplied by the required quantity.
func (i *Ingredient) Cost() (decimal.Decimal, error) {
	if i.Quantity == nil {
		return decimal.Zero, &MissingQuantityError{IngredientID: i.ID, IngredientName: i.Name}
	}
	return i.Price.Mul(*i.Quantity), nil
}

// Clone returns a copy that shares no pointers with i.
func (i *Ingredient) Clone() *Ingredient {
	c := *i
	if i.Quantity != nil {
		q := *i.Quantity
		c.Quantity = &q
	}
	if i.DishID != nil {
		d := *i.DishID
		c.DishID = &d
	}
	return &c
}
