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

import "github.com/tomoncle/galley/types"

// DishType is the course a dish is served as. Stored as the dish_type enum.
type DishType string

const (
	DishTypeStart   DishType = "START"
	DishTypeMain    DishType = "MAIN"
	DishTypeDessert DishType = "DESSERT"
)

var dishTypes = []DishType{DishTypeStart, DishTypeMain, DishTypeDessert}

var dishTypeDesc = map[DishType]string{
	DishTypeStart:   "starter",
	DishTypeMain:    "main course",
	DishTypeDessert: "dessert",
}

var _ types.BaseEnum = DishType("")

// DishTypes returns every dish type in declaration order.
func DishTypes() []DishType {
	out := make([]DishType, len(dishTypes))
	copy(out, dishTypes)
	return out
}

// ParseDishType decodes the stored form of a dish type.
func ParseDishType(s string) (DishType, error) {
	t, ok := types.LookupEnum(dishTypes, s)
	if !ok {
		return "", &MappingError{Enum: "dish_type", Value: s}
	}
	return t, nil
}

func (t DishType) IsValid() bool {
	_, ok := dishTypeDesc[t]
	return ok
}

func (t DishType) Number() int {
	for i, v := range dishTypes {
		if v == t {
			return i
		}
	}
	return types.IllegalValue
}

func (t DishType) Name() string { return string(t) }

func (t DishType) String() string { return string(t) }

func (t DishType) Desc() string {
	if d, ok := dishTypeDesc[t]; ok {
		return d
	}
	return types.IllegalDesc
}

// Category classifies an ingredient. Stored as the category enum.
type Category string

const (
	CategoryVegetable Category = "VEGETABLE"
	CategoryAnimal    Category = "ANIMAL"
	CategoryMarine    Category = "MARINE"
	CategoryDairy     Category = "DAIRY"
	CategoryOther     Category = "OTHER"
)

var categories = []Category{CategoryVegetable, CategoryAnimal, CategoryMarine, CategoryDairy, CategoryOther}

var categoryDesc = map[Category]string{
	CategoryVegetable: "vegetable",
	CategoryAnimal:    "meat and poultry",
	CategoryMarine:    "fish and seafood",
	CategoryDairy:     "dairy",
	CategoryOther:     "other",
}

var _ types.BaseEnum = Category("")

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory decodes the stored form of a category.
func ParseCategory(s string) (Category, error) {
	c, ok := types.LookupEnum(categories, s)
	if !ok {
		return "", &MappingError{Enum: "category", Value: s}
	}
	return c, nil
}

func (c Category) IsValid() bool {
	_, ok := categoryDesc[c]
	return ok
}

func (c Category) Number() int {
	for i, v := range categories {
		if v == c {
			return i
		}
	}
	return types.IllegalValue
}

func (c Category) Name() string { return string(c) }

func (c Category) String() string { return string(c) }

func (c Category) Desc() string {
	if d, ok := categoryDesc[c]; ok {
		return d
	}
	return types.IllegalDesc
}
