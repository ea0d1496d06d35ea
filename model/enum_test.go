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

import (
	"errors"
	"testing"
)

func TestParseDishType(t *testing.T) {
	for _, dt := range DishTypes() {
		got, err := ParseDishType(dt.Name())
		if err != nil {
			t.Fatalf("ParseDishType(%q) error = %v", dt, err)
		}
		if got != dt {
			t.Fatalf("ParseDishType(%q) = %q", dt, got)
		}
	}

	for _, bad := range []string{"", "start", "APPETIZER"} {
		_, err := ParseDishType(bad)
		var mapping *MappingError
		if !errors.As(err, &mapping) {
			t.Fatalf("ParseDishType(%q) error = %v, want MappingError", bad, err)
		}
		if mapping.Enum != "dish_type" || mapping.Value != bad {
			t.Fatalf("MappingError = %+v", mapping)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		if err != nil || got != c {
			t.Fatalf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseCategory("FRUIT"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestEnumContract(t *testing.T) {
	tests := []struct {
		name   string
		valid  bool
		number int
	}{
		{string(CategoryVegetable), true, 0},
		{string(CategoryOther), true, 4},
		{"SPICE", false, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Category(tt.name)
			if c.IsValid() != tt.valid {
				t.Fatalf("IsValid() = %t, want %t", c.IsValid(), tt.valid)
			}
			if c.Number() != tt.number {
				t.Fatalf("Number() = %d, want %d", c.Number(), tt.number)
			}
		})
	}
	if DishTypeDessert.Desc() != "dessert" {
		t.Fatalf("Desc() = %q", DishTypeDessert.Desc())
	}
	if DishType("BRUNCH").Desc() != "unknown" {
		t.Fatalf("Desc() of invalid = %q", DishType("BRUNCH").Desc())
	}
}
