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
	"errors"
	"strings"
	"testing"

	"github.com/tomoncle/galley/model"
)

func TestCriteriaFilters(t *testing.T) {
	cases := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"none", Criteria{}, nil},
		{"name", Criteria{Name: "Lait"}, []string{"LOWER(i.name) LIKE ?"}},
		{"category", Criteria{Category: model.CategoryDairy}, []string{"i.category = ?"}},
		{"dish", Criteria{DishName: "salade"}, []string{"LOWER(d.name) LIKE ?"}},
		{"name and dish", Criteria{Name: "o", DishName: "salade"},
			[]string{"LOWER(i.name) LIKE ?", "LOWER(d.name) LIKE ?"}},
		{"all", Criteria{Name: "o", Category: model.CategoryVegetable, DishName: "salade"},
			[]string{"LOWER(i.name) LIKE ?", "i.category = ?", "LOWER(d.name) LIKE ?"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filters, err := tc.criteria.Filters()
			if err != nil {
				t.Fatalf("Filters() error = %v", err)
			}
			if len(filters) != len(tc.want) {
				t.Fatalf("got %d filters, want %d", len(filters), len(tc.want))
			}
			for i, f := range filters {
				if f.Schema != tc.want[i] {
					t.Fatalf("filter %d = %q, want %q", i, f.Schema, tc.want[i])
				}
				if placeholders := strings.Count(f.Schema, "?"); placeholders != len(f.Args) {
					t.Fatalf("filter %q has %d placeholders and %d args", f.Schema, placeholders, len(f.Args))
				}
			}
		})
	}
}

func TestCriteriaFilterValues(t *testing.T) {
	filters, err := Criteria{Name: "LAIT", Category: model.CategoryDairy, DishName: "Salade"}.Filters()
	if err != nil {
		t.Fatalf("Filters() error = %v", err)
	}
	want := []interface{}{"%lait%", "DAIRY", "%salade%"}
	for i, f := range filters {
		if f.Args[0] != want[i] {
			t.Fatalf("filter %d arg = %v, want %v", i, f.Args[0], want[i])
		}
	}
}

func TestCriteriaInvalid(t *testing.T) {
	db := openTestDB(t)
	cases := []struct {
		name     string
		criteria Criteria
	}{
		{"page zero", Criteria{Page: 0, Size: 10}},
		{"negative size", Criteria{Page: 1, Size: -1}},
		{"unknown category", Criteria{Category: model.Category("FUNGI"), Page: 1, Size: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rows []*ingredientRow
			_, err := buildCriteriaQuery(db, tc.criteria, &rows)
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("buildCriteriaQuery() error = %v, want *QueryError", err)
			}
		})
	}
}

func TestCriteriaUnknownCategoryNamesChoices(t *testing.T) {
	_, err := Criteria{Category: model.Category("FUNGI"), Page: 1, Size: 10}.Filters()
	if err == nil {
		t.Fatalf("Filters() accepted an unknown category")
	}
	for _, want := range []string{"FUNGI", "VEGETABLE", "ANIMAL", "MARINE", "DAIRY", "OTHER"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestCriteriaQueryRendering(t *testing.T) {
	db := openTestDB(t)
	var rows []*ingredientRow
	q, err := buildCriteriaQuery(db, Criteria{Name: "LAIT", Category: model.CategoryVegetable, Page: 3, Size: 5}, &rows)
	if err != nil {
		t.Fatalf("buildCriteriaQuery() error = %v", err)
	}
	sql := q.String()
	for _, want := range []string{
		"LEFT JOIN dish AS d ON d.id = i.id_dish",
		"LOWER(i.name) LIKE '%lait%'",
		"i.category = 'VEGETABLE'",
		`ORDER BY "i"."id" ASC`,
		"LIMIT 5 OFFSET 10",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("query %q does not contain %q", sql, want)
		}
	}
	if strings.Contains(sql, "d.name") {
		t.Fatalf("query %q filters on dish name", sql)
	}
}

func TestFindIngredientsByCriteria(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	cases := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{"all", Criteria{Page: 1, Size: 10}, []int64{1, 2, 3, 4, 5}},
		{"name", Criteria{Name: "lait", Page: 1, Size: 10}, []int64{1}},
		{"category", Criteria{Category: model.CategoryVegetable, Page: 1, Size: 10}, []int64{1, 2}},
		{"dish name", Criteria{DishName: "chocolat", Page: 1, Size: 10}, []int64{4, 5}},
		{"category and dish", Criteria{Category: model.CategoryDairy, DishName: "gâteau", Page: 1, Size: 10}, []int64{5}},
		{"second page", Criteria{Page: 2, Size: 2}, []int64{3, 4}},
		{"past the end", Criteria{Page: 4, Size: 2}, nil},
		{"no match", Criteria{Name: "truffe", Page: 1, Size: 10}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ings, err := repo.FindIngredientsByCriteria(ctx, tc.criteria)
			if err != nil {
				t.Fatalf("FindIngredientsByCriteria() error = %v", err)
			}
			var got []int64
			for _, ing := range ings {
				got = append(got, ing.ID)
			}
			if !equalIDs(got, tc.want) {
				t.Fatalf("ids = %v, want %v", got, tc.want)
			}
		})
	}
}
