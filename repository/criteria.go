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
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/tomoncle/galley/model"
	"github.com/tomoncle/galley/types"
)

const (
	criteriaJoin  = "LEFT JOIN dish AS d ON d.id = i.id_dish"
	criteriaOrder = "i.id ASC"
)

// Filters returns the WHERE clauses of c in the fixed order name, category,
// dish name. Each clause carries exactly the values it binds.
func (c Criteria) Filters() ([]*types.QueryFilter, error) {
	var filters []*types.QueryFilter
	if c.Name != "" {
		filters = append(filters, types.NewQueryFilter("LOWER(i.name) LIKE ?", containsPattern(c.Name)))
	}
	if c.Category != "" {
		if !c.Category.IsValid() {
			return nil, fmt.Errorf("unknown category %q, want one of %s",
				string(c.Category), strings.Join(types.EnumNames(model.Categories()), ", "))
		}
		filters = append(filters, types.NewQueryFilter("i.category = ?", c.Category.String()))
	}
	if c.DishName != "" {
		filters = append(filters, types.NewQueryFilter("LOWER(d.name) LIKE ?", containsPattern(c.DishName)))
	}
	return filters, nil
}

// PageRequest turns c into a validated page request ordered by ingredient id.
func (c Criteria) PageRequest() (*types.PageRequest, error) {
	filters, err := c.Filters()
	if err != nil {
		return nil, err
	}
	pr := types.NewPageRequest(c.Page, c.Size, filters, []string{criteriaOrder})
	if err := pr.Validate(); err != nil {
		return nil, err
	}
	return pr, nil
}

// buildCriteriaQuery returns the paginated ingredient select for c, scanning
// into dest.
func buildCriteriaQuery(db bun.IDB, c Criteria, dest *[]*ingredientRow) (*bun.SelectQuery, error) {
	pr, err := c.PageRequest()
	if err != nil {
		return nil, &QueryError{Op: "find ingredients by criteria", Cause: err}
	}
	var t table[ingredientRow]
	return t.paged(t.query(db, dest, pr, criteriaJoin), pr), nil
}

// containsPattern is a lowered %term% for a case-insensitive LIKE. LIKE
// wildcards inside term are not escaped.
func containsPattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}
