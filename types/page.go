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

package types

import "fmt"

// QueryFilter is one WHERE clause together with exactly the values it binds.
// Keeping both in one value means a clause can never be emitted without its
// arguments, or the other way around.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest describes pagination, optional filters, and ordering.
type PageRequest struct {
	page     int
	pageSize int
	filters  []*QueryFilter
	orders   []string // "i.name ASC", "i.id DESC"
}

func (p *PageRequest) GetPageSize() int {
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	return p.page
}

// GetOffset returns (page-1)*pageSize.
func (p *PageRequest) GetOffset() int {
	return (p.page - 1) * p.pageSize
}

func (p *PageRequest) GetFilters() []*QueryFilter {
	return p.filters
}

func (p *PageRequest) GetOrders() []string {
	return p.orders
}

// Validate rejects pages and page sizes below one.
func (p *PageRequest) Validate() error {
	if p.page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", p.page)
	}
	if p.pageSize < 1 {
		return fmt.Errorf("page size must be >= 1, got %d", p.pageSize)
	}
	return nil
}

// NewPageRequest constructs a PageRequest with filter and order settings.
func NewPageRequest(page int, pageSize int, filters []*QueryFilter, orders []string) *PageRequest {
	return &PageRequest{page, pageSize, filters, orders}
}

// NewPageRequestWithOrders constructs a PageRequest with ordering only.
func NewPageRequestWithOrders(page int, pageSize int, orders ...string) *PageRequest {
	return NewPageRequest(page, pageSize, nil, orders)
}

// NewDefaultPageRequest constructs a PageRequest with no filter or ordering.
func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil, make([]string, 0))
}

// Pagination holds paged result items along with pagination metadata.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{page, pageSize, 0, make([]*T, 0)}
}
