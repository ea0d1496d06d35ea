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

	"github.com/tomoncle/galley/database"
)

// NotFoundError is returned when no row has the requested id.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NoSequenceError is returned when a table column has no identifier counter
// the allocator can synchronize.
type NoSequenceError struct {
	Table  string
	Column string
}

func (e *NoSequenceError) Error() string {
	return fmt.Sprintf("no sequence for %s.%s", e.Table, e.Column)
}

// SaveError wraps any failure of a dish save that happened before commit.
// The transaction has been rolled back.
type SaveError struct {
	DishID int64
	Kind   database.SQLError
	Cause  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save dish %d failed (%s): %v", e.DishID, e.Kind, e.Cause)
}

func (e *SaveError) Unwrap() error { return e.Cause }

// CreateError wraps the failure of a bulk ingredient create. Index is the
// position of the ingredient being written. Nothing was persisted.
type CreateError struct {
	Index int
	Kind  database.SQLError
	Cause error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create ingredient #%d failed (%s): %v", e.Index, e.Kind, e.Cause)
}

func (e *CreateError) Unwrap() error { return e.Cause }

// QueryError reports an invalid or failed read.
type QueryError struct {
	Op    string
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }
