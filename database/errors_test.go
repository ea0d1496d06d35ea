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

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

func TestClassifySQLError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want SQLError
	}{
		{"no rows", fmt.Errorf("find: %w", sql.ErrNoRows), NoRowsErr},
		{"pq unique", &pq.Error{Code: "23505"}, DuplicateKeyErr},
		{"pq foreign key", fmt.Errorf("attach: %w", &pq.Error{Code: "23503"}), ForeignKeyViolationErr},
		{"pq undefined table", &pq.Error{Code: "42P01"}, NoTableErr},
		{"pq other", &pq.Error{Code: "40001"}, UnknownErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, DuplicateKeyErr},
		{"mysql fk child", &mysql.MySQLError{Number: 1452}, ForeignKeyViolationErr},
		{"mysql truncated", &mysql.MySQLError{Number: 1406}, DataTruncatedErr},
		{"sqlite unique", errors.New("UNIQUE constraint failed: ingredient.id"), DuplicateKeyErr},
		{"sqlite check", errors.New("CHECK constraint failed: category IN (...)"), CheckConstraintViolationErr},
		{"sqlite no table", errors.New("no such table: dish"), NoTableErr},
		{"plain", errors.New("boom"), UnknownErr},
		{"nil", nil, UnknownErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifySQLError(tc.err); got != tc.want {
				t.Fatalf("ClassifySQLError(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsSqlErrorTypedDrivers(t *testing.T) {
	is, kind := IsSqlError(&pq.Error{Code: "40001"})
	if !is || kind != UnknownErr {
		t.Fatalf("IsSqlError(serialization failure) = %v, %s", is, kind)
	}
	if is, _ := IsSqlError(errors.New("boom")); is {
		t.Fatalf("plain error reported as SQL error")
	}
}

func TestSQLErrorString(t *testing.T) {
	if DuplicateKeyErr.String() != "duplicate_key" {
		t.Fatalf("String() = %q", DuplicateKeyErr.String())
	}
	if SQLError(99).String() != "unknown" {
		t.Fatalf("String() of out-of-range kind = %q", SQLError(99).String())
	}
}
