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
	"fmt"
)

// ErrPriceUnset is returned by GrossMargin when the dish has no price.
var ErrPriceUnset = errors.New("dish price is not set")

// MappingError reports a stored enum value that matches no known member.
type MappingError struct {
	Enum  string
	Value string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Enum, e.Value)
}

// MissingQuantityError is returned by GrossMargin when an ingredient has no
// required quantity.
type MissingQuantityError struct {
	IngredientID   int64
	IngredientName string
}

func (e *MissingQuantityError) Error() string {
	return fmt.Sprintf("ingredient %q (id %d) has no required quantity", e.IngredientName, e.IngredientID)
}
