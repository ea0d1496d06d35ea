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
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/galley/model"
)

// relinkSet returns the distinct ingredient ids of ingredients in first-seen
// order. An ingredient without an id cannot be linked and fails the set.
func relinkSet(ingredients []*model.Ingredient) ([]int64, error) {
	ids := make([]int64, 0, len(ingredients))
	seen := make(map[int64]struct{}, len(ingredients))
	for i, ing := range ingredients {
		if ing == nil || ing.ID == 0 {
			return nil, fmt.Errorf("ingredient #%d has no id", i)
		}
		if _, ok := seen[ing.ID]; ok {
			continue
		}
		seen[ing.ID] = struct{}{}
		ids = append(ids, ing.ID)
	}
	return ids, nil
}

// relink makes ids the exact set of ingredients linked to dishID: every
// other linked ingredient is detached first, then the set is attached.
func relink(ctx context.Context, tx bun.IDB, dishID int64, ids []int64) error {
	detach := tx.NewUpdate().
		Table("ingredient").
		Set("id_dish = NULL").
		Where("id_dish = ?", dishID)
	if len(ids) > 0 {
		detach = detach.Where("id NOT IN (?)", bun.In(ids))
	}
	if _, err := detach.Exec(ctx); err != nil {
		return fmt.Errorf("detach ingredients from dish %d: %w", dishID, err)
	}

	if len(ids) == 0 {
		return nil
	}
	_, err := tx.NewUpdate().
		Table("ingredient").
		Set("id_dish = ?", dishID).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("attach ingredients to dish %d: %w", dishID, err)
	}
	return nil
}
