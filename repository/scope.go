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
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (r *repositoryImpl) acquire(ctx context.Context) (bun.Conn, error) {
	return r.provider.Acquire(ctx)
}

func (r *repositoryImpl) release(conn bun.Conn) {
	if err := r.provider.Release(conn); err != nil {
		r.logger.Warn("Failed to release connection", "error", err.Error())
	}
}

// withConn runs fn on a connection that is released when fn returns.
func (r *repositoryImpl) withConn(ctx context.Context, fn func(conn bun.Conn) error) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer r.release(conn)
	return fn(conn)
}

// inTx runs fn in a transaction on conn. The transaction is rolled back
// unless fn returns nil and the commit succeeds.
func (r *repositoryImpl) inTx(ctx context.Context, conn bun.Conn, op string, fn func(tx bun.Tx) error) error {
	opID := uuid.NewString()
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func(tx bun.Tx) {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				r.logger.Error("Failed to rollback transaction", "op", op, "op_id", opID, "error", rollbackErr)
			}
		}
	}(tx)

	if err := fn(tx); err != nil {
		r.logger.Error("Transaction rolled back", "op", op, "op_id", opID, "error", err.Error())
		return err
	}
	if err := tx.Commit(); err != nil {
		r.logger.Error("Transaction commit failed", "op", op, "op_id", opID, "error", err.Error())
		return err
	}
	committed = true
	r.logger.Debug("Transaction committed", "op", op, "op_id", opID)
	return nil
}
