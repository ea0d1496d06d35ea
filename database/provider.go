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
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// ErrNotInitialized is returned by Acquire while no pool is available.
var ErrNotInitialized = errors.New("database not initialized")

// ConnectionProvider hands out dedicated connections. Every connection
// obtained from Acquire must be given back through Release.
type ConnectionProvider interface {
	Acquire(ctx context.Context) (bun.Conn, error)
	Release(conn bun.Conn) error
}

type poolProvider struct {
	resolve func() *bun.DB
}

// NewPoolProvider returns a ConnectionProvider that takes connections from
// the pool behind db.
func NewPoolProvider(db *bun.DB) ConnectionProvider {
	return &poolProvider{resolve: func() *bun.DB { return db }}
}

// NewResolvingProvider returns a ConnectionProvider that looks the pool up
// through resolve on every Acquire, so it follows reconnects and late
// initialization.
func NewResolvingProvider(resolve func() *bun.DB) ConnectionProvider {
	return &poolProvider{resolve: resolve}
}

func (p *poolProvider) Acquire(ctx context.Context) (bun.Conn, error) {
	db := p.resolve()
	if db == nil {
		return bun.Conn{}, ErrNotInitialized
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return bun.Conn{}, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, nil
}

func (p *poolProvider) Release(conn bun.Conn) error {
	return conn.Close()
}
