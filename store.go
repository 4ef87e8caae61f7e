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

package storefront

import (
	"context"

	"github.com/tomoncle/storefront/database"
	"github.com/tomoncle/storefront/repository"
	"github.com/uptrace/bun"
)

// Store hands out units of work. It is safe for concurrent use; the units
// of work it returns are not.
type Store struct {
	db     func() *bun.DB
	cache  repository.EntityCache
	logger database.Logger
}

type StoreOption func(*Store)

// WithEntityCache enables read-through caching for every unit of work the
// store begins.
func WithEntityCache(cache repository.EntityCache) StoreOption {
	return func(s *Store) { s.cache = cache }
}

func WithStoreLogger(logger database.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore returns a Store over db. A nil db binds the store to the global
// connection opened by database.InitDB; every unit of work then runs on the
// handle current when it begins, so reconnects are picked up.
func NewStore(db *bun.DB, opts ...StoreOption) *Store {
	s := &Store{db: func() *bun.DB { return db }}
	if db == nil {
		s.db = database.GetDB
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = database.GetLogger()
	}
	return s
}

func (s *Store) DB() *bun.DB { return s.db() }

// Begin starts a unit of work. The caller must Close it.
func (s *Store) Begin() *UnitOfWork {
	opts := []repository.Option{repository.WithLogger(s.logger)}
	if s.cache != nil {
		opts = append(opts, repository.WithCache(s.cache))
	}
	return &UnitOfWork{UnitOfWork: repository.NewUnitOfWork(s.db(), opts...)}
}

// Do runs fn on a fresh unit of work and saves it when fn succeeds. Nothing
// staged by a failing fn is written.
func (s *Store) Do(ctx context.Context, fn func(uow *UnitOfWork) error) (int64, error) {
	uow := s.Begin()
	defer uow.Close()

	if err := fn(uow); err != nil {
		return 0, err
	}
	return uow.Save(ctx)
}
