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
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/tomoncle/storefront/database"
	"github.com/uptrace/bun"
)

// UnitOfWork owns one DbContext and the repositories built on it. It is
// meant for a single logical operation on one goroutine: stage through its
// repositories, call Save once, then Close.
type UnitOfWork struct {
	id     string
	dc     *DbContext
	repos  map[reflect.Type]any
	logger database.Logger
}

type options struct {
	cache  EntityCache
	logger database.Logger
}

type Option func(*options)

// WithCache enables read-through caching of single-row lookups.
func WithCache(cache EntityCache) Option {
	return func(o *options) { o.cache = cache }
}

func WithLogger(logger database.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func NewUnitOfWork(db *bun.DB, opts ...Option) *UnitOfWork {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = database.GetLogger()
	}
	return &UnitOfWork{
		id:     uuid.NewString(),
		dc:     NewDbContext(db, o.cache, o.logger),
		repos:  make(map[reflect.Type]any),
		logger: o.logger,
	}
}

// For returns the unit of work's repository for T, creating it on first use.
func For[T any](u *UnitOfWork) Repository[T] {
	key := reflect.TypeOf((*Repository[T])(nil)).Elem()
	if r, ok := u.repos[key]; ok {
		return r.(Repository[T])
	}
	r := newRepository[T](u.dc)
	if u.repos != nil {
		u.repos[key] = r
	}
	return r
}

// KeyedFor returns the unit of work's composite-key repository for T.
func KeyedFor[T any, K Key](u *UnitOfWork) KeyedRepository[T, K] {
	key := reflect.TypeOf((*KeyedRepository[T, K])(nil)).Elem()
	if r, ok := u.repos[key]; ok {
		return r.(KeyedRepository[T, K])
	}
	r := newKeyedRepository[T, K](u.dc)
	if u.repos != nil {
		u.repos[key] = r
	}
	return r
}

func (u *UnitOfWork) ID() string { return u.id }

func (u *UnitOfWork) Pending() int { return u.dc.Pending() }

// OnCommit registers fn to run after each successful Save.
func (u *UnitOfWork) OnCommit(fn func(ctx context.Context, tables []string)) {
	u.dc.OnCommit(fn)
}

// Save commits every change staged through any repository of this unit of
// work in one transaction. After a failed Save the unit of work only
// answers reads; start a new one to retry.
func (u *UnitOfWork) Save(ctx context.Context) (int64, error) {
	start := time.Now()
	ops := u.dc.Pending()
	n, err := u.dc.SaveChanges(ctx)
	if err != nil {
		u.logger.Error("save failed", "uow", u.id, "ops", ops, "duration", time.Since(start), "error", err)
		return 0, err
	}
	if ops > 0 {
		u.logger.Debug("saved", "uow", u.id, "ops", ops, "affected", n, "duration", time.Since(start))
	}
	return n, nil
}

// Close disposes the unit of work. Staged changes that were not saved are
// discarded. Close is idempotent.
func (u *UnitOfWork) Close() error {
	u.repos = nil
	return u.dc.Close()
}
