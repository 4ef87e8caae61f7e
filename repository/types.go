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

	"github.com/tomoncle/storefront/types"
	"github.com/uptrace/bun"
)

// Key addresses a row whose primary key spans several columns. Values are
// returned in Columns order.
type Key interface {
	Columns() []string
	Values() []any
}

// ReadRepository defines lookups against committed state.
type ReadRepository[T any] interface {
	// GetAll returns every row in backing-store order.
	GetAll(ctx context.Context) ([]*T, error)

	// GetByID returns the row with the given primary key, or (nil, nil) when
	// absent. Composite tables require a Key.
	GetByID(ctx context.Context, id any) (*T, error)

	// Find returns the rows matching filter; a nil filter matches all rows.
	Find(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// First returns the first row matching filter, or (nil, nil).
	First(ctx context.Context, filter *types.QueryFilter) (*T, error)
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// StagingRepository records mutations in the shared persistence context.
// Nothing reaches the store before SaveChanges.
type StagingRepository[T any] interface {
	// Add stages an insert. Generated keys are written back into entity on save.
	Add(entity *T) *T

	// Update stages a replacement of the row identified by id. With columns
	// only those columns are written, otherwise every non-key column. The
	// row must still exist when the save runs.
	Update(id any, entity *T, columns ...string) *T

	// Modify loads the row, applies fn and stages the result as an Update.
	// It returns (nil, nil) when the row is absent.
	Modify(ctx context.Context, id any, fn func(*T) error) (*T, error)

	// Delete stages removal of the row addressed by entity's primary key.
	Delete(entity *T) *T

	// SaveChanges commits everything staged in the shared context, across
	// all repositories of the unit of work, and returns the affected count.
	SaveChanges(ctx context.Context) (int64, error)
}

// Repository combines reads, pagination and staged writes for one entity
// type and exposes a Bun select builder for custom lookups.
type Repository[T any] interface {
	ReadRepository[T]
	PageQueryRepository[T]
	StagingRepository[T]
	NewSelect() *bun.SelectQuery
}

// KeyedRepository adds typed lookups for entities with composite keys.
type KeyedRepository[T any, K Key] interface {
	Repository[T]
	GetByKey(ctx context.Context, key K) (*T, error)
}

// EntityCache is a read-through cache for single-row lookups. Absence is
// never stored.
//
// Load reports, besides a hit, the table version it looked under. A row read
// after a miss is handed to Store with that version, so a commit landing
// between the miss and the store can never publish the older row.
type EntityCache interface {
	Load(ctx context.Context, table, id string, dest any) (hit bool, version int64, err error)
	Store(ctx context.Context, table, id string, version int64, value any) error
	Invalidate(ctx context.Context, tables ...string) error
}
