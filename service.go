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
	"fmt"

	"github.com/tomoncle/storefront/repository"
	"github.com/tomoncle/storefront/types"
	"github.com/uptrace/bun"
)

// Service runs each call in its own unit of work, so every mutating call is
// a single committed transaction.
type Service[T any] interface {
	// Get returns a single entity by its identifier, or nil.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Create inserts one or more new entities and fills in their ids.
	Create(ctx context.Context, entities ...*T) error

	// Update replaces the row identified by id. With columns only those
	// are written.
	Update(ctx context.Context, id any, entity *T, columns ...string) error

	// Modify applies fn to the current row and writes the result back.
	Modify(ctx context.Context, id any, fn func(*T) error) (*T, error)

	// Delete removes an entity by its identifier and returns it.
	Delete(ctx context.Context, id any) (*T, error)

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery
}

// Identifiable is implemented by entities keyed by a single int64 column.
type Identifiable interface {
	Identity() int64
}

type baseServiceImpl[T any] struct {
	store *Store
}

// NewService returns the default Service over store.
func NewService[T any](store *Store) Service[T] {
	return &baseServiceImpl[T]{store: store}
}

func (s *baseServiceImpl[T]) read(fn func(repo repository.Repository[T]) error) error {
	uow := s.store.Begin()
	defer uow.Close()
	return fn(repository.For[T](uow.UnitOfWork))
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (entity *T, err error) {
	err = s.read(func(repo repository.Repository[T]) error {
		entity, err = repo.GetByID(ctx, id)
		return err
	})
	return entity, err
}

func (s *baseServiceImpl[T]) All(ctx context.Context) (entities []*T, err error) {
	err = s.read(func(repo repository.Repository[T]) error {
		entities, err = repo.GetAll(ctx)
		return err
	})
	return entities, err
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter) (entities []*T, err error) {
	err = s.read(func(repo repository.Repository[T]) error {
		entities, err = repo.Find(ctx, filter)
		return err
	})
	return entities, err
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (p *types.Pagination[T], err error) {
	err = s.read(func(repo repository.Repository[T]) error {
		p, err = repo.Page(ctx, page)
		return err
	})
	return p, err
}

func (s *baseServiceImpl[T]) Create(ctx context.Context, entities ...*T) error {
	_, err := s.store.Do(ctx, func(uow *UnitOfWork) error {
		repo := repository.For[T](uow.UnitOfWork)
		for _, e := range entities {
			repo.Add(e)
		}
		return nil
	})
	return err
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, id any, entity *T, columns ...string) error {
	if err := CheckIdentity(id, entity); err != nil {
		return err
	}
	_, err := s.store.Do(ctx, func(uow *UnitOfWork) error {
		repo := repository.For[T](uow.UnitOfWork)
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return repository.ErrNotFound
		}
		repo.Update(id, entity, columns...)
		return nil
	})
	return err
}

func (s *baseServiceImpl[T]) Modify(ctx context.Context, id any, fn func(*T) error) (entity *T, err error) {
	_, err = s.store.Do(ctx, func(uow *UnitOfWork) error {
		entity, err = repository.For[T](uow.UnitOfWork).Modify(ctx, id, fn)
		if err != nil {
			return err
		}
		if entity == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) (entity *T, err error) {
	_, err = s.store.Do(ctx, func(uow *UnitOfWork) error {
		repo := repository.For[T](uow.UnitOfWork)
		entity, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if entity == nil {
			return repository.ErrNotFound
		}
		repo.Delete(entity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.store.DB().NewSelect().Model((*T)(nil))
}

// CheckIdentity reports ErrIdentityMismatch when entity carries an id that
// differs from id. Entities without a single int64 key are not checked.
func CheckIdentity(id any, entity any) error {
	e, ok := entity.(Identifiable)
	if !ok {
		return nil
	}
	if fmt.Sprint(id) != fmt.Sprint(e.Identity()) {
		return fmt.Errorf("%w: %v != %d", repository.ErrIdentityMismatch, id, e.Identity())
	}
	return nil
}
