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
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/tomoncle/storefront/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	dc    *DbContext
	table *schema.Table
}

func newRepository[T any](dc *DbContext) *baseRepositoryImpl[T] {
	return &baseRepositoryImpl[T]{
		dc:    dc,
		table: dc.tableOf(reflect.TypeOf((*T)(nil)).Elem()),
	}
}

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery {
	return r.dc.db.NewSelect().Model((*T)(nil))
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.Find(ctx, nil)
}

func (r *baseRepositoryImpl[T]) GetByID(ctx context.Context, id any) (*T, error) {
	if err := r.dc.checkReadable(); err != nil {
		return nil, err
	}
	cond, args, err := keyCondition(r.table, id)
	if err != nil {
		return nil, err
	}

	cacheID := keyString(id)
	entity := new(T)
	hit, version, storable := r.dc.cacheLoad(ctx, r.table.Name, cacheID, entity)
	if hit {
		return entity, nil
	}

	err = r.dc.db.NewSelect().Model(entity).Where(cond, args...).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, newStoreError("get", r.table.Name, err)
	}
	if storable {
		r.dc.cacheStore(ctx, r.table.Name, cacheID, version, entity)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) Find(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	if err := r.dc.checkReadable(); err != nil {
		return nil, err
	}
	entities := make([]*T, 0)
	query := r.dc.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, newStoreError("find", r.table.Name, err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) First(ctx context.Context, filter *types.QueryFilter) (*T, error) {
	if err := r.dc.checkReadable(); err != nil {
		return nil, err
	}
	entity := new(T)
	query := r.dc.db.NewSelect().Model(entity)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	err := query.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, newStoreError("first", r.table.Name, err)
	}
	return entity, nil
}

// Page orders by primary key when the request names no order so that page
// windows are stable.
func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	if err := r.dc.checkReadable(); err != nil {
		return nil, err
	}
	if pageRequest == nil {
		pageRequest = types.NewPageRequest(1, types.DefaultPageSize, nil, nil)
	}

	var entities []*T
	query := r.dc.db.NewSelect().Model(&entities)
	if f := pageRequest.GetFilter(); f != nil {
		query = query.Where(f.Schema, f.Args...)
	}
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil {
		return nil, newStoreError("count", r.table.Name, err)
	}
	if total == 0 {
		return pagination, nil
	}

	orders := pageRequest.GetOrders()
	if len(orders) == 0 {
		for _, pk := range r.table.PKs {
			orders = append(orders, pk.Name+" ASC")
		}
	}
	err = query.
		Order(orders...).
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, newStoreError("page", r.table.Name, err)
	}
	pagination.Total = total
	if entities != nil {
		pagination.Items = entities
	}
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Add(entity *T) *T {
	if entity == nil {
		return nil
	}
	r.dc.stage(&stagedOp{
		kind:  opInsert,
		table: r.table.Name,
		key:   func() string { return r.identity(pkValues(r.table, entity)) },
		ptr:   entity,
		apply: func(ctx context.Context, tx bun.Tx) (int64, error) {
			if _, err := tx.NewInsert().Model(entity).Exec(ctx); err != nil {
				return 0, err
			}
			return 1, nil
		},
	})
	return entity
}

func (r *baseRepositoryImpl[T]) Update(id any, entity *T, columns ...string) *T {
	if entity == nil {
		return nil
	}
	op := &stagedOp{
		kind:     opUpdate,
		table:    r.table.Name,
		identity: r.identity(id),
		ptr:      entity,
	}

	cond, args, err := keyCondition(r.table, id)
	if err == nil {
		columns, err = r.updatableColumns(columns)
	}
	if err != nil {
		op.err = err
		r.dc.stage(op)
		return entity
	}

	op.apply = func(ctx context.Context, tx bun.Tx) (int64, error) {
		exists, err := tx.NewSelect().Model((*T)(nil)).Where(cond, args...).Exists(ctx)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrNoRowsAffected
		}
		if len(columns) == 0 {
			return 1, nil
		}
		_, err = tx.NewUpdate().
			Model(entity).
			Column(columns...).
			Where(cond, args...).
			Exec(ctx)
		if err != nil {
			return 0, err
		}
		return 1, nil
	}
	r.dc.stage(op)
	return entity
}

func (r *baseRepositoryImpl[T]) Modify(ctx context.Context, id any, fn func(*T) error) (*T, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	if err := fn(current); err != nil {
		return nil, err
	}
	return r.Update(id, current), nil
}

func (r *baseRepositoryImpl[T]) Delete(entity *T) *T {
	if entity == nil {
		return nil
	}
	r.dc.stage(&stagedOp{
		kind:     opDelete,
		table:    r.table.Name,
		identity: r.identity(pkValues(r.table, entity)),
		ptr:      entity,
		apply: func(ctx context.Context, tx bun.Tx) (int64, error) {
			res, err := tx.NewDelete().Model(entity).WherePK().Exec(ctx)
			if err != nil {
				return 0, err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return 0, err
			}
			if n == 0 {
				return 0, ErrNoRowsAffected
			}
			return n, nil
		},
	})
	return entity
}

func (r *baseRepositoryImpl[T]) SaveChanges(ctx context.Context) (int64, error) {
	return r.dc.SaveChanges(ctx)
}

// updatableColumns resolves the columns an update writes. Key columns are
// never written.
func (r *baseRepositoryImpl[T]) updatableColumns(columns []string) ([]string, error) {
	keys := make([]string, len(r.table.PKs))
	for i, pk := range r.table.PKs {
		keys[i] = pk.Name
	}

	if len(columns) == 0 {
		for _, f := range r.table.DataFields {
			columns = append(columns, f.Name)
		}
		return columns, nil
	}

	out := make([]string, 0, len(columns))
	for _, col := range columns {
		if !r.table.HasField(col) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, r.table.Name, col)
		}
		if !slices.Contains(keys, col) {
			out = append(out, col)
		}
	}
	return out, nil
}

func (r *baseRepositoryImpl[T]) identity(id any) string {
	return r.table.Name + ":" + keyString(id)
}

// keyCondition builds the WHERE clause selecting the row addressed by id.
func keyCondition(table *schema.Table, id any) (string, []any, error) {
	if id == nil {
		return "", nil, ErrInvalidID
	}

	if key, ok := id.(Key); ok {
		cols, vals := key.Columns(), key.Values()
		if len(cols) != len(table.PKs) || len(vals) != len(cols) {
			return "", nil, fmt.Errorf("%w: %s has %d key columns", ErrCompositeKey, table.Name, len(table.PKs))
		}
		parts := make([]string, len(cols))
		args := make([]any, 0, 2*len(cols))
		for i, col := range cols {
			if !isPK(table, col) {
				return "", nil, fmt.Errorf("%w: %s is not a key column of %s", ErrCompositeKey, col, table.Name)
			}
			parts[i] = "? = ?"
			args = append(args, bun.Ident(col), vals[i])
		}
		return strings.Join(parts, " AND "), args, nil
	}

	if len(table.PKs) != 1 {
		return "", nil, fmt.Errorf("%w: %s has %d key columns", ErrCompositeKey, table.Name, len(table.PKs))
	}
	return "? = ?", []any{bun.Ident(table.PKs[0].Name), id}, nil
}

func isPK(table *schema.Table, col string) bool {
	for _, pk := range table.PKs {
		if pk.Name == col {
			return true
		}
	}
	return false
}

// keyValues is the primary key of an entity read through table metadata.
type keyValues []any

func (k keyValues) Columns() []string { return nil }
func (k keyValues) Values() []any     { return k }

func pkValues[T any](table *schema.Table, entity *T) keyValues {
	v := reflect.ValueOf(entity).Elem()
	vals := make(keyValues, len(table.PKs))
	for i, pk := range table.PKs {
		vals[i] = pk.Value(v).Interface()
	}
	return vals
}

// keyString renders id so that an int id, a Key and the key read from an
// entity address the same row with the same string.
func keyString(id any) string {
	var vals []any
	if key, ok := id.(Key); ok {
		vals = key.Values()
	} else {
		vals = []any{id}
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
