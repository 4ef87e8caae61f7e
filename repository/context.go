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
	"reflect"
	"strings"

	"github.com/tomoncle/storefront/database"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type contextState int

const (
	stateOpen contextState = iota
	stateFailed
	stateDisposed
)

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	default:
		return "delete"
	}
}

type applyFunc func(ctx context.Context, tx bun.Tx) (int64, error)

type stagedOp struct {
	kind     opKind
	table    string
	identity string // empty for inserts
	key      func() string
	ptr      any
	err      error // staging failure, reported by the next save
	apply    applyFunc
	dropped  bool
}

// keyIdentity is the identity an insert writes, read from the entity when
// asked since keys may change while the insert is pending.
func (op *stagedOp) keyIdentity() string {
	if op.key == nil {
		return ""
	}
	return op.key()
}

// DbContext is the change tracker shared by every repository of one unit of
// work. Mutations are staged in order and flushed by SaveChanges inside a
// single transaction.
//
// Staging coalesces per identity:
//   - Delete of a pending insert cancels both.
//   - Update of a pending insert that addresses the inserted row is folded
//     into the insert.
//   - A newer Update or Delete of a row replaces older staged ones, back to
//     the latest pending insert of the same row.
//
// An operation that failed to stage is never coalesced away.
type DbContext struct {
	db       *bun.DB
	ops      []*stagedOp
	state    contextState
	cache    EntityCache
	logger   database.Logger
	onCommit []func(ctx context.Context, tables []string)
}

// NewDbContext returns an open context over db. cache may be nil.
func NewDbContext(db *bun.DB, cache EntityCache, logger database.Logger) *DbContext {
	if logger == nil {
		logger = database.GetLogger()
	}
	c := &DbContext{db: db, cache: cache, logger: logger}
	if cache != nil {
		c.OnCommit(c.invalidate)
	}
	return c
}

// OnCommit registers fn to run after every successful save with the names
// of the tables the save wrote to.
func (c *DbContext) OnCommit(fn func(ctx context.Context, tables []string)) {
	c.onCommit = append(c.onCommit, fn)
}

// Pending returns the number of staged operations the next save will run.
func (c *DbContext) Pending() int {
	n := 0
	for _, op := range c.ops {
		if !op.dropped {
			n++
		}
	}
	return n
}

func (c *DbContext) checkReadable() error {
	if c.state == stateDisposed {
		return ErrDisposed
	}
	return nil
}

func (c *DbContext) tableOf(typ reflect.Type) *schema.Table {
	return c.db.Table(typ)
}

func (c *DbContext) stage(op *stagedOp) {
	if c.state == stateDisposed {
		return
	}

	switch op.kind {
	case opUpdate:
		if op.err != nil {
			break
		}
		c.supersede(op.identity)
		if ins := c.pendingInsert(op.ptr); ins != nil && ins.keyIdentity() == op.identity {
			// the insert writes the pointer's latest state
			return
		}
	case opDelete:
		if ins := c.pendingInsert(op.ptr); ins != nil {
			c.supersede(op.identity)
			ins.dropped = true
			return
		}
		c.supersede(op.identity)
	}
	c.ops = append(c.ops, op)
}

func (c *DbContext) pendingInsert(ptr any) *stagedOp {
	for _, op := range c.ops {
		if !op.dropped && op.kind == opInsert && op.ptr == ptr {
			return op
		}
	}
	return nil
}

// supersede drops the staged updates and deletes of identity. It walks back
// from the newest operation and stops at a pending insert of the same row:
// what was staged before that insert targets the row the insert replaces.
func (c *DbContext) supersede(identity string) {
	if identity == "" {
		return
	}
	for i := len(c.ops) - 1; i >= 0; i-- {
		op := c.ops[i]
		if op.dropped {
			continue
		}
		if op.kind == opInsert {
			if op.keyIdentity() == identity {
				return
			}
			continue
		}
		if op.identity == identity && op.err == nil {
			op.dropped = true
		}
	}
}

// SaveChanges applies every staged operation in staged order inside one
// transaction and returns the number of affected records. A failed save
// leaves the context unusable for further saves.
func (c *DbContext) SaveChanges(ctx context.Context) (int64, error) {
	switch c.state {
	case stateDisposed:
		return 0, ErrDisposed
	case stateFailed:
		return 0, ErrContaminated
	}

	live := make([]*stagedOp, 0, len(c.ops))
	for _, op := range c.ops {
		if op.dropped {
			continue
		}
		if op.err != nil {
			c.state = stateFailed
			return 0, fmt.Errorf("stage %s %s: %w", op.kind, op.table, op.err)
		}
		live = append(live, op)
	}
	if len(live) == 0 {
		c.ops = nil
		return 0, nil
	}

	var (
		affected int64
		failed   *stagedOp
	)
	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, op := range live {
			n, err := op.apply(ctx, tx)
			if err != nil {
				failed = op
				return err
			}
			affected += n
		}
		return nil
	})
	if err != nil {
		c.state = stateFailed
		if failed != nil {
			return 0, newStoreError(failed.kind.String(), failed.table, err)
		}
		return 0, newStoreError("save", "", err)
	}

	c.ops = nil
	tables := touchedTables(live)
	for _, fn := range c.onCommit {
		fn(ctx, tables)
	}
	return affected, nil
}

// Close disposes the context and drops anything still staged.
func (c *DbContext) Close() error {
	c.state = stateDisposed
	c.ops = nil
	c.onCommit = nil
	return nil
}

func (c *DbContext) invalidate(ctx context.Context, tables []string) {
	if err := c.cache.Invalidate(ctx, tables...); err != nil {
		c.logger.Warn("cache invalidation failed", "tables", strings.Join(tables, ","), "error", err)
	}
}

// cacheLoad reports a hit, or on a miss whether the row may be stored
// afterwards and under which version.
func (c *DbContext) cacheLoad(ctx context.Context, table, id string, dest any) (hit bool, version int64, storable bool) {
	if c.cache == nil {
		return false, 0, false
	}
	ok, version, err := c.cache.Load(ctx, table, id, dest)
	if err != nil {
		c.logger.Warn("cache load failed", "table", table, "error", err)
		return false, 0, false
	}
	return ok, version, !ok
}

func (c *DbContext) cacheStore(ctx context.Context, table, id string, version int64, value any) {
	if err := c.cache.Store(ctx, table, id, version, value); err != nil {
		c.logger.Warn("cache store failed", "table", table, "error", err)
	}
}

func touchedTables(ops []*stagedOp) []string {
	seen := make(map[string]struct{}, len(ops))
	tables := make([]string, 0, len(ops))
	for _, op := range ops {
		if _, ok := seen[op.table]; ok {
			continue
		}
		seen[op.table] = struct{}{}
		tables = append(tables, op.table)
	}
	return tables
}
