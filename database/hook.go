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
	"database/sql"
	"errors"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var (
	selectColor = color.New(color.FgGreen)
	insertColor = color.New(color.FgBlue)
	updateColor = color.New(color.FgYellow)
	deleteColor = color.New(color.FgMagenta)
	otherColor  = color.New(color.FgRed)
)

// QueryHook reports failed and slow statements through a Logger. With
// verbose set, every statement is logged at debug level.
type QueryHook struct {
	logger   Logger
	slowTime time.Duration
	verbose  bool
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(logger Logger, slowTime time.Duration, verbose bool) *QueryHook {
	return &QueryHook{logger: logger, slowTime: slowTime, verbose: verbose}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	logger := h.logger
	if logger == nil {
		logger = GetLogger()
	}
	dur := time.Since(event.StartTime).Round(time.Microsecond)

	switch {
	case event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) && !errors.Is(event.Err, sql.ErrTxDone):
		logger.Warn("query failed",
			"operation", colorOperation(event.Operation()),
			"duration", dur,
			"query", event.Query,
			"error", event.Err,
		)
	case h.slowTime > 0 && dur > h.slowTime:
		logger.Warn("slow query",
			"operation", colorOperation(event.Operation()),
			"duration", dur,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	case h.verbose:
		logger.Debug("query",
			"operation", colorOperation(event.Operation()),
			"duration", dur,
			"query", event.Query,
		)
	}
}

func colorOperation(op string) string {
	switch op {
	case "SELECT":
		return selectColor.Sprint(op)
	case "INSERT":
		return insertColor.Sprint(op)
	case "UPDATE":
		return updateColor.Sprint(op)
	case "DELETE":
		return deleteColor.Sprint(op)
	default:
		return otherColor.Sprint(op)
	}
}
