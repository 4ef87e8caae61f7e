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
	"errors"
	"fmt"

	"github.com/tomoncle/storefront/database"
)

var (
	// ErrNotFound lets callers turn an absent lookup result into an error.
	ErrNotFound = errors.New("repository: entity not found")

	// ErrNoRowsAffected means a staged update or delete found no row at save time.
	ErrNoRowsAffected = errors.New("repository: no rows affected")

	ErrCompositeKey     = errors.New("repository: composite key required")
	ErrUnknownColumn    = errors.New("repository: unknown column")
	ErrInvalidID        = errors.New("repository: invalid id")
	ErrDisposed         = errors.New("repository: unit of work disposed")
	ErrContaminated     = errors.New("repository: unit of work failed, start a new one")
	ErrIdentityMismatch = errors.New("repository: id does not match entity key")
)

// StoreError wraps a failure of the backing store during a read or a save.
type StoreError struct {
	Op    string
	Table string
	Kind  database.SQLError
	Err   error
}

func newStoreError(op, table string, err error) *StoreError {
	kind := database.UnknownErr
	if errors.Is(err, ErrNoRowsAffected) {
		kind = database.NoRowsErr
	} else if _, k := database.IsSqlError(err); k != database.UnknownErr {
		kind = k
	}
	return &StoreError{Op: op, Table: table, Kind: kind, Err: err}
}

func (e *StoreError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("repository: %s failed (%s): %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("repository: %s %s failed (%s): %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err is or wraps a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
