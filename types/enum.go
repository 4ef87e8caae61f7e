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

package types

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// EnumEntry is one row of an enum table.
type EnumEntry struct {
	Name string
	Desc string
}

// EnumTable maps enum numbers to their names, indexed from zero.
type EnumTable []EnumEntry

// Valid reports whether n names a row of the table.
func (t EnumTable) Valid(n int) bool {
	return n >= 0 && n < len(t)
}

// Name returns the row name for n or IllegalName.
func (t EnumTable) Name(n int) string {
	if !t.Valid(n) {
		return IllegalName
	}
	return t[n].Name
}

// Desc returns the row description for n or IllegalDesc.
func (t EnumTable) Desc(n int) string {
	if !t.Valid(n) {
		return IllegalDesc
	}
	return t[n].Desc
}

// Parse looks a name up case-insensitively and returns its number or IllegalValue.
func (t EnumTable) Parse(name string) int {
	for i, e := range t {
		if strings.EqualFold(e.Name, name) {
			return i
		}
	}
	return IllegalValue
}
