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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumTable(t *testing.T) {
	table := EnumTable{{Name: "Red", Desc: "warm"}, {Name: "Blue", Desc: "cold"}}

	assert.True(t, table.Valid(1))
	assert.False(t, table.Valid(2))
	assert.False(t, table.Valid(-1))
	assert.Equal(t, "Blue", table.Name(1))
	assert.Equal(t, IllegalName, table.Name(7))
	assert.Equal(t, "warm", table.Desc(0))
	assert.Equal(t, IllegalDesc, table.Desc(-3))
	assert.Equal(t, 1, table.Parse("BLUE"))
	assert.Equal(t, IllegalValue, table.Parse("green"))
}
