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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeignKeyConstraint_GenerateSQL(t *testing.T) {
	fk := ForeignKeyConstraint{
		Table: "products", Column: "category_id",
		ReferenceTable: "categories", ReferenceColumn: "id",
		OnDelete: "cascade",
	}
	assert.Equal(t, "fk_products_category_id", fk.GenerateConstraintName())
	assert.Equal(t,
		"ALTER TABLE products ADD CONSTRAINT fk_products_category_id FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE",
		fk.GenerateSQL())

	fk.ConstraintName = "fk_custom"
	fk.OnUpdate = "restrict"
	assert.Contains(t, fk.GenerateSQL(), "CONSTRAINT fk_custom")
	assert.Contains(t, fk.GenerateSQL(), "ON UPDATE RESTRICT")
}

func TestForeignKeyManager_Defaults(t *testing.T) {
	fkm := NewForeignKeyManager(nil)
	assert.Len(t, fkm.ListAllConstraints(), 8)
	assert.Len(t, fkm.GetConstraintsByTable("CART_ITEMS"), 2)
	assert.Empty(t, fkm.ValidateConstraints())
}

func TestLoadForeignKeyManager(t *testing.T) {
	dir := t.TempDir()

	fkm, err := LoadForeignKeyManager(nil, filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Len(t, fkm.ListAllConstraints(), 8)

	path := filepath.Join(dir, "fk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
foreign_keys:
  - table: reviews
    column: product_id
    reference_table: products
    reference_column: id
    on_delete: EXPLODE
  - table: ""
    column: x
    reference_table: y
    reference_column: id
`), 0o600))

	fkm, err = LoadForeignKeyManager(&recordLogger{}, path)
	require.NoError(t, err)
	assert.Len(t, fkm.ListAllConstraints(), 2)
	assert.Len(t, fkm.ValidateConstraints(), 2)

	require.NoError(t, os.WriteFile(path, []byte("foreign_keys: [\n"), 0o600))
	_, err = LoadForeignKeyManager(nil, path)
	assert.Error(t, err)
}

func TestForeignKeyManager_ExportToConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fk.yaml")
	require.NoError(t, NewForeignKeyManager(nil).ExportToConfig(path))

	fkm, err := LoadForeignKeyManager(nil, path)
	require.NoError(t, err)
	assert.Equal(t, NewForeignKeyManager(nil).ListAllConstraints(), fkm.ListAllConstraints())
}
