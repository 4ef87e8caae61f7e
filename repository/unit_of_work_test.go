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
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/storefront/database"
	"github.com/tomoncle/storefront/internal/testutil"
	"github.com/tomoncle/storefront/model"
	"github.com/tomoncle/storefront/types"
	"github.com/uptrace/bun"
)

func mug() *model.Product {
	return &model.Product{
		Name:        "Mug",
		Description: "ceramic mug",
		Price:       model.Amount(9.99),
		Quantity:    10,
		Image:       "mug.png",
		CategoryID:  1,
	}
}

func insertProducts(t *testing.T, db *bun.DB, products ...*model.Product) {
	t.Helper()
	uow := NewUnitOfWork(db)
	defer uow.Close()
	for _, p := range products {
		For[model.Product](uow).Add(p)
	}
	n, err := uow.Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(len(products)), n)
}

func TestFor_ReturnsSameInstance(t *testing.T) {
	uow := NewUnitOfWork(testutil.NewTestDB(t))
	defer uow.Close()

	assert.Same(t, For[model.Product](uow), For[model.Product](uow))
	assert.Same(t, KeyedFor[model.CartItem, model.CartItemKey](uow), KeyedFor[model.CartItem, model.CartItemKey](uow))
	assert.NotSame(t, For[model.CartItem](uow), KeyedFor[model.CartItem, model.CartItemKey](uow))
}

func TestUnitOfWork_AddThenSave(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	p := For[model.Product](uow).Add(mug())
	assert.Equal(t, 1, uow.Pending())

	n, err := uow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NotZero(t, p.ID)
	assert.Equal(t, 0, uow.Pending())
	require.NoError(t, uow.Close())

	other := NewUnitOfWork(db)
	defer other.Close()
	got, err := For[model.Product](other).GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mug", got.Name)
	assert.Equal(t, "9.99", got.Price.String())
}

func TestUnitOfWork_StagedChangesInvisibleUntilSave(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	writer := NewUnitOfWork(db)
	defer writer.Close()
	reader := NewUnitOfWork(db)
	defer reader.Close()

	For[model.Product](writer).Add(mug())

	all, err := For[model.Product](reader).GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = writer.Save(ctx)
	require.NoError(t, err)

	all, err = For[model.Product](reader).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetByID_Missing(t *testing.T) {
	uow := NewUnitOfWork(testutil.NewTestDB(t))
	defer uow.Close()

	got, err := For[model.Product](uow).GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdate_MissingRowFailsSave(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()

	p := mug()
	p.ID = 5
	For[model.Product](uow).Update(5, p)

	_, err := uow.Save(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRowsAffected)
	assert.True(t, IsStoreError(err))

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "update", se.Op)
	assert.Equal(t, "products", se.Table)
	assert.Equal(t, database.NoRowsErr, se.Kind)

	_, err = uow.Save(ctx)
	assert.ErrorIs(t, err, ErrContaminated)

	// reads stay available after a failed save
	got, err := For[model.Product](uow).GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAddThenDelete_IsNoop(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()

	repo := For[model.Product](uow)
	p := repo.Add(mug())
	repo.Delete(p)
	assert.Equal(t, 0, uow.Pending())

	n, err := uow.Save(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	p := mug()
	insertProducts(t, db, p)

	first := NewUnitOfWork(db)
	defer first.Close()
	stale, err := For[model.Product](first).GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stale)

	second := NewUnitOfWork(db)
	defer second.Close()
	current, err := For[model.Product](second).GetByID(ctx, p.ID)
	require.NoError(t, err)
	For[model.Product](second).Delete(current)
	n, err := second.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	t.Run("lookup after delete is absent", func(t *testing.T) {
		uow := NewUnitOfWork(db)
		defer uow.Close()
		got, err := For[model.Product](uow).GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("deleting a removed row fails the save", func(t *testing.T) {
		For[model.Product](first).Delete(stale)
		_, err := first.Save(ctx)
		assert.ErrorIs(t, err, ErrNoRowsAffected)
	})
}

func TestCompositeKeys(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()
	items := KeyedFor[model.CartItem, model.CartItemKey](uow)
	items.Add(&model.CartItem{CartID: 1, ProductID: 2, Quantity: 3})
	items.Add(&model.CartItem{CartID: 1, ProductID: 4, Quantity: 1})
	_, err := uow.Save(ctx)
	require.NoError(t, err)

	_, err = items.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrCompositeKey)
	assert.False(t, IsStoreError(err))

	_, err = items.GetByID(ctx, model.OrderProductKey{OrderID: 1, ProductID: 2})
	assert.ErrorIs(t, err, ErrCompositeKey)

	got, err := items.GetByKey(ctx, model.CartItemKey{CartID: 1, ProductID: 2})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Quantity)

	got, err = items.GetByKey(ctx, model.CartItemKey{CartID: 2, ProductID: 2})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = For[model.Product](uow).GetByID(ctx, model.CartItemKey{CartID: 1, ProductID: 2})
	assert.ErrorIs(t, err, ErrCompositeKey)

	t.Run("update and delete by key", func(t *testing.T) {
		w := NewUnitOfWork(db)
		defer w.Close()
		repo := KeyedFor[model.CartItem, model.CartItemKey](w)

		repo.Update(model.CartItemKey{CartID: 1, ProductID: 2}, &model.CartItem{CartID: 1, ProductID: 2, Quantity: 7})
		repo.Delete(&model.CartItem{CartID: 1, ProductID: 4})
		n, err := w.Save(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 7, all[0].Quantity)
	})
}

func TestUpdate_Columns(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	p := mug()
	insertProducts(t, db, p)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	repo.Update(p.ID, &model.Product{ID: 999, Name: "Cup"}, "name", "id")
	_, err := uow.Save(ctx)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Cup", got.Name)
	assert.Equal(t, "ceramic mug", got.Description)
	assert.Equal(t, "9.99", got.Price.String())
	assert.Equal(t, p.ID, got.ID)
}

func TestUpdate_WholeRecord(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	p := mug()
	insertProducts(t, db, p)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	replacement := &model.Product{ID: p.ID, Name: "Cup", Description: "glass", Price: model.Amount(4.5), Image: "cup.png", CategoryID: 2}
	repo.Update(p.ID, replacement)
	n, err := uow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "glass", got.Description)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, int64(2), got.CategoryID)
}

func TestUpdate_UnknownColumn(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := mug()
	insertProducts(t, db, p)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	For[model.Product](uow).Update(p.ID, p, "colour")

	_, err := uow.Save(context.Background())
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.False(t, IsStoreError(err))
}

func TestStaging_LastWriteWins(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	a, b := mug(), mug()
	insertProducts(t, db, a, b)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	repo.Update(a.ID, &model.Product{ID: a.ID, Name: "first"}, "name")
	repo.Update(a.ID, &model.Product{ID: a.ID, Name: "second"}, "name")
	repo.Update(b.ID, &model.Product{ID: b.ID, Name: "gone"}, "name")
	repo.Delete(&model.Product{ID: b.ID})
	assert.Equal(t, 2, uow.Pending())

	n, err := uow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)

	got, err = repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStaging_UpdateOfPendingInsertFolds(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	p := repo.Add(mug())
	p.Name = "Big Mug"
	repo.Update(p.ID, p)
	assert.Equal(t, 1, uow.Pending())

	n, err := uow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", got.Name)
}

func TestStaging_UpdateOfPendingInsertAddressingOtherRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	a := mug()
	insertProducts(t, db, a)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	p := repo.Add(mug())
	p.Name = "Renamed"
	repo.Update(a.ID, p, "name")
	assert.Equal(t, 2, uow.Pending())

	n, err := uow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStaging_FailedUpdateOfPendingInsertIsReported(t *testing.T) {
	db := testutil.NewTestDB(t)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	p := repo.Add(mug())
	repo.Update(p.ID, p, "colour")
	repo.Update(p.ID, p, "name")

	_, err := uow.Save(context.Background())
	assert.ErrorIs(t, err, ErrUnknownColumn)

	check := NewUnitOfWork(db)
	defer check.Close()
	all, err := For[model.Product](check).GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStaging_DeleteThenInsertSameKey(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	old := mug()
	insertProducts(t, db, old)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	repo.Delete(&model.Product{ID: old.ID})
	fresh := mug()
	fresh.ID = old.ID
	fresh.Name = "New"
	repo.Add(fresh)
	repo.Update(old.ID, &model.Product{ID: old.ID, Name: "Newer"}, "name")
	assert.Equal(t, 3, uow.Pending())

	n, err := uow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := repo.GetByID(ctx, old.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Newer", got.Name)

	repo.Update(old.ID, &model.Product{ID: old.ID, Name: "first"}, "name")
	repo.Delete(&model.Product{ID: old.ID})
	again := mug()
	again.ID = old.ID
	repo.Add(again)
	repo.Delete(again)
	assert.Equal(t, 1, uow.Pending())

	_, err = uow.Save(ctx)
	require.NoError(t, err)
	got, err = repo.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestModify(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	p := mug()
	insertProducts(t, db, p)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	missing, err := repo.Modify(ctx, p.ID+100, func(*model.Product) error { return nil })
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := repo.Modify(ctx, p.ID, func(p *model.Product) error {
		p.Quantity--
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	_, err = uow.Save(ctx)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
	assert.Equal(t, "Mug", got.Name)
}

func TestFindFirstAndPage(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	var products []*model.Product
	for i := 0; i < 25; i++ {
		p := mug()
		p.CategoryID = int64(i%2 + 1)
		products = append(products, p)
	}
	insertProducts(t, db, products...)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	repo := For[model.Product](uow)

	evens, err := repo.Find(ctx, types.NewQueryFilter("category_id = ?", 2))
	require.NoError(t, err)
	assert.Len(t, evens, 12)

	first, err := repo.First(ctx, types.NewQueryFilter("category_id = ?", 2))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(2), first.CategoryID)

	none, err := repo.First(ctx, types.NewQueryFilter("category_id = ?", 3))
	require.NoError(t, err)
	assert.Nil(t, none)

	page, err := repo.Page(ctx, types.NewPageRequest(2, 10, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.Pages())
	require.Len(t, page.Items, 10)
	assert.Equal(t, products[10].ID, page.Items[0].ID)

	desc, err := repo.Page(ctx, types.NewPageRequest(1, 5, types.NewQueryFilter("category_id = ?", 1), []string{"id DESC"}))
	require.NoError(t, err)
	assert.Equal(t, 13, desc.Total)
	assert.Equal(t, products[24].ID, desc.Items[0].ID)

	empty, err := repo.Page(ctx, types.NewPageRequest(1, 5, types.NewQueryFilter("category_id = ?", 9), nil))
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.Items)
}

func TestDecimalColumns_WholeAmounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	p := mug()
	p.Price = model.Amount(10)
	p.Discount = decimal.Zero
	free := mug()
	free.Price = model.Amount(0)
	insertProducts(t, db, p, free)

	uow := NewUnitOfWork(db)
	defer uow.Close()
	For[model.Coupon](uow).Add(&model.Coupon{Code: "TEN", Description: "ten", Discount: model.Amount(10), ValidFrom: now, ValidTo: now.Add(time.Hour)})
	For[model.Review](uow).Add(&model.Review{Rating: model.Amount(4), Comment: "ok", ProductID: p.ID, UserID: "u1", CreatedAt: now})
	_, err := uow.Save(ctx)
	require.NoError(t, err)

	products := For[model.Product](uow)
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "10", got.Price.String())
	assert.Equal(t, "0", got.Discount.String())

	all, err := products.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	prices := []string{all[0].Price.String(), all[1].Price.String()}
	assert.ElementsMatch(t, []string{"10", "0"}, prices)

	page, err := products.Page(ctx, types.NewPageRequest(1, 10, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	coupons, err := For[model.Coupon](uow).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, "10", coupons[0].Discount.String())

	reviews, err := For[model.Review](uow).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "4", reviews[0].Rating.String())
}

func TestSave_IsAtomicAcrossRepositories(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	uow := NewUnitOfWork(db)
	defer uow.Close()
	For[model.Category](uow).Add(&model.Category{Name: "Kitchen", Description: "d", Image: "k.png"})
	coupons := For[model.Coupon](uow)
	coupons.Add(&model.Coupon{Code: "SAVE10", Description: "ten", Discount: model.Amount(10), ValidFrom: now, ValidTo: now.Add(time.Hour)})
	coupons.Add(&model.Coupon{Code: "SAVE10", Description: "dup", Discount: model.Amount(5), ValidFrom: now, ValidTo: now.Add(time.Hour)})

	_, err := coupons.SaveChanges(ctx)
	require.Error(t, err)
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, database.DuplicateKeyErr, se.Kind)
	assert.Equal(t, "coupons", se.Table)

	check := NewUnitOfWork(db)
	defer check.Close()
	cats, err := For[model.Category](check).GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
	all, err := For[model.Coupon](check).GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveChanges_FlushesSharedContext(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWork(db)
	defer uow.Close()
	For[model.Category](uow).Add(&model.Category{Name: "Kitchen", Description: "d", Image: "k.png"})
	products := For[model.Product](uow)
	products.Add(mug())

	n, err := products.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestClose(t *testing.T) {
	uow := NewUnitOfWork(testutil.NewTestDB(t))
	repo := For[model.Product](uow)
	repo.Add(mug())

	require.NoError(t, uow.Close())
	require.NoError(t, uow.Close())
	assert.Equal(t, 0, uow.Pending())

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = uow.Save(context.Background())
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = For[model.Category](uow).GetAll(context.Background())
	assert.ErrorIs(t, err, ErrDisposed)
}

type memoryCache struct {
	entries     map[string][]byte
	versions    map[string]int64
	loads       int
	hits        int
	invalidated []string
	beforeStore func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, versions: map[string]int64{}}
}

func (c *memoryCache) key(table, id string, version int64) string {
	return fmt.Sprintf("%s/v%d/%s", table, version, id)
}

func (c *memoryCache) Load(_ context.Context, table, id string, dest any) (bool, int64, error) {
	c.loads++
	version := c.versions[table]
	b, ok := c.entries[c.key(table, id, version)]
	if !ok {
		return false, version, nil
	}
	c.hits++
	return true, version, json.Unmarshal(b, dest)
}

func (c *memoryCache) Store(_ context.Context, table, id string, version int64, value any) error {
	if fn := c.beforeStore; fn != nil {
		c.beforeStore = nil
		fn()
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[c.key(table, id, version)] = b
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, tables ...string) error {
	c.invalidated = append(c.invalidated, tables...)
	for _, table := range tables {
		c.versions[table]++
	}
	return nil
}

func TestEntityCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	cache := newMemoryCache()
	p := mug()
	insertProducts(t, db, p)

	uow := NewUnitOfWork(db, WithCache(cache))
	defer uow.Close()
	repo := For[model.Product](uow)

	missing, err := repo.GetByID(ctx, p.ID+1)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Len(t, cache.entries, 0, "absence is not cached")

	_, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)
	assert.Equal(t, 1, cache.hits)

	repo.Update(p.ID, &model.Product{Name: "Cup"}, "name")
	_, err = uow.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"products"}, cache.invalidated)

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cup", got.Name)
}

func TestEntityCache_CommitBetweenReadAndStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	cache := newMemoryCache()
	p := mug()
	insertProducts(t, db, p)

	cache.beforeStore = func() {
		writer := NewUnitOfWork(db, WithCache(cache))
		defer writer.Close()
		For[model.Product](writer).Update(p.ID, &model.Product{Name: "Cups"}, "name")
		_, err := writer.Save(ctx)
		require.NoError(t, err)
	}

	reader := NewUnitOfWork(db, WithCache(cache))
	defer reader.Close()
	got, err := For[model.Product](reader).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)

	later := NewUnitOfWork(db, WithCache(cache))
	defer later.Close()
	got, err = For[model.Product](later).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cups", got.Name)
	assert.Zero(t, cache.hits)
}
