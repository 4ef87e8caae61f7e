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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/storefront"
	"github.com/tomoncle/storefront/database"
	"github.com/tomoncle/storefront/internal/testutil"
	"github.com/tomoncle/storefront/model"
	"github.com/tomoncle/storefront/types"
)

func setupTestAPI(t *testing.T, opts ...Option) (http.Handler, *storefront.Store) {
	t.Helper()
	store := storefront.NewStore(testutil.NewTestDB(t))
	opts = append([]Option{
		WithAPIURL("http://img.local/"),
		WithHealthCheck(func(context.Context) *database.HealthStatus {
			return &database.HealthStatus{Healthy: true, Connected: true}
		}),
	}, opts...)
	return New(store, opts...).Handler(), store
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func createProduct(t *testing.T, h http.Handler, name string, price float64) model.Product {
	t.Helper()
	w := do(t, h, "POST", "/api/products", model.Product{
		Name: name, Description: "d", Price: model.Amount(price), Quantity: 5, Image: name + ".png", CategoryID: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.Product](t, w)
}

func TestProducts_CreateAndGet(t *testing.T) {
	h, store := setupTestAPI(t)

	created := createProduct(t, h, "mug", 9.99)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "http://img.local/mug.png", created.Image)

	w := do(t, h, "GET", "/api/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":9.99,`)
	assert.Contains(t, w.Body.String(), `"discount":0,`)
	got := decode[model.Product](t, w)
	assert.Equal(t, "mug", got.Name)
	assert.Equal(t, "9.99", got.Price.String())
	assert.Equal(t, "http://img.local/mug.png", got.Image)

	// the stored path stays relative
	uow := store.Begin()
	defer uow.Close()
	stored, err := uow.Products().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mug.png", stored.Image)
}

func TestProducts_GetErrors(t *testing.T) {
	h, _ := setupTestAPI(t)

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/api/products/999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/api/products/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/api/products", "{").Code)

	w := do(t, h, "POST", "/api/categories", model.Category{Description: "d", Image: "i"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "name is required")
}

func TestProducts_Update(t *testing.T) {
	h, _ := setupTestAPI(t)
	p := createProduct(t, h, "mug", 9.99)

	p.Name = "cup"
	w := do(t, h, "PUT", "/api/products/2", p)
	assert.Equal(t, http.StatusConflict, w.Code)

	other := p
	other.ID = 2
	w = do(t, h, "PUT", "/api/products/2", other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "PUT", "/api/products/1", p)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, "GET", "/api/products/1", nil)
	assert.Equal(t, "cup", decode[model.Product](t, w).Name)
}

func TestProducts_Patch(t *testing.T) {
	h, _ := setupTestAPI(t)
	createProduct(t, h, "mug", 9.99)

	w := do(t, h, "PATCH", "/api/products/1", `{"quantity": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[model.Product](t, w)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, "mug", got.Name)

	assert.Equal(t, http.StatusConflict, do(t, h, "PATCH", "/api/products/1", `{"id": 5}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "PATCH", "/api/products/9", `{"quantity": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "PATCH", "/api/products/1", `{"price": -1}`).Code)
}

func TestProducts_Delete(t *testing.T) {
	h, _ := setupTestAPI(t)
	createProduct(t, h, "mug", 9.99)

	w := do(t, h, "DELETE", "/api/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mug", decode[model.Product](t, w).Name)

	assert.Equal(t, http.StatusNotFound, do(t, h, "DELETE", "/api/products/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/api/products/1", nil).Code)
}

func TestProducts_List(t *testing.T) {
	h, _ := setupTestAPI(t)
	createProduct(t, h, "mug", 9.99)
	createProduct(t, h, "plate", 19.5)
	createProduct(t, h, "bowl", 4)

	w := do(t, h, "GET", "/api/products?page=1&size=2&sort=-price", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Pagination[model.Product]](t, w)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "plate", page.Items[0].Name)
	assert.Equal(t, "http://img.local/plate.png", page.Items[0].Image)

	w = do(t, h, "GET", "/api/products?categoryId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Product](t, w), 3)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/api/products?categoryId=x", nil).Code)
}

func TestReviews_ByProduct(t *testing.T) {
	h, _ := setupTestAPI(t)

	for _, pid := range []int64{1, 1, 2} {
		w := do(t, h, "POST", "/api/reviews", model.Review{Rating: model.Amount(4), Comment: "ok", ProductID: pid, UserID: "u1"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := do(t, h, "GET", "/api/reviews?productId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Review](t, w), 2)

	w = do(t, h, "POST", "/api/reviews", model.Review{Rating: model.Amount(9), Comment: "ok", UserID: "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrders_Validation(t *testing.T) {
	h, _ := setupTestAPI(t)

	w := do(t, h, "POST", "/api/orders", model.Order{ShippingAddress: "street 1", UserID: "u1", PaymentMethod: model.CreditCard})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, model.OrderPending, decode[model.Order](t, w).OrderStatus)

	w = do(t, h, "POST", "/api/orders", model.Order{ShippingAddress: "street 1", UserID: "u1", OrderStatus: 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartItems(t *testing.T) {
	h, _ := setupTestAPI(t)

	w := do(t, h, "POST", "/api/cartitems", model.CartItem{CartID: 1, ProductID: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[model.CartItem](t, w).Quantity)

	w = do(t, h, "GET", "/api/cartitems/1/2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/api/cartitems/byProduct/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[model.CartItem](t, w).CartID)

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/api/cartitems/byProduct/3", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/api/cartitems/1/3", nil).Code)

	w = do(t, h, "PUT", "/api/cartitems/1/2", model.CartItem{CartID: 1, ProductID: 3, Quantity: 4})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "PUT", "/api/cartitems/1/2", model.CartItem{CartID: 1, ProductID: 2, Quantity: 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, "GET", "/api/cartitems", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Pagination[model.CartItem]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 4, page.Items[0].Quantity)

	assert.Equal(t, http.StatusOK, do(t, h, "DELETE", "/api/cartitems/1/2", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "DELETE", "/api/cartitems/1/2", nil).Code)
}

func TestDuplicateCoupon(t *testing.T) {
	h, _ := setupTestAPI(t)
	c := model.Coupon{Code: "SAVE10", Description: "ten off", Discount: model.Amount(10)}

	require.Equal(t, http.StatusCreated, do(t, h, "POST", "/api/coupons", c).Code)
	w := do(t, h, "POST", "/api/coupons", c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "storage failure", decode[ErrorResponse](t, w).Error)
}

func TestHealthz(t *testing.T) {
	h, _ := setupTestAPI(t)
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/healthz", nil).Code)

	h, _ = setupTestAPI(t, WithHealthCheck(func(context.Context) *database.HealthStatus {
		return &database.HealthStatus{LastError: "down"}
	}))
	w := do(t, h, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decode[database.HealthStatus](t, w).LastError)
}

func TestRequestLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h, _ := setupTestAPI(t, WithRequestLogger(logger))

	do(t, h, "GET", "/api/products/999", nil)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusNotFound, entry.Data["status_code"])
	assert.Equal(t, "/api/products/999", entry.Data["req_uri"])
	assert.Equal(t, "GET", entry.Data["req_method"])
	assert.NotEmpty(t, entry.Data["request_id"])
}
