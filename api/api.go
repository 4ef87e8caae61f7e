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
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/storefront"
	"github.com/tomoncle/storefront/database"
	"github.com/tomoncle/storefront/model"
	"github.com/tomoncle/storefront/repository"
)

// HealthFunc reports the health of the backing database.
type HealthFunc func(ctx context.Context) *database.HealthStatus

// API serves the storefront resources over HTTP. Every request runs on its
// own unit of work.
type API struct {
	store  *storefront.Store
	apiURL string
	health HealthFunc
	logger *logrus.Logger
}

type Option func(*API)

// WithAPIURL sets the prefix put in front of relative product image paths.
func WithAPIURL(url string) Option {
	return func(a *API) { a.apiURL = url }
}

func WithHealthCheck(fn HealthFunc) Option {
	return func(a *API) { a.health = fn }
}

func WithRequestLogger(logger *logrus.Logger) Option {
	return func(a *API) { a.logger = logger }
}

func New(store *storefront.Store, opts ...Option) *API {
	a := &API{store: store, health: database.GetHealthStatus}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the router with the standard middleware stack.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if a.logger != nil {
		r.Use(requestLogger(a.logger))
	}
	r.Use(middleware.Recoverer)
	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API endpoints on r.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", a.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", (&resource[model.Category]{
			svc:      storefront.NewService[model.Category](a.store),
			sortable: []string{"id", "name"},
			validate: validateCategory,
		}).routes)
		r.Route("/products", (&resource[model.Product]{
			svc:      storefront.NewService[model.Product](a.store),
			sortable: []string{"id", "name", "price", "rating", "quantity"},
			filters:  map[string]string{"categoryId": "category_id"},
			validate: validateProduct,
			present:  a.presentProduct,
		}).routes)
		r.Route("/carts", (&resource[model.Cart]{
			svc:      storefront.NewService[model.Cart](a.store),
			sortable: []string{"id", "total_price"},
			validate: validateCart,
		}).routes)
		r.Route("/orders", (&resource[model.Order]{
			svc:      storefront.NewService[model.Order](a.store),
			sortable: []string{"id", "placed_at", "total_price"},
			validate: validateOrder,
		}).routes)
		r.Route("/reviews", (&resource[model.Review]{
			svc:      storefront.NewService[model.Review](a.store),
			sortable: []string{"id", "rating", "created_at"},
			filters:  map[string]string{"productId": "product_id"},
			validate: validateReview,
		}).routes)
		r.Route("/coupons", (&resource[model.Coupon]{
			svc:      storefront.NewService[model.Coupon](a.store),
			sortable: []string{"id", "code", "valid_to"},
			validate: validateCoupon,
		}).routes)
		r.Route("/wishlists", (&resource[model.Wishlist]{
			svc:      storefront.NewService[model.Wishlist](a.store),
			sortable: []string{"id"},
			validate: validateWishlist,
		}).routes)

		r.Route("/cartitems", func(r chi.Router) {
			r.Get("/byProduct/{productId}", a.cartItemByProduct)
			(&compositeResource[model.CartItem, model.CartItemKey]{
				svc:    storefront.NewService[model.CartItem](a.store),
				params: [2]string{"cartId", "productId"},
				key: func(c, p int64) model.CartItemKey {
					return model.CartItemKey{CartID: c, ProductID: p}
				},
				keyOf:    (*model.CartItem).Key,
				validate: validateCartItem,
			}).routes(r)
		})
		r.Route("/orderproducts", (&compositeResource[model.OrderProduct, model.OrderProductKey]{
			svc:    storefront.NewService[model.OrderProduct](a.store),
			params: [2]string{"orderId", "productId"},
			key: func(o, p int64) model.OrderProductKey {
				return model.OrderProductKey{OrderID: o, ProductID: p}
			},
			keyOf: (*model.OrderProduct).Key,
		}).routes)
		r.Route("/wishlistitems", (&compositeResource[model.WishlistItem, model.WishlistItemKey]{
			svc:    storefront.NewService[model.WishlistItem](a.store),
			params: [2]string{"wishlistId", "productId"},
			key: func(w, p int64) model.WishlistItemKey {
				return model.WishlistItemKey{WishlistID: w, ProductID: p}
			},
			keyOf:    (*model.WishlistItem).Key,
			validate: validateWishlistItem,
		}).routes)
	})
}

func (a *API) presentProduct(p *model.Product) {
	if a.apiURL == "" || p.Image == "" {
		return
	}
	if strings.HasPrefix(p.Image, "http://") || strings.HasPrefix(p.Image, "https://") {
		return
	}
	p.Image = a.apiURL + p.Image
}

func (a *API) cartItemByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := paramInt64(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	uow := a.store.Begin()
	defer uow.Close()

	item, err := uow.CartItems().GetByProductID(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		writeError(w, r, repository.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := a.health(r.Context())
	code := http.StatusOK
	if status == nil || !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
