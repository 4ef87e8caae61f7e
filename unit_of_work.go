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

package storefront

import (
	"context"

	"github.com/tomoncle/storefront/model"
	"github.com/tomoncle/storefront/repository"
	"github.com/tomoncle/storefront/types"
)

// UnitOfWork exposes one typed repository per storefront entity. All of
// them share the embedded unit of work and are committed by its Save.
type UnitOfWork struct {
	*repository.UnitOfWork
}

// CartItemRepository adds the product lookup the cart screens need.
type CartItemRepository interface {
	repository.KeyedRepository[model.CartItem, model.CartItemKey]

	// GetByProductID returns the first cart line holding productID, or nil.
	GetByProductID(ctx context.Context, productID int64) (*model.CartItem, error)
}

type cartItemRepository struct {
	repository.KeyedRepository[model.CartItem, model.CartItemKey]
}

func (r cartItemRepository) GetByProductID(ctx context.Context, productID int64) (*model.CartItem, error) {
	return r.First(ctx, types.NewQueryFilter("product_id = ?", productID))
}

func (u *UnitOfWork) Products() repository.Repository[model.Product] {
	return repository.For[model.Product](u.UnitOfWork)
}

func (u *UnitOfWork) Categories() repository.Repository[model.Category] {
	return repository.For[model.Category](u.UnitOfWork)
}

func (u *UnitOfWork) Carts() repository.Repository[model.Cart] {
	return repository.For[model.Cart](u.UnitOfWork)
}

func (u *UnitOfWork) CartItems() CartItemRepository {
	return cartItemRepository{repository.KeyedFor[model.CartItem, model.CartItemKey](u.UnitOfWork)}
}

func (u *UnitOfWork) Orders() repository.Repository[model.Order] {
	return repository.For[model.Order](u.UnitOfWork)
}

func (u *UnitOfWork) OrderProducts() repository.KeyedRepository[model.OrderProduct, model.OrderProductKey] {
	return repository.KeyedFor[model.OrderProduct, model.OrderProductKey](u.UnitOfWork)
}

func (u *UnitOfWork) Reviews() repository.Repository[model.Review] {
	return repository.For[model.Review](u.UnitOfWork)
}

func (u *UnitOfWork) Coupons() repository.Repository[model.Coupon] {
	return repository.For[model.Coupon](u.UnitOfWork)
}

func (u *UnitOfWork) Wishlists() repository.Repository[model.Wishlist] {
	return repository.For[model.Wishlist](u.UnitOfWork)
}

func (u *UnitOfWork) WishlistItems() repository.KeyedRepository[model.WishlistItem, model.WishlistItemKey] {
	return repository.KeyedFor[model.WishlistItem, model.WishlistItemKey](u.UnitOfWork)
}
