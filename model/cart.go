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

package model

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Cart struct {
	bun.BaseModel `bun:"table:carts"`

	ID         int64           `bun:"id,pk,autoincrement" json:"id"`
	UserID     string          `bun:"user_id,notnull" json:"userId"`
	TotalPrice decimal.Decimal `bun:"total_price,type:decimal(18,2),notnull" json:"totalPrice"`
}

func (c *Cart) Identity() int64 { return c.ID }

// CartItem is keyed by (cart_id, product_id).
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items"`

	CartID    int64 `bun:"cart_id,pk" json:"cartId"`
	ProductID int64 `bun:"product_id,pk" json:"productId"`
	Quantity  int   `bun:"quantity,notnull" json:"quantity"`

	Cart    *Cart    `bun:"rel:belongs-to,join:cart_id=id" json:"cart,omitempty" msgpack:"-"`
	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty" msgpack:"-"`
}

func (c *CartItem) Key() CartItemKey {
	return CartItemKey{CartID: c.CartID, ProductID: c.ProductID}
}

type CartItemKey struct {
	CartID    int64
	ProductID int64
}

func (CartItemKey) Columns() []string { return []string{"cart_id", "product_id"} }

func (k CartItemKey) Values() []any { return []any{k.CartID, k.ProductID} }
