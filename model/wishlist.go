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

import "github.com/uptrace/bun"

type Wishlist struct {
	bun.BaseModel `bun:"table:wishlist"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	UserID string `bun:"user_id,notnull" json:"userId"`
}

func (w *Wishlist) Identity() int64 { return w.ID }

type WishlistItem struct {
	bun.BaseModel `bun:"table:wishlist_items"`

	WishlistID int64  `bun:"wishlist_id,pk" json:"wishlistId"`
	ProductID  int64  `bun:"product_id,pk" json:"productId"`
	UserID     string `bun:"user_id" json:"userId"`

	Wishlist *Wishlist `bun:"rel:belongs-to,join:wishlist_id=id" json:"wishlist,omitempty" msgpack:"-"`
	Product  *Product  `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty" msgpack:"-"`
}

func (w *WishlistItem) Key() WishlistItemKey {
	return WishlistItemKey{WishlistID: w.WishlistID, ProductID: w.ProductID}
}

type WishlistItemKey struct {
	WishlistID int64
	ProductID  int64
}

func (WishlistItemKey) Columns() []string { return []string{"wishlist_id", "product_id"} }

func (k WishlistItemKey) Values() []any { return []any{k.WishlistID, k.ProductID} }
