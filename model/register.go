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

import "github.com/tomoncle/storefront/database"

// Priorities order table creation so that referenced tables come first.
const (
	priorityRoot = 10 * (iota + 1)
	priorityOwner
	priorityLine
)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Category)(nil), priorityRoot))
	database.RegisteredModel(database.NewModelAdapter((*Coupon)(nil), priorityRoot))
	database.RegisteredModel(database.NewModelAdapter((*Product)(nil), priorityOwner,
		database.IndexSpec{Name: "IX_Products_CategoryId", Columns: []string{"category_id"}},
	))
	database.RegisteredModel(database.NewModelAdapter((*Cart)(nil), priorityOwner,
		database.IndexSpec{Name: "IX_Carts_UserId", Columns: []string{"user_id"}},
	))
	database.RegisteredModel(database.NewModelAdapter((*Order)(nil), priorityOwner,
		database.IndexSpec{Name: "IX_Orders_UserId", Columns: []string{"user_id"}},
	))
	database.RegisteredModel(database.NewModelAdapter((*Wishlist)(nil), priorityOwner,
		database.IndexSpec{Name: "IX_Wishlist_UserId", Columns: []string{"user_id"}},
	))
	database.RegisteredModel(database.NewModelAdapter((*Review)(nil), priorityLine,
		database.IndexSpec{Name: "IX_Reviews_ProductId", Columns: []string{"product_id"}},
		database.IndexSpec{Name: "IX_Reviews_UserId", Columns: []string{"user_id"}},
	))
	database.RegisteredModel(database.NewModelAdapter((*CartItem)(nil), priorityLine,
		database.IndexSpec{Name: "IX_CartItems_ProductId", Columns: []string{"product_id"}},
	))
	database.RegisteredModel(database.NewModelAdapter((*OrderProduct)(nil), priorityLine,
		database.IndexSpec{Name: "IX_OrderProducts_ProductId", Columns: []string{"product_id"}},
	))
	database.RegisteredModel(database.NewModelAdapter((*WishlistItem)(nil), priorityLine,
		database.IndexSpec{Name: "IX_WishlistItems_ProductId", Columns: []string{"product_id"}},
		database.IndexSpec{Name: "IX_WishlistItems_UserId", Columns: []string{"user_id"}},
	))
}

// Models returns one nil pointer of every storefront entity, ready for
// bun.DB.RegisterModel or table creation in tests.
func Models() []interface{} {
	return []interface{}{
		(*Category)(nil), (*Coupon)(nil),
		(*Product)(nil), (*Cart)(nil), (*Order)(nil), (*Wishlist)(nil),
		(*Review)(nil), (*CartItem)(nil), (*OrderProduct)(nil), (*WishlistItem)(nil),
	}
}
