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
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID              int64           `bun:"id,pk,autoincrement" json:"id"`
	PlacedAt        time.Time       `bun:"placed_at,notnull" json:"timestamp"`
	TotalPrice      decimal.Decimal `bun:"total_price,type:decimal(18,2),notnull" json:"totalPrice"`
	ShippingAddress string          `bun:"shipping_address,notnull" json:"shippingAddress"`
	OrderStatus     OrderStatus     `bun:"order_status,notnull" json:"orderStatus"`
	PaymentMethod   PaymentMethod   `bun:"payment_method,notnull" json:"paymentMethod"`
	UserID          string          `bun:"user_id,notnull" json:"userId"`
}

func (o *Order) Identity() int64 { return o.ID }

// OrderProduct is one line of an order, keyed by (order_id, product_id).
type OrderProduct struct {
	bun.BaseModel `bun:"table:order_products"`

	OrderID   int64           `bun:"order_id,pk" json:"orderId"`
	ProductID int64           `bun:"product_id,pk" json:"productId"`
	Quantity  int             `bun:"quantity,notnull" json:"quantity"`
	UnitPrice decimal.Decimal `bun:"unit_price,type:decimal(18,2),notnull" json:"unitPrice"`

	Order   *Order   `bun:"rel:belongs-to,join:order_id=id" json:"order,omitempty" msgpack:"-"`
	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty" msgpack:"-"`
}

func (o *OrderProduct) Key() OrderProductKey {
	return OrderProductKey{OrderID: o.OrderID, ProductID: o.ProductID}
}

type OrderProductKey struct {
	OrderID   int64
	ProductID int64
}

func (OrderProductKey) Columns() []string { return []string{"order_id", "product_id"} }

func (k OrderProductKey) Values() []any { return []any{k.OrderID, k.ProductID} }
