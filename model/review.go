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

type Review struct {
	bun.BaseModel `bun:"table:reviews"`

	ID        int64           `bun:"id,pk,autoincrement" json:"id"`
	Rating    decimal.Decimal `bun:"rating,type:decimal(18,2),notnull" json:"rating"`
	Comment   string          `bun:"comment,notnull" json:"comment"`
	ProductID int64           `bun:"product_id,notnull" json:"productId"`
	UserID    string          `bun:"user_id,notnull" json:"userId"`
	CreatedAt time.Time       `bun:"created_at,notnull" json:"timestamp"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty" msgpack:"-"`
}

func (r *Review) Identity() int64 { return r.ID }

// Coupon codes are unique and at most 20 characters long.
type Coupon struct {
	bun.BaseModel `bun:"table:coupons"`

	ID          int64           `bun:"id,pk,autoincrement" json:"id"`
	Code        string          `bun:"code,type:varchar(20),notnull,unique" json:"code"`
	Description string          `bun:"description,notnull" json:"description"`
	Discount    decimal.Decimal `bun:"discount,type:decimal(18,2),notnull" json:"discount"`
	ValidFrom   time.Time       `bun:"valid_from,notnull" json:"validFrom"`
	ValidTo     time.Time       `bun:"valid_to,notnull" json:"validTo"`
}

func (c *Coupon) Identity() int64 { return c.ID }

// ActiveAt reports whether t falls inside the coupon's validity window.
func (c *Coupon) ActiveAt(t time.Time) bool {
	return !t.Before(c.ValidFrom) && !t.After(c.ValidTo)
}
