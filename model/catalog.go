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

type Category struct {
	bun.BaseModel `bun:"table:categories"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Name        string `bun:"name,notnull" json:"name"`
	Description string `bun:"description,notnull" json:"description"`
	Image       string `bun:"image,notnull" json:"image"`
}

func (c *Category) Identity() int64 { return c.ID }

// Product prices, discounts and ratings are exact decimal(18,2) values.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID          int64           `bun:"id,pk,autoincrement" json:"id"`
	Name        string          `bun:"name,notnull" json:"name"`
	Description string          `bun:"description,notnull" json:"description"`
	Price       decimal.Decimal `bun:"price,type:decimal(18,2),notnull" json:"price"`
	Quantity    int             `bun:"quantity,notnull" json:"quantity"`
	Image       string          `bun:"image,notnull" json:"image"`
	Discount    decimal.Decimal `bun:"discount,type:decimal(18,2),notnull" json:"discount"`
	CategoryID  int64           `bun:"category_id,notnull" json:"categoryId"`
	Rating      decimal.Decimal `bun:"rating,type:decimal(18,2),notnull" json:"rating"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty" msgpack:"-"`
}

func (p *Product) Identity() int64 { return p.ID }
