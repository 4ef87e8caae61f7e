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
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tomoncle/storefront/model"
)

var maxRating = decimal.NewFromInt(5)

func required(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			return badRequest(fields[i] + " is required")
		}
	}
	return nil
}

func validateCategory(c *model.Category) error {
	return required("name", c.Name, "description", c.Description, "image", c.Image)
}

func validateProduct(p *model.Product) error {
	if err := required("name", p.Name, "description", p.Description, "image", p.Image); err != nil {
		return err
	}
	if p.Price.IsNegative() || p.Quantity < 0 || p.Discount.IsNegative() {
		return badRequest("price, quantity and discount must not be negative")
	}
	return nil
}

func validateCart(c *model.Cart) error {
	return required("userId", c.UserID)
}

func validateCartItem(i *model.CartItem) error {
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	if i.Quantity < 0 {
		return badRequest("quantity must be positive")
	}
	return nil
}

func validateOrder(o *model.Order) error {
	if err := required("shippingAddress", o.ShippingAddress, "userId", o.UserID); err != nil {
		return err
	}
	if !o.OrderStatus.IsValid() {
		return badRequest("unknown orderStatus")
	}
	if !o.PaymentMethod.IsValid() {
		return badRequest("unknown paymentMethod")
	}
	return nil
}

func validateReview(r *model.Review) error {
	if err := required("comment", r.Comment, "userId", r.UserID); err != nil {
		return err
	}
	if r.Rating.IsNegative() || r.Rating.GreaterThan(maxRating) {
		return badRequest("rating must be between 0 and 5")
	}
	return nil
}

func validateCoupon(c *model.Coupon) error {
	if err := required("code", c.Code, "description", c.Description); err != nil {
		return err
	}
	if len(c.Code) > 20 {
		return badRequest("code is longer than 20 characters")
	}
	if !c.ValidTo.IsZero() && c.ValidTo.Before(c.ValidFrom) {
		return badRequest("validTo is before validFrom")
	}
	return nil
}

func validateWishlist(w *model.Wishlist) error {
	return required("userId", w.UserID)
}

func validateWishlistItem(i *model.WishlistItem) error {
	return required("userId", i.UserID)
}
