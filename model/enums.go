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

import "github.com/tomoncle/storefront/types"

// OrderStatus tracks an order from placement to delivery.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderProcessing
	OrderShipped
	OrderDelivered
	OrderCancelled
)

var orderStatusTable = types.EnumTable{
	{Name: "Pending", Desc: "order placed, awaiting processing"},
	{Name: "Processing", Desc: "order is being prepared"},
	{Name: "Shipped", Desc: "order handed to the carrier"},
	{Name: "Delivered", Desc: "order received by the customer"},
	{Name: "Cancelled", Desc: "order cancelled"},
}

var _ types.BaseEnum = OrderStatus(0)

func (s OrderStatus) IsValid() bool  { return orderStatusTable.Valid(int(s)) }
func (s OrderStatus) Number() int    { return int(s) }
func (s OrderStatus) String() string { return s.Name() }
func (s OrderStatus) Name() string   { return orderStatusTable.Name(int(s)) }
func (s OrderStatus) Desc() string   { return orderStatusTable.Desc(int(s)) }

// ParseOrderStatus returns the status named name, ignoring case.
func ParseOrderStatus(name string) (OrderStatus, bool) {
	n := orderStatusTable.Parse(name)
	return OrderStatus(n), n != types.IllegalValue
}

type PaymentMethod int

const (
	CashOnDelivery PaymentMethod = iota
	CreditCard
	Wallet
)

var paymentMethodTable = types.EnumTable{
	{Name: "CashOnDelivery", Desc: "pay the courier on delivery"},
	{Name: "CreditCard", Desc: "card payment"},
	{Name: "Wallet", Desc: "stored wallet balance"},
}

var _ types.BaseEnum = PaymentMethod(0)

func (m PaymentMethod) IsValid() bool  { return paymentMethodTable.Valid(int(m)) }
func (m PaymentMethod) Number() int    { return int(m) }
func (m PaymentMethod) String() string { return m.Name() }
func (m PaymentMethod) Name() string   { return paymentMethodTable.Name(int(m)) }
func (m PaymentMethod) Desc() string   { return paymentMethodTable.Desc(int(m)) }

func ParsePaymentMethod(name string) (PaymentMethod, bool) {
	n := paymentMethodTable.Parse(name)
	return PaymentMethod(n), n != types.IllegalValue
}
