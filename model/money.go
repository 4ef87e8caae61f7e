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

import "github.com/shopspring/decimal"

// Amounts are exact decimals in storage and JSON numbers on the wire.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Amount converts f to a decimal rounded to cents.
func Amount(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
