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

// Package storefront is the entry point of the storefront data layer.
//
// A Store begins units of work. Each UnitOfWork exposes one repository per
// entity and commits everything staged through them with a single Save:
//
//	uow := store.Begin()
//	defer uow.Close()
//	uow.Products().Add(&model.Product{Name: "Mug", Price: model.Amount(9.99)})
//	n, err := uow.Save(ctx)
//
// Service wraps the same pattern for callers that do one thing per call.
package storefront
