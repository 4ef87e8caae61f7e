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

package repository

import "context"

type keyedRepositoryImpl[T any, K Key] struct {
	*baseRepositoryImpl[T]
}

func newKeyedRepository[T any, K Key](dc *DbContext) *keyedRepositoryImpl[T, K] {
	return &keyedRepositoryImpl[T, K]{baseRepositoryImpl: newRepository[T](dc)}
}

func (r *keyedRepositoryImpl[T, K]) GetByKey(ctx context.Context, key K) (*T, error) {
	return r.GetByID(ctx, key)
}
