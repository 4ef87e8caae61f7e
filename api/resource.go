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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tomoncle/storefront"
	"github.com/tomoncle/storefront/repository"
	"github.com/tomoncle/storefront/types"
)

// resource serves CRUD for an entity keyed by a single int64 id.
type resource[T any] struct {
	svc      storefront.Service[T]
	sortable []string
	// filters maps a query parameter to the int column it narrows. A
	// filtered list is returned unpaged.
	filters  map[string]string
	validate func(*T) error
	present  func(*T)
}

func (res *resource[T]) routes(r chi.Router) {
	r.Get("/", res.list)
	r.Post("/", res.create)
	r.Get("/{id}", res.get)
	r.Put("/{id}", res.update)
	r.Patch("/{id}", res.patch)
	r.Delete("/{id}", res.remove)
}

func (res *resource[T]) show(items ...*T) {
	if res.present == nil {
		return
	}
	for _, item := range items {
		if item != nil {
			res.present(item)
		}
	}
}

func (res *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	for param, column := range res.filters {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, r, badRequest("invalid "+param))
			return
		}
		items, err := res.svc.List(r.Context(), types.NewQueryFilter(column+" = ?", v))
		if err != nil {
			writeError(w, r, err)
			return
		}
		res.show(items...)
		writeJSON(w, http.StatusOK, items)
		return
	}

	page, err := res.svc.Page(r.Context(), types.ParsePageRequest(q, res.sortable...))
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.show(page.Items...)
	writeJSON(w, http.StatusOK, page)
}

func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entity, err := res.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entity == nil {
		writeError(w, r, repository.ErrNotFound)
		return
	}
	res.show(entity)
	writeJSON(w, http.StatusOK, entity)
}

func (res *resource[T]) decode(r *http.Request) (*T, error) {
	entity := new(T)
	if err := json.NewDecoder(r.Body).Decode(entity); err != nil {
		return nil, badRequest("invalid JSON")
	}
	if res.validate != nil {
		if err := res.validate(entity); err != nil {
			return nil, err
		}
	}
	return entity, nil
}

func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	entity, err := res.decode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := res.svc.Create(r.Context(), entity); err != nil {
		writeError(w, r, err)
		return
	}
	res.show(entity)
	writeJSON(w, http.StatusCreated, entity)
}

func (res *resource[T]) update(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entity, err := res.decode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := res.svc.Update(r.Context(), id, entity); err != nil {
		writeError(w, r, err)
		return
	}
	res.show(entity)
	writeJSON(w, http.StatusOK, entity)
}

func (res *resource[T]) patch(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, badRequest("unreadable body"))
		return
	}
	entity, err := res.svc.Modify(r.Context(), id, func(current *T) error {
		if err := json.Unmarshal(body, current); err != nil {
			return badRequest("invalid JSON")
		}
		if res.validate != nil {
			if err := res.validate(current); err != nil {
				return err
			}
		}
		return storefront.CheckIdentity(id, current)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.show(entity)
	writeJSON(w, http.StatusOK, entity)
}

func (res *resource[T]) remove(w http.ResponseWriter, r *http.Request) {
	id, err := paramInt64(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entity, err := res.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.show(entity)
	writeJSON(w, http.StatusOK, entity)
}

// compositeKey is a key value type that can be compared for identity.
type compositeKey interface {
	repository.Key
	comparable
}

// compositeResource serves an entity keyed by two int64 columns, addressed
// as /{first}/{second}.
type compositeResource[T any, K compositeKey] struct {
	svc      storefront.Service[T]
	params   [2]string
	key      func(a, b int64) K
	keyOf    func(*T) K
	validate func(*T) error
}

func (res *compositeResource[T, K]) routes(r chi.Router) {
	path := fmt.Sprintf("/{%s}/{%s}", res.params[0], res.params[1])
	r.Get("/", res.list)
	r.Post("/", res.create)
	r.Get(path, res.get)
	r.Put(path, res.update)
	r.Delete(path, res.remove)
}

func (res *compositeResource[T, K]) pathKey(r *http.Request) (K, error) {
	var zero K
	a, err := paramInt64(r, res.params[0])
	if err != nil {
		return zero, err
	}
	b, err := paramInt64(r, res.params[1])
	if err != nil {
		return zero, err
	}
	return res.key(a, b), nil
}

func (res *compositeResource[T, K]) list(w http.ResponseWriter, r *http.Request) {
	page, err := res.svc.Page(r.Context(), types.ParsePageRequest(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (res *compositeResource[T, K]) get(w http.ResponseWriter, r *http.Request) {
	key, err := res.pathKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entity, err := res.svc.Get(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entity == nil {
		writeError(w, r, repository.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (res *compositeResource[T, K]) decode(r *http.Request) (*T, error) {
	entity := new(T)
	if err := json.NewDecoder(r.Body).Decode(entity); err != nil {
		return nil, badRequest("invalid JSON")
	}
	if res.validate != nil {
		if err := res.validate(entity); err != nil {
			return nil, err
		}
	}
	return entity, nil
}

func (res *compositeResource[T, K]) create(w http.ResponseWriter, r *http.Request) {
	entity, err := res.decode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := res.svc.Create(r.Context(), entity); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entity)
}

func (res *compositeResource[T, K]) update(w http.ResponseWriter, r *http.Request) {
	key, err := res.pathKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entity, err := res.decode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.keyOf(entity) != key {
		writeError(w, r, repository.ErrIdentityMismatch)
		return
	}
	if err := res.svc.Update(r.Context(), key, entity); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (res *compositeResource[T, K]) remove(w http.ResponseWriter, r *http.Request) {
	key, err := res.pathKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entity, err := res.svc.Delete(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}
