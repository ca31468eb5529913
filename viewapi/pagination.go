// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package viewapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
	OrderAsc        = "asc"
	OrderDesc       = "desc"
)

var ErrInvalidPagination = errors.New("invalid pagination parameters")

type Pagination struct {
	Order string
	Count int
	Page  int
}

// ParsePagination reads count, page and order from the query string.
// Out of range count and page values are clamped.
func ParsePagination(r *http.Request) (Pagination, error) {
	ret := Pagination{
		Count: DefaultPageSize,
		Page:  1,
		Order: OrderAsc,
	}
	query := r.URL.Query()
	if v := query.Get("count"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			return Pagination{}, ErrInvalidPagination
		}
		ret.Count = min(max(count, 1), MaxPageSize)
	}
	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return Pagination{}, ErrInvalidPagination
		}
		ret.Page = max(page, 1)
	}
	if v := query.Get("order"); v != "" {
		switch order := strings.ToLower(v); order {
		case OrderAsc, OrderDesc:
			ret.Order = order
		default:
			return Pagination{}, ErrInvalidPagination
		}
	}
	return ret, nil
}

// Window returns the row indexes of the requested page, in the requested
// order, for a table of total rows
func (p Pagination) Window(total int) []int {
	start := (p.Page - 1) * p.Count
	if start >= total {
		return nil
	}
	end := min(start+p.Count, total)
	ret := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		if p.Order == OrderDesc {
			ret = append(ret, total-1-i)
		} else {
			ret = append(ret, i)
		}
	}
	return ret
}

// setPaginationHeaders reports the total row and page counts
func setPaginationHeaders(w http.ResponseWriter, total int, p Pagination) {
	pages := 0
	if total > 0 {
		pages = (total + p.Count - 1) / p.Count
	}
	w.Header().Set("X-Pagination-Count-Total", strconv.Itoa(total))
	w.Header().Set("X-Pagination-Page-Total", strconv.Itoa(pages))
}
