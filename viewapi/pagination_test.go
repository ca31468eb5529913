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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaginationDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/activation/rows", nil)
	params, err := ParsePagination(req)
	require.NoError(t, err)
	assert.Equal(t, Pagination{Count: DefaultPageSize, Page: 1, Order: OrderAsc}, params)
}

func TestParsePaginationClamps(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/activation/rows?count=100000&page=-4&order=DESC",
		nil,
	)
	params, err := ParsePagination(req)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, params.Count)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, OrderDesc, params.Order)

	req = httptest.NewRequest(http.MethodGet, "/x?count=0", nil)
	params, err = ParsePagination(req)
	require.NoError(t, err)
	assert.Equal(t, 1, params.Count)
}

func TestParsePaginationInvalid(t *testing.T) {
	for _, query := range []string{"count=abc", "page=1.5", "order=sideways"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x?"+query, nil)
			_, err := ParsePagination(req)
			require.ErrorIs(t, err, ErrInvalidPagination)
		})
	}
}

func TestPaginationWindow(t *testing.T) {
	testDefs := []struct {
		name     string
		params   Pagination
		total    int
		expected []int
	}{
		{"first page", Pagination{Count: 2, Page: 1, Order: OrderAsc}, 5, []int{0, 1}},
		{"last partial page", Pagination{Count: 2, Page: 3, Order: OrderAsc}, 5, []int{4}},
		{"past the end", Pagination{Count: 2, Page: 4, Order: OrderAsc}, 5, nil},
		{"descending", Pagination{Count: 2, Page: 1, Order: OrderDesc}, 5, []int{4, 3}},
		{"descending last", Pagination{Count: 2, Page: 3, Order: OrderDesc}, 5, []int{0}},
		{"empty table", Pagination{Count: 2, Page: 1, Order: OrderAsc}, 0, nil},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(t, testDef.expected, testDef.params.Window(testDef.total))
		})
	}
}

func TestSetPaginationHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	setPaginationHeaders(rec, 0, Pagination{Count: 10, Page: 1})
	assert.Equal(t, "0", rec.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "0", rec.Header().Get("X-Pagination-Page-Total"))

	rec = httptest.NewRecorder()
	setPaginationHeaders(rec, 21, Pagination{Count: 10, Page: 1})
	assert.Equal(t, "21", rec.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "3", rec.Header().Get("X-Pagination-Page-Total"))
}
