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
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/sidewatch/activation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// parseRow reads the {row} path value. It writes the error response and
// returns false when the value is not a usable row index.
func parseRow(w http.ResponseWriter, r *http.Request) (int, bool) {
	row, err := strconv.Atoi(r.PathValue("row"))
	if err != nil || row < 0 {
		writeError(w, http.StatusBadRequest, "row must be a non-negative integer")
		return 0, false
	}
	return row, true
}

// handleHealth reports healthy once a reconcile pass has succeeded and the
// most recent one did not fail
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.view.Status()
	resp := HealthResponse{
		Healthy:   !status.LastSuccess.IsZero() && status.LastError == "",
		Running:   status.Running,
		LastError: status.LastError,
	}
	if !status.LastSuccess.IsZero() {
		lastSuccess := status.LastSuccess
		resp.LastSuccess = &lastSuccess
	}
	code := http.StatusOK
	if !resp.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleTable(w http.ResponseWriter, _ *http.Request) {
	th := s.view.Thresholds()
	rows := s.view.Rows()
	resp := TableResponse{
		Columns:    activation.Headers(),
		Rows:       make([]RowResponse, 0, len(rows)),
		Thresholds: th,
	}
	for i, rec := range rows {
		resp.Rows = append(resp.Rows, newRowResponse(i, rec, th))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleColumns(w http.ResponseWriter, _ *http.Request) {
	headers := activation.Headers()
	resp := make([]ColumnResponse, 0, len(headers))
	for i, header := range headers {
		resp = append(resp, ColumnResponse{Index: i, Header: header})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	th := s.view.Thresholds()
	// Work from one copy so the page is consistent with the header totals
	rows := s.view.Rows()
	window := params.Window(len(rows))
	resp := make([]RowResponse, 0, len(window))
	for _, idx := range window {
		resp = append(resp, newRowResponse(idx, rows[idx], th))
	}
	setPaginationHeaders(w, len(rows), params)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	row, ok := parseRow(w, r)
	if !ok {
		return
	}
	rec, ok := s.view.Row(row)
	if !ok {
		writeError(w, http.StatusNotFound, "row out of range")
		return
	}
	writeJSON(w, http.StatusOK, newRowResponse(row, rec, s.view.Thresholds()))
}

func (s *Server) handleRowHash(w http.ResponseWriter, r *http.Request) {
	row, ok := parseRow(w, r)
	if !ok {
		return
	}
	hash, ok := s.view.HashAtRow(row)
	if !ok {
		writeError(w, http.StatusNotFound, "row out of range")
		return
	}
	writeJSON(w, http.StatusOK, HashResponse{Row: row, Hash: hash.String()})
}

// handleReconcile runs a pass immediately. A pass that is skipped because
// another is in flight is reported with 409.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	result := s.view.Reconcile(r.Context())
	resp := ReconcileResponse{
		Skipped:    result.Skipped,
		SkipReason: result.SkipReason,
		Updated:    result.Updated,
		Removed:    result.Removed,
		Inserted:   result.Inserted,
		Rows:       result.Rows,
	}
	code := http.StatusOK
	switch {
	case result.Err != nil:
		resp.Error = result.Err.Error()
		code = http.StatusBadGateway
		s.logger.Warn("requested reconcile failed", "error", result.Err)
	case result.Skipped:
		code = http.StatusConflict
	}
	writeJSON(w, code, resp)
}
