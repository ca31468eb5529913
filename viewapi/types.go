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
	"context"
	"time"

	"github.com/blinklabs-io/sidewatch/activation"
	"github.com/blinklabs-io/sidewatch/sidechain"
)

// ActivationView is what the server needs from the activation model.
// *activation.Model satisfies it.
type ActivationView interface {
	Rows() []activation.Record
	Row(row int) (activation.Record, bool)
	HashAtRow(row int) (sidechain.ProposalHash, bool)
	Thresholds() sidechain.Thresholds
	Status() activation.Status
	Reconcile(ctx context.Context) activation.ReconcileResult
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type HealthResponse struct {
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Healthy     bool       `json:"healthy"`
	Running     bool       `json:"running"`
}

type ColumnResponse struct {
	Header string `json:"header"`
	Index  int    `json:"index"`
}

type RowResponse struct {
	Hash        string   `json:"hash"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Cells       []string `json:"cells"`
	Row         int      `json:"row"`
	Age         uint32   `json:"age"`
	Period      uint32   `json:"period"`
	Fail        uint32   `json:"fail"`
	Slot        uint8    `json:"slot"`
	Ack         bool     `json:"ack"`
	Replacement bool     `json:"replacement"`
	Expired     bool     `json:"expired"`
}

type TableResponse struct {
	Columns    []string             `json:"columns"`
	Rows       []RowResponse        `json:"rows"`
	Thresholds sidechain.Thresholds `json:"thresholds"`
}

type HashResponse struct {
	Hash string `json:"hash"`
	Row  int    `json:"row"`
}

type ReconcileResponse struct {
	Error      string `json:"error,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
	Updated    int    `json:"updated"`
	Removed    int    `json:"removed"`
	Inserted   int    `json:"inserted"`
	Rows       int    `json:"rows"`
	Skipped    bool   `json:"skipped"`
}

// StreamMessage is one websocket frame of the activation stream
type StreamMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      string    `json:"type"`
}

func newRowResponse(
	row int,
	rec activation.Record,
	th sidechain.Thresholds,
) RowResponse {
	return RowResponse{
		Row:         row,
		Hash:        rec.Hash.String(),
		Slot:        rec.Slot,
		Title:       rec.Title,
		Description: rec.Description,
		Age:         rec.Age,
		Period:      rec.Period(th),
		Fail:        rec.Fail,
		Ack:         rec.Ack,
		Replacement: rec.Replacement,
		Expired:     rec.Expired(th),
		Cells:       rec.Cells(th),
	}
}
