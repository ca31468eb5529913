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

package activation

import (
	"github.com/blinklabs-io/sidewatch/event"
	"github.com/blinklabs-io/sidewatch/sidechain"
)

const (
	RowChangedEventType         event.EventType = "activation.row_changed"
	RowsRemovedEventType        event.EventType = "activation.rows_removed"
	RowsInsertedEventType       event.EventType = "activation.rows_inserted"
	ReconcileCompletedEventType event.EventType = "activation.reconcile_completed"
)

// EventTypes lists every event type published by the Model, in the order
// a single pass publishes them
var EventTypes = []event.EventType{
	RowChangedEventType,
	RowsRemovedEventType,
	RowsInsertedEventType,
	ReconcileCompletedEventType,
}

// RowChangedEvent is published for every existing row the node still
// reports, once its mutable fields are refreshed. Row is the position before
// any removal of the same pass.
type RowChangedEvent struct {
	Record Record `json:"record"`
	Row    int    `json:"row"`
	// Modified is false when the node reported the row unchanged
	Modified bool `json:"modified"`
}

// RowsRemovedEvent is published once per removed row. Removals of a pass
// are published in descending row order, so First is valid at the moment
// the event is applied.
type RowsRemovedEvent struct {
	Hashes []sidechain.ProposalHash `json:"hashes"`
	First  int                      `json:"first"`
	Last   int                      `json:"last"`
}

// RowsInsertedEvent is published once per pass for the contiguous block
// of rows appended at the end of the table
type RowsInsertedEvent struct {
	Records []Record `json:"records"`
	First   int      `json:"first"`
	Last    int      `json:"last"`
}

// ReconcileCompletedEvent is published after the structural events of a
// successful pass
type ReconcileCompletedEvent struct {
	Updated  int `json:"updated"`
	Removed  int `json:"removed"`
	Inserted int `json:"inserted"`
	Rows     int `json:"rows"`
}
