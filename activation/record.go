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
	"github.com/blinklabs-io/sidewatch/sidechain"
)

// Record is the display projection of one pending proposal. It is owned by
// the Model and only ever handed out by value.
type Record struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Hash        sidechain.ProposalHash `json:"hash"`
	Age         uint32                 `json:"age"`
	Fail        uint32                 `json:"fail"`
	Slot        uint8                  `json:"slot"`
	Ack         bool                   `json:"ack"`
	Replacement bool                   `json:"replacement"`
}

func newRecord(status sidechain.ActivationStatus) Record {
	return Record{
		Hash:        status.Hash,
		Slot:        status.Slot,
		Title:       status.Title,
		Description: status.Description,
		Age:         status.Age,
		Fail:        status.Fail,
		Ack:         status.Ack,
		Replacement: status.Replacement,
	}
}

// refresh copies the mutable fields from status and reports whether any of
// them changed. Slot, title and description are immutable for the life of
// a proposal and are never re-copied.
func (r *Record) refresh(status sidechain.ActivationStatus) bool {
	changed := r.Age != status.Age ||
		r.Fail != status.Fail ||
		r.Ack != status.Ack ||
		r.Replacement != status.Replacement
	r.Age = status.Age
	r.Fail = status.Fail
	r.Ack = status.Ack
	r.Replacement = status.Replacement
	return changed
}

// Period returns the voting period the proposal's age is measured against
func (r Record) Period(th sidechain.Thresholds) uint32 {
	return th.Period(r.Replacement)
}

// Expired reports whether the proposal has used up its allowed failures
func (r Record) Expired(th sidechain.Thresholds) bool {
	return r.Fail >= th.ActivationMaxFailures
}
