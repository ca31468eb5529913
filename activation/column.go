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
	"fmt"
	"strconv"

	"github.com/blinklabs-io/sidewatch/sidechain"
)

// Column is a logical field of the activation table
type Column int

const (
	ColumnVote Column = iota
	ColumnSlot
	ColumnReplacement
	ColumnTitle
	ColumnDescription
	ColumnAge
	ColumnFails
	ColumnHash
)

// ColumnCount is fixed: one column per logical record field
const ColumnCount = int(ColumnHash) + 1

var columnHeaders = [ColumnCount]string{
	ColumnVote:        "Vote",
	ColumnSlot:        "SC #",
	ColumnReplacement: "Replacement",
	ColumnTitle:       "Title",
	ColumnDescription: "Description",
	ColumnAge:         "Age",
	ColumnFails:       "Fails",
	ColumnHash:        "Hash",
}

func (c Column) Valid() bool {
	return c >= ColumnVote && c <= ColumnHash
}

// Header returns the column title, or an empty string for an unknown column
func (c Column) Header() string {
	if !c.Valid() {
		return ""
	}
	return columnHeaders[c]
}

// Headers returns all column titles in column order
func Headers() []string {
	ret := make([]string, ColumnCount)
	copy(ret, columnHeaders[:])
	return ret
}

// Cell renders one field of the record for display
func (r Record) Cell(col Column, th sidechain.Thresholds) (string, bool) {
	switch col {
	case ColumnVote:
		if r.Ack {
			return "ACK", true
		}
		return "NACK", true
	case ColumnSlot:
		return strconv.FormatUint(uint64(r.Slot), 10), true
	case ColumnReplacement:
		return strconv.FormatBool(r.Replacement), true
	case ColumnTitle:
		return r.Title, true
	case ColumnDescription:
		return r.Description, true
	case ColumnAge:
		return fmt.Sprintf("%d / %d", r.Age, r.Period(th)), true
	case ColumnFails:
		return fmt.Sprintf(
			"%d / %d",
			r.Fail,
			th.ActivationMaxFailures,
		), true
	case ColumnHash:
		return r.Hash.String(), true
	}
	return "", false
}

// Cells renders every column of the record in column order
func (r Record) Cells(th sidechain.Thresholds) []string {
	ret := make([]string, ColumnCount)
	for i := range ColumnCount {
		ret[i], _ = r.Cell(Column(i), th)
	}
	return ret
}
