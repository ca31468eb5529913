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

package noderpc

import (
	"github.com/blinklabs-io/sidewatch/sidechain"
)

type activationStatusResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Hash        string `json:"proposalhash"`
	Age         uint32 `json:"nage"`
	Fail        uint32 `json:"nfail"`
	Slot        uint8  `json:"nsidechain"`
}

// toStatus leaves the hash zero when it cannot be parsed
func (r activationStatusResult) toStatus() (sidechain.ActivationStatus, error) {
	hash, err := sidechain.ParseProposalHash(r.Hash)
	if err != nil {
		hash = sidechain.ProposalHash{}
	}
	return sidechain.ActivationStatus{
		Proposal: sidechain.Proposal{
			Hash:        hash,
			Slot:        r.Slot,
			Title:       r.Title,
			Description: r.Description,
		},
		Age:  r.Age,
		Fail: r.Fail,
	}, err
}

type activeSidechainResult struct {
	Title string `json:"title"`
	Slot  uint8  `json:"nsidechain"`
}
