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

// Package sidechain holds the types shared between the sources that report
// pending sidechain activation proposals and the models that display them.
package sidechain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ProposalHashSize is the size in bytes of a serialized proposal hash
const ProposalHashSize = 32

var ErrInvalidProposalHash = errors.New("invalid proposal hash")

// ProposalHash identifies a sidechain proposal for its whole lifetime
type ProposalHash [ProposalHashSize]byte

// ParseProposalHash decodes a hex encoded proposal hash
func ParseProposalHash(s string) (ProposalHash, error) {
	var ret ProposalHash
	s = strings.TrimSpace(s)
	if len(s) != ProposalHashSize*2 {
		return ret, fmt.Errorf(
			"%w: expected %d hex characters, got %d",
			ErrInvalidProposalHash,
			ProposalHashSize*2,
			len(s),
		)
	}
	if _, err := hex.Decode(ret[:], []byte(s)); err != nil {
		return ret, fmt.Errorf("%w: %w", ErrInvalidProposalHash, err)
	}
	return ret, nil
}

func (h ProposalHash) String() string {
	return hex.EncodeToString(h[:])
}

func (h ProposalHash) IsZero() bool {
	return h == ProposalHash{}
}

func (h ProposalHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *ProposalHash) UnmarshalText(data []byte) error {
	tmp, err := ParseProposalHash(string(data))
	if err != nil {
		return err
	}
	*h = tmp
	return nil
}

// Proposal is the immutable part of a sidechain proposal
type Proposal struct {
	Hash        ProposalHash
	Title       string
	Description string
	Slot        uint8
}

// ActivationStatus is a single entry of the pending activation snapshot
// reported by a node. Ack and Replacement are derived by the consumer at
// query time.
type ActivationStatus struct {
	Proposal
	Age         uint32
	Fail        uint32
	Ack         bool
	Replacement bool
}

// Validate performs the basic checks a snapshot entry must pass before it
// can take part in reconciliation
func (s ActivationStatus) Validate() error {
	if s.Hash.IsZero() {
		return fmt.Errorf("%w: zero hash", ErrInvalidProposalHash)
	}
	return nil
}
