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

// Package fakesource provides an in-memory sidechain.Source for tests
package fakesource

import (
	"context"
	"slices"
	"sync"

	"github.com/blinklabs-io/sidewatch/sidechain"
)

// Source is a scriptable sidechain.Source. The zero value is not usable,
// call New.
type Source struct {
	statuses    []sidechain.ActivationStatus
	acks        map[sidechain.ProposalHash]bool
	active      map[uint8]bool
	statusErr   error
	ackErr      error
	activeErr   error
	panicValue  any
	block       chan struct{}
	entered     chan struct{}
	statusCalls int
	ackCalls    int
	activeCalls int
	mu          sync.Mutex
}

var _ sidechain.Source = (*Source)(nil)

func New() *Source {
	return &Source{
		acks:   make(map[sidechain.ProposalHash]bool),
		active: make(map[uint8]bool),
	}
}

// Hash returns a proposal hash with every byte set to b. Hash(0) is the
// zero hash.
func Hash(b byte) sidechain.ProposalHash {
	var ret sidechain.ProposalHash
	for i := range ret {
		ret[i] = b
	}
	return ret
}

// Status builds a pending proposal record as the node would report it
func Status(
	hashByte byte,
	slot uint8,
	title string,
	age uint32,
	fail uint32,
) sidechain.ActivationStatus {
	return sidechain.ActivationStatus{
		Proposal: sidechain.Proposal{
			Hash:        Hash(hashByte),
			Slot:        slot,
			Title:       title,
			Description: title + " description",
		},
		Age:  age,
		Fail: fail,
	}
}

// SetStatuses replaces the pending list returned by the next fetch
func (s *Source) SetStatuses(statuses ...sidechain.ActivationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = slices.Clone(statuses)
}

func (s *Source) SetAck(hash sidechain.ProposalHash, ack bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acks[hash] = ack
}

func (s *Source) SetActive(slot uint8, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[slot] = active
}

// SetErrors makes the matching query fail. Pass nil to clear.
func (s *Source) SetErrors(statusErr, ackErr, activeErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusErr = statusErr
	s.ackErr = ackErr
	s.activeErr = activeErr
}

// SetPanic makes the next status queries panic with v. Pass nil to clear.
func (s *Source) SetPanic(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panicValue = v
}

// Block makes status queries wait until release is called or their context
// ends. The returned channel receives once per blocked query.
func (s *Source) Block() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	block := make(chan struct{})
	entered := make(chan struct{}, 16)
	s.block = block
	s.entered = entered
	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			s.block = nil
			s.mu.Unlock()
			close(block)
		})
	}
	return entered, release
}

// Calls returns how many times each query was made
func (s *Source) Calls() (status int, ack int, active int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls, s.ackCalls, s.activeCalls
}

func (s *Source) ActivationStatus(
	ctx context.Context,
) ([]sidechain.ActivationStatus, error) {
	s.mu.Lock()
	s.statusCalls++
	block, entered := s.block, s.entered
	panicValue := s.panicValue
	s.mu.Unlock()
	if panicValue != nil {
		panic(panicValue)
	}
	if block != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return slices.Clone(s.statuses), nil
}

func (s *Source) AckSidechain(
	_ context.Context,
	hash sidechain.ProposalHash,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ackCalls++
	if s.ackErr != nil {
		return false, s.ackErr
	}
	return s.acks[hash], nil
}

func (s *Source) IsSidechainActive(
	_ context.Context,
	slot uint8,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCalls++
	if s.activeErr != nil {
		return false, s.activeErr
	}
	return s.active[slot], nil
}

// ListingSource is a Source that can also list every active slot in one
// query
type ListingSource struct {
	*Source
	listCalls int
}

var _ sidechain.ActiveSlotLister = (*ListingSource)(nil)

func NewListing() *ListingSource {
	return &ListingSource{Source: New()}
}

func (s *ListingSource) ActiveSlots(
	_ context.Context,
) (map[uint8]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	ret := make(map[uint8]struct{}, len(s.active))
	for slot, active := range s.active {
		if active {
			ret[slot] = struct{}{}
		}
	}
	return ret, nil
}

// ListCalls returns how many times the active slots were listed
func (s *ListingSource) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}
