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

package sidechain

import "context"

// Source is the authoritative, read-only view of the sidechain database
// kept by a node. This decouples display models from the transport used
// to reach the node and enables testing with mock implementations.
type Source interface {
	// ActivationStatus returns every currently pending proposal. The
	// result is a full snapshot, not a delta, and its order carries no
	// meaning. Ack and Replacement are left unset.
	ActivationStatus(ctx context.Context) ([]ActivationStatus, error)

	// AckSidechain reports whether the local node currently ACKs the
	// proposal
	AckSidechain(ctx context.Context, hash ProposalHash) (bool, error)

	// IsSidechainActive reports whether the slot already holds an active
	// sidechain
	IsSidechainActive(ctx context.Context, slot uint8) (bool, error)
}

// ActiveSlotLister is implemented by sources that can list every occupied
// slot in one call. Reconcile passes prefer it over IsSidechainActive.
type ActiveSlotLister interface {
	ActiveSlots(ctx context.Context) (map[uint8]struct{}, error)
}
