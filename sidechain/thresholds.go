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

const (
	// DefaultActivationPeriod is the number of blocks a new sidechain
	// proposal is voted on
	DefaultActivationPeriod = 2016
	// DefaultReplacementPeriod is the number of blocks a proposal that
	// replaces an active sidechain is voted on
	DefaultReplacementPeriod = 26298
	// DefaultActivationMaxFailures is the number of failed periods after
	// which a proposal is dropped
	DefaultActivationMaxFailures = 200
)

// Thresholds are the activation limits a display compares proposal age and
// failure counts against. They are informational: the node decides.
type Thresholds struct {
	ActivationPeriod      uint32 `json:"activation_period"       yaml:"activationPeriod"      envconfig:"SIDEWATCH_ACTIVATION_PERIOD"`
	ReplacementPeriod     uint32 `json:"replacement_period"      yaml:"replacementPeriod"     envconfig:"SIDEWATCH_REPLACEMENT_PERIOD"`
	ActivationMaxFailures uint32 `json:"activation_max_failures" yaml:"activationMaxFailures" envconfig:"SIDEWATCH_ACTIVATION_MAX_FAILURES"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ActivationPeriod:      DefaultActivationPeriod,
		ReplacementPeriod:     DefaultReplacementPeriod,
		ActivationMaxFailures: DefaultActivationMaxFailures,
	}
}

// WithDefaults returns a copy with any zero value replaced by its default
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.ActivationPeriod == 0 {
		t.ActivationPeriod = d.ActivationPeriod
	}
	if t.ReplacementPeriod == 0 {
		t.ReplacementPeriod = d.ReplacementPeriod
	}
	if t.ActivationMaxFailures == 0 {
		t.ActivationMaxFailures = d.ActivationMaxFailures
	}
	return t
}

// Period returns the voting period that applies to a proposal, which is
// longer when the proposal replaces an active sidechain
func (t Thresholds) Period(replacement bool) uint32 {
	if replacement {
		return t.ReplacementPeriod
	}
	return t.ActivationPeriod
}
