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
	"context"
	"time"
)

// Start runs an immediate reconcile and then one every ReconcileInterval
// until ctx is cancelled or Stop is called
func (m *Model) Start(ctx context.Context) error {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	if m.cancel != nil {
		return ErrAlreadyStarted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.setRunning(true)
	go m.reconcileLoop(loopCtx, done)
	m.logger.Info(
		"started activation reconcile loop",
		"interval", m.config.ReconcileInterval.String(),
	)
	return nil
}

// Stop halts the reconcile loop and waits for an in-progress pass to
// finish. It is safe to call more than once.
func (m *Model) Stop() {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
	m.setRunning(false)
}

func (m *Model) setRunning(running bool) {
	m.mu.Lock()
	m.status.Running = running
	m.mu.Unlock()
}

func (m *Model) reconcileLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	defer m.setRunning(false)
	m.runReconcileTick(ctx)
	ticker := time.NewTicker(m.config.ReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runReconcileTick(ctx)
		}
	}
}

// runReconcileTick runs one pass with panic recovery so a misbehaving
// source cannot stop the loop
func (m *Model) runReconcileTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error(
				"panic in reconcile tick, continuing",
				"panic", r,
			)
		}
	}()
	m.Reconcile(ctx)
}
