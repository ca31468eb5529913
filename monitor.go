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

// Package sidewatch wires the activation model, the event bus and the view
// API into a single long-running monitor
package sidewatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/sidewatch/activation"
	"github.com/blinklabs-io/sidewatch/event"
	"github.com/blinklabs-io/sidewatch/viewapi"
	"go.opentelemetry.io/otel"
)

var (
	ErrAlreadyRunning = errors.New("monitor already running")
	ErrStopped        = errors.New("monitor already stopped")
)

type Monitor struct {
	config        Config
	eventBus      *event.EventBus
	model         *activation.Model
	api           *viewapi.Server
	shutdownFuncs []func(context.Context) error
	done          chan struct{}
	shutdownOnce  sync.Once
	runOnce       sync.Once
	mu            sync.Mutex
}

func New(cfg Config) (*Monitor, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	model, err := activation.NewModel(activation.ModelConfig{
		Source:            cfg.source,
		Logger:            cfg.logger,
		EventBus:          eventBus,
		PromRegistry:      cfg.promRegistry,
		TracerProvider:    otel.GetTracerProvider(),
		Thresholds:        cfg.thresholds,
		ReconcileInterval: cfg.reconcileInterval,
		FetchTimeout:      cfg.fetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create activation model: %w", err)
	}
	m := &Monitor{
		config:   cfg,
		eventBus: eventBus,
		model:    model,
		done:     make(chan struct{}),
	}
	if cfg.apiListenAddress != "" {
		m.api = viewapi.New(
			viewapi.ServerConfig{
				Logger:          cfg.logger,
				EventBus:        eventBus,
				PromRegistry:    cfg.promRegistry,
				ListenAddress:   cfg.apiListenAddress,
				StreamQueueSize: cfg.streamQueueSize,
			},
			model,
		)
	}
	return m, nil
}

func (m *Monitor) Model() *activation.Model {
	return m.model
}

func (m *Monitor) EventBus() *event.EventBus {
	return m.eventBus
}

// ApiServer returns the view API server, or nil when it is disabled
func (m *Monitor) ApiServer() *viewapi.Server {
	return m.api
}

// Run starts the reconcile loop and the view API, then blocks until ctx is
// cancelled or Stop is called
func (m *Monitor) Run(ctx context.Context) error {
	started := false
	m.runOnce.Do(func() { started = true })
	if !started {
		return ErrAlreadyRunning
	}
	select {
	case <-m.done:
		return ErrStopped
	default:
	}
	if m.config.tracing {
		if err := m.setupTracing(); err != nil {
			return err
		}
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := m.model.Start(runCtx); err != nil {
		return fmt.Errorf("failed to start activation model: %w", err)
	}
	if m.api != nil {
		if err := m.api.Start(runCtx); err != nil {
			return errors.Join(
				fmt.Errorf("failed to start view API: %w", err),
				m.Stop(),
			)
		}
	}
	m.config.logger.Info(
		"sidewatch started",
		"interval", m.model.ReconcileInterval().String(),
		"api", m.config.apiListenAddress,
	)
	select {
	case <-ctx.Done():
		return m.Stop()
	case <-m.done:
		return nil
	}
}

// Stop shuts the monitor down. Calls after the first return nil.
func (m *Monitor) Stop() error {
	var err error
	m.shutdownOnce.Do(func() {
		err = m.shutdown()
	})
	return err
}

func (m *Monitor) shutdown() error {
	shutdownTimeout := defaultShutdownTimeout
	if m.config.shutdownTimeout > 0 {
		shutdownTimeout = m.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	start := time.Now()
	m.config.logger.Debug("starting graceful shutdown")

	// Stop accepting new work
	if m.api != nil {
		if stopErr := m.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("view API shutdown: %w", stopErr))
		}
	}
	m.model.Stop()

	m.mu.Lock()
	shutdownFuncs := m.shutdownFuncs
	m.shutdownFuncs = nil
	m.mu.Unlock()
	for _, fn := range shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}

	m.eventBus.Stop()

	m.config.logger.Debug(
		"graceful shutdown complete",
		"elapsed", time.Since(start).String(),
	)
	close(m.done)
	return err
}
