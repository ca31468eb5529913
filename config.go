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

package sidewatch

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/sidewatch/sidechain"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultShutdownTimeout = 30 * time.Second

var ErrNoSource = errors.New("no sidechain source configured")

type Config struct {
	promRegistry      prometheus.Registerer
	logger            *slog.Logger
	source            sidechain.Source
	apiListenAddress  string
	thresholds        sidechain.Thresholds
	reconcileInterval time.Duration
	fetchTimeout      time.Duration
	shutdownTimeout   time.Duration
	streamQueueSize   int
	tracing           bool
	tracingStdout     bool
}

type ConfigOptionFunc func(*Config)

// NewConfig creates a new sidewatch config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		thresholds: sidechain.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Config) validate() error {
	if c.source == nil {
		return ErrNoSource
	}
	return nil
}

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies the registry for all sidewatch metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithSource specifies where pending proposals are read from
func WithSource(source sidechain.Source) ConfigOptionFunc {
	return func(c *Config) {
		c.source = source
	}
}

// WithThresholds specifies the activation limits used for display. Zero
// fields fall back to the defaults.
func WithThresholds(thresholds sidechain.Thresholds) ConfigOptionFunc {
	return func(c *Config) {
		c.thresholds = thresholds.WithDefaults()
	}
}

// WithReconcileInterval specifies the time between reconcile passes
func WithReconcileInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.reconcileInterval = interval
	}
}

// WithFetchTimeout bounds the node queries of a single reconcile pass
func WithFetchTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.fetchTimeout = timeout
	}
}

// WithApiListenAddress specifies the view API listen address. The API is
// disabled when empty.
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithStreamQueueSize specifies how many events are buffered per stream
// client
func WithStreamQueueSize(size int) ConfigOptionFunc {
	return func(c *Config) {
		c.streamQueueSize = size
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
