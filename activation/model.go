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
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/sidewatch/event"
	"github.com/blinklabs-io/sidewatch/sidechain"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	DefaultReconcileInterval = 2 * time.Second
	DefaultFetchTimeout      = 10 * time.Second

	tracerName = "github.com/blinklabs-io/sidewatch/activation"
)

var (
	ErrAlreadyStarted = errors.New("activation model already started")
	ErrNoSource       = errors.New("activation model requires a source")
)

type ModelConfig struct {
	Source            sidechain.Source
	Logger            *slog.Logger
	EventBus          *event.EventBus
	PromRegistry      prometheus.Registerer
	TracerProvider    trace.TracerProvider
	Thresholds        sidechain.Thresholds
	ReconcileInterval time.Duration
	// FetchTimeout bounds one fetch phase. Zero uses the default, a
	// negative value disables the timeout.
	FetchTimeout time.Duration
}

// Status describes the outcome of the most recent reconcile attempts
type Status struct {
	LastAttempt time.Time `json:"lastAttempt"`
	LastSuccess time.Time `json:"lastSuccess"`
	LastError   string    `json:"lastError,omitempty"`
	Running     bool      `json:"running"`
}

// Model keeps an ordered snapshot of pending proposals in step with the
// node. Readers may call the accessors concurrently with a reconcile pass.
type Model struct {
	config   ModelConfig
	logger   *slog.Logger
	metrics  *modelMetrics
	tracer   trace.Tracer
	records  []Record
	status   Status
	cancel   context.CancelFunc
	done     chan struct{}
	inFlight atomic.Bool
	mu       sync.RWMutex
	loopMu   sync.Mutex
}

func NewModel(cfg ModelConfig) (*Model, error) {
	if cfg.Source == nil {
		return nil, ErrNoSource
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = noop.NewTracerProvider()
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = DefaultReconcileInterval
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	cfg.Thresholds = cfg.Thresholds.WithDefaults()
	m := &Model{
		config:  cfg,
		logger:  cfg.Logger.With("component", "activation"),
		metrics: newModelMetrics(cfg.PromRegistry),
		tracer:  cfg.TracerProvider.Tracer(tracerName),
	}
	return m, nil
}

func (m *Model) Thresholds() sidechain.Thresholds {
	return m.config.Thresholds
}

func (m *Model) ReconcileInterval() time.Duration {
	return m.config.ReconcileInterval
}

// RowCount returns the number of displayed rows
func (m *Model) RowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// ColumnCount always returns 8
func (m *Model) ColumnCount() int {
	return ColumnCount
}

// Row returns a copy of the record at the given row
func (m *Model) Row(row int) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if row < 0 || row >= len(m.records) {
		return Record{}, false
	}
	return m.records[row], true
}

// Rows returns a copy of all records in display order
func (m *Model) Rows() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]Record, len(m.records))
	copy(ret, m.records)
	return ret
}

// HashAtRow returns the proposal hash displayed at row. The second return
// value is false when the row is out of range.
func (m *Model) HashAtRow(row int) (sidechain.ProposalHash, bool) {
	rec, ok := m.Row(row)
	if !ok {
		return sidechain.ProposalHash{}, false
	}
	return rec.Hash, true
}

// Data returns the display text for a cell. The second return value is false
// when the row or column is out of range.
func (m *Model) Data(row int, col Column) (string, bool) {
	rec, ok := m.Row(row)
	if !ok {
		return "", false
	}
	return rec.Cell(col, m.config.Thresholds)
}

// HeaderData returns the title for a column. The second return value is
// false for an unknown column.
func (m *Model) HeaderData(col Column) (string, bool) {
	if !col.Valid() {
		return "", false
	}
	return col.Header(), true
}

func (m *Model) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
