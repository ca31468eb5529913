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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOk         = "ok"
	resultFetchError = "fetch_error"
	resultInFlight   = "in_flight"
)

type modelMetrics struct {
	rows              prometheus.Gauge
	reconciles        *prometheus.CounterVec
	rowsUpdated       prometheus.Counter
	rowsRemoved       prometheus.Counter
	rowsInserted      prometheus.Counter
	malformedRecords  prometheus.Counter
	reconcileDuration prometheus.Histogram
	lastSuccess       prometheus.Gauge
}

func newModelMetrics(promRegistry prometheus.Registerer) *modelMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &modelMetrics{
		rows: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "sidewatch_activation_rows",
			Help: "current count of pending sidechain proposals displayed",
		}),
		reconciles: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sidewatch_activation_reconcile_total",
				Help: "reconcile passes, by result",
			},
			[]string{"result"},
		),
		rowsUpdated: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "sidewatch_activation_rows_updated_total",
			Help: "total rows refreshed in place",
		}),
		rowsRemoved: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "sidewatch_activation_rows_removed_total",
			Help: "total rows removed after leaving the pending list",
		}),
		rowsInserted: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "sidewatch_activation_rows_inserted_total",
			Help: "total rows appended for new proposals",
		}),
		malformedRecords: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "sidewatch_activation_malformed_records_total",
			Help: "snapshot records dropped by validation",
		}),
		reconcileDuration: promautoFactory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sidewatch_activation_reconcile_duration_seconds",
				Help:    "duration of successful reconcile passes, fetch included",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastSuccess: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "sidewatch_activation_last_success_timestamp_seconds",
			Help: "unix time of the last successful reconcile pass",
		}),
	}
}
