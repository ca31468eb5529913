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

package viewapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type serverMetrics struct {
	requests      *prometheus.CounterVec
	inFlight      prometheus.Gauge
	streamClients prometheus.Gauge
	streamDropped prometheus.Counter
}

func newServerMetrics(promRegistry prometheus.Registerer) *serverMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &serverMetrics{
		requests: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sidewatch_viewapi_requests_total",
				Help: "view API requests, by status code and method",
			},
			[]string{"code", "method"},
		),
		inFlight: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "sidewatch_viewapi_requests_in_flight",
			Help: "view API requests currently being served",
		}),
		streamClients: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "sidewatch_viewapi_stream_clients",
			Help: "connected activation stream clients",
		}),
		streamDropped: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "sidewatch_viewapi_stream_dropped_total",
			Help: "stream clients disconnected for falling behind",
		}),
	}
}

func (m *serverMetrics) instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerInFlight(
		m.inFlight,
		promhttp.InstrumentHandlerCounter(m.requests, next),
	)
}
