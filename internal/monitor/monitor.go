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

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/sidewatch"
	"github.com/blinklabs-io/sidewatch/internal/config"
	"github.com/blinklabs-io/sidewatch/noderpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	return run(
		signalCtx,
		cfg,
		logger,
		prometheus.DefaultRegisterer,
		prometheus.DefaultGatherer,
	)
}

func run(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	registerer prometheus.Registerer,
	gatherer prometheus.Gatherer,
) error {
	logger.Debug(
		"starting monitor",
		"component", "monitor",
		"rpc", cfg.Rpc.Url,
		"interval", cfg.ReconcileInterval.String(),
		"thresholds", fmt.Sprintf("%+v", cfg.Thresholds),
	)
	client, err := noderpc.NewClient(cfg.Rpc, logger)
	if err != nil {
		return fmt.Errorf("failed to create node RPC client: %w", err)
	}
	defer client.Close()

	m, err := sidewatch.New(
		sidewatch.NewConfig(
			sidewatch.WithLogger(logger),
			sidewatch.WithSource(client),
			sidewatch.WithPrometheusRegistry(registerer),
			sidewatch.WithThresholds(cfg.Thresholds),
			sidewatch.WithReconcileInterval(cfg.ReconcileInterval),
			sidewatch.WithFetchTimeout(cfg.FetchTimeout),
			sidewatch.WithApiListenAddress(cfg.ApiListenAddress()),
			sidewatch.WithStreamQueueSize(cfg.StreamQueueSize),
			sidewatch.WithTracing(cfg.Tracing),
			sidewatch.WithTracingStdout(cfg.TracingStdout),
			sidewatch.WithShutdownTimeout(cfg.ShutdownTimeout),
		),
	)
	if err != nil {
		return err
	}

	var metricsServer *http.Server
	if addr := cfg.MetricsListenAddress(); addr != "" {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to start metrics listener: %w", err)
		}
		logger.Info(
			"serving prometheus metrics on "+listener.Addr().String(),
			"component", "monitor",
		)
		metricsServer = &http.Server{
			Handler:           metricsHandler(gatherer),
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			if err := metricsServer.Serve(listener); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				logger.Error(
					fmt.Sprintf("metrics listener failed: %s", err),
					"component", "monitor",
				)
			}
		}()
	}

	// Run returns once ctx is done and the monitor has shut down
	runErr := m.Run(ctx)
	if runErr != nil {
		logger.Error("shutdown errors occurred", "error", runErr)
	}
	if metricsServer != nil {
		shutdownTimeout := cfg.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = config.DefaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
			runErr = errors.Join(runErr, err)
		}
	}
	if runErr == nil {
		logger.Info("shutdown complete")
	}
	return runErr
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
