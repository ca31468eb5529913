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

package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/sidewatch/activation"
	"github.com/blinklabs-io/sidewatch/noderpc"
	"github.com/blinklabs-io/sidewatch/sidechain"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "sidewatch.config"

const (
	DefaultShutdownTimeout = 30 * time.Second
	DefaultBindAddr        = "0.0.0.0"
	DefaultApiPort         = 8080
	DefaultMetricsPort     = 12799
)

var (
	ErrInvalidInterval = errors.New("reconcile interval must be positive")
	ErrInvalidRpcUrl   = errors.New("invalid node RPC URL")
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	Rpc               noderpc.ClientConfig `yaml:"rpc"`
	Thresholds        sidechain.Thresholds `yaml:"thresholds"`
	BindAddr          string               `yaml:"bindAddr"          envconfig:"SIDEWATCH_BIND_ADDR"`
	ReconcileInterval time.Duration        `yaml:"reconcileInterval" envconfig:"SIDEWATCH_RECONCILE_INTERVAL"`
	// A negative fetch timeout disables it
	FetchTimeout    time.Duration `yaml:"fetchTimeout"    envconfig:"SIDEWATCH_FETCH_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" envconfig:"SIDEWATCH_SHUTDOWN_TIMEOUT"`
	// Port 0 disables the listener
	ApiPort         uint `yaml:"apiPort"         envconfig:"SIDEWATCH_API_PORT"`
	MetricsPort     uint `yaml:"metricsPort"     envconfig:"SIDEWATCH_METRICS_PORT"`
	StreamQueueSize int  `yaml:"streamQueueSize" envconfig:"SIDEWATCH_STREAM_QUEUE_SIZE"`
	Tracing         bool `yaml:"tracing"         envconfig:"SIDEWATCH_TRACING"`
	TracingStdout   bool `yaml:"tracingStdout"   envconfig:"SIDEWATCH_TRACING_STDOUT"`
}

// DefaultConfig returns a fresh copy of the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Rpc: noderpc.ClientConfig{
			Url:     noderpc.DefaultUrl,
			Timeout: noderpc.DefaultTimeout,
		},
		Thresholds:        sidechain.DefaultThresholds(),
		BindAddr:          DefaultBindAddr,
		ReconcileInterval: activation.DefaultReconcileInterval,
		FetchTimeout:      activation.DefaultFetchTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		ApiPort:           DefaultApiPort,
		MetricsPort:       DefaultMetricsPort,
	}
}

// ApiListenAddress returns the view API address, or an empty string when
// the API is disabled
func (c *Config) ApiListenAddress() string {
	if c.ApiPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.BindAddr, c.ApiPort)
}

// MetricsListenAddress returns the metrics address, or an empty string when
// metrics are disabled
func (c *Config) MetricsListenAddress() string {
	if c.MetricsPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.BindAddr, c.MetricsPort)
}

func (c *Config) validate() error {
	if c.ReconcileInterval <= 0 {
		return ErrInvalidInterval
	}
	u, err := url.Parse(c.Rpc.Url)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidRpcUrl, c.Rpc.Url)
	}
	if c.StreamQueueSize < 0 {
		return fmt.Errorf(
			"stream queue size must not be negative: %d",
			c.StreamQueueSize,
		)
	}
	return nil
}

func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.sidewatch/sidewatch.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".sidewatch", "sidewatch.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/sidewatch/sidewatch.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/sidewatch/sidewatch.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Overlay config values onto the defaults
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process("sidewatch", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Partial threshold sections keep the defaults for omitted fields
	cfg.Thresholds = cfg.Thresholds.WithDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
