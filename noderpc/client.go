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

// Package noderpc implements sidechain.Source against a node's JSON-RPC
// interface
package noderpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/sidewatch/sidechain"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
)

const (
	DefaultUrl     = "http://127.0.0.1:8332/"
	DefaultTimeout = 30 * time.Second

	MethodActivationStatus = "listsidechainactivationstatus"
	MethodSidechainAck     = "getsidechainack"
	MethodActiveSidechains = "listactivesidechains"
)

var ErrClientClosed = errors.New("node RPC client closed")

type ClientConfig struct {
	Url             string `yaml:"url"             envconfig:"SIDEWATCH_RPC_URL"`
	User            string `yaml:"user"            envconfig:"SIDEWATCH_RPC_USER"`
	Password        string `yaml:"password"        envconfig:"SIDEWATCH_RPC_PASSWORD"`
	CookieFile      string `yaml:"cookieFile"      envconfig:"SIDEWATCH_RPC_COOKIE_FILE"`
	CredentialsFile string `yaml:"credentialsFile" envconfig:"SIDEWATCH_RPC_CREDENTIALS_FILE"`
	// Timeout bounds a single HTTP round trip
	Timeout time.Duration `yaml:"timeout" envconfig:"SIDEWATCH_RPC_TIMEOUT"`
}

// Client talks to a node over HTTP JSON-RPC. Each call runs on its own
// jrpc2 client, because a jrpc2 client stays failed after its first
// transport error and the node may come and go.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	url        string
	closed     atomic.Bool
}

var (
	_ sidechain.Source           = (*Client)(nil)
	_ sidechain.ActiveSlotLister = (*Client)(nil)
)

// NewClient creates a client for the node at cfg.Url. The logger may be nil.
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Url == "" {
		cfg.Url = DefaultUrl
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	creds, err := LoadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &basicAuthTransport{
			user:     creds.User,
			password: creds.Password,
			base:     &legacyReplyTransport{base: http.DefaultTransport},
		},
	}
	c := &Client{
		httpClient: httpClient,
		logger:     logger.With("component", "noderpc"),
		url:        cfg.Url,
	}
	c.logger.Debug("created node RPC client", "url", cfg.Url)
	return c, nil
}

// Close makes later calls fail with ErrClientClosed. Calls already in
// flight run to completion.
func (c *Client) Close() error {
	c.closed.Store(true)
	return nil
}

// ActivationStatus lists the proposals currently pending activation.
// Entries whose hash cannot be parsed are kept with a zero hash so the
// caller rejects and counts them as malformed.
func (c *Client) ActivationStatus(
	ctx context.Context,
) ([]sidechain.ActivationStatus, error) {
	var result []activationStatusResult
	if err := c.call(ctx, MethodActivationStatus, nil, &result); err != nil {
		return nil, err
	}
	ret := make([]sidechain.ActivationStatus, 0, len(result))
	for _, item := range result {
		status, err := item.toStatus()
		if err != nil {
			c.logger.Debug(
				"unparseable activation status entry",
				"slot", item.Slot,
				"error", err,
			)
		}
		ret = append(ret, status)
	}
	return ret, nil
}

// AckSidechain reports whether the local node is configured to vote for
// the proposal
func (c *Client) AckSidechain(
	ctx context.Context,
	hash sidechain.ProposalHash,
) (bool, error) {
	var ack bool
	if err := c.call(
		ctx,
		MethodSidechainAck,
		[]string{hash.String()},
		&ack,
	); err != nil {
		return false, err
	}
	return ack, nil
}

// IsSidechainActive reports whether a sidechain already occupies slot
func (c *Client) IsSidechainActive(
	ctx context.Context,
	slot uint8,
) (bool, error) {
	slots, err := c.ActiveSlots(ctx)
	if err != nil {
		return false, err
	}
	_, ok := slots[slot]
	return ok, nil
}

// ActiveSlots returns the set of slots occupied by active sidechains with
// a single listactivesidechains call
func (c *Client) ActiveSlots(ctx context.Context) (map[uint8]struct{}, error) {
	var result []activeSidechainResult
	if err := c.call(ctx, MethodActiveSidechains, nil, &result); err != nil {
		return nil, err
	}
	ret := make(map[uint8]struct{}, len(result))
	for _, item := range result {
		ret[item.Slot] = struct{}{}
	}
	return ret, nil
}

func (c *Client) call(
	ctx context.Context,
	method string,
	params any,
	result any,
) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	rpc := jrpc2.NewClient(
		jhttp.NewChannel(
			c.url,
			&jhttp.ChannelOptions{Client: c.httpClient},
		),
		nil,
	)
	// Close reports the transport error already returned by the call
	defer func() { _ = rpc.Close() }()
	if err := rpc.CallResult(ctx, method, params, result); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

type basicAuthTransport struct {
	base     http.RoundTripper
	user     string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.user, t.password)
	return t.base.RoundTrip(req)
}
