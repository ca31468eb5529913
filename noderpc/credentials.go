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

package noderpc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/sidewatch/internal/secrets"
	"gopkg.in/yaml.v3"
)

var ErrNoCredentials = errors.New("no node RPC credentials configured")

type Credentials struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// LoadCredentials resolves the RPC credentials in order of precedence:
// explicit user and password, then the credentials file, then the node's
// cookie file
func LoadCredentials(cfg ClientConfig) (Credentials, error) {
	if cfg.User != "" || cfg.Password != "" {
		return Credentials{User: cfg.User, Password: cfg.Password}, nil
	}
	if cfg.CredentialsFile != "" {
		return loadCredentialsFile(cfg.CredentialsFile)
	}
	if cfg.CookieFile != "" {
		return loadCookieFile(cfg.CookieFile)
	}
	return Credentials{}, ErrNoCredentials
}

// loadCredentialsFile reads a YAML credentials file, decrypting it first
// when it is a SOPS document
func loadCredentialsFile(path string) (Credentials, error) {
	var ret Credentials
	data, err := os.ReadFile(path)
	if err != nil {
		return ret, fmt.Errorf("read credentials file: %w", err)
	}
	if secrets.IsEncrypted(data) {
		data, err = secrets.Decrypt(data)
		if err != nil {
			return ret, fmt.Errorf("credentials file %s: %w", path, err)
		}
	}
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return ret, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	if ret.User == "" && ret.Password == "" {
		return ret, fmt.Errorf("credentials file %s: %w", path, ErrNoCredentials)
	}
	return ret, nil
}

// loadCookieFile reads the user:password pair the node writes when no
// static credentials are configured
func loadCookieFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read cookie file: %w", err)
	}
	user, password, ok := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !ok || user == "" {
		return Credentials{}, fmt.Errorf("malformed cookie file %s", path)
	}
	return Credentials{User: user, Password: password}, nil
}
