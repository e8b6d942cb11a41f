// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vibrent

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/survey-relay/internal/config"
	relayerrors "github.com/sirseerhq/survey-relay/internal/errors"
)

// Environment variables holding the OAuth2 client credentials. Credentials
// are never read from configuration files.
const (
	clientIDEnv     = "VIBRENT_CLIENT_ID"
	clientSecretEnv = "VIBRENT_CLIENT_SECRET"
)

// defaultTokenLifetime is assumed when the token response omits expires_in.
const defaultTokenLifetime = 3600 * time.Second

// tokenResponse is the OAuth2 token endpoint's success payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenManager acquires and caches OAuth2 access tokens using the
// client-credentials grant. A cached token is reused until it comes within
// the configured refresh buffer of its expiry, at which point the next
// Token call transparently re-authenticates.
type TokenManager struct {
	clientID      string
	clientSecret  string
	tokenURL      string
	refreshBuffer time.Duration
	http          *resty.Client
	log           *logrus.Entry

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewTokenManager builds a TokenManager for the given environment target.
// Client credentials come from the VIBRENT_CLIENT_ID and
// VIBRENT_CLIENT_SECRET environment variables; both must be set.
func NewTokenManager(target config.EnvironmentTarget, authCfg config.AuthConfig, log *logrus.Entry) (*TokenManager, error) {
	clientID := os.Getenv(clientIDEnv)
	clientSecret := os.Getenv(clientSecretEnv)
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%s and %s environment variables must be set: %w",
			clientIDEnv, clientSecretEnv, relayerrors.ErrMissingCredentials)
	}

	httpClient := resty.New().
		SetTimeout(time.Duration(authCfg.TimeoutSeconds) * time.Second)

	return &TokenManager{
		clientID:      clientID,
		clientSecret:  clientSecret,
		tokenURL:      target.TokenURL,
		refreshBuffer: time.Duration(authCfg.RefreshBufferSeconds) * time.Second,
		http:          httpClient,
		log:           log,
	}, nil
}

// Token returns a valid access token, authenticating against the token
// endpoint when no token is cached or the cached one is about to expire.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.accessToken != "" && time.Now().Before(m.expiresAt.Add(-m.refreshBuffer)) {
		return m.accessToken, nil
	}

	if err := m.authenticate(ctx); err != nil {
		return "", err
	}
	return m.accessToken, nil
}

// authenticate performs the client-credentials token request. Callers must
// hold m.mu.
func (m *TokenManager) authenticate(ctx context.Context) error {
	m.log.WithField("token_url", m.tokenURL).Info("Authenticating with platform")

	var token tokenResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetBasicAuth(m.clientID, m.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&token).
		Post(m.tokenURL)
	if err != nil {
		return fmt.Errorf("token request failed: %v: %w", err, relayerrors.ErrNetworkFailure)
	}

	if resp.StatusCode() != 200 {
		body := strings.TrimSpace(string(resp.Body()))
		m.log.WithField("status", resp.StatusCode()).Error("Authentication failed")
		return fmt.Errorf("token endpoint returned status %d: %s: %w",
			resp.StatusCode(), body, relayerrors.ErrAuthFailed)
	}

	if token.AccessToken == "" {
		return fmt.Errorf("token response missing access_token: %w", relayerrors.ErrAuthFailed)
	}

	lifetime := defaultTokenLifetime
	if token.ExpiresIn > 0 {
		lifetime = time.Duration(token.ExpiresIn) * time.Second
	}

	m.accessToken = token.AccessToken
	m.expiresAt = time.Now().Add(lifetime)
	m.log.Info("Authentication successful")
	return nil
}
