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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidConfig indicates the configuration file or environment
	// selection is invalid. Maps to exit code 1.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingCredentials indicates the API client credentials are not set.
	// Maps to exit code 2.
	ErrMissingCredentials = errors.New("missing api credentials")

	// ErrAuthFailed indicates the platform rejected the client credentials.
	// Maps to exit code 2.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrExportNotFound indicates the requested export does not exist or is
	// not visible to the authenticated client. Maps to exit code 2.
	ErrExportNotFound = errors.New("export not found")

	// ErrAPIRequest indicates the platform API returned an error response.
	// Maps to exit code 1.
	ErrAPIRequest = errors.New("api request failed")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")
)
