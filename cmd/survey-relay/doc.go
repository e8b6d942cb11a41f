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

// Package main implements the survey-relay command-line interface.
// This tool bulk-exports survey response data from the Vibrent Health
// platform into a timestamped output directory of JSON files plus a run
// report describing what succeeded and what failed.
//
// The CLI supports:
//   - Running a full export session with the export subcommand
//   - Listing visible surveys as NDJSON with the surveys subcommand
//   - YAML configuration with environment-variable and flag overrides
//   - OAuth2 client-credential authentication via environment or .env file
//   - Graceful error handling with appropriate exit codes
//
// Usage:
//
//	survey-relay export [flags]
//	survey-relay surveys [flags]
//
// Example:
//
//	export VIBRENT_CLIENT_ID=your_client_id
//	export VIBRENT_CLIENT_SECRET=your_client_secret
//	survey-relay export --config config/survey-relay.yaml --environment staging
//
// Exit codes:
//   - 0: Success
//   - 1: General or configuration error
//   - 2: Authentication/authorization error
//   - 3: Network error
package main
