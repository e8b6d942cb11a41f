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

// Package vibrent provides a client for the Vibrent Health external API:
// survey enumeration, export requests, export status checks, and archive
// downloads. It handles OAuth2 client-credentials authentication with
// transparent token refresh and maps API failures onto the application's
// error taxonomy.
//
// The package includes:
//   - A Client interface covering the four export-pipeline operations
//   - A REST implementation built on resty
//   - A TokenManager implementing the client-credentials grant
//   - Mock client for testing
//   - Type definitions matching the platform's wire format
//
// Basic usage:
//
//	tokens, err := vibrent.NewTokenManager(target, cfg.Auth, log)
//	if err != nil {
//	    // Handle missing credentials
//	}
//	client := vibrent.NewRESTClient(target, cfg.API, tokens, log)
//	surveys, err := client.ListSurveys(ctx)
//	if err != nil {
//	    // Handle error
//	}
//	for _, survey := range surveys {
//	    // Process survey
//	}
package vibrent
