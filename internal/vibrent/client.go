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

import "context"

// Client defines the interface for interacting with the Vibrent Health
// external API. This interface allows for easy mocking in tests.
type Client interface {
	// ListSurveys retrieves every survey form visible to the authenticated
	// client. Entries that cannot be decoded are skipped, not fatal.
	ListSurveys(ctx context.Context) ([]Survey, error)

	// RequestExport submits an export job for one survey, identified by its
	// platform form id, and returns the export id assigned by the platform.
	RequestExport(ctx context.Context, surveyID int64, req ExportRequest) (string, error)

	// GetExportStatus retrieves the current status of an export job.
	GetExportStatus(ctx context.Context, exportID string) (*ExportStatus, error)

	// DownloadExport streams the export's archive into destDir and returns
	// the path of the written file.
	DownloadExport(ctx context.Context, exportID, destDir string) (string, error)
}

// TokenSource supplies a valid bearer token for API calls. Implemented by
// TokenManager; tests substitute a static source.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
