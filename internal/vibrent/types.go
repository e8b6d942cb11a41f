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

// Package vibrent types mirror the JSON documents exchanged with the Vibrent
// Health external API. Field names follow the wire format exactly; these
// structs are also what survey-relay serializes into its own artifacts.
package vibrent

// Export status values reported by the platform. COMPLETED and FAILED are
// terminal; the other two mean the export is still being prepared.
const (
	StatusSubmitted  = "SUBMITTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Survey represents one survey form visible to the authenticated client.
// Identity for export purposes is PlatformFormID, not ID: the export request
// endpoint and the survey filter both operate on the platform form id.
// ExportDetails is never sent by the platform; the exporter attaches it when
// building the run report.
type Survey struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	DisplayName    string         `json:"displayName"`
	PlatformFormID int64          `json:"platformFormId"`
	ExportDetails  *ExportDetails `json:"export_details,omitempty"`
}

// ExportRequest is the payload submitted to request a survey export. The
// same request is reused for every survey in a run: one date window, one
// format. Timestamps are epoch milliseconds.
type ExportRequest struct {
	DateFrom int64  `json:"dateFrom"`
	DateTo   int64  `json:"dateTo"`
	Format   string `json:"format"`
}

// ExportStatus is the platform's view of one export job. Transitions happen
// only on the remote side; clients merely observe. FileName, CompletedOn,
// DownloadEndpoint and FailureReason are populated as the job progresses.
type ExportStatus struct {
	ExportID         string `json:"exportId"`
	Status           string `json:"status"`
	FileName         string `json:"fileName,omitempty"`
	SubmittedOn      string `json:"submittedOn,omitempty"`
	CompletedOn      string `json:"completedOn,omitempty"`
	DownloadEndpoint string `json:"downloadEndpoint,omitempty"`
	FailureReason    string `json:"failureReason,omitempty"`
}

// ExportDetails links a survey to the outcome of its export. Embedded into
// report survey entries once the export's archive has been downloaded.
type ExportDetails struct {
	ExportID string       `json:"exportId"`
	Status   ExportStatus `json:"status"`
}
