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

// Package report builds and persists the run report for an export session.
// One Report is created at the start of a run, mutated through every
// pipeline stage, and written out exactly once at the end.
//
// The report serves several purposes:
//   - Provides an audit trail of which surveys were exported and when
//   - Records every partial failure with the stage it occurred in
//   - Captures timing and accounting totals for the whole run
//
// Reports are saved as indented JSON inside the run's output directory,
// allowing external tools to analyze export history.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirseerhq/survey-relay/internal/vibrent"
)

// Pipeline stages recorded on failure entries.
const (
	StageExportRequest = "export_request"
	StageDownload      = "download"
)

// Report is the complete record of one export session. Fields marshal in
// declaration order, which fixes the key order of the saved document.
// Surveys and Failures start empty rather than nil so an empty run still
// serializes them as arrays.
type Report struct {
	ExportSessionID   string           `json:"export_session_id"`
	StartTimestamp    string           `json:"start_timestamp"`
	TotalSurveys      int              `json:"total_surveys"`
	SuccessfulExports int              `json:"successful_exports"`
	FailedExports     int              `json:"failed_exports"`
	OutputDirectory   string           `json:"output_directory"`
	Surveys           []vibrent.Survey `json:"surveys"`
	Failures          []Failure        `json:"failures"`
	EndTimestamp      string           `json:"end_timestamp"`
	DurationSeconds   float64          `json:"duration_seconds"`

	startTime time.Time
}

// Failure is one failure entry. The populated fields depend on the stage:
// export request failures carry {surveyId, error, stage}, download failures
// carry {exportId, error, stage}, and exports the platform itself reported
// as FAILED carry {exportId, failureReason, status} with the full status
// snapshot and no stage.
type Failure struct {
	ExportID      string                `json:"exportId,omitempty"`
	SurveyID      int64                 `json:"surveyId,omitempty"`
	FailureReason string                `json:"failureReason,omitempty"`
	Error         string                `json:"error,omitempty"`
	Stage         string                `json:"stage,omitempty"`
	Status        *vibrent.ExportStatus `json:"status,omitempty"`
}

// New creates the report for a run starting at startedAt. The session id
// and output directory are fixed for the lifetime of the run.
func New(sessionID, outputDir string, startedAt time.Time) *Report {
	return &Report{
		ExportSessionID: sessionID,
		StartTimestamp:  startedAt.Format(time.RFC3339),
		OutputDirectory: outputDir,
		Surveys:         []vibrent.Survey{},
		Failures:        []Failure{},
		startTime:       startedAt,
	}
}

// RecordRequestFailure records a survey whose export request was rejected.
func (r *Report) RecordRequestFailure(surveyID int64, err error) {
	r.Failures = append(r.Failures, Failure{
		SurveyID: surveyID,
		Error:    err.Error(),
		Stage:    StageExportRequest,
	})
}

// RecordExportFailure records an export the platform reported as FAILED,
// keeping the full status snapshot for diagnosis.
func (r *Report) RecordExportFailure(status *vibrent.ExportStatus) {
	r.Failures = append(r.Failures, Failure{
		ExportID:      status.ExportID,
		FailureReason: status.FailureReason,
		Status:        status,
	})
}

// RecordDownloadFailure records a completed export whose archive could not
// be downloaded.
func (r *Report) RecordDownloadFailure(exportID string, err error) {
	r.Failures = append(r.Failures, Failure{
		ExportID: exportID,
		Error:    err.Error(),
		Stage:    StageDownload,
	})
}

// Finalize stamps the end timestamp and computes the run duration. Call
// once, after the last pipeline stage and before Save.
func (r *Report) Finalize(completedAt time.Time) {
	r.EndTimestamp = completedAt.Format(time.RFC3339)
	r.DurationSeconds = completedAt.Sub(r.startTime).Seconds()
}

// WriteTo streams the report as indented JSON to w.
func WriteTo(r *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Save persists the report to filename inside dir. The file is written
// atomically using a temporary file and rename to prevent corruption.
func Save(r *Report, dir, filename string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, filename)

	// Write to temporary file first for atomicity
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := WriteTo(r, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	// Atomically rename to final location
	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to save report file: %w", err)
	}

	return nil
}
