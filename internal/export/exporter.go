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

// Package export implements the survey export pipeline: enumerate surveys,
// filter them, request one export per survey, poll until each export
// reaches a terminal state, download the finished archives, extract their
// JSON members, and persist a run report.
//
// The pipeline is strictly sequential and isolates failures per item:
// a survey whose request, poll, or download fails is recorded in the run
// report and never aborts the rest of the batch. Only errors outside the
// per-item loops (the initial survey fetch, report persistence) propagate
// to the caller.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/survey-relay/internal/config"
	"github.com/sirseerhq/survey-relay/internal/report"
	"github.com/sirseerhq/survey-relay/internal/vibrent"
)

// sessionTimeLayout stamps session ids and run directory names.
const sessionTimeLayout = "02_01_2006_150405"

// defaultRequestDelay spaces successive export request submissions as a
// courtesy to the platform.
const defaultRequestDelay = 500 * time.Millisecond

// Assignment links one survey to the export job requested for it. The
// downloader uses it to re-associate a finished export with its survey.
type Assignment struct {
	SurveyID int64
	ExportID string
}

// Exporter coordinates one export run. Create one per run: the session id,
// output directory, and run report are fixed at construction time.
type Exporter struct {
	client vibrent.Client
	cfg    *config.Config
	log    *logrus.Entry

	sessionID string
	outputDir string
	report    *report.Report

	detailsBySurvey map[int64]*vibrent.ExportDetails
	requestDelay    time.Duration
}

// New creates an Exporter and its timestamped run directory underneath the
// configured output base. Every artifact of the run lands in that directory.
func New(client vibrent.Client, cfg *config.Config, log *logrus.Entry) (*Exporter, error) {
	now := time.Now()
	stamp := now.Format(sessionTimeLayout)

	outputDir := filepath.Join(cfg.Output.BaseDirectory, cfg.Output.SurveyExportsDir, "survey_data_"+stamp)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	sessionID := "export_" + stamp
	return &Exporter{
		client:          client,
		cfg:             cfg,
		log:             log,
		sessionID:       sessionID,
		outputDir:       outputDir,
		report:          report.New(sessionID, outputDir, now),
		detailsBySurvey: make(map[int64]*vibrent.ExportDetails),
		requestDelay:    defaultRequestDelay,
	}, nil
}

// SessionID returns the run's session identifier.
func (e *Exporter) SessionID() string { return e.sessionID }

// OutputDir returns the run's output directory.
func (e *Exporter) OutputDir() string { return e.outputDir }

// Report returns the run report for inspection after Run.
func (e *Exporter) Report() *report.Report { return e.report }

// Run executes the full pipeline. An empty survey list or an empty filter
// result stops the run early without writing a report; once exports have
// been requested the run always finalizes and persists the report, whatever
// the individual outcomes were.
func (e *Exporter) Run(ctx context.Context) error {
	e.log.WithField("session", e.sessionID).Info("Starting survey data export")

	surveys, err := e.client.ListSurveys(ctx)
	if err != nil {
		return err
	}
	e.report.TotalSurveys = len(surveys)
	if len(surveys) == 0 {
		e.log.Warn("No surveys found")
		return nil
	}

	filtered := e.filterSurveys(surveys)
	if len(filtered) == 0 {
		e.log.Warn("No surveys match the filter criteria")
		return nil
	}

	dateRange, err := e.cfg.ResolveDateRange(time.Now())
	if err != nil {
		return err
	}
	exportReq := vibrent.ExportRequest{
		DateFrom: dateRange.StartMillis,
		DateTo:   dateRange.EndMillis,
		Format:   e.cfg.Export.Format,
	}

	assignments, err := e.requestExports(ctx, filtered, exportReq)
	if err != nil {
		return err
	}
	if len(assignments) == 0 {
		e.log.Error("No exports were successfully requested")
		return e.finish(filtered, nil)
	}

	poller := NewStatusPoller(e.client, e.cfg.Export.Monitoring, e.log)
	exportIDs := make([]string, len(assignments))
	for i, a := range assignments {
		exportIDs[i] = a.ExportID
	}
	result, err := poller.Wait(ctx, exportIDs, e.report)
	if err != nil {
		return err
	}

	downloaded := e.downloadExports(ctx, result, assignments)

	if len(downloaded) > 0 {
		if e.cfg.Output.ExtractJSON {
			ExtractJSONFiles(downloaded, e.outputDir, e.cfg.Output.RemoveZipAfterExtract, e.log)
		} else {
			e.log.Info("JSON extraction disabled in configuration")
		}
	}

	return e.finish(filtered, result)
}

// filterSurveys applies the configured inclusion and exclusion rules in
// the original listing order, then keeps at most the configured maximum.
func (e *Exporter) filterSurveys(surveys []vibrent.Survey) []vibrent.Survey {
	maxSurveys := e.cfg.Export.Request.MaxSurveys

	var filtered []vibrent.Survey
	for _, survey := range surveys {
		if !e.cfg.ShouldIncludeSurvey(survey.PlatformFormID) {
			e.log.WithFields(logrus.Fields{
				"survey_id": survey.PlatformFormID,
				"name":      survey.Name,
			}).Debug("Survey excluded by filter")
			continue
		}
		filtered = append(filtered, survey)
		if maxSurveys > 0 && len(filtered) >= maxSurveys {
			break
		}
	}
	return filtered
}

// requestExports submits one export request per filtered survey. A rejected
// request is logged and recorded in the report; the survey is skipped, not
// retried. The returned error is non-nil only on context cancellation.
func (e *Exporter) requestExports(ctx context.Context, filtered []vibrent.Survey, exportReq vibrent.ExportRequest) ([]Assignment, error) {
	var assignments []Assignment
	for i, survey := range filtered {
		e.log.Infof("[%d/%d] Requesting export for survey id: %d (Name: %q)",
			i+1, len(filtered), survey.PlatformFormID, survey.Name)

		exportID, err := e.client.RequestExport(ctx, survey.PlatformFormID, exportReq)
		if err != nil {
			e.log.Errorf("Failed to request export for survey %d: %v", survey.PlatformFormID, err)
			e.report.RecordRequestFailure(survey.PlatformFormID, err)
			continue
		}

		e.log.WithField("export_id", exportID).Info("Export requested")
		assignments = append(assignments, Assignment{SurveyID: survey.PlatformFormID, ExportID: exportID})

		select {
		case <-ctx.Done():
			return assignments, ctx.Err()
		case <-time.After(e.requestDelay):
		}
	}
	return assignments, nil
}

// downloadExports fetches the archive of every completed export, in the
// order completion was observed. A failed download is logged and recorded;
// the export stays counted as successful since the platform completed it.
func (e *Exporter) downloadExports(ctx context.Context, result *PollResult, assignments []Assignment) []string {
	var downloaded []string
	for i, exportID := range result.CompletedOrder {
		e.log.Infof("[%d/%d] Downloading export: %s", i+1, len(result.CompletedOrder), exportID)

		path, err := e.client.DownloadExport(ctx, exportID, e.outputDir)
		if err != nil {
			e.log.Errorf("Failed to download export %s: %v", exportID, err)
			e.report.RecordDownloadFailure(exportID, err)
			continue
		}

		e.log.Infof("[%d/%d] Downloaded: %s", i+1, len(result.CompletedOrder), path)
		downloaded = append(downloaded, path)

		details := &vibrent.ExportDetails{ExportID: exportID, Status: *result.Completed[exportID]}
		for _, a := range assignments {
			if a.ExportID == exportID {
				e.detailsBySurvey[a.SurveyID] = details
				break
			}
		}
	}
	return downloaded
}

// finish settles the report totals, embeds the survey details, persists the
// report, and logs the run summary. Every filtered survey counts exactly
// once: completed exports are successful, everything else failed.
func (e *Exporter) finish(filtered []vibrent.Survey, result *PollResult) error {
	completed := 0
	if result != nil {
		completed = len(result.Completed)
	}
	e.report.SuccessfulExports = completed
	e.report.FailedExports = len(filtered) - completed

	if e.cfg.Metadata.IncludeSurveyDetails {
		entries := make([]vibrent.Survey, 0, len(filtered))
		for _, survey := range filtered {
			entry := survey
			if e.cfg.Metadata.IncludeExportStatus {
				if details, ok := e.detailsBySurvey[survey.PlatformFormID]; ok {
					entry.ExportDetails = details
				}
			}
			entries = append(entries, entry)
		}
		e.report.Surveys = entries
	}

	e.report.Finalize(time.Now())

	if e.cfg.Metadata.SaveMetadata {
		if err := report.Save(e.report, e.outputDir, e.cfg.Metadata.Filename); err != nil {
			return err
		}
		e.log.WithField("file", filepath.Join(e.outputDir, e.cfg.Metadata.Filename)).
			Info("Export metadata saved")
	} else {
		e.log.Info("Metadata saving disabled in configuration")
	}

	e.logSummary()
	return nil
}

func (e *Exporter) logSummary() {
	e.log.Info("Export completed successfully!")
	e.log.Infof("Total surveys: %d", e.report.TotalSurveys)
	e.log.Infof("Successful exports: %d", e.report.SuccessfulExports)
	e.log.Infof("Failed exports: %d", e.report.FailedExports)
	e.log.Infof("Duration: %.2f seconds", e.report.DurationSeconds)
	e.log.Infof("Output directory: %s", e.outputDir)
}
