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

package export

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/survey-relay/internal/config"
	"github.com/sirseerhq/survey-relay/internal/report"
	"github.com/sirseerhq/survey-relay/internal/vibrent"
)

// StatusPoller drives the bounded polling loop that waits for submitted
// exports to reach a terminal state. Each sweep queries the status of every
// still-pending export id; the loop sleeps a fixed interval between sweeps
// and stops once nothing is pending or the wait budget runs out.
type StatusPoller struct {
	client            vibrent.Client
	interval          time.Duration
	maxWait           time.Duration
	continueOnFailure bool
	log               *logrus.Entry
}

// NewStatusPoller creates a poller from the monitoring configuration.
// A max wait of zero means the loop waits indefinitely.
func NewStatusPoller(client vibrent.Client, cfg config.MonitoringConfig, log *logrus.Entry) *StatusPoller {
	return &StatusPoller{
		client:            client,
		interval:          time.Duration(cfg.PollingIntervalSeconds) * time.Second,
		maxWait:           time.Duration(cfg.MaxWaitSeconds) * time.Second,
		continueOnFailure: cfg.ContinueOnFailure,
		log:               log,
	}
}

// PollResult partitions the polled exports by outcome. CompletedOrder holds
// the completed ids in the order their completion was observed, which fixes
// the download order. Pending holds the ids the wait budget cut off: they
// are neither completed nor failed and receive no further processing.
type PollResult struct {
	Completed      map[string]*vibrent.ExportStatus
	CompletedOrder []string
	Failed         []string
	Pending        []string
}

// Wait polls every export id until terminal state or until the wait budget
// expires. Exports the platform reports as FAILED get a failure entry with
// the full status snapshot appended to the run report. A status query error
// counts the export as failed without a report entry when continue-on-failure
// is enabled; otherwise it aborts the whole poll.
func (p *StatusPoller) Wait(ctx context.Context, exportIDs []string, rpt *report.Report) (*PollResult, error) {
	result := &PollResult{Completed: make(map[string]*vibrent.ExportStatus)}

	pending := make([]string, len(exportIDs))
	copy(pending, exportIDs)

	start := time.Now()
	completedTotal := 0
	failedTotal := 0

	p.log.WithField("count", len(pending)).Info("Checking export status: waiting for exports to complete")

	for len(pending) > 0 {
		if p.maxWait > 0 && time.Since(start) > p.maxWait {
			p.log.Warnf("Maximum wait time (%v) exceeded. %d exports still pending.", p.maxWait, len(pending))
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}

		var still []string
		for _, exportID := range pending {
			status, err := p.client.GetExportStatus(ctx, exportID)
			if err != nil {
				p.log.WithFields(logrus.Fields{"export_id": exportID, "error": err}).
					Error("Error checking export status")
				if !p.continueOnFailure {
					return nil, err
				}
				failedTotal++
				result.Failed = append(result.Failed, exportID)
				continue
			}

			switch status.Status {
			case vibrent.StatusCompleted:
				completedTotal++
				result.Completed[exportID] = status
				result.CompletedOrder = append(result.CompletedOrder, exportID)
			case vibrent.StatusFailed:
				failedTotal++
				result.Failed = append(result.Failed, exportID)
				rpt.RecordExportFailure(status)
			default:
				// SUBMITTED and IN_PROGRESS stay pending.
				still = append(still, exportID)
			}
		}
		pending = still

		p.log.Infof("Status after this check: TOTAL: %d, COMPLETED: %d, FAILED: %d, IN_PROGRESS: %d",
			len(exportIDs), completedTotal, failedTotal, len(pending))
	}

	result.Pending = pending
	return result, nil
}
