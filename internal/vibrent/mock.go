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
	"path/filepath"

	relayerrors "github.com/sirseerhq/survey-relay/internal/errors"
)

// MockClient is a mock implementation of the Client interface for testing.
// Status sequences are scripted per export id: each GetExportStatus call
// consumes the next entry and the final entry repeats once exhausted.
type MockClient struct {
	// Surveys to return from ListSurveys
	Surveys []Survey

	// ExportIDs maps survey ids to the export id handed out on request.
	// Surveys without an entry get "exp-<surveyID>".
	ExportIDs map[int64]string

	// StatusSequences scripts GetExportStatus responses per export id.
	// An export id without a script reports COMPLETED immediately.
	StatusSequences map[string][]ExportStatus

	// DownloadContent holds the archive bytes written per export id.
	// Export ids without an entry get a small placeholder payload.
	DownloadContent map[string][]byte

	// Per-item errors
	RequestErrors  map[int64]error
	StatusErrors   map[string]error
	DownloadErrors map[string]error

	// Error to return from every call
	Error error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// Track calls for verification
	ListCalls     int
	RequestCalls  []int64
	StatusCalls   map[string]int
	DownloadCalls []string

	statusCursor map[string]int
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	return &MockClient{
		Surveys:         generateTestSurveys(),
		ExportIDs:       make(map[int64]string),
		StatusSequences: make(map[string][]ExportStatus),
		DownloadContent: make(map[string][]byte),
		RequestErrors:   make(map[int64]error),
		StatusErrors:    make(map[string]error),
		DownloadErrors:  make(map[string]error),
		StatusCalls:     make(map[string]int),
		statusCursor:    make(map[string]int),
	}
}

// ListSurveys implements the Client interface
func (m *MockClient) ListSurveys(ctx context.Context) ([]Survey, error) {
	m.ListCalls++

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := m.commonError(); err != nil {
		return nil, err
	}
	return m.Surveys, nil
}

// RequestExport implements the Client interface
func (m *MockClient) RequestExport(ctx context.Context, surveyID int64, req ExportRequest) (string, error) {
	m.RequestCalls = append(m.RequestCalls, surveyID)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if err := m.commonError(); err != nil {
		return "", err
	}
	if err, ok := m.RequestErrors[surveyID]; ok {
		return "", err
	}

	if id, ok := m.ExportIDs[surveyID]; ok {
		return id, nil
	}
	return fmt.Sprintf("exp-%d", surveyID), nil
}

// GetExportStatus implements the Client interface
func (m *MockClient) GetExportStatus(ctx context.Context, exportID string) (*ExportStatus, error) {
	m.StatusCalls[exportID]++

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := m.commonError(); err != nil {
		return nil, err
	}
	if err, ok := m.StatusErrors[exportID]; ok {
		return nil, err
	}

	seq, ok := m.StatusSequences[exportID]
	if !ok || len(seq) == 0 {
		return &ExportStatus{ExportID: exportID, Status: StatusCompleted}, nil
	}

	idx := m.statusCursor[exportID]
	if idx >= len(seq) {
		idx = len(seq) - 1
	} else {
		m.statusCursor[exportID]++
	}
	status := seq[idx]
	if status.ExportID == "" {
		status.ExportID = exportID
	}
	return &status, nil
}

// DownloadExport implements the Client interface
func (m *MockClient) DownloadExport(ctx context.Context, exportID, destDir string) (string, error) {
	m.DownloadCalls = append(m.DownloadCalls, exportID)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if err := m.commonError(); err != nil {
		return "", err
	}
	if err, ok := m.DownloadErrors[exportID]; ok {
		return "", err
	}

	content, ok := m.DownloadContent[exportID]
	if !ok {
		content = []byte("mock export payload")
	}

	path := filepath.Join(destDir, fmt.Sprintf("export_%s.zip", exportID))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// commonError simulates the error conditions shared by every call.
func (m *MockClient) commonError() error {
	if m.ShouldFailAuth {
		return fmt.Errorf("authentication failed: %w", relayerrors.ErrAuthFailed)
	}
	if m.ShouldFailNetwork {
		return fmt.Errorf("network timeout: %w", relayerrors.ErrNetworkFailure)
	}
	return m.Error
}

// generateTestSurveys creates sample survey data for testing
func generateTestSurveys() []Survey {
	return []Survey{
		{
			ID:             101,
			Name:           "baseline_health",
			DisplayName:    "Baseline Health Survey",
			PlatformFormID: 9001,
		},
		{
			ID:             102,
			Name:           "lifestyle_followup",
			DisplayName:    "Lifestyle Follow-up",
			PlatformFormID: 9002,
		},
		{
			ID:             103,
			Name:           "medications",
			DisplayName:    "Medications Survey",
			PlatformFormID: 9003,
		},
	}
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithSurveys sets specific surveys to return
func WithSurveys(surveys []Survey) MockClientOption {
	return func(m *MockClient) {
		m.Surveys = surveys
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// WithStatusSequence scripts the statuses reported for one export id
func WithStatusSequence(exportID string, statuses ...ExportStatus) MockClientOption {
	return func(m *MockClient) {
		m.StatusSequences[exportID] = statuses
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}
