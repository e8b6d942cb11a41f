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
	"errors"
	"os"
	"path/filepath"
	"testing"

	relayerrors "github.com/sirseerhq/survey-relay/internal/errors"
)

// Compile-time check that MockClient implements Client
var _ Client = (*MockClient)(nil)

func TestMockClient_ListSurveys(t *testing.T) {
	ctx := context.Background()

	t.Run("returns default test data", func(t *testing.T) {
		mock := NewMockClient()

		surveys, err := mock.ListSurveys(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(surveys) != 3 {
			t.Errorf("expected 3 surveys, got %d", len(surveys))
		}
		if mock.ListCalls != 1 {
			t.Errorf("expected 1 call, got %d", mock.ListCalls)
		}
	})

	t.Run("simulates auth failure", func(t *testing.T) {
		mock := NewMockClientWithOptions(WithAuthFailure())

		_, err := mock.ListSurveys(ctx)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, relayerrors.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("simulates network failure", func(t *testing.T) {
		mock := NewMockClient()
		mock.ShouldFailNetwork = true

		_, err := mock.ListSurveys(ctx)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, relayerrors.ErrNetworkFailure) {
			t.Errorf("expected ErrNetworkFailure, got %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		mock := NewMockClient()

		cancelCtx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := mock.ListSurveys(cancelCtx)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("custom surveys", func(t *testing.T) {
		custom := []Survey{
			{ID: 7, Name: "custom", PlatformFormID: 77},
		}

		mock := NewMockClientWithOptions(WithSurveys(custom))

		surveys, err := mock.ListSurveys(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(surveys) != 1 {
			t.Fatalf("expected 1 survey, got %d", len(surveys))
		}
		if surveys[0].PlatformFormID != 77 {
			t.Errorf("expected platform form id 77, got %d", surveys[0].PlatformFormID)
		}
	})
}

func TestMockClient_RequestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("generates default export ids", func(t *testing.T) {
		mock := NewMockClient()

		id, err := mock.RequestExport(ctx, 9001, ExportRequest{Format: "JSON"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "exp-9001" {
			t.Errorf("expected exp-9001, got %q", id)
		}
		if len(mock.RequestCalls) != 1 || mock.RequestCalls[0] != 9001 {
			t.Errorf("expected request call for 9001, got %v", mock.RequestCalls)
		}
	})

	t.Run("uses configured export ids", func(t *testing.T) {
		mock := NewMockClient()
		mock.ExportIDs[9001] = "custom-export"

		id, err := mock.RequestExport(ctx, 9001, ExportRequest{Format: "JSON"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "custom-export" {
			t.Errorf("expected custom-export, got %q", id)
		}
	})

	t.Run("per-survey errors", func(t *testing.T) {
		requestErr := errors.New("request rejected")
		mock := NewMockClient()
		mock.RequestErrors[9002] = requestErr

		if _, err := mock.RequestExport(ctx, 9001, ExportRequest{}); err != nil {
			t.Errorf("survey 9001 should succeed, got %v", err)
		}
		if _, err := mock.RequestExport(ctx, 9002, ExportRequest{}); !errors.Is(err, requestErr) {
			t.Errorf("expected request error for 9002, got %v", err)
		}
	})
}

func TestMockClient_GetExportStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unscripted exports complete immediately", func(t *testing.T) {
		mock := NewMockClient()

		status, err := mock.GetExportStatus(ctx, "exp-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.Status != StatusCompleted {
			t.Errorf("expected COMPLETED, got %q", status.Status)
		}
		if status.ExportID != "exp-1" {
			t.Errorf("expected export id exp-1, got %q", status.ExportID)
		}
	})

	t.Run("scripted sequence consumed in order", func(t *testing.T) {
		mock := NewMockClientWithOptions(WithStatusSequence("exp-1",
			ExportStatus{Status: StatusSubmitted},
			ExportStatus{Status: StatusInProgress},
			ExportStatus{Status: StatusCompleted, FileName: "done.zip"},
		))

		want := []string{StatusSubmitted, StatusInProgress, StatusCompleted}
		for i, expected := range want {
			status, err := mock.GetExportStatus(ctx, "exp-1")
			if err != nil {
				t.Fatalf("call %d: unexpected error: %v", i, err)
			}
			if status.Status != expected {
				t.Errorf("call %d: expected %s, got %s", i, expected, status.Status)
			}
		}

		// The final entry repeats once the script is exhausted.
		status, err := mock.GetExportStatus(ctx, "exp-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.Status != StatusCompleted || status.FileName != "done.zip" {
			t.Errorf("expected final entry to repeat, got %+v", status)
		}

		if mock.StatusCalls["exp-1"] != 4 {
			t.Errorf("expected 4 status calls, got %d", mock.StatusCalls["exp-1"])
		}
	})

	t.Run("per-export errors", func(t *testing.T) {
		statusErr := errors.New("status unavailable")
		mock := NewMockClient()
		mock.StatusErrors["exp-2"] = statusErr

		if _, err := mock.GetExportStatus(ctx, "exp-2"); !errors.Is(err, statusErr) {
			t.Errorf("expected status error, got %v", err)
		}
	})
}

func TestMockClient_DownloadExport(t *testing.T) {
	ctx := context.Background()

	t.Run("writes archive to dest dir", func(t *testing.T) {
		mock := NewMockClient()
		mock.DownloadContent["exp-1"] = []byte("archive-bytes")

		destDir := t.TempDir()
		path, err := mock.DownloadExport(ctx, "exp-1", destDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if filepath.Dir(path) != destDir {
			t.Errorf("expected file under %s, got %s", destDir, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read download: %v", err)
		}
		if string(content) != "archive-bytes" {
			t.Errorf("unexpected content %q", content)
		}
		if len(mock.DownloadCalls) != 1 || mock.DownloadCalls[0] != "exp-1" {
			t.Errorf("expected download call for exp-1, got %v", mock.DownloadCalls)
		}
	})

	t.Run("per-export errors", func(t *testing.T) {
		downloadErr := errors.New("download interrupted")
		mock := NewMockClient()
		mock.DownloadErrors["exp-3"] = downloadErr

		if _, err := mock.DownloadExport(ctx, "exp-3", t.TempDir()); !errors.Is(err, downloadErr) {
			t.Errorf("expected download error, got %v", err)
		}
	})
}

func TestMockClientOptions(t *testing.T) {
	t.Run("with custom error", func(t *testing.T) {
		customErr := errors.New("custom error")
		mock := NewMockClientWithOptions(WithError(customErr))

		_, err := mock.ListSurveys(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, customErr) {
			t.Errorf("expected custom error, got %v", err)
		}
	})
}

func TestGenerateTestSurveys(t *testing.T) {
	surveys := generateTestSurveys()

	if len(surveys) != 3 {
		t.Fatalf("expected 3 test surveys, got %d", len(surveys))
	}

	seen := make(map[int64]bool)
	for i, s := range surveys {
		if s.PlatformFormID == 0 {
			t.Errorf("survey %d: platform form id must be set", i)
		}
		if seen[s.PlatformFormID] {
			t.Errorf("survey %d: duplicate platform form id %d", i, s.PlatformFormID)
		}
		seen[s.PlatformFormID] = true
		if s.Name == "" {
			t.Errorf("survey %d: name must be set", i)
		}
	}
}
