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

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/survey-relay/internal/config"
)

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel logrus.Level
	}{
		{"debug level", "debug", logrus.DebugLevel},
		{"info level", "info", logrus.InfoLevel},
		{"warn level", "warn", logrus.WarnLevel},
		{"error level", "error", logrus.ErrorLevel},
		{"unknown level falls back to info", "verbose", logrus.InfoLevel},
		{"empty level falls back to info", "", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := Setup(config.LoggingConfig{Level: tt.level, Format: "text"})
			if err != nil {
				t.Fatalf("Setup failed: %v", err)
			}
			if entry.Logger.GetLevel() != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry.Logger.GetLevel(), tt.wantLevel)
			}
		})
	}
}

func TestSetup_Formats(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		entry, err := Setup(config.LoggingConfig{Level: "info", Format: "json"})
		if err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
		if _, ok := entry.Logger.Formatter.(*logrus.JSONFormatter); !ok {
			t.Errorf("expected JSON formatter, got %T", entry.Logger.Formatter)
		}
	})

	t.Run("text format by default", func(t *testing.T) {
		entry, err := Setup(config.LoggingConfig{Level: "info"})
		if err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
		if _, ok := entry.Logger.Formatter.(*logrus.TextFormatter); !ok {
			t.Errorf("expected text formatter, got %T", entry.Logger.Formatter)
		}
	})
}

func TestSetup_LogDirectory(t *testing.T) {
	t.Run("creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")

		entry, err := Setup(config.LoggingConfig{Level: "info", Directory: dir})
		if err != nil {
			t.Fatalf("Setup failed: %v", err)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("log directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected a directory")
		}

		// Writing a line must create the log file under the directory.
		entry.Info("hello")
		if _, err := os.Stat(filepath.Join(dir, logFileName)); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("unusable directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		blocker := filepath.Join(tmpDir, "not-a-dir")
		if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create blocker file: %v", err)
		}

		if _, err := Setup(config.LoggingConfig{Level: "info", Directory: blocker}); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
