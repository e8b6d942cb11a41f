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

// Package logging configures the process-wide logger. Log lines always go
// to stderr so that stdout stays reserved for data output; when a log
// directory is configured, lines are mirrored to a size-rotated file
// underneath it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sirseerhq/survey-relay/internal/config"
)

// logFileName is the rotated log file created under the log directory.
const logFileName = "survey-relay.log"

// Rotation limits for the log file.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
	maxLogAgeDays = 30
)

// Setup builds the base log entry for the process. An unknown level falls
// back to info rather than failing; a missing format falls back to text.
func Setup(cfg config.LoggingConfig) (*logrus.Entry, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	writers := []io.Writer{os.Stderr}
	if cfg.Directory != "" {
		if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", cfg.Directory, err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Directory, logFileName),
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
			MaxAge:     maxLogAgeDays,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))

	return logrus.NewEntry(log), nil
}
