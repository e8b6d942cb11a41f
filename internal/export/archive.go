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
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// extractChunkSize is the buffer size used when streaming archive entries.
const extractChunkSize = 8192

// jsonExtension marks the archive entries worth extracting.
const jsonExtension = ".json"

// ExtractJSONFiles copies the .json members of every downloaded archive
// into destDir, preserving their internal relative paths. Extraction is
// best effort: a broken archive is logged and skipped without failing the
// run or adding report entries. An archive is deleted after extraction only
// when removeZip is set and every one of its entries extracted cleanly; a
// failed extraction always preserves the archive.
func ExtractJSONFiles(zipPaths []string, destDir string, removeZip bool, log *logrus.Entry) {
	log.Info("Extracting JSON files from zip archives")

	for _, zipPath := range zipPaths {
		if !extractArchive(zipPath, destDir, log) {
			continue
		}
		if !removeZip {
			continue
		}
		if err := os.Remove(zipPath); err != nil {
			log.WithFields(logrus.Fields{"archive": zipPath, "error": err}).
				Error("Error deleting zip file")
			continue
		}
		log.WithField("archive", zipPath).Debug("Removed zip file")
	}
}

// extractArchive copies the .json entries of one archive into destDir.
// Returns false as soon as any entry fails; files extracted before the
// failure stay on disk.
func extractArchive(zipPath, destDir string, log *logrus.Entry) bool {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		log.WithFields(logrus.Fields{"archive": zipPath, "error": err}).
			Error("Error extracting archive")
		return false
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if !strings.HasSuffix(entry.Name, jsonExtension) {
			continue
		}
		target, err := extractEntry(entry, destDir)
		if err != nil {
			log.WithFields(logrus.Fields{"archive": zipPath, "entry": entry.Name, "error": err}).
				Error("Error extracting archive")
			return false
		}
		log.WithField("file", target).Info("Extracted")
	}
	return true
}

// extractEntry streams one archive entry to its place under destDir,
// creating parent directories as needed.
func extractEntry(entry *zip.File, destDir string) (string, error) {
	target := filepath.Join(destDir, entry.Name)

	// Entry names come from the archive; reject any that would land
	// outside the output directory.
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %s escapes the output directory", entry.Name)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	source, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer source.Close()

	out, err := os.Create(target)
	if err != nil {
		return "", err
	}

	buf := make([]byte, extractChunkSize)
	if _, err := io.CopyBuffer(out, source, buf); err != nil {
		_ = out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return target, nil
}
