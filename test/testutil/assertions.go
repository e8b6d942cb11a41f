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

package testutil

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertNDJSONSurveys validates that a file contains valid NDJSON with the
// expected survey count
func AssertNDJSONSurveys(t *testing.T, filePath string, expectedCount int) {
	t.Helper()

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	count := 0

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var survey map[string]interface{}
		if err := json.Unmarshal([]byte(line), &survey); err != nil {
			t.Errorf("Line %d: invalid JSON: %v", count+1, err)
			continue
		}

		// Validate survey has required fields
		requiredFields := []string{"id", "name", "displayName", "platformFormId"}
		for _, field := range requiredFields {
			if _, ok := survey[field]; !ok {
				t.Errorf("Line %d: missing required field '%s'", count+1, field)
			}
		}

		count++
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading file: %v", err)
	}

	if count != expectedCount {
		t.Errorf("Expected %d surveys, got %d", expectedCount, count)
	}
}

// ReadReportFile reads and validates the run report written into a session
// directory, returning it as a map for further assertions
func ReadReportFile(t *testing.T, runDir string) map[string]interface{} {
	t.Helper()

	path := filepath.Join(runDir, "export_metadata.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}

	var report map[string]interface{}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("Invalid report JSON: %v", err)
	}

	// Check required fields
	requiredFields := []string{
		"export_session_id", "start_timestamp", "total_surveys",
		"successful_exports", "failed_exports", "output_directory",
		"end_timestamp", "duration_seconds",
	}
	for _, field := range requiredFields {
		if _, ok := report[field]; !ok {
			t.Errorf("Missing required report field: %s", field)
		}
	}

	return report
}

// AssertReportCounts checks the three accounting fields of a run report
func AssertReportCounts(t *testing.T, report map[string]interface{}, total, successful, failed int) {
	t.Helper()

	checks := []struct {
		field string
		want  int
	}{
		{"total_surveys", total},
		{"successful_exports", successful},
		{"failed_exports", failed},
	}
	for _, c := range checks {
		got, ok := report[c.field].(float64)
		if !ok {
			t.Errorf("Report field %s missing or not a number", c.field)
			continue
		}
		if int(got) != c.want {
			t.Errorf("Report field %s = %d, want %d", c.field, int(got), c.want)
		}
	}
}

// AssertExtractedFiles checks that the run directory contains exactly the
// given extracted files and no leftover archives
func AssertExtractedFiles(t *testing.T, runDir string, names ...string) {
	t.Helper()

	for _, name := range names {
		AssertFileExists(t, filepath.Join(runDir, name))
	}

	zips, err := filepath.Glob(filepath.Join(runDir, "*.zip"))
	if err != nil {
		t.Fatalf("Failed to glob archives: %v", err)
	}
	if len(zips) > 0 {
		t.Errorf("Expected no archives left in %s, found %v", runDir, zips)
	}
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}

// AssertNotContainsString checks if a string does not contain a substring
func AssertNotContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("Expected string to NOT contain %q, got: %s", needle, haystack)
	}
}

// AssertErrorContains checks if an error contains expected text
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), expected) {
		t.Errorf("Expected error to contain %q, got: %v", expected, err)
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertEqual compares two values and fails if they're not equal
func AssertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Errorf("Got %v, want %v", got, want)
	}
}

// AssertDirExists checks that a directory exists
func AssertDirExists(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Expected directory to exist: %s", path)
		}
		t.Fatalf("Failed to stat directory: %v", err)
	}

	if !info.IsDir() {
		t.Fatalf("Expected %s to be a directory", path)
	}
}
