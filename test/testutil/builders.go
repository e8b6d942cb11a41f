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
	"archive/zip"
	"bytes"
	"fmt"
	"testing"
)

// SurveyBuilder provides a fluent API for creating test surveys
type SurveyBuilder struct {
	id             int64
	name           string
	displayName    string
	platformFormID int64
}

// NewSurveyBuilder creates a new survey builder with defaults derived from
// the platform form id
func NewSurveyBuilder(platformFormID int64) *SurveyBuilder {
	return &SurveyBuilder{
		id:             platformFormID - 8900,
		name:           fmt.Sprintf("survey_%d", platformFormID),
		displayName:    fmt.Sprintf("Survey %d", platformFormID),
		platformFormID: platformFormID,
	}
}

// WithID sets the internal survey id
func (b *SurveyBuilder) WithID(id int64) *SurveyBuilder {
	b.id = id
	return b
}

// WithName sets the survey name
func (b *SurveyBuilder) WithName(name string) *SurveyBuilder {
	b.name = name
	return b
}

// WithDisplayName sets the human-readable survey title
func (b *SurveyBuilder) WithDisplayName(displayName string) *SurveyBuilder {
	b.displayName = displayName
	return b
}

// Build creates the survey data structure matching the listing endpoint
func (b *SurveyBuilder) Build() map[string]interface{} {
	return map[string]interface{}{
		"id":             b.id,
		"name":           b.name,
		"displayName":    b.displayName,
		"platformFormId": b.platformFormID,
	}
}

// AddTo registers the built survey on the mock server
func (b *SurveyBuilder) AddTo(s *VibrentServer) {
	s.AddSurvey(b.id, b.name, b.displayName, b.platformFormID)
}

// ZipEntry is one file inside a test archive.
type ZipEntry struct {
	Name    string
	Content string
}

// BuildZip returns an in-memory zip archive containing the given entries.
func BuildZip(t *testing.T, entries ...ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", e.Name, err)
		}
		if _, err := f.Write([]byte(e.Content)); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finalize zip archive: %v", err)
	}
	return buf.Bytes()
}

// SurveyArchive returns the default export archive for a survey: one
// response-data JSON file shaped like real platform exports. It builds the
// archive without a testing.T so mock server handlers can call it.
func SurveyArchive(platformFormID int64) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(fmt.Sprintf("survey_%d.json", platformFormID))
	if err == nil {
		_, _ = f.Write([]byte(SurveyResponsePayload(platformFormID)))
	}
	_ = zw.Close()
	return buf.Bytes()
}

// SurveyResponsePayload returns realistic survey response JSON for the given
// platform form id.
func SurveyResponsePayload(platformFormID int64) string {
	return fmt.Sprintf(`{
  "formId": %d,
  "formVersion": 3,
  "responses": [
    {
      "participantId": "PT-100042",
      "submittedOn": "2026-01-14T09:22:31Z",
      "answers": [
        {"questionId": "Q1", "value": "YES"},
        {"questionId": "Q2", "value": "4"},
        {"questionId": "Q3", "value": "twice weekly"}
      ]
    },
    {
      "participantId": "PT-100117",
      "submittedOn": "2026-01-15T16:05:09Z",
      "answers": [
        {"questionId": "Q1", "value": "NO"},
        {"questionId": "Q2", "value": "2"}
      ]
    }
  ]
}`, platformFormID)
}
