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

package output

import "github.com/sirseerhq/survey-relay/internal/vibrent"

// SurveyWriter is the sink for survey listings. The abstraction lets the CLI
// swap the NDJSON writer for other sinks without changing the listing flow.
type SurveyWriter interface {
	// Write emits a single survey record.
	// The record should be flushed immediately to avoid memory accumulation.
	Write(survey vibrent.Survey) error

	// Close closes the underlying writer and releases any resources.
	// This should be called when all writing is complete.
	Close() error
}
