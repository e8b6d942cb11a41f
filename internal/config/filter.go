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

package config

// ShouldIncludeSurvey decides whether a survey participates in the export
// run. A non-empty inclusion list makes membership the only criterion and
// overrides the exclusion list entirely. Otherwise a survey on the
// exclusion list is skipped, and everything else is included.
//
// The MaxSurveys cap is deliberately not applied here: the caller truncates
// the filtered list so the cap operates on surveys that actually passed the
// filter, preserving their original order.
func (c *Config) ShouldIncludeSurvey(surveyID int64) bool {
	request := c.Export.Request

	if len(request.SurveyIDs) > 0 {
		return containsID(request.SurveyIDs, surveyID)
	}

	if len(request.ExcludeSurveyIDs) > 0 && containsID(request.ExcludeSurveyIDs, surveyID) {
		return false
	}

	return true
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
