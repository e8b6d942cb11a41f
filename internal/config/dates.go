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

import (
	"fmt"
	"time"

	relayerrors "github.com/sirseerhq/survey-relay/internal/errors"
)

// millisPerDay is the length of one day expressed in epoch milliseconds.
const millisPerDay = 24 * 60 * 60 * 1000

// dateLayouts are the accepted formats for absolute date configuration.
// Date-only values are interpreted at midnight local time; zoneless
// timestamps in local time; RFC3339 timestamps keep their own zone.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// DateRange is a half-open submission window in epoch milliseconds, the
// unit the platform's export API expects.
type DateRange struct {
	StartMillis int64
	EndMillis   int64
}

// ResolveDateRange computes the export submission window. When both
// absolute dates are configured they define the window; otherwise the
// window ends at now and reaches DefaultDaysBack days into the past.
// A single absolute date is not enough to pin a window and falls back to
// the relative behavior.
func (c *Config) ResolveDateRange(now time.Time) (DateRange, error) {
	dr := c.Export.DateRange

	if dr.AbsoluteStartDate != "" && dr.AbsoluteEndDate != "" {
		start, err := parseLocalDate(dr.AbsoluteStartDate)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid absolute_start_date %q: %w",
				dr.AbsoluteStartDate, relayerrors.ErrInvalidConfig)
		}
		end, err := parseLocalDate(dr.AbsoluteEndDate)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid absolute_end_date %q: %w",
				dr.AbsoluteEndDate, relayerrors.ErrInvalidConfig)
		}
		return DateRange{
			StartMillis: start.UnixMilli(),
			EndMillis:   end.UnixMilli(),
		}, nil
	}

	daysBack := dr.DefaultDaysBack
	if daysBack <= 0 {
		daysBack = 30
	}
	endMillis := now.UnixMilli()
	return DateRange{
		StartMillis: endMillis - int64(daysBack)*millisPerDay,
		EndMillis:   endMillis,
	}, nil
}

// parseLocalDate parses an absolute date string in the process-local
// timezone, trying each accepted layout in order.
func parseLocalDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
