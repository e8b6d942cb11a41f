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

package integration

import (
	"net/http"
	"os"
	"testing"

	"github.com/sirseerhq/survey-relay/test/testutil"
)

// TestNetworkFailure_ConnectionRefused checks the exit code and message when
// the platform is unreachable.
func TestNetworkFailure_ConnectionRefused(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	srv := testutil.NewVibrentServer(t)
	srv.AddDefaultSurveys()

	outputBase := testutil.CreateTempDir(t, "survey-relay-output")
	configDir := testutil.CreateTempDir(t, "survey-relay-config")
	configPath := testutil.WriteServerConfig(t, configDir, srv, outputBase)

	// Kill the server so every connection is refused.
	srv.Close()

	result := testutil.RunCLI(t, []string{"export", "--config", configPath}, map[string]string{
		"VIBRENT_CLIENT_ID":     srv.ClientID,
		"VIBRENT_CLIENT_SECRET": srv.ClientSecret,
	})

	testutil.AssertCLIError(t, result, "network connection failed")
	testutil.AssertExitCode(t, result, 3)
}

// TestRateLimitedExportRequest checks that a 429 from the platform is
// surfaced with the rate limit message and does not sink the whole run.
func TestRateLimitedExportRequest(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	srv := testutil.NewVibrentServer(t)
	srv.AddDefaultSurveys()
	srv.FailExportRequest(9002, http.StatusTooManyRequests)

	_, outputBase, err := runPipeline(t, srv, nil)
	if err != nil {
		t.Fatalf("Export run failed: %v", err)
	}

	runDir := testutil.FindRunDir(t, outputBase)
	report := testutil.ReadReportFile(t, runDir)
	testutil.AssertReportCounts(t, report, 3, 2, 1)

	failures := reportFailures(t, report)
	if len(failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d: %v", len(failures), failures)
	}

	errText, _ := failures[0]["error"].(string)
	testutil.AssertContainsString(t, errText, "rate limit")
}
