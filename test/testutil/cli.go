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
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	binaryOnce sync.Once
	binaryPath string
	buildErr   error
)

// BuildBinary builds the survey-relay binary once per test run
func BuildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		// Create a persistent temp directory, not tied to test cleanup
		tmpDir, err := os.MkdirTemp("", "survey-relay-test")
		if err != nil {
			buildErr = err
			return
		}
		binaryPath = filepath.Join(tmpDir, "survey-relay")

		// Find project root by looking for go.mod
		projectRoot, err := findProjectRoot()
		if err != nil {
			buildErr = err
			return
		}

		cmd := exec.Command("go", "build", "-o", binaryPath, filepath.Join(projectRoot, "cmd", "survey-relay"))
		if output, err := cmd.CombinedOutput(); err != nil {
			buildErr = err
			t.Logf("Build output: %s", output)
		}
	})

	if buildErr != nil {
		t.Fatalf("Failed to build binary: %v", buildErr)
	}

	return binaryPath
}

// CLIResult contains the result of running a CLI command
type CLIResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// RunCLI executes the survey-relay binary with the given arguments
func RunCLI(t *testing.T, args []string, env map[string]string) CLIResult {
	t.Helper()

	binary := BuildBinary(t)

	cmd := exec.Command(binary, args...)

	// Set up environment
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}

	return CLIResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}
}

// AssertCLISuccess checks that the CLI command succeeded
func AssertCLISuccess(t *testing.T, result CLIResult) {
	t.Helper()

	if result.Err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", result.Err, result.Stderr)
	}
}

// AssertCLIError checks that the CLI command failed with expected error
func AssertCLIError(t *testing.T, result CLIResult, expectedError string) {
	t.Helper()

	if result.Err == nil {
		t.Fatal("Expected command to fail, but it succeeded")
	}

	if expectedError != "" && !bytes.Contains([]byte(result.Stderr), []byte(expectedError)) {
		t.Errorf("Expected error containing %q, got: %s", expectedError, result.Stderr)
	}
}

// AssertExitCode checks the command exit code
func AssertExitCode(t *testing.T, result CLIResult, expected int) {
	t.Helper()

	if result.ExitCode != expected {
		t.Errorf("Expected exit code %d, got %d\nStderr: %s", expected, result.ExitCode, result.Stderr)
	}
}

// WriteServerConfig writes a config file pointing at the mock server and
// returns its path. Polling is tightened so runs finish quickly.
func WriteServerConfig(t *testing.T, dir string, server *VibrentServer, outputBase string) string {
	t.Helper()

	content := fmt.Sprintf(`environment:
  default: test
  environments:
    test:
      base_url: %s
      token_url: %s/oauth/token

export:
  monitoring:
    polling_interval: 1
    max_wait_time: 30

output:
  base_directory: %s

logging:
  level: error
`, server.URL, server.URL, outputBase)

	path := filepath.Join(dir, "survey-relay.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	return path
}

// RunExportWithServer runs the export command against a mock server and
// returns the result
func RunExportWithServer(t *testing.T, server *VibrentServer, outputBase string, args ...string) CLIResult {
	t.Helper()

	configPath := WriteServerConfig(t, CreateTempDir(t, "survey-relay-config"), server, outputBase)

	// Build full args
	fullArgs := []string{"export", "--config", configPath}
	fullArgs = append(fullArgs, args...)

	// Set up environment with test credentials
	env := map[string]string{
		"VIBRENT_CLIENT_ID":     server.ClientID,
		"VIBRENT_CLIENT_SECRET": server.ClientSecret,
	}

	return RunCLI(t, fullArgs, env)
}

// findProjectRoot finds the project root by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
