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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/survey-relay/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "survey-relay",
		Short: "Export survey response data from the Vibrent Health platform",
		Long: `Survey Relay is a command-line tool for bulk-exporting survey response
data from the Vibrent Health platform. It enumerates the surveys visible to
the configured API client, requests an export for each one, waits for the
platform to finish, downloads the archives, and unpacks the JSON files into
a timestamped output directory together with a run report.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newSurveysCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}
