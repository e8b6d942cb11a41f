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
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/survey-relay/internal/config"
	relayerrors "github.com/sirseerhq/survey-relay/internal/errors"
	"github.com/sirseerhq/survey-relay/internal/export"
	"github.com/sirseerhq/survey-relay/internal/logging"
	"github.com/sirseerhq/survey-relay/internal/vibrent"
)

// exportCmd represents the export command
func newExportCommand() *cobra.Command {
	var (
		configPath  string
		environment string
		outputDir   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run a full survey export session",
		Long: `Run a full survey export session against the configured environment.

The session enumerates every survey visible to the API client, applies the
configured filters, requests an export per survey, polls until the platform
finishes, downloads the resulting zip archives, extracts the JSON files,
and writes a run report into the session's output directory.

Authentication uses OAuth2 client credentials:
  - Set VIBRENT_CLIENT_ID and VIBRENT_CLIENT_SECRET in the environment
  - Or place them in a .env file in the working directory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// An export session can legitimately run for hours, so there is
			// no timeout here; Ctrl-C cancels the run cleanly instead.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runExport(ctx, configPath, environment, outputDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file (default: standard locations)")
	cmd.Flags().StringVar(&environment, "environment", "", "Named environment to export from (overrides config default)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Base directory for export output (overrides config)")

	return cmd
}

// runExport executes the export command
func runExport(ctx context.Context, configPath, environment, outputDir string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// Flags override everything loaded so far.
	if environment != "" {
		cfg.Environment.Default = environment
	}
	if outputDir != "" {
		cfg.Output.BaseDirectory = outputDir
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.Setup(cfg.Logging)
	if err != nil {
		return err
	}

	target, err := cfg.Target("")
	if err != nil {
		return err
	}

	tokens, err := vibrent.NewTokenManager(target, cfg.Auth, log)
	if err != nil {
		return err
	}
	client := vibrent.NewRESTClient(target, cfg.API, tokens, log)

	exporter, err := export.New(client, cfg, log)
	if err != nil {
		return err
	}
	return exporter.Run(ctx)
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	// Check for specific error types
	if errors.Is(err, relayerrors.ErrMissingCredentials) ||
		errors.Is(err, relayerrors.ErrAuthFailed) ||
		errors.Is(err, relayerrors.ErrExportNotFound) {
		return 2 // Authentication/authorization errors
	}

	if errors.Is(err, relayerrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error
}
