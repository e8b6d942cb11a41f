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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/survey-relay/internal/config"
	"github.com/sirseerhq/survey-relay/internal/logging"
	"github.com/sirseerhq/survey-relay/internal/output"
	"github.com/sirseerhq/survey-relay/internal/vibrent"
)

// surveysCmd represents the surveys command
func newSurveysCommand() *cobra.Command {
	var (
		configPath  string
		environment string
		outputFile  string
	)

	cmd := &cobra.Command{
		Use:   "surveys",
		Short: "List the surveys visible to the configured API client",
		Long: `List the surveys visible to the configured API client in NDJSON format.

Each line is one survey record as returned by the platform. Use this to
discover platform form ids for the survey_ids / exclude_survey_ids filters
before running an export.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			return runSurveys(ctx, configPath, environment, outputFile)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file (default: standard locations)")
	cmd.Flags().StringVar(&environment, "environment", "", "Named environment to query (overrides config default)")
	cmd.Flags().StringVar(&outputFile, "output", "", "Output file path (default: stdout)")

	return cmd
}

// runSurveys executes the surveys command
func runSurveys(ctx context.Context, configPath, environment, outputFile string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if environment != "" {
		cfg.Environment.Default = environment
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.Setup(cfg.Logging)
	if err != nil {
		return err
	}

	// Create output writer
	var writer output.SurveyWriter
	if outputFile == "" {
		writer = output.NewWriter(os.Stdout)
	} else {
		fileWriter, fErr := output.NewFileWriter(outputFile)
		if fErr != nil {
			return fmt.Errorf("failed to create output file: %w", fErr)
		}
		writer = fileWriter
	}
	defer writer.Close()

	target, err := cfg.Target("")
	if err != nil {
		return err
	}

	tokens, err := vibrent.NewTokenManager(target, cfg.Auth, log)
	if err != nil {
		return err
	}
	client := vibrent.NewRESTClient(target, cfg.API, tokens, log)

	surveys, err := client.ListSurveys(ctx)
	if err != nil {
		return err
	}

	for _, survey := range surveys {
		if err := writer.Write(survey); err != nil {
			return fmt.Errorf("failed to write survey: %w", err)
		}
	}

	if len(surveys) > 0 {
		fmt.Fprintf(os.Stderr, "Fetched %d surveys\n", len(surveys))
	} else {
		fmt.Fprintln(os.Stderr, "No surveys found")
	}

	return nil
}
