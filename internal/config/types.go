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

// Package config types define the configuration structures used throughout
// survey-relay. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

// Config represents the complete configuration for survey-relay.
// It consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Auth        AuthConfig        `yaml:"auth"`
	API         APIConfig         `yaml:"api"`
	Export      ExportConfig      `yaml:"export"`
	Output      OutputConfig      `yaml:"output"`
	Metadata    MetadataConfig    `yaml:"metadata"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// EnvironmentConfig selects which platform deployment the client talks to.
// Each named environment carries its own API base URL and OAuth token URL,
// allowing the same configuration file to describe staging and production.
type EnvironmentConfig struct {
	Default      string                       `yaml:"default"`
	Environments map[string]EnvironmentTarget `yaml:"environments"`
}

// EnvironmentTarget contains the endpoints for one platform deployment.
type EnvironmentTarget struct {
	BaseURL  string `yaml:"base_url"`
	TokenURL string `yaml:"token_url"`
}

// AuthConfig controls token acquisition behavior. RefreshBuffer is the
// number of seconds before expiry at which a cached token is considered
// stale and refreshed.
type AuthConfig struct {
	TimeoutSeconds       int `yaml:"timeout"`
	RefreshBufferSeconds int `yaml:"refresh_buffer"`
}

// APIConfig contains settings for regular API calls.
type APIConfig struct {
	TimeoutSeconds int `yaml:"timeout"`
}

// ExportConfig groups everything that shapes an export run: the date
// window, the payload format, survey selection, and polling behavior.
type ExportConfig struct {
	DateRange  DateRangeConfig  `yaml:"date_range"`
	Format     string           `yaml:"format"`
	Request    RequestConfig    `yaml:"request"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// DateRangeConfig describes the submission window requested from the
// platform. When both absolute dates are set they take precedence over
// the relative DefaultDaysBack window.
type DateRangeConfig struct {
	DefaultDaysBack   int    `yaml:"default_days_back"`
	AbsoluteStartDate string `yaml:"absolute_start_date"`
	AbsoluteEndDate   string `yaml:"absolute_end_date"`
}

// RequestConfig controls which surveys are exported. A non-empty SurveyIDs
// list overrides ExcludeSurveyIDs entirely; MaxSurveys caps the filtered
// list and zero means no cap.
type RequestConfig struct {
	MaxSurveys       int     `yaml:"max_surveys"`
	SurveyIDs        []int64 `yaml:"survey_ids"`
	ExcludeSurveyIDs []int64 `yaml:"exclude_survey_ids"`
}

// MonitoringConfig controls the export status polling loop.
// MaxWaitSeconds of zero means wait indefinitely.
type MonitoringConfig struct {
	PollingIntervalSeconds int  `yaml:"polling_interval"`
	MaxWaitSeconds         int  `yaml:"max_wait_time"`
	ContinueOnFailure      bool `yaml:"continue_on_failure"`
}

// OutputConfig controls where downloaded archives and extracted files are
// written, and whether archives are expanded and removed afterwards.
type OutputConfig struct {
	BaseDirectory         string `yaml:"base_directory"`
	SurveyExportsDir      string `yaml:"survey_exports_dir"`
	ExtractJSON           bool   `yaml:"extract_json"`
	RemoveZipAfterExtract bool   `yaml:"remove_zip_after_extract"`
}

// MetadataConfig controls the run report written at the end of each export
// session.
type MetadataConfig struct {
	SaveMetadata         bool   `yaml:"save_metadata"`
	Filename             string `yaml:"filename"`
	IncludeSurveyDetails bool   `yaml:"include_survey_details"`
	IncludeExportStatus  bool   `yaml:"include_export_status"`
}

// LoggingConfig controls log output. An empty Directory keeps logging on
// the console only; setting it adds a rotating file under that directory.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Directory string `yaml:"directory"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases. Endpoints are intentionally empty: every deployment must
// declare its own environments, and Validate rejects a config without them.
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvironmentConfig{
			Default:      "staging",
			Environments: make(map[string]EnvironmentTarget),
		},
		Auth: AuthConfig{
			TimeoutSeconds:       30,
			RefreshBufferSeconds: 300,
		},
		API: APIConfig{
			TimeoutSeconds: 30,
		},
		Export: ExportConfig{
			DateRange: DateRangeConfig{
				DefaultDaysBack: 30,
			},
			Format: "JSON",
			Monitoring: MonitoringConfig{
				PollingIntervalSeconds: 10,
				MaxWaitSeconds:         0,
				ContinueOnFailure:      true,
			},
		},
		Output: OutputConfig{
			BaseDirectory:         "output",
			SurveyExportsDir:      "survey_exports",
			ExtractJSON:           true,
			RemoveZipAfterExtract: true,
		},
		Metadata: MetadataConfig{
			SaveMetadata:         true,
			Filename:             "export_metadata.json",
			IncludeSurveyDetails: true,
			IncludeExportStatus:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
