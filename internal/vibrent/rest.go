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

package vibrent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/survey-relay/internal/apierror"
	"github.com/sirseerhq/survey-relay/internal/config"
	relayerrors "github.com/sirseerhq/survey-relay/internal/errors"
	"github.com/sirseerhq/survey-relay/pkg/version"
)

// Vibrent Health external API endpoints. Path parameters use resty's
// {placeholder} syntax.
const (
	surveysEndpoint        = "/api/ext/forms"
	exportRequestEndpoint  = "/api/ext/export/survey/{surveyId}/request"
	exportStatusEndpoint   = "/api/ext/export/status/{exportId}"
	exportDownloadEndpoint = "/api/ext/export/download/{exportId}"
)

// maxErrorBody caps how much of an error response body is quoted in errors.
const maxErrorBody = 512

// RESTClient implements the Client interface against the Vibrent Health
// external REST API. Every request carries a bearer token obtained from the
// TokenSource, so token refresh is transparent to callers.
type RESTClient struct {
	http      *resty.Client
	tokens    TokenSource
	inspector apierror.Inspector
	log       *logrus.Entry
}

// NewRESTClient creates a client for the given environment target. The
// client is configured with:
//   - Bearer authentication via the provided token source
//   - Request timeout from the api configuration section
//   - User-Agent header for API compliance
//   - Optimized connection pooling for API performance
func NewRESTClient(target config.EnvironmentTarget, apiCfg config.APIConfig, tokens TokenSource, log *logrus.Entry) *RESTClient {
	// Create optimized transport with connection pooling
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	httpClient := resty.New().
		SetTransport(transport).
		SetBaseURL(strings.TrimRight(target.BaseURL, "/")).
		SetTimeout(time.Duration(apiCfg.TimeoutSeconds) * time.Second).
		SetHeader("User-Agent", fmt.Sprintf("survey-relay/%s", version.Version))

	return &RESTClient{
		http:      httpClient,
		tokens:    tokens,
		inspector: apierror.NewInspector(),
		log:       log,
	}
}

// ListSurveys retrieves every survey form visible to the authenticated
// client. Each entry is decoded individually: entries that are malformed or
// lack a platform form id are logged and skipped so one bad record cannot
// sink the whole listing.
func (c *RESTClient) ListSurveys(ctx context.Context) ([]Survey, error) {
	c.log.Info("Fetching surveys")

	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(surveysEndpoint)
	if err != nil {
		return nil, c.mapError(fmt.Errorf("failed to list surveys: %w", err))
	}
	if resp.IsError() {
		return nil, c.statusError("failed to list surveys", resp)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode survey list: %v: %w", err, relayerrors.ErrAPIRequest)
	}

	surveys := make([]Survey, 0, len(entries))
	for i, entry := range entries {
		var survey Survey
		if err := json.Unmarshal(entry, &survey); err != nil {
			c.log.WithFields(logrus.Fields{"index": i, "error": err}).
				Warn("Skipping survey entry that failed to decode")
			continue
		}
		if survey.PlatformFormID == 0 {
			c.log.WithField("index", i).
				Warn("Skipping survey entry without a platform form id")
			continue
		}
		surveys = append(surveys, survey)
	}

	c.log.WithField("count", len(surveys)).Info("Fetched surveys")
	return surveys, nil
}

// RequestExport submits an export job for the survey identified by its
// platform form id and returns the export id assigned by the platform.
func (c *RESTClient) RequestExport(ctx context.Context, surveyID int64, exportReq ExportRequest) (string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return "", err
	}

	var result struct {
		ExportID string `json:"exportId"`
	}
	resp, err := req.
		SetPathParam("surveyId", strconv.FormatInt(surveyID, 10)).
		SetHeader("Content-Type", "application/json").
		SetBody(exportReq).
		SetResult(&result).
		Post(exportRequestEndpoint)
	if err != nil {
		return "", c.mapError(fmt.Errorf("failed to request export for survey %d: %w", surveyID, err))
	}
	if resp.IsError() {
		return "", c.statusError(fmt.Sprintf("failed to request export for survey %d", surveyID), resp)
	}

	if result.ExportID == "" {
		return "", fmt.Errorf("export response for survey %d missing exportId: %w",
			surveyID, relayerrors.ErrAPIRequest)
	}
	return result.ExportID, nil
}

// GetExportStatus retrieves the current status of an export job.
func (c *RESTClient) GetExportStatus(ctx context.Context, exportID string) (*ExportStatus, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var status ExportStatus
	resp, err := req.
		SetPathParam("exportId", exportID).
		SetResult(&status).
		Get(exportStatusEndpoint)
	if err != nil {
		return nil, c.mapError(fmt.Errorf("failed to query status for export %s: %w", exportID, err))
	}
	if resp.IsError() {
		return nil, c.statusError(fmt.Sprintf("failed to query status for export %s", exportID), resp)
	}

	if status.ExportID == "" {
		status.ExportID = exportID
	}
	return &status, nil
}

// DownloadExport streams the export's archive into destDir. The file name
// comes from the Content-Disposition header, prefixed with the export id;
// when the header is absent the name falls back to export_<exportId>.zip.
func (c *RESTClient) DownloadExport(ctx context.Context, exportID, destDir string) (string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return "", err
	}

	resp, err := req.
		SetPathParam("exportId", exportID).
		SetDoNotParseResponse(true).
		Get(exportDownloadEndpoint)
	if err != nil {
		return "", c.mapError(fmt.Errorf("failed to download export %s: %w", exportID, err))
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		payload, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
		err := fmt.Errorf("failed to download export %s: status %d: %s",
			exportID, resp.StatusCode(), strings.TrimSpace(string(payload)))
		return "", c.mapError(err)
	}

	filename := downloadFilename(exportID, resp.Header().Get("Content-Disposition"))
	path := filepath.Join(destDir, filename)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create download file %s: %w", path, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return "", fmt.Errorf("failed to write download file %s: %w", path, err)
	}
	return path, nil
}

// downloadFilename derives the local file name for a downloaded archive.
// A disposition header's filename is prefixed with the export id; it is
// reduced to its base name so header content can never escape destDir.
func downloadFilename(exportID, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return exportID + "_" + filepath.Base(name)
			}
		}
	}
	return fmt.Sprintf("export_%s.zip", exportID)
}

// request builds a resty request carrying a fresh bearer token.
func (c *RESTClient) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return c.http.R().SetContext(ctx).SetAuthToken(token), nil
}

// statusError converts a non-2xx response into a classified error carrying
// the status code and a bounded slice of the response body.
func (c *RESTClient) statusError(op string, resp *resty.Response) error {
	body := strings.TrimSpace(string(resp.Body()))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return c.mapError(fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), body))
}

// mapError maps API errors to our domain errors with actionable messages
func (c *RESTClient) mapError(err error) error {
	if err == nil {
		return nil
	}

	// Use the inspector to classify errors
	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("platform rate limit exceeded. Please wait before retrying: %w: %v",
			relayerrors.ErrAPIRequest, err)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("platform rejected the request credentials. Check VIBRENT_CLIENT_ID and VIBRENT_CLIENT_SECRET: %w: %v",
			relayerrors.ErrAuthFailed, err)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("%w: %v", relayerrors.ErrExportNotFound, err)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to the platform API. Please check your connection and try again: %w: %v",
			relayerrors.ErrNetworkFailure, err)
	}

	// Generic error
	return fmt.Errorf("%w: %v", relayerrors.ErrAPIRequest, err)
}
