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

// Package testutil provides common test helpers for survey-relay
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// VibrentServer simulates the platform API surface survey-relay talks to:
// the OAuth token endpoint, survey listing, export request, export status,
// and export download. Tests script per-survey behavior before pointing a
// client at Server.URL.
//
// Export ids are allocated as "exp-<platformFormId>". Status sequences are
// scripted per survey; each status request consumes one step and the final
// step repeats once the sequence is exhausted. Surveys without a script
// complete on the first status check.
type VibrentServer struct {
	*httptest.Server

	// Credentials the token endpoint accepts.
	ClientID     string
	ClientSecret string
	// Token handed out and required on every API call.
	AccessToken string

	tokenRequests int32

	mu             sync.Mutex
	surveys        []map[string]interface{}
	statusPlans    map[int64][]string
	failureReasons map[int64]string
	archives       map[int64][]byte
	requestFail    map[int64]int
	statusFail     map[int64]int
	downloadFail   map[int64]int
	requestBodies  map[int64]map[string]interface{}
	noDisposition  bool
	jobs           map[string]*exportJob
}

type exportJob struct {
	surveyID int64
	plan     []string
	cursor   int
}

// NewVibrentServer starts a mock platform server. It is closed automatically
// when the test finishes.
func NewVibrentServer(t *testing.T) *VibrentServer {
	t.Helper()

	s := &VibrentServer{
		ClientID:       "test-client",
		ClientSecret:   "test-secret",
		AccessToken:    "test-token",
		statusPlans:    make(map[int64][]string),
		failureReasons: make(map[int64]string),
		archives:       make(map[int64][]byte),
		requestFail:    make(map[int64]int),
		statusFail:     make(map[int64]int),
		downloadFail:   make(map[int64]int),
		requestBodies:  make(map[int64]map[string]interface{}),
		jobs:           make(map[string]*exportJob),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", s.handleToken)
	mux.HandleFunc("GET /api/ext/forms", s.handleForms)
	mux.HandleFunc("POST /api/ext/export/survey/{surveyId}/request", s.handleExportRequest)
	mux.HandleFunc("GET /api/ext/export/status/{exportId}", s.handleExportStatus)
	mux.HandleFunc("GET /api/ext/export/download/{exportId}", s.handleExportDownload)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// AddSurvey registers one survey in the listing.
func (s *VibrentServer) AddSurvey(id int64, name, displayName string, platformFormID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surveys = append(s.surveys, map[string]interface{}{
		"id":             id,
		"name":           name,
		"displayName":    displayName,
		"platformFormId": platformFormID,
	})
}

// AddDefaultSurveys registers the standard three-survey catalog used by most
// tests: platform form ids 9001, 9002, 9003.
func (s *VibrentServer) AddDefaultSurveys() {
	s.AddSurvey(101, "baseline_health", "Baseline Health Survey", 9001)
	s.AddSurvey(102, "lifestyle_followup", "Lifestyle Follow-up", 9002)
	s.AddSurvey(103, "medications", "Medications Survey", 9003)
}

// SetStatusPlan scripts the sequence of statuses the survey's export walks
// through, one per status request.
func (s *VibrentServer) SetStatusPlan(platformFormID int64, statuses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusPlans[platformFormID] = statuses
}

// SetFailureReason sets the failureReason reported when the survey's export
// reaches FAILED.
func (s *VibrentServer) SetFailureReason(platformFormID int64, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureReasons[platformFormID] = reason
}

// SetArchive sets the zip bytes served when the survey's export is
// downloaded. Without it a small valid archive is generated.
func (s *VibrentServer) SetArchive(platformFormID int64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[platformFormID] = data
}

// FailExportRequest makes the export request for the survey fail with the
// given HTTP status code.
func (s *VibrentServer) FailExportRequest(platformFormID int64, statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestFail[platformFormID] = statusCode
}

// FailStatus makes status checks for the survey's export fail with the given
// HTTP status code.
func (s *VibrentServer) FailStatus(platformFormID int64, statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusFail[platformFormID] = statusCode
}

// FailDownload makes the download for the survey's export fail with the
// given HTTP status code.
func (s *VibrentServer) FailDownload(platformFormID int64, statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadFail[platformFormID] = statusCode
}

// DisableDisposition drops the Content-Disposition header from downloads so
// clients fall back to their default archive naming.
func (s *VibrentServer) DisableDisposition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noDisposition = true
}

// TokenRequestCount reports how many times the token endpoint was hit.
func (s *VibrentServer) TokenRequestCount() int32 {
	return atomic.LoadInt32(&s.tokenRequests)
}

// ExportRequestBody returns the JSON body of the export request received for
// the survey, or nil if none arrived.
func (s *VibrentServer) ExportRequestBody(platformFormID int64) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestBodies[platformFormID]
}

func (s *VibrentServer) handleToken(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.tokenRequests, 1)

	id, secret, ok := r.BasicAuth()
	if !ok || id != s.ClientID || secret != s.ClientSecret {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":%q,"token_type":"bearer","expires_in":3600}`, s.AccessToken)
}

// authorized rejects API calls without the bearer token handed out by the
// token endpoint.
func (s *VibrentServer) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+s.AccessToken {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"unauthorized"}`)
		return false
	}
	return true
}

func (s *VibrentServer) handleForms(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	s.mu.Lock()
	surveys := s.surveys
	s.mu.Unlock()

	if surveys == nil {
		surveys = []map[string]interface{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(surveys)
}

func (s *VibrentServer) handleExportRequest(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	surveyID, err := strconv.ParseInt(r.PathValue("surveyId"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requestBodies[surveyID] = body

	if code, ok := s.requestFail[surveyID]; ok {
		w.WriteHeader(code)
		fmt.Fprint(w, `{"message":"export request rejected"}`)
		return
	}

	plan := s.statusPlans[surveyID]
	if len(plan) == 0 {
		plan = []string{"COMPLETED"}
	}

	exportID := fmt.Sprintf("exp-%d", surveyID)
	s.jobs[exportID] = &exportJob{surveyID: surveyID, plan: plan}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"exportId":%q}`, exportID)
}

func (s *VibrentServer) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	exportID := r.PathValue("exportId")

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[exportID]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"message":"No export with id %s"}`, exportID)
		return
	}
	if code, failed := s.statusFail[job.surveyID]; failed {
		w.WriteHeader(code)
		fmt.Fprint(w, `{"message":"status unavailable"}`)
		return
	}

	status := job.plan[job.cursor]
	if job.cursor < len(job.plan)-1 {
		job.cursor++
	}

	resp := map[string]interface{}{
		"exportId": exportID,
		"status":   status,
	}
	switch status {
	case "COMPLETED":
		resp["fileName"] = fmt.Sprintf("survey_%d_data.zip", job.surveyID)
		resp["completedOn"] = time.Now().UTC().Format(time.RFC3339)
		resp["downloadEndpoint"] = "/api/ext/export/download/" + exportID
	case "FAILED":
		reason := s.failureReasons[job.surveyID]
		if reason == "" {
			reason = "export processing failed"
		}
		resp["failureReason"] = reason
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *VibrentServer) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	exportID := r.PathValue("exportId")

	s.mu.Lock()
	job, ok := s.jobs[exportID]
	if !ok {
		s.mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"message":"No export with id %s"}`, exportID)
		return
	}
	if code, failed := s.downloadFail[job.surveyID]; failed {
		s.mu.Unlock()
		w.WriteHeader(code)
		return
	}

	data := s.archives[job.surveyID]
	noDisposition := s.noDisposition
	surveyID := job.surveyID
	s.mu.Unlock()

	if data == nil {
		data = SurveyArchive(surveyID)
	}

	if !noDisposition {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="survey_%d_data.zip"`, surveyID))
	}
	w.Header().Set("Content-Type", "application/zip")
	_, _ = w.Write(data)
}
