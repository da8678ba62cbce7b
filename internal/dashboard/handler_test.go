package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mikey/email-triage-dashboard/internal/adapters/session"
	"github.com/mikey/email-triage-dashboard/internal/core"
	"go.uber.org/zap"
)

type keywordSpam struct{}

func (keywordSpam) ClassifySpam(_ context.Context, text string) (bool, error) {
	return strings.Contains(text, "free"), nil
}

type fixedLabel string

func (f fixedLabel) Predict(_ context.Context, _ string) (string, error) {
	return string(f), nil
}

type keywordUrgency struct{}

func (keywordUrgency) Predict(_ context.Context, text string) (string, error) {
	if strings.Contains(text, "urgent") {
		return "high", nil
	}
	return "low", nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestHandler(t).Router()
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	logger := zap.NewNop()
	service := core.NewClassificationService(
		core.ClassifierSet{
			Name:     "stub",
			Spam:     keywordSpam{},
			Category: fixedLabel("work"),
			Urgency:  keywordUrgency{},
		},
		nil,
		session.NewMemoryStore(logger),
		logger,
		false,
		0,
	)
	h, err := NewHandler(service, logger, 1<<20, 5*time.Second)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func postJSON(t *testing.T, router http.Handler, subject, body string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(submitRequest{Subject: subject, Body: body})
	req := httptest.NewRequest(http.MethodPost, "/api/emails", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestCreateAndFetchEmail(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "Free prize", "Claim your FREE prize now")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created emailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Position != 0 || created.Email.Spam != core.LabelSpam || created.Email.ModelUsed != "stub" {
		t.Errorf("unexpected created email %+v", created)
	}
	if rec.Header().Get("Location") != "/api/emails/0" {
		t.Errorf("unexpected location %q", rec.Header().Get("Location"))
	}

	rec = get(router, "/api/emails/0")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var fetched emailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fetched.Email.Subject != "Free prize" || len(fetched.Tags) != 3 || fetched.Tags[0].Color != SpamColor {
		t.Errorf("unexpected fetched email %+v", fetched)
	}
}

func TestCreateEmailRejectsBlankFields(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "   ", "body")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), WarningIncomplete) {
		t.Errorf("expected warning in body, got %s", rec.Body.String())
	}

	rec = get(router, "/api/emails")
	var list listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("rejected submission was stored")
	}
}

func TestGetEmailNotFound(t *testing.T) {
	router := newTestRouter(t)
	if rec := get(router, "/api/emails/3"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestListEmailsFilters(t *testing.T) {
	router := newTestRouter(t)
	postJSON(t, router, "free stuff", "urgent free offer")
	postJSON(t, router, "Meeting", "see you tomorrow")
	postJSON(t, router, "Outage", "urgent fix needed")

	tests := []struct {
		query string
		want  []int
	}{
		{"", []int{0, 1, 2}},
		{"?spam=spam", []int{0}},
		{"?spam=Not+Spam+Only", []int{1, 2}},
		{"?urgency=high", []int{0, 2}},
		{"?spam=ham&urgency=high", []int{2}},
		{"?urgency=", []int{}},
	}

	for _, tt := range tests {
		rec := get(router, "/api/emails"+tt.query)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.query, rec.Code)
		}
		var list listResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode: %v", err)
		}
		got := positions(list.Emails)
		if len(got) != len(tt.want) {
			t.Errorf("%s: positions %v, want %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: positions %v, want %v", tt.query, got, tt.want)
				break
			}
		}
		if list.Total != 3 {
			t.Errorf("%s: total %d, want 3", tt.query, list.Total)
		}
	}

	if rec := get(router, "/api/emails?spam=bogus"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown spam filter, got %d", rec.Code)
	}
}

func TestFormSubmitRedirectsWithFilters(t *testing.T) {
	router := newTestRouter(t)

	form := url.Values{
		"subject":  {"Hello"},
		"body":     {"Nice to meet you"},
		"spam":     {"Spam Only"},
		"filtered": {"1"},
		"urgency":  {"low"},
	}
	req := httptest.NewRequest(http.MethodPost, "/emails", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Path != "/" || loc.Query().Get("spam") != "Spam Only" || loc.Query().Get("urgency") != "low" {
		t.Errorf("filters not preserved in %q", loc.String())
	}
}

func TestFormSubmitShowsWarning(t *testing.T) {
	router := newTestRouter(t)

	form := url.Values{"subject": {"Only subject"}, "body": {""}}
	req := httptest.NewRequest(http.MethodPost, "/emails", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), WarningIncomplete) {
		t.Error("warning missing from page")
	}
	if strings.Contains(rec.Body.String(), "Only subject") {
		t.Error("form should be cleared after submit")
	}
}

func TestDashboardPage(t *testing.T) {
	router := newTestRouter(t)

	rec := get(router, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, PageTitle) {
		t.Error("title missing")
	}
	if strings.Contains(page, "Email List") {
		t.Error("empty session should not render the email list")
	}

	postJSON(t, router, "free stuff", "free offer")
	postJSON(t, router, "Meeting", "<b>see you</b> tomorrow")

	page = get(router, "/?selected=1").Body.String()
	if !strings.Contains(page, "Email Details") {
		t.Error("detail panel missing for selected record")
	}
	if !strings.Contains(page, "&lt;b&gt;see you&lt;/b&gt;") {
		t.Error("body should be HTML escaped")
	}
	if !strings.Contains(page, NotSpamColor) || !strings.Contains(page, "#3498db") {
		t.Error("detail tags missing colors")
	}

	// The selected record is hidden by the filter, so no detail panel
	page = get(router, "/?spam=spam&selected=1").Body.String()
	if strings.Contains(page, "Email Details") {
		t.Error("filtered out record should not be selectable")
	}

	page = get(router, "/?filtered=1").Body.String()
	if !strings.Contains(page, InfoNoMatches) {
		t.Error("expected no-match info with empty urgency selection")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := get(router, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"model":"stub"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	get(router, "/healthz")
	rec := get(router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_request_duration_seconds") {
		t.Error("expected HTTP duration metric in exposition")
	}
}
