package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newTestApp(c Completer) *AppConfig {
	return &AppConfig{
		Completer:         c,
		GenerationTimeout: 2 * time.Second,
		AllowedOrigin:     "*",
		Logger:            quietLogger(),
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCustomizeSuccess(t *testing.T) {
	c := &fakeCompleter{outputs: map[DocumentKind]string{
		DocumentResume:      "**Jane Doe**\n---\nGo developer",
		DocumentCoverLetter: "Dear Hiring Manager,",
	}}
	h := newTestApp(c).Router()

	rec := doJSON(t, h, http.MethodPost, "/api/customize", janeRequest)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"tailoredResume":"**Jane Doe**\n---\nGo developer","coverLetter":"Dear Hiring Manager,"}`, rec.Body.String())

	require.Contains(t, c.messages[DocumentResume], "\"\"\"\n"+janeRequest.CurrentResume+"\n\"\"\"")
	require.Contains(t, c.messages[DocumentCoverLetter], "\"\"\"\n"+janeRequest.JobDescription+"\n\"\"\"")
}

func TestCustomizeMissingFields(t *testing.T) {
	bodies := []any{
		map[string]string{},
		map[string]string{"currentResume": "resume"},
		map[string]string{"jobDescription": "job"},
		map[string]string{"currentResume": "", "jobDescription": "job"},
		map[string]string{"currentResume": "resume", "jobDescription": "   "},
	}
	for _, body := range bodies {
		c := &fakeCompleter{}
		rec := doJSON(t, newTestApp(c).Router(), http.MethodPost, "/api/customize", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"Missing currentResume or jobDescription"}`, rec.Body.String())
		require.Zero(t, c.callCount())
	}
}

func TestCustomizeInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/customize", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	newTestApp(&fakeCompleter{}).Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomizeUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		c      *fakeCompleter
		status int
	}{
		{
			name: "provider rejection",
			c: &fakeCompleter{errs: map[DocumentKind]error{
				DocumentResume: &ProviderError{Provider: "gemini", Status: 401, Err: errors.New("API key not valid")},
			}},
			status: http.StatusBadGateway,
		},
		{
			name:   "timeout",
			c:      &fakeCompleter{block: true},
			status: http.StatusGatewayTimeout,
		},
		{
			name: "other",
			c: &fakeCompleter{errs: map[DocumentKind]error{
				DocumentCoverLetter: errors.New("boom"),
			}},
			status: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.c)
			app.GenerationTimeout = 50 * time.Millisecond
			rec := doJSON(t, app.Router(), http.MethodPost, "/api/customize", janeRequest)
			require.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, "Failed to process request", body.Error)
			require.NotEmpty(t, body.Details)
		})
	}
}

func TestExportPDF(t *testing.T) {
	h := newTestApp(&fakeCompleter{}).Router()
	rec := doJSON(t, h, http.MethodPost, "/api/export/pdf", ExportRequest{
		Text:     "**Jane Doe**\n---\nGo developer",
		Document: DocumentResume,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="tailored_resume.pdf"`, rec.Header().Get("Content-Disposition"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestExportTXTFromForm(t *testing.T) {
	form := url.Values{
		"text":     {"**Dear** team,\n---\nThanks"},
		"document": {string(DocumentCoverLetter)},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/export/txt", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	newTestApp(&fakeCompleter{}).Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `attachment; filename="cover_letter.txt"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "Dear team,\n"+strings.Repeat("-", 60)+"\nThanks", rec.Body.String())
}

func TestExportRejectsEmptyTextAndUnknownFormat(t *testing.T) {
	h := newTestApp(&fakeCompleter{}).Router()

	rec := doJSON(t, h, http.MethodPost, "/api/export/pdf", ExportRequest{Text: " \n "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEqual(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = doJSON(t, h, http.MethodPost, "/api/export/docx", ExportRequest{Text: "hello"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resume/extract", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestExtractResume(t *testing.T) {
	h := newTestApp(&fakeCompleter{}).Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartUpload(t, "resume.txt", []byte("Jane Doe\nGo developer\n")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"text":"Jane Doe\nGo developer"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, multipartUpload(t, "photo.png", []byte{0x89, 'P', 'N', 'G'}))
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/resume/extract", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTailoringEndpointsNeedBackends(t *testing.T) {
	h := newTestApp(&fakeCompleter{}).Router()

	rec := doJSON(t, h, http.MethodPost, "/api/tailorings", janeRequest)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/tailorings/9b2f6f0e-3f55-4a8e-9f57-3c1d2d5c8a11", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/tailorings/9b2f6f0e-3f55-4a8e-9f57-3c1d2d5c8a11/tailored_resume.pdf", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORS(t *testing.T) {
	app := newTestApp(&fakeCompleter{})
	app.AllowedOrigin = "http://localhost:3000"
	h := app.Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/customize", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	rec = doJSON(t, h, http.MethodPost, "/api/customize", map[string]string{})
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogIncludesPreflight(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	app := newTestApp(&fakeCompleter{})
	app.Logger = logger

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/customize", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	require.Equal(t, "request", entry.Message)
	require.Equal(t, http.MethodOptions, entry.Data["method"])
	require.Equal(t, "/api/customize", entry.Data["path"])
	require.Equal(t, http.StatusNoContent, entry.Data["status"])
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestApp(&fakeCompleter{}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
