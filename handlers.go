package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/cvcustomizer/internal/database"
	"github.com/muhammadolammi/cvcustomizer/internal/layout"
	"github.com/sirupsen/logrus"
)

const (
	maxJSONBody   = 2 << 20
	maxUploadBody = 10 << 20
)

// Router returns the HTTP handler for the API and the form page.
func (appConfig *AppConfig) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", appConfig.handlePage)
	mux.HandleFunc("POST /{$}", appConfig.handlePageSubmit)
	mux.HandleFunc("POST /api/customize", appConfig.handleCustomize)
	mux.HandleFunc("POST /api/export/{format}", appConfig.handleExport)
	mux.HandleFunc("POST /api/resume/extract", appConfig.handleExtract)
	mux.HandleFunc("POST /api/tailorings", appConfig.handleCreateTailoring)
	mux.HandleFunc("GET /api/tailorings/{id}", appConfig.handleGetTailoring)
	mux.HandleFunc("GET /api/tailorings/{id}/{file}", appConfig.handleTailoringPDF)
	return appConfig.withRequestLog(appConfig.withCORS(mux))
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondWithError(w http.ResponseWriter, status int, msg, details string) {
	respondWithJSON(w, status, ErrorResponse{Error: msg, Details: details})
}

func (appConfig *AppConfig) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			origin := appConfig.AllowedOrigin
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (appConfig *AppConfig) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appConfig.Logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}

func (appConfig *AppConfig) tailor(ctx context.Context, req TailorRequest) (TailorResult, error) {
	if appConfig.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, appConfig.GenerationTimeout)
		defer cancel()
	}
	return Tailor(ctx, appConfig.Completer, req, appConfig.Logger)
}

func (appConfig *AppConfig) handleCustomize(w http.ResponseWriter, r *http.Request) {
	var req TailorRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	log := appConfig.Logger.WithFields(logrus.Fields{
		"resume_length": len(req.CurrentResume),
		"job_length":    len(req.JobDescription),
	})
	if err := req.Validate(); err != nil {
		log.Warn("missing currentResume or jobDescription")
		respondWithError(w, http.StatusBadRequest, "Missing currentResume or jobDescription", "")
		return
	}

	res, err := appConfig.tailor(r.Context(), req)
	if err != nil {
		log.WithError(err).Error("customize failed")
		respondWithError(w, statusForError(err), "Failed to process request", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func decodeExportRequest(r *http.Request) (ExportRequest, error) {
	var req ExportRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Text = r.PostFormValue("text")
	req.Document = DocumentKind(r.PostFormValue("document"))
	return req, nil
}

func (appConfig *AppConfig) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	req, err := decodeExportRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	format := r.PathValue("format")
	file, err := renderExport(format, req.Document, req.Text)
	switch {
	case errors.Is(err, layout.ErrEmptyText):
		respondWithError(w, http.StatusBadRequest, "No text content to export", "")
		return
	case errors.Is(err, ErrUnknownFormat):
		respondWithError(w, http.StatusNotFound, "Unknown export format", format)
		return
	case err != nil:
		appConfig.Logger.WithError(err).WithField("format", format).Error("export failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to generate "+strings.ToUpper(format), err.Error())
		return
	}
	appConfig.Logger.WithFields(logrus.Fields{
		"format":    format,
		"filename":  file.Filename,
		"bytes":     len(file.Body),
		"pages":     file.Pages,
		"fragments": file.Fragments,
	}).Info("export rendered")
	writeAttachment(w, file)
}

func writeAttachment(w http.ResponseWriter, file exportFile) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

func (appConfig *AppConfig) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	f, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file upload", err.Error())
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read upload", err.Error())
		return
	}

	mime := DetectResumeMime(header.Header.Get("Content-Type"), header.Filename, data)
	text, err := ExtractResumeText(mime, data)
	if errors.Is(err, ErrUnsupportedFileType) {
		respondWithError(w, http.StatusUnsupportedMediaType, "Unsupported file type", mime)
		return
	}
	if err != nil {
		appConfig.Logger.WithError(err).WithField("filename", header.Filename).Warn("text extraction failed")
		respondWithError(w, http.StatusUnprocessableEntity, "Could not extract text from file", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"text": strings.TrimSpace(text)})
}

func (appConfig *AppConfig) handleCreateTailoring(w http.ResponseWriter, r *http.Request) {
	if appConfig.DB == nil || appConfig.Broker == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Async tailoring is not configured", "")
		return
	}
	var req TailorRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing currentResume or jobDescription", "")
		return
	}

	row, err := appConfig.DB.CreateTailoring(r.Context(), database.CreateTailoringParams{
		CurrentResume:  req.CurrentResume,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		appConfig.Logger.WithError(err).Error("creating tailoring")
		respondWithError(w, http.StatusInternalServerError, "Failed to queue tailoring", err.Error())
		return
	}
	if err := appConfig.Broker.PublishJob(TailoringJob{ID: row.ID}); err != nil {
		appConfig.Logger.WithError(err).WithField("tailoring_id", row.ID).Error("publishing tailoring job")
		_ = appConfig.DB.FailTailoring(r.Context(), database.FailTailoringParams{
			ID:    row.ID,
			Error: toNullString("queue unavailable: " + err.Error()),
		})
		respondWithError(w, http.StatusServiceUnavailable, "Failed to queue tailoring", err.Error())
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]any{
		"id":     row.ID,
		"status": row.Status,
	})
}

func (appConfig *AppConfig) lookupTailoring(w http.ResponseWriter, r *http.Request) (database.Tailoring, bool) {
	if appConfig.DB == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Async tailoring is not configured", "")
		return database.Tailoring{}, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tailoring id", err.Error())
		return database.Tailoring{}, false
	}
	row, err := appConfig.DB.GetTailoring(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		respondWithError(w, http.StatusNotFound, "Tailoring not found", "")
		return database.Tailoring{}, false
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load tailoring", err.Error())
		return database.Tailoring{}, false
	}
	return row, true
}

func (appConfig *AppConfig) handleGetTailoring(w http.ResponseWriter, r *http.Request) {
	row, ok := appConfig.lookupTailoring(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, tailoringFromDB(row))
}

func (appConfig *AppConfig) handleTailoringPDF(w http.ResponseWriter, r *http.Request) {
	if appConfig.R2 == nil || appConfig.AwsConfig == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Object storage is not configured", "")
		return
	}
	row, ok := appConfig.lookupTailoring(w, r)
	if !ok {
		return
	}
	var kind DocumentKind
	var key string
	switch r.PathValue("file") {
	case DocumentResume.Filename("pdf"):
		kind, key = DocumentResume, nullString(row.ResumePdfKey)
	case DocumentCoverLetter.Filename("pdf"):
		kind, key = DocumentCoverLetter, nullString(row.CoverLetterPdfKey)
	}
	if key == "" {
		respondWithError(w, http.StatusNotFound, "File not found", "")
		return
	}
	body, err := DownloadFromR2(r.Context(), newR2Client(*appConfig.AwsConfig, appConfig.R2), appConfig.R2.Bucket, key)
	if err != nil {
		appConfig.Logger.WithError(err).WithField("key", key).Error("download from r2")
		respondWithError(w, http.StatusBadGateway, "Failed to fetch file", err.Error())
		return
	}
	writeAttachment(w, exportFile{
		Body:        body,
		ContentType: "application/pdf",
		Filename:    kind.Filename("pdf"),
	})
}
