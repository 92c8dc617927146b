package main

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/muhammadolammi/cvcustomizer/internal/form"
	"github.com/muhammadolammi/cvcustomizer/internal/markup"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"preview": markup.Parse,
	"isRule":  func(l markup.Line) bool { return l.Kind == markup.RuleLine },
}).ParseFS(templateFS, "templates/index.html"))

// pageOutput is one generated document with the copy button labels the
// reducer yields for each clipboard outcome.
type pageOutput struct {
	Title    string
	Text     string
	Document DocumentKind

	CopyLabel   string
	CopiedLabel string
	FailedLabel string
	ResetLabel  string
}

type pageData struct {
	form.State
	Outputs     []pageOutput
	CopyResetMs int64
}

func newPageOutput(s form.State, title, text string, kind DocumentKind, doc form.Doc) pageOutput {
	return pageOutput{
		Title:       title,
		Text:        text,
		Document:    kind,
		CopyLabel:   s.CopyLabel(doc),
		CopiedLabel: form.Reduce(s, form.Copied{Doc: doc}).CopyLabel(doc),
		FailedLabel: form.Reduce(s, form.CopyFailed{Doc: doc}).CopyLabel(doc),
		ResetLabel:  form.Reduce(s, form.CopyReset{Doc: doc}).CopyLabel(doc),
	}
}

func (appConfig *AppConfig) renderPage(w http.ResponseWriter, status int, s form.State) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := pageTemplate.Execute(w, pageData{
		State: s,
		Outputs: []pageOutput{
			newPageOutput(s, "Tailored resume", s.TailoredResume, DocumentResume, form.ResumeDoc),
			newPageOutput(s, "Cover letter", s.CoverLetter, DocumentCoverLetter, form.CoverLetterDoc),
		},
		CopyResetMs: form.CopyLabelTimeout.Milliseconds(),
	})
	if err != nil {
		appConfig.Logger.WithError(err).Error("rendering page")
	}
}

func (appConfig *AppConfig) handlePage(w http.ResponseWriter, r *http.Request) {
	appConfig.renderPage(w, http.StatusOK, form.New())
}

// handlePageSubmit drives the form through a whole submit cycle: the edits,
// Submit, then Generated or Failed.
func (appConfig *AppConfig) handlePageSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s := form.New()
	s = form.Reduce(s, form.EditResume{Text: r.PostFormValue("currentResume")})
	s = form.Reduce(s, form.EditJobDescription{Text: r.PostFormValue("jobDescription")})
	s = form.Reduce(s, form.Submit{})
	if !s.Loading {
		appConfig.renderPage(w, http.StatusBadRequest, s)
		return
	}

	res, err := appConfig.tailor(r.Context(), TailorRequest{
		CurrentResume:  s.CurrentResume,
		JobDescription: s.JobDescription,
	})
	if err != nil {
		appConfig.Logger.WithError(err).Error("page submit failed")
		s = form.Reduce(s, form.Failed{Message: err.Error()})
		appConfig.renderPage(w, statusForError(err), s)
		return
	}
	s = form.Reduce(s, form.Generated{
		TailoredResume: res.TailoredResume,
		CoverLetter:    res.CoverLetter,
	})
	appConfig.renderPage(w, http.StatusOK, s)
}
