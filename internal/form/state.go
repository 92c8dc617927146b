// Package form models the customizer page as an explicit state value.
// Every change goes through Reduce.
package form

import (
	"strings"
	"time"
)

// Copy button labels. A Copied or CopyFailed label reverts after
// CopyLabelTimeout.
const (
	ResumeCopyLabel      = "Copy Resume"
	CoverLetterCopyLabel = "Copy Cover Letter"
	CopiedLabel          = "Copied!"
	CopyFailedLabel      = "Copy Failed"

	CopyLabelTimeout = 2 * time.Second
)

// Doc selects one of the two generated documents.
type Doc int

const (
	ResumeDoc Doc = iota
	CoverLetterDoc
)

// State is everything the page shows.
type State struct {
	CurrentResume  string
	JobDescription string
	TailoredResume string
	CoverLetter    string
	Loading        bool
	Notice         string

	ResumeCopyLabel      string
	CoverLetterCopyLabel string
}

// New returns the state of a freshly loaded page.
func New() State {
	return State{
		ResumeCopyLabel:      ResumeCopyLabel,
		CoverLetterCopyLabel: CoverLetterCopyLabel,
	}
}

// Action is one of EditResume, EditJobDescription, Submit, Generated, Failed,
// Copied, CopyFailed or CopyReset.
type Action interface {
	apply(State) State
}

type EditResume struct{ Text string }

type EditJobDescription struct{ Text string }

type Submit struct{}

type Generated struct {
	TailoredResume string
	CoverLetter    string
}

type Failed struct{ Message string }

// Copied records a successful clipboard write of Doc.
type Copied struct{ Doc Doc }

// CopyFailed records a rejected clipboard write of Doc.
type CopyFailed struct{ Doc Doc }

// CopyReset puts Doc's copy button back to its idle label.
type CopyReset struct{ Doc Doc }

// Reduce returns the state after a.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

// CanSubmit reports whether a Submit would start a request.
func (s State) CanSubmit() bool {
	return !s.Loading && strings.TrimSpace(s.CurrentResume) != "" && strings.TrimSpace(s.JobDescription) != ""
}

// ShowOutputs reports whether the output panel is visible.
func (s State) ShowOutputs() bool {
	return !s.Loading && (s.TailoredResume != "" || s.CoverLetter != "")
}

func (a EditResume) apply(s State) State {
	s.CurrentResume = a.Text
	s.Notice = ""
	return s
}

func (a EditJobDescription) apply(s State) State {
	s.JobDescription = a.Text
	s.Notice = ""
	return s
}

func (Submit) apply(s State) State {
	if s.Loading {
		return s
	}
	if !s.CanSubmit() {
		s.Notice = "Please provide both your current resume and the job description."
		return s
	}
	s.Loading = true
	s.Notice = ""
	s.TailoredResume = ""
	s.CoverLetter = ""
	return s
}

func (a Generated) apply(s State) State {
	s.Loading = false
	s.TailoredResume = a.TailoredResume
	if s.TailoredResume == "" {
		s.TailoredResume = "No resume content received."
	}
	s.CoverLetter = a.CoverLetter
	if s.CoverLetter == "" {
		s.CoverLetter = "No cover letter content received."
	}
	return s
}

func (a Failed) apply(s State) State {
	s.Loading = false
	s.TailoredResume = "Failed to generate resume: " + a.Message
	s.CoverLetter = "Failed to generate cover letter: " + a.Message
	return s
}

// CopyLabel returns the label shown on d's copy button.
func (s State) CopyLabel(d Doc) string {
	if d == CoverLetterDoc {
		return s.CoverLetterCopyLabel
	}
	return s.ResumeCopyLabel
}

func (s State) withCopyLabel(d Doc, label string) State {
	if d == CoverLetterDoc {
		s.CoverLetterCopyLabel = label
	} else {
		s.ResumeCopyLabel = label
	}
	return s
}

func idleCopyLabel(d Doc) string {
	if d == CoverLetterDoc {
		return CoverLetterCopyLabel
	}
	return ResumeCopyLabel
}

func (a Copied) apply(s State) State {
	return s.withCopyLabel(a.Doc, CopiedLabel)
}

func (a CopyFailed) apply(s State) State {
	return s.withCopyLabel(a.Doc, CopyFailedLabel)
}

func (a CopyReset) apply(s State) State {
	return s.withCopyLabel(a.Doc, idleCopyLabel(a.Doc))
}
