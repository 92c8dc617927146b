package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// fakeCompleter records every message and answers from outputs.
type fakeCompleter struct {
	mu       sync.Mutex
	messages map[DocumentKind]string
	calls    int

	outputs map[DocumentKind]string
	errs    map[DocumentKind]error
	// block makes every call wait for its context.
	block bool
}

func (f *fakeCompleter) Complete(ctx context.Context, kind DocumentKind, message string) (string, error) {
	f.mu.Lock()
	if f.messages == nil {
		f.messages = map[DocumentKind]string{}
	}
	f.messages[kind] = message
	f.calls++
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := f.errs[kind]; err != nil {
		return "", err
	}
	return f.outputs[kind], nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var janeRequest = TailorRequest{
	CurrentResume:  "Jane Doe\nGo developer, 5 years",
	JobDescription: "Senior Go engineer, distributed systems",
}

func TestTailorReturnsBothDocuments(t *testing.T) {
	c := &fakeCompleter{outputs: map[DocumentKind]string{
		DocumentResume:      "**Jane Doe**\n---\nSummary",
		DocumentCoverLetter: "Dear Hiring Manager,",
	}}

	res, err := Tailor(context.Background(), c, janeRequest, quietLogger())
	require.NoError(t, err)
	require.Equal(t, "**Jane Doe**\n---\nSummary", res.TailoredResume)
	require.Equal(t, "Dear Hiring Manager,", res.CoverLetter)
	require.Equal(t, 2, c.callCount())
	require.Contains(t, c.messages[DocumentResume], "Original Resume:")
	require.Contains(t, c.messages[DocumentCoverLetter], "Applicant's Resume:")
}

func TestTailorRejectsMissingInput(t *testing.T) {
	tests := []struct {
		name string
		req  TailorRequest
	}{
		{"both empty", TailorRequest{}},
		{"no resume", TailorRequest{JobDescription: "job"}},
		{"no job", TailorRequest{CurrentResume: "resume"}},
		{"whitespace resume", TailorRequest{CurrentResume: " \n\t", JobDescription: "job"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCompleter{}
			_, err := Tailor(context.Background(), c, tt.req, quietLogger())
			require.ErrorIs(t, err, ErrMissingInput)
			require.Zero(t, c.callCount())
		})
	}
}

func TestTailorSubstitutesFallbackForEmptyOutput(t *testing.T) {
	c := &fakeCompleter{outputs: map[DocumentKind]string{
		DocumentResume:      "  \n",
		DocumentCoverLetter: "```\n```",
	}}

	res, err := Tailor(context.Background(), c, janeRequest, quietLogger())
	require.NoError(t, err)
	require.Equal(t, "Error: Could not generate tailored resume.", res.TailoredResume)
	require.Equal(t, "Error: Could not generate cover letter.", res.CoverLetter)
}

func TestTailorStripsCodeFence(t *testing.T) {
	c := &fakeCompleter{outputs: map[DocumentKind]string{
		DocumentResume:      "```markdown\n**Jane Doe**\n```",
		DocumentCoverLetter: "Dear team,",
	}}

	res, err := Tailor(context.Background(), c, janeRequest, quietLogger())
	require.NoError(t, err)
	require.Equal(t, "**Jane Doe**", res.TailoredResume)
}

func TestTailorFailsPairOnProviderError(t *testing.T) {
	c := &fakeCompleter{
		outputs: map[DocumentKind]string{DocumentResume: "ok"},
		errs: map[DocumentKind]error{
			DocumentCoverLetter: &ProviderError{Provider: "gemini", Status: 429, Err: errors.New("rate limited")},
		},
	}

	res, err := Tailor(context.Background(), c, janeRequest, quietLogger())
	require.Error(t, err)
	require.Equal(t, TailorResult{}, res)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 429, perr.Status)
	require.Contains(t, err.Error(), "coverLetter")
}

// barrierCompleter only answers once both documents are in flight.
type barrierCompleter struct {
	wg sync.WaitGroup
}

func (b *barrierCompleter) Complete(ctx context.Context, kind DocumentKind, message string) (string, error) {
	b.wg.Done()
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return string(kind), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestTailorRunsGenerationsConcurrently(t *testing.T) {
	b := &barrierCompleter{}
	b.wg.Add(2)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := Tailor(ctx, b, janeRequest, quietLogger())
	require.NoError(t, err)
	require.Equal(t, "resume", res.TailoredResume)
	require.Equal(t, "coverLetter", res.CoverLetter)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing input", ErrMissingInput, http.StatusBadRequest},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"wrapped timeout", errors.Join(errors.New("generating"), context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"provider", &ProviderError{Provider: "anthropic", Status: 401, Err: errors.New("invalid key")}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{Provider: "gemini", Status: 503, Err: errors.New("overloaded")}
	require.Equal(t, "gemini: status 503: overloaded", err.Error())

	err = &ProviderError{Provider: "gemini", Err: errors.New("dial tcp")}
	require.Equal(t, "gemini: dial tcp", err.Error())
}
