package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrMissingInput = errors.New("missing currentResume or jobDescription")

// Completer sends one prompt for a document kind to a model provider and
// returns the raw generated text.
type Completer interface {
	Complete(ctx context.Context, kind DocumentKind, message string) (string, error)
}

// ProviderError is an upstream failure. Status is the provider's HTTP status
// when it reported one.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (r TailorRequest) Validate() error {
	if strings.TrimSpace(r.CurrentResume) == "" || strings.TrimSpace(r.JobDescription) == "" {
		return ErrMissingInput
	}
	return nil
}

// Tailor generates the tailored resume and the cover letter concurrently.
// Either call failing fails the pair.
func Tailor(ctx context.Context, c Completer, req TailorRequest, logger logrus.FieldLogger) (TailorResult, error) {
	if err := req.Validate(); err != nil {
		return TailorResult{}, err
	}
	var res TailorResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := generate(gctx, c, DocumentResume, req, logger)
		res.TailoredResume = text
		return err
	})
	g.Go(func() error {
		text, err := generate(gctx, c, DocumentCoverLetter, req, logger)
		res.CoverLetter = text
		return err
	})
	if err := g.Wait(); err != nil {
		return TailorResult{}, err
	}
	return res, nil
}

func generate(ctx context.Context, c Completer, kind DocumentKind, req TailorRequest, logger logrus.FieldLogger) (string, error) {
	start := time.Now()
	log := logger.WithField("document", kind)
	log.Debug("sending generation request")

	out, err := c.Complete(ctx, kind, userMessage(kind, req))
	if err != nil {
		log.WithError(err).Warn("generation failed")
		return "", fmt.Errorf("generating %s: %w", kind, err)
	}
	text := CleanModelOutput(out)
	if text == "" {
		text = promptSpecs[kind].Fallback
	}
	log.WithFields(logrus.Fields{
		"length":   len(text),
		"duration": time.Since(start),
	}).Info("generated document")
	return text, nil
}

// statusForError maps a Tailor error to the HTTP status reported to clients.
func statusForError(err error) int {
	var perr *ProviderError
	switch {
	case errors.Is(err, ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &perr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
