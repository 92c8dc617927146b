package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const agentUserID = "cvcustomizer"

func GetAgent(llm model.LLM, spec promptSpec) (agent.Agent, error) {
	customAgent, err := llmagent.New(llmagent.Config{
		Name:        spec.AgentName,
		Model:       llm,
		Description: spec.Description,
		Instruction: spec.Instruction,
		GenerateContentConfig: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(spec.Temperature),
			MaxOutputTokens: spec.MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return customAgent, nil
}

// adkCompleter runs one Gemini agent per document kind. Every call gets its
// own throwaway session so the two documents never share history.
type adkCompleter struct {
	sessions session.Service
	runners  map[DocumentKind]*runner.Runner
	appNames map[DocumentKind]string
}

func newADKCompleter(ctx context.Context, apiKey, modelName string) (*adkCompleter, error) {
	llm, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	c := &adkCompleter{
		sessions: session.InMemoryService(),
		runners:  map[DocumentKind]*runner.Runner{},
		appNames: map[DocumentKind]string{},
	}
	for kind, spec := range promptSpecs {
		a, err := GetAgent(llm, spec)
		if err != nil {
			return nil, err
		}
		r, err := runner.New(runner.Config{
			AppName:        a.Name(),
			Agent:          a,
			SessionService: c.sessions,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create runner: %w", err)
		}
		c.runners[kind] = r
		c.appNames[kind] = a.Name()
	}
	return c, nil
}

func (c *adkCompleter) Complete(ctx context.Context, kind DocumentKind, message string) (string, error) {
	r, ok := c.runners[kind]
	if !ok {
		return "", fmt.Errorf("no agent for document %q", kind)
	}
	created, err := c.sessions.Create(ctx, &session.CreateRequest{
		AppName:   c.appNames[kind],
		UserID:    agentUserID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		_ = c.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   created.Session.AppName(),
			UserID:    created.Session.UserID(),
			SessionID: created.Session.ID(),
		})
	}()

	stream := r.Run(ctx, created.Session.UserID(), created.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: message},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", geminiError(err)
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	return output, nil
}

func geminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	perr := &ProviderError{Provider: "gemini", Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		perr.Status = apiErr.Code
	}
	return perr
}
