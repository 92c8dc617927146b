package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicCompleter sends each document as a single Messages call with the
// document's instruction as the system prompt.
type anthropicCompleter struct {
	client anthropic.Client
	model  anthropic.Model
}

func newAnthropicCompleter(apiKey, modelName string) *anthropicCompleter {
	return &anthropicCompleter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(modelName),
	}
}

func (c *anthropicCompleter) Complete(ctx context.Context, kind DocumentKind, message string) (string, error) {
	spec, ok := promptSpecs[kind]
	if !ok {
		return "", fmt.Errorf("no prompt for document %q", kind)
	}
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   int64(spec.MaxTokens),
		Temperature: anthropic.Float(float64(spec.Temperature)),
		System: []anthropic.TextBlockParam{
			{Text: spec.Instruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		perr := &ProviderError{Provider: "anthropic", Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			perr.Status = apiErr.StatusCode
		}
		return "", perr
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
