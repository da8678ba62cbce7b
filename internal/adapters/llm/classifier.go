// Package llm turns a hosted language model into the spam, category and
// urgency classifiers. Each classifier sends its own prompt over the same
// client and parses a small JSON reply.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/mikey/email-triage-dashboard/internal/utils"
	"go.uber.org/zap"
)

// ErrUnparseableResponse is returned when no JSON object can be recovered
var ErrUnparseableResponse = errors.New("failed to parse LLM response as JSON")

const spamPromptFormat = `You are a spam detection system. Analyze the following email text and determine if it's spam.
Respond with a JSON object containing:
- is_spam: boolean (true if spam, false if not)

Email text:
%s

Respond only with the JSON object and nothing else.`

const categoryPromptFormat = `You are an email triage system. Assign the following email text to exactly one of these categories: %s.
Respond with a JSON object containing:
- category: string (one of the listed categories)

Email text:
%s

Respond only with the JSON object and nothing else.`

const urgencyPromptFormat = `You are an email triage system. Rate how urgently the following email needs a response.
Respond with a JSON object containing:
- urgency: string (one of "high", "medium", "low")

Email text:
%s

Respond only with the JSON object and nothing else.`

// Options configures the prompt side of the classifiers
type Options struct {
	Name        string
	Categories  []string
	MaxBodySize int
}

// NewClassifierSet builds the three classifiers on top of one LLM client
func NewClassifierSet(client core.LLMClient, opts Options, textProcessor *utils.TextProcessor, logger *zap.Logger) core.ClassifierSet {
	base := &prompter{
		client:        client,
		maxBodySize:   opts.MaxBodySize,
		textProcessor: textProcessor,
		logger:        logger,
	}
	return core.ClassifierSet{
		Name:     opts.Name,
		Spam:     &SpamClassifier{prompter: base},
		Category: &CategoryClassifier{prompter: base, categories: opts.Categories},
		Urgency:  &UrgencyClassifier{prompter: base},
	}
}

type prompter struct {
	client        core.LLMClient
	maxBodySize   int
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// ask formats a prompt around the processed text and decodes the reply into v
func (p *prompter) ask(ctx context.Context, task string, format string, args []any, text string, v any) error {
	processed := p.textProcessor.ProcessText(text, p.maxBodySize)
	prompt := fmt.Sprintf(format, append(args, processed)...)

	reply, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", task, err)
	}

	if err := DecodeJSONReply(reply, v); err != nil {
		p.logger.Warn("Unparseable LLM reply", zap.String("task", task), zap.String("reply", utils.Excerpt(reply, 200)))
		return fmt.Errorf("%s: %w", task, err)
	}
	return nil
}

// SpamClassifier asks the model for a spam verdict
type SpamClassifier struct {
	*prompter
}

// ClassifySpam reports whether the model judged the text spam
func (c *SpamClassifier) ClassifySpam(ctx context.Context, text string) (bool, error) {
	var reply struct {
		IsSpam bool `json:"is_spam"`
	}
	if err := c.ask(ctx, "spam", spamPromptFormat, nil, text, &reply); err != nil {
		return false, err
	}
	return reply.IsSpam, nil
}

// CategoryClassifier asks the model to pick one configured category
type CategoryClassifier struct {
	*prompter
	categories []string
}

// Predict returns the category, canonicalized to the configured spelling when
// the model's answer matches one case-insensitively
func (c *CategoryClassifier) Predict(ctx context.Context, text string) (string, error) {
	var reply struct {
		Category string `json:"category"`
	}
	args := []any{strings.Join(c.categories, ", ")}
	if err := c.ask(ctx, "category", categoryPromptFormat, args, text, &reply); err != nil {
		return "", err
	}

	category := strings.TrimSpace(reply.Category)
	if category == "" {
		return "", fmt.Errorf("category: empty label in LLM response")
	}
	for _, known := range c.categories {
		if strings.EqualFold(known, category) {
			return known, nil
		}
	}
	c.logger.Debug("LLM returned unlisted category", zap.String("category", category))
	return category, nil
}

// UrgencyClassifier asks the model for an urgency level
type UrgencyClassifier struct {
	*prompter
}

// Predict returns the lowercased urgency level
func (c *UrgencyClassifier) Predict(ctx context.Context, text string) (string, error) {
	var reply struct {
		Urgency string `json:"urgency"`
	}
	if err := c.ask(ctx, "urgency", urgencyPromptFormat, nil, text, &reply); err != nil {
		return "", err
	}

	urgency := strings.ToLower(strings.TrimSpace(reply.Urgency))
	if urgency == "" {
		return "", fmt.Errorf("urgency: empty label in LLM response")
	}
	return urgency, nil
}

// DecodeJSONReply unmarshals a model reply, falling back to the outermost
// {...} span when the model wrapped its JSON in prose or code fences
func DecodeJSONReply(reply string, v any) error {
	if err := json.Unmarshal([]byte(reply), v); err == nil {
		return nil
	}

	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return ErrUnparseableResponse
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	return nil
}
