package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mikey/email-triage-dashboard/internal/utils"
	"go.uber.org/zap"
)

type scriptedClient struct {
	replies map[string]string
	prompts []string
	err     error
}

// Complete answers based on which task the prompt asks for
func (c *scriptedClient) Complete(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	for marker, reply := range c.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "", errors.New("unexpected prompt")
}

func newSet(client *scriptedClient, maxBody int) (*SpamClassifier, *CategoryClassifier, *UrgencyClassifier) {
	set := NewClassifierSet(client, Options{
		Name:        "openai",
		Categories:  []string{"work", "promotions"},
		MaxBodySize: maxBody,
	}, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())
	return set.Spam.(*SpamClassifier), set.Category.(*CategoryClassifier), set.Urgency.(*UrgencyClassifier)
}

func TestClassifiers(t *testing.T) {
	ctx := context.Background()
	client := &scriptedClient{replies: map[string]string{
		"is_spam":  `{"is_spam": true}`,
		"category": "Sure! Here is the answer:\n```json\n{\"category\": \"Promotions\"}\n```",
		"urgency":  `{"urgency": " HIGH "}`,
	}}
	spam, category, urgency := newSet(client, 0)

	isSpam, err := spam.ClassifySpam(ctx, "free money now")
	if err != nil || !isSpam {
		t.Errorf("expected spam, got %v (err %v)", isSpam, err)
	}

	label, err := category.Predict(ctx, "free money now")
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if label != "promotions" {
		t.Errorf("expected canonical category, got %q", label)
	}

	level, err := urgency.Predict(ctx, "free money now")
	if err != nil {
		t.Fatalf("urgency: %v", err)
	}
	if level != "high" {
		t.Errorf("expected high, got %q", level)
	}

	if !strings.Contains(client.prompts[1], "work, promotions") {
		t.Errorf("category prompt should list categories, got %q", client.prompts[1])
	}
}

func TestCategoryUnlistedLabelKept(t *testing.T) {
	client := &scriptedClient{replies: map[string]string{"category": `{"category": "travel"}`}}
	_, category, _ := newSet(client, 0)

	label, err := category.Predict(context.Background(), "flight itinerary")
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if label != "travel" {
		t.Errorf("expected travel, got %q", label)
	}
}

func TestEmptyLabelsRejected(t *testing.T) {
	client := &scriptedClient{replies: map[string]string{
		"category": `{"category": ""}`,
		"urgency":  `{}`,
	}}
	_, category, urgency := newSet(client, 0)

	if _, err := category.Predict(context.Background(), "x"); err == nil {
		t.Error("expected error for empty category")
	}
	if _, err := urgency.Predict(context.Background(), "x"); err == nil {
		t.Error("expected error for empty urgency")
	}
}

func TestClientErrorPropagates(t *testing.T) {
	boom := errors.New("rate limited")
	spam, _, _ := newSet(&scriptedClient{err: boom}, 0)

	if _, err := spam.ClassifySpam(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error, got %v", err)
	}
}

func TestPromptTextTruncated(t *testing.T) {
	client := &scriptedClient{replies: map[string]string{"is_spam": `{"is_spam": false}`}}
	spam, _, _ := newSet(client, 10)

	spam.ClassifySpam(context.Background(), strings.Repeat("word ", 100))
	if !strings.Contains(client.prompts[0], utils.TruncationMarker) {
		t.Error("expected long text to be truncated in the prompt")
	}
}

func TestDecodeJSONReply(t *testing.T) {
	var v struct {
		IsSpam bool `json:"is_spam"`
	}
	if err := DecodeJSONReply("no json here", &v); !errors.Is(err, ErrUnparseableResponse) {
		t.Errorf("expected ErrUnparseableResponse, got %v", err)
	}
	if err := DecodeJSONReply("prefix {broken json} suffix", &v); !errors.Is(err, ErrUnparseableResponse) {
		t.Errorf("expected ErrUnparseableResponse, got %v", err)
	}
	if err := DecodeJSONReply(`answer: {"is_spam": true}`, &v); err != nil || !v.IsSpam {
		t.Errorf("expected embedded JSON decoded, got %v (err %v)", v, err)
	}
}
