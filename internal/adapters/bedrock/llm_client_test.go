package bedrock

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

type fakeRuntime struct {
	lastBody []byte
	reply    string
}

func (f *fakeRuntime) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.lastBody = in.Body
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.reply)}, nil
}

func TestCompleteAnthropic(t *testing.T) {
	rt := &fakeRuntime{reply: `{"completion": "{\"is_spam\": true}"}`}
	c := NewBedrockClient(rt, "anthropic.claude-v2", 100, 0, 0.9, zap.NewNop())

	got, err := c.Complete(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != `{"is_spam": true}` {
		t.Errorf("unexpected reply %q", got)
	}

	var sent map[string]interface{}
	if err := json.Unmarshal(rt.lastBody, &sent); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if _, ok := sent["max_tokens_to_sample"]; !ok {
		t.Errorf("anthropic payload missing max_tokens_to_sample: %v", sent)
	}
}

func TestCompleteTitan(t *testing.T) {
	rt := &fakeRuntime{reply: `{"results": [{"outputText": "{\"urgency\": \"low\"}"}]}`}
	c := NewBedrockClient(rt, "amazon.titan-text-express-v1", 100, 0, 0.9, zap.NewNop())

	got, err := c.Complete(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != `{"urgency": "low"}` {
		t.Errorf("unexpected reply %q", got)
	}
}

func TestCompleteTitanEmpty(t *testing.T) {
	rt := &fakeRuntime{reply: `{"results": []}`}
	c := NewBedrockClient(rt, "amazon.titan-text-express-v1", 100, 0, 0.9, zap.NewNop())

	if _, err := c.Complete(context.Background(), "x"); err == nil {
		t.Error("expected error for empty Titan results")
	}
}

func TestCompleteGenericFallsBackToRawBody(t *testing.T) {
	rt := &fakeRuntime{reply: `{"category": "work"}`}
	c := NewBedrockClient(rt, "meta.llama3", 100, 0, 0.9, zap.NewNop())

	got, err := c.Complete(context.Background(), "x")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != `{"category": "work"}` {
		t.Errorf("expected raw body, got %q", got)
	}
}
