package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func shippedPaths() Paths {
	dir := filepath.Join("..", "..", "..", "models")
	return Paths{
		SpamModel:      filepath.Join(dir, "spam_model.json"),
		SpamVectorizer: filepath.Join(dir, "spam_vectorizer.json"),
		CategoryModel:  filepath.Join(dir, "category_model.json"),
		UrgencyModel:   filepath.Join(dir, "urgency_model.json"),
	}
}

func TestLoadShippedModels(t *testing.T) {
	ctx := context.Background()
	set, err := LoadSet(shippedPaths(), zap.NewNop())
	if err != nil {
		t.Fatalf("load set: %v", err)
	}
	if set.Name != "local" {
		t.Errorf("expected set name local, got %q", set.Name)
	}

	tests := []struct {
		text     string
		spam     bool
		category string
		urgency  string
	}{
		{"free money now click now", true, "promotions", "medium"},
		{"meeting tomorrow about the project report deadline", false, "work", "medium"},
		{"urgent respond asap today", false, "work", "high"},
	}
	for _, tt := range tests {
		spam, err := set.Spam.ClassifySpam(ctx, tt.text)
		if err != nil {
			t.Fatalf("classify spam: %v", err)
		}
		if spam != tt.spam {
			t.Errorf("%q: expected spam=%v, got %v", tt.text, tt.spam, spam)
		}
		category, _ := set.Category.Predict(ctx, tt.text)
		if category != tt.category {
			t.Errorf("%q: expected category %q, got %q", tt.text, tt.category, category)
		}
		urgency, _ := set.Urgency.Predict(ctx, tt.text)
		if urgency != tt.urgency {
			t.Errorf("%q: expected urgency %q, got %q", tt.text, tt.urgency, urgency)
		}
	}
}

func TestLoadSetMissingArtifact(t *testing.T) {
	paths := shippedPaths()
	paths.UrgencyModel = filepath.Join(t.TempDir(), "missing.json")

	if _, err := LoadSet(paths, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestLoadSpamModelRejectsMulticlass(t *testing.T) {
	dir := t.TempDir()
	vec := writeArtifact(t, dir, "vec.json", `{"type":"count","vocabulary":{"aa":0}}`)
	mdl := writeArtifact(t, dir, "model.json", `{"type":"linear","classes":["a","b","c"],"coef":[[1],[1],[1]],"intercept":[0,0,0]}`)

	if _, err := LoadSpamModel(mdl, vec, zap.NewNop()); !errors.Is(err, ErrIncompatibleArtifact) {
		t.Errorf("expected ErrIncompatibleArtifact, got %v", err)
	}
}

func TestLoadSpamModelWidthMismatch(t *testing.T) {
	dir := t.TempDir()
	vec := writeArtifact(t, dir, "vec.json", `{"type":"count","vocabulary":{"aa":0,"bb":1}}`)
	mdl := writeArtifact(t, dir, "model.json", `{"type":"linear","classes":[0,1],"coef":[[1]],"intercept":[0]}`)

	if _, err := LoadSpamModel(mdl, vec, zap.NewNop()); !errors.Is(err, ErrIncompatibleArtifact) {
		t.Errorf("expected ErrIncompatibleArtifact, got %v", err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir, "p.json", `{"vectorizer":{"type":"count","vocabulary":{"aa":0}},"classifier":{"type":"linear","classes":["a","b"],"coef":[[1]],"intercept":[0]},"pickle":"gASV"}`)

	if _, err := LoadPipeline("category", path, zap.NewNop()); !errors.Is(err, ErrIncompatibleArtifact) {
		t.Errorf("expected ErrIncompatibleArtifact, got %v", err)
	}
}

func TestLoadPipelineNeedsVectorizer(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir, "p.json", `{"classifier":{"type":"linear","classes":["a","b"],"coef":[[1]],"intercept":[0]}}`)

	if _, err := LoadPipeline("category", path, zap.NewNop()); !errors.Is(err, ErrIncompatibleArtifact) {
		t.Errorf("expected ErrIncompatibleArtifact, got %v", err)
	}
}

func TestLoadRejectsFutureFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir, "p.json", `{"format_version":7,"vectorizer":{"type":"count","vocabulary":{"aa":0}},"classifier":{"type":"linear","classes":["a","b"],"coef":[[1]],"intercept":[0]}}`)

	if _, err := LoadPipeline("category", path, zap.NewNop()); !errors.Is(err, ErrIncompatibleArtifact) {
		t.Errorf("expected ErrIncompatibleArtifact, got %v", err)
	}
}

func TestPositiveClass(t *testing.T) {
	for _, label := range []string{"1", "spam", "Spam", "true"} {
		if !isPositiveClass(label) {
			t.Errorf("%q should be positive", label)
		}
	}
	for _, label := range []string{"0", "ham", "not spam", "false"} {
		if isPositiveClass(label) {
			t.Errorf("%q should be negative", label)
		}
	}
}
