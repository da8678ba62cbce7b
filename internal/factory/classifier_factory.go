package factory

import (
	"context"
	"fmt"
	"io"

	"github.com/mikey/email-triage-dashboard/internal/adapters/llm"
	"github.com/mikey/email-triage-dashboard/internal/adapters/model"
	"github.com/mikey/email-triage-dashboard/internal/config"
	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/mikey/email-triage-dashboard/internal/utils"
	"go.uber.org/zap"
)

// Classifier providers
const (
	ProviderLocal   = "local"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderBedrock = "bedrock"
)

// ClassifierFactory creates the classifier set for the configured provider
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	closers       []io.Closer
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifierSet loads the local artifacts or connects to an LLM provider
func (f *ClassifierFactory) CreateClassifierSet() (core.ClassifierSet, error) {
	classifierCfg := f.cfg.GetClassifier()

	switch classifierCfg.Provider {
	case ProviderLocal, "":
		models := f.cfg.GetModels()
		return model.LoadSet(model.Paths{
			SpamModel:      models.SpamModel,
			SpamVectorizer: models.SpamVectorizer,
			CategoryModel:  models.CategoryModel,
			UrgencyModel:   models.UrgencyModel,
		}, f.logger)
	case ProviderOpenAI:
		client, err := NewOpenAIFactory(f.cfg, f.logger).CreateLLMClient()
		if err != nil {
			return core.ClassifierSet{}, err
		}
		return f.llmSet(client, ProviderOpenAI, f.cfg.GetOpenAI().MaxBodySize), nil
	case ProviderGemini:
		client, err := NewGeminiFactory(f.cfg, f.logger).CreateLLMClient(context.Background())
		if err != nil {
			return core.ClassifierSet{}, err
		}
		f.closers = append(f.closers, client)
		return f.llmSet(client, ProviderGemini, f.cfg.GetGemini().MaxBodySize), nil
	case ProviderBedrock:
		client, err := NewBedrockFactory(f.cfg, f.logger).CreateLLMClient(context.Background())
		if err != nil {
			return core.ClassifierSet{}, err
		}
		return f.llmSet(client, ProviderBedrock, f.cfg.GetBedrock().MaxBodySize), nil
	default:
		return core.ClassifierSet{}, fmt.Errorf("unsupported classifier provider: %s", classifierCfg.Provider)
	}
}

func (f *ClassifierFactory) llmSet(client core.LLMClient, name string, maxBodySize int) core.ClassifierSet {
	return llm.NewClassifierSet(client, llm.Options{
		Name:        name,
		Categories:  f.cfg.GetClassifier().Categories,
		MaxBodySize: maxBodySize,
	}, f.textProcessor, f.logger)
}

// Close releases provider clients that hold connections
func (f *ClassifierFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
