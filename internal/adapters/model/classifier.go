package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/email-triage-dashboard/internal/core"
	"go.uber.org/zap"
)

// Paths locates the four artifacts the local backend loads at startup
type Paths struct {
	SpamModel      string
	SpamVectorizer string
	CategoryModel  string
	UrgencyModel   string
}

type vectorizerFile struct {
	FormatVersion int `json:"format_version,omitempty"`
	VectorizerSpec
}

type estimatorFile struct {
	FormatVersion int    `json:"format_version,omitempty"`
	Name          string `json:"name,omitempty"`
	EstimatorSpec
}

// pipelineFile bundles a vectorizer with its estimator. Category and urgency
// models are exported this way so they can be fed normalized text directly.
type pipelineFile struct {
	FormatVersion int             `json:"format_version,omitempty"`
	Name          string          `json:"name,omitempty"`
	Vectorizer    *VectorizerSpec `json:"vectorizer"`
	Classifier    *EstimatorSpec  `json:"classifier"`
}

// SpamModel is a binary estimator applied after a separately exported vectorizer
type SpamModel struct {
	vectorizer *Vectorizer
	estimator  Estimator
	logger     *zap.Logger
}

// ClassifySpam reports whether the predicted class is the positive one
func (m *SpamModel) ClassifySpam(ctx context.Context, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	label := m.estimator.Predict(m.vectorizer.Transform(text))
	m.logger.Debug("Spam model prediction", zap.String("class", label))
	return isPositiveClass(label), nil
}

// PipelineModel is a self-contained vectorizer plus estimator
type PipelineModel struct {
	name       string
	vectorizer *Vectorizer
	estimator  Estimator
	logger     *zap.Logger
}

// Predict returns the estimator's class label for text
func (m *PipelineModel) Predict(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	label := m.estimator.Predict(m.vectorizer.Transform(text))
	m.logger.Debug("Pipeline model prediction", zap.String("model", m.name), zap.String("class", label))
	return label, nil
}

// LoadSet loads all four artifacts. Any missing or malformed file fails the
// whole set.
func LoadSet(paths Paths, logger *zap.Logger) (core.ClassifierSet, error) {
	spam, err := LoadSpamModel(paths.SpamModel, paths.SpamVectorizer, logger)
	if err != nil {
		return core.ClassifierSet{}, err
	}

	category, err := LoadPipeline("category", paths.CategoryModel, logger)
	if err != nil {
		return core.ClassifierSet{}, err
	}

	urgency, err := LoadPipeline("urgency", paths.UrgencyModel, logger)
	if err != nil {
		return core.ClassifierSet{}, err
	}

	logger.Info("Loaded local models",
		zap.String("spam_model", paths.SpamModel),
		zap.String("spam_vectorizer", paths.SpamVectorizer),
		zap.String("category_model", paths.CategoryModel),
		zap.Strings("categories", category.estimator.Classes()),
		zap.String("urgency_model", paths.UrgencyModel),
		zap.Strings("urgencies", urgency.estimator.Classes()))

	return core.ClassifierSet{
		Name:     "local",
		Spam:     spam,
		Category: category,
		Urgency:  urgency,
	}, nil
}

// LoadSpamModel loads the spam estimator and its vectorizer
func LoadSpamModel(modelPath, vectorizerPath string, logger *zap.Logger) (*SpamModel, error) {
	var vf vectorizerFile
	if err := decodeFile(vectorizerPath, &vf); err != nil {
		return nil, err
	}
	if err := checkFormatVersion(vectorizerPath, vf.FormatVersion); err != nil {
		return nil, err
	}
	vectorizer, err := NewVectorizer(vf.VectorizerSpec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", vectorizerPath, err)
	}

	var ef estimatorFile
	if err := decodeFile(modelPath, &ef); err != nil {
		return nil, err
	}
	if err := checkFormatVersion(modelPath, ef.FormatVersion); err != nil {
		return nil, err
	}
	estimator, err := NewEstimator(ef.EstimatorSpec, vectorizer.Features())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", modelPath, err)
	}
	if len(estimator.Classes()) != 2 {
		return nil, fmt.Errorf("%w: %s: spam model must be binary, has %d classes",
			ErrIncompatibleArtifact, modelPath, len(estimator.Classes()))
	}

	return &SpamModel{vectorizer: vectorizer, estimator: estimator, logger: logger}, nil
}

// LoadPipeline loads a vectorizer and estimator exported together
func LoadPipeline(name, path string, logger *zap.Logger) (*PipelineModel, error) {
	var pf pipelineFile
	if err := decodeFile(path, &pf); err != nil {
		return nil, err
	}
	if err := checkFormatVersion(path, pf.FormatVersion); err != nil {
		return nil, err
	}
	if pf.Vectorizer == nil || pf.Classifier == nil {
		return nil, fmt.Errorf("%w: %s: pipeline needs both vectorizer and classifier", ErrIncompatibleArtifact, path)
	}

	vectorizer, err := NewVectorizer(*pf.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	estimator, err := NewEstimator(*pf.Classifier, vectorizer.Features())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if pf.Name != "" {
		name = pf.Name
	}
	return &PipelineModel{name: name, vectorizer: vectorizer, estimator: estimator, logger: logger}, nil
}

func isPositiveClass(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "1", "spam", "true":
		return true
	}
	return false
}
