package model

import (
	"fmt"
)

// EstimatorSpec is the exported form of a fitted estimator. Linear models use
// Coef/Intercept, multinomial naive Bayes uses ClassLogPrior/FeatureLogProb.
type EstimatorSpec struct {
	Type           string      `json:"type"` // linear or multinomial_nb
	Classes        Labels      `json:"classes"`
	Coef           [][]float64 `json:"coef,omitempty"`
	Intercept      []float64   `json:"intercept,omitempty"`
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty"`
}

// Estimator predicts a class label from a feature vector
type Estimator interface {
	Predict(vec SparseVector) string
	Classes() []string
}

// NewEstimator builds the estimator described by spec for a feature space of
// the given width
func NewEstimator(spec EstimatorSpec, features int) (Estimator, error) {
	if len(spec.Classes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 classes, got %d", ErrIncompatibleArtifact, len(spec.Classes))
	}

	switch spec.Type {
	case "linear":
		return newLinearModel(spec, features)
	case "multinomial_nb":
		return newNaiveBayesModel(spec, features)
	default:
		return nil, fmt.Errorf("%w: unknown estimator type %q", ErrIncompatibleArtifact, spec.Type)
	}
}

// LinearModel covers logistic regression and linear SVMs. A binary model has a
// single weight row whose positive side is the second class.
type LinearModel struct {
	classes   []string
	coef      [][]float64
	intercept []float64
}

func newLinearModel(spec EstimatorSpec, features int) (*LinearModel, error) {
	rows := len(spec.Classes)
	if rows == 2 {
		rows = 1
	}
	if len(spec.Coef) != rows || len(spec.Intercept) != rows {
		return nil, fmt.Errorf("%w: linear model with %d classes needs %d weight rows, got coef=%d intercept=%d",
			ErrIncompatibleArtifact, len(spec.Classes), rows, len(spec.Coef), len(spec.Intercept))
	}
	if err := checkRowWidths(spec.Coef, features); err != nil {
		return nil, err
	}
	return &LinearModel{classes: spec.Classes, coef: spec.Coef, intercept: spec.Intercept}, nil
}

// Predict returns the class with the highest decision value
func (m *LinearModel) Predict(vec SparseVector) string {
	if len(m.coef) == 1 {
		if dot(m.coef[0], vec)+m.intercept[0] > 0 {
			return m.classes[1]
		}
		return m.classes[0]
	}

	best := 0
	bestScore := dot(m.coef[0], vec) + m.intercept[0]
	for c := 1; c < len(m.coef); c++ {
		if score := dot(m.coef[c], vec) + m.intercept[c]; score > bestScore {
			best, bestScore = c, score
		}
	}
	return m.classes[best]
}

// Classes returns the labels the model can emit
func (m *LinearModel) Classes() []string {
	return m.classes
}

// NaiveBayesModel is a fitted multinomial naive Bayes classifier
type NaiveBayesModel struct {
	classes        []string
	classLogPrior  []float64
	featureLogProb [][]float64
}

func newNaiveBayesModel(spec EstimatorSpec, features int) (*NaiveBayesModel, error) {
	n := len(spec.Classes)
	if len(spec.ClassLogPrior) != n || len(spec.FeatureLogProb) != n {
		return nil, fmt.Errorf("%w: naive bayes with %d classes got %d priors and %d likelihood rows",
			ErrIncompatibleArtifact, n, len(spec.ClassLogPrior), len(spec.FeatureLogProb))
	}
	if err := checkRowWidths(spec.FeatureLogProb, features); err != nil {
		return nil, err
	}
	return &NaiveBayesModel{
		classes:        spec.Classes,
		classLogPrior:  spec.ClassLogPrior,
		featureLogProb: spec.FeatureLogProb,
	}, nil
}

// Predict returns the class with the highest joint log likelihood
func (m *NaiveBayesModel) Predict(vec SparseVector) string {
	best := 0
	bestScore := m.classLogPrior[0] + dot(m.featureLogProb[0], vec)
	for c := 1; c < len(m.classes); c++ {
		if score := m.classLogPrior[c] + dot(m.featureLogProb[c], vec); score > bestScore {
			best, bestScore = c, score
		}
	}
	return m.classes[best]
}

// Classes returns the labels the model can emit
func (m *NaiveBayesModel) Classes() []string {
	return m.classes
}

func checkRowWidths(rows [][]float64, features int) error {
	for i, row := range rows {
		if len(row) != features {
			return fmt.Errorf("%w: weight row %d has %d features, vectorizer produces %d",
				ErrIncompatibleArtifact, i, len(row), features)
		}
	}
	return nil
}

func dot(weights []float64, vec SparseVector) float64 {
	var sum float64
	for idx, w := range vec {
		sum += weights[idx] * w
	}
	return sum
}
