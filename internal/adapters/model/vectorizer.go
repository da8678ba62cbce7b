package model

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

const defaultTokenPattern = `\b\w\w+\b`

// SparseVector maps feature index to weight
type SparseVector map[int]float64

// VectorizerSpec is the exported form of a bag-of-words vectorizer
type VectorizerSpec struct {
	Type         string         `json:"type"` // count or tfidf
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf,omitempty"`
	NgramRange   [2]int         `json:"ngram_range,omitempty"`
	Norm         string         `json:"norm,omitempty"` // l1, l2 or empty
	SublinearTF  bool           `json:"sublinear_tf,omitempty"`
	Binary       bool           `json:"binary,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
}

// Vectorizer turns normalized text into a sparse feature vector
type Vectorizer struct {
	spec      VectorizerSpec
	token     *regexp.Regexp
	stopWords map[string]struct{}
	minN      int
	maxN      int
	features  int
}

// NewVectorizer validates a spec and prepares it for transforms
func NewVectorizer(spec VectorizerSpec) (*Vectorizer, error) {
	switch spec.Type {
	case "count", "tfidf":
	default:
		return nil, fmt.Errorf("%w: unknown vectorizer type %q", ErrIncompatibleArtifact, spec.Type)
	}
	if len(spec.Vocabulary) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrIncompatibleArtifact)
	}

	features := 0
	for term, idx := range spec.Vocabulary {
		if idx < 0 {
			return nil, fmt.Errorf("%w: negative index for term %q", ErrIncompatibleArtifact, term)
		}
		if idx+1 > features {
			features = idx + 1
		}
	}
	if spec.Type == "tfidf" && len(spec.IDF) != features {
		return nil, fmt.Errorf("%w: idf has %d weights for %d features", ErrIncompatibleArtifact, len(spec.IDF), features)
	}

	switch spec.Norm {
	case "", "l1", "l2":
	default:
		return nil, fmt.Errorf("%w: unknown norm %q", ErrIncompatibleArtifact, spec.Norm)
	}

	minN, maxN := spec.NgramRange[0], spec.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("%w: invalid ngram range %v", ErrIncompatibleArtifact, spec.NgramRange)
	}

	pattern := spec.TokenPattern
	if pattern == "" {
		pattern = defaultTokenPattern
	}
	// RE2 has no (?u) flag; \w is already unicode-agnostic on normalized text
	pattern = strings.TrimPrefix(pattern, "(?u)")
	token, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: token pattern: %v", ErrIncompatibleArtifact, err)
	}

	stopWords := make(map[string]struct{}, len(spec.StopWords))
	for _, w := range spec.StopWords {
		stopWords[w] = struct{}{}
	}

	return &Vectorizer{
		spec:      spec,
		token:     token,
		stopWords: stopWords,
		minN:      minN,
		maxN:      maxN,
		features:  features,
	}, nil
}

// Features returns the width of the feature space
func (v *Vectorizer) Features() int {
	return v.features
}

// Transform computes the feature vector for one document
func (v *Vectorizer) Transform(text string) SparseVector {
	tokens := v.tokens(text)
	vec := make(SparseVector)

	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := strings.Join(tokens[i:i+n], " ")
			if idx, ok := v.spec.Vocabulary[term]; ok {
				vec[idx]++
			}
		}
	}

	for idx, tf := range vec {
		if v.spec.Binary {
			tf = 1
		}
		if v.spec.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		if v.spec.Type == "tfidf" {
			tf *= v.spec.IDF[idx]
		}
		vec[idx] = tf
	}

	normalize(vec, v.spec.Norm)
	return vec
}

func (v *Vectorizer) tokens(text string) []string {
	raw := v.token.FindAllString(text, -1)
	if len(v.stopWords) == 0 {
		return raw
	}
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := v.stopWords[t]; !stop {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func normalize(vec SparseVector, norm string) {
	var total float64
	switch norm {
	case "l1":
		for _, w := range vec {
			total += math.Abs(w)
		}
	case "l2":
		for _, w := range vec {
			total += w * w
		}
		total = math.Sqrt(total)
	default:
		return
	}
	if total == 0 {
		return
	}
	for idx := range vec {
		vec[idx] /= total
	}
}
