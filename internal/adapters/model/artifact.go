// Package model evaluates pre-trained text classifiers exported as JSON
// artifacts. Training happens elsewhere; this package only loads the exported
// vocabulary, weights and class labels and runs inference over them.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrIncompatibleArtifact is returned when an artifact cannot be evaluated
var ErrIncompatibleArtifact = errors.New("incompatible model artifact")

// supportedFormatVersion is the newest artifact layout this package reads
const supportedFormatVersion = 1

// Labels holds class labels. Exporters write them as strings, integers or
// booleans depending on the training data; all are kept as strings.
type Labels []string

// UnmarshalJSON accepts a JSON array of strings, numbers or booleans
func (l *Labels) UnmarshalJSON(data []byte) error {
	var raw []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	labels := make(Labels, len(raw))
	for i, v := range raw {
		switch value := v.(type) {
		case string:
			labels[i] = value
		case json.Number:
			labels[i] = numberLabel(value)
		case bool:
			labels[i] = strconv.FormatBool(value)
		default:
			return fmt.Errorf("unsupported class label %v", v)
		}
	}
	*l = labels
	return nil
}

// numberLabel renders 1.0 as "1" so float-typed integer classes compare equal
func numberLabel(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// decodeFile strictly decodes a JSON artifact so that fields from an
// unsupported exporter fail loudly at startup
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIncompatibleArtifact, path, err)
	}
	return nil
}

func checkFormatVersion(path string, version int) error {
	if version < 0 || version > supportedFormatVersion {
		return fmt.Errorf("%w: %s: format version %d not supported", ErrIncompatibleArtifact, path, version)
	}
	return nil
}
