// Package features converts raw VM telemetry into the fixed-order
// numeric vector consumed by the trained predictor.
package features

import (
	"fmt"

	"github.com/vmplace/vmplace/internal/domain"
)

// Vocabulary is a fixed, externally trained category->integer mapping
// for VM labels. It is immutable after construction.
type Vocabulary struct {
	classes []string
	index   map[string]int
}

// NewVocabulary builds a vocabulary from labels in encoding order.
func NewVocabulary(classes []string) (*Vocabulary, error) {
	v := &Vocabulary{
		classes: make([]string, 0, len(classes)),
		index:   make(map[string]int, len(classes)),
	}
	for _, c := range classes {
		if c == "" {
			return nil, fmt.Errorf("%w: empty class label", domain.ErrInvalidArgument)
		}
		if _, ok := v.index[c]; ok {
			return nil, fmt.Errorf("%w: duplicate class label %q", domain.ErrAlreadyExists, c)
		}
		v.index[c] = len(v.classes)
		v.classes = append(v.classes, c)
	}
	return v, nil
}

// Encode maps a label to its integer code. An unrecognized label is an
// error, never a silent default.
func (v *Vocabulary) Encode(label string) (int, error) {
	i, ok := v.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: vm label %q", domain.ErrUnknownCategory, label)
	}
	return i, nil
}

// Decode maps an integer code back to its label.
func (v *Vocabulary) Decode(code int) (string, error) {
	if code < 0 || code >= len(v.classes) {
		return "", fmt.Errorf("%w: class code %d", domain.ErrUnknownCategory, code)
	}
	return v.classes[code], nil
}

// Classes returns the labels in encoding order.
func (v *Vocabulary) Classes() []string {
	out := make([]string, len(v.classes))
	copy(out, v.classes)
	return out
}
