package classify

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/paperlens/paperlens/constants"
)

// Label is one classifiable document type: its lexical keywords, an optional
// precomputed embedding, and the per-type confidence floor applied to
// extracted fields downstream.
type Label struct {
	Type                constants.DocumentType `yaml:"type"`
	Keywords            []string               `yaml:"keywords"`
	Embedding           []float64              `yaml:"-"`
	ConfidenceThreshold float64                `yaml:"confidence_threshold"`
}

// LabelSource yields the current label set. Backed by the labels table in
// production and by the embedded seed in tests and first boot.
type LabelSource interface {
	ListLabels(ctx context.Context) ([]Label, error)
}

//go:embed labels.yaml
var seedLabels []byte

// SeedLabels parses the built-in label definitions shipped with the binary.
func SeedLabels() ([]Label, error) {
	var doc struct {
		Labels []Label `yaml:"labels"`
	}
	if err := yaml.Unmarshal(seedLabels, &doc); err != nil {
		return nil, fmt.Errorf("parse seed labels: %w", err)
	}
	return doc.Labels, nil
}

// StaticLabels adapts a fixed slice to LabelSource.
type StaticLabels []Label

func (s StaticLabels) ListLabels(context.Context) ([]Label, error) { return s, nil }

// RepresentativeSentence synthesizes the text whose embedding stands in for a
// document type. Generated once per label and cached.
func RepresentativeSentence(label Label) string {
	sentence := fmt.Sprintf("This document is a %s.", label.Type.HumanLabel())
	if len(label.Keywords) > 0 {
		sentence += " It typically mentions: "
		for i, kw := range label.Keywords {
			if i > 0 {
				sentence += ", "
			}
			sentence += kw
		}
		sentence += "."
	}
	return sentence
}
