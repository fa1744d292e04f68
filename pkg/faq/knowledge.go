package faq

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/tafel/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultBase []byte

// ErrInvalidKnowledgeBase is returned when a knowledge base fails validation.
var ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

// KnowledgeBase is the ordered set of FAQ records plus the fallback answer.
// It is loaded once and never mutated afterwards.
type KnowledgeBase struct {
	Records  []domain.Record `yaml:"records" json:"records"`
	Fallback string          `yaml:"fallback" json:"fallback"`
}

// Default returns the embedded restaurant knowledge base.
func Default() *KnowledgeBase {
	kb, err := Parse(defaultBase)
	if err != nil {
		panic(fmt.Sprintf("embedded knowledge base is invalid: %v", err))
	}
	return kb
}

// Load reads a knowledge base file (YAML or JSON).
// An empty path returns the embedded default.
func Load(path string) (*KnowledgeBase, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var kb KnowledgeBase
		if err := json.Unmarshal(data, &kb); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return prepare(&kb)
	}
	return Parse(data)
}

// Parse decodes a YAML knowledge base.
func Parse(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	return prepare(&kb)
}

func prepare(kb *KnowledgeBase) (*KnowledgeBase, error) {
	for i := range kb.Records {
		kb.Records[i].Keywords = normalizeKeywords(kb.Records[i].Keywords)
	}
	if err := kb.Validate(); err != nil {
		return nil, err
	}
	return kb, nil
}

// normalizeKeywords runs every keyword through the query tokenizer and
// de-duplicates, keeping first occurrence order. A keyword that still spans
// several tokens is kept joined so Validate can report it.
func normalizeKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.Join(tokenize(kw), " ")
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// Validate checks the structural invariants of the knowledge base.
func (kb *KnowledgeBase) Validate() error {
	if strings.TrimSpace(kb.Fallback) == "" {
		return fmt.Errorf("%w: fallback answer is empty", ErrInvalidKnowledgeBase)
	}

	ids := make(map[int]struct{}, len(kb.Records))
	for _, r := range kb.Records {
		if _, dup := ids[r.ID]; dup {
			return fmt.Errorf("%w: duplicate record id %d", ErrInvalidKnowledgeBase, r.ID)
		}
		ids[r.ID] = struct{}{}

		if len(r.Keywords) == 0 {
			return fmt.Errorf("%w: record %d has no keywords", ErrInvalidKnowledgeBase, r.ID)
		}
		for _, kw := range r.Keywords {
			// Queries are matched token by token, so a keyword must be one token.
			if tokens := tokenize(kw); len(tokens) != 1 || tokens[0] != kw {
				return fmt.Errorf("%w: record %d keyword %q is not a single normalized word", ErrInvalidKnowledgeBase, r.ID, kw)
			}
		}
		if strings.TrimSpace(r.Answer) == "" {
			return fmt.Errorf("%w: record %d has no answer", ErrInvalidKnowledgeBase, r.ID)
		}
	}
	return nil
}
