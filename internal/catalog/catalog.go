// Package catalog provides the fixed question banks for PrepDeck.
//
// Banks are grouped by category and loaded from YAML: an embedded default
// set, or an external file for custom banks. Selection is deterministic
// round-robin driven by a caller-supplied cursor.
package catalog

import (
	"fmt"
	"log/slog"
	"os"

	_ "embed"

	"github.com/prepdeck/PrepDeck/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

// Catalog holds the immutable question banks, keyed by category.
type Catalog struct {
	banks map[models.Category][]models.Question
}

// bankFile mirrors the YAML layout of a question bank file.
type bankFile struct {
	Coding     []models.Question `yaml:"coding"`
	Design     []models.Question `yaml:"design"`
	Behavioral []models.Question `yaml:"behavioral"`
}

// Load builds a catalog from the embedded default banks.
func Load() (*Catalog, error) {
	return parse(defaultQuestions)
}

// LoadFile builds a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file %s: %w", path, err)
	}
	slog.Debug("Catalog.LoadFile: read question file", "path", path, "bytes", len(data))
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse question banks: %w", err)
	}

	c := &Catalog{banks: map[models.Category][]models.Question{
		models.CategoryCoding:     f.Coding,
		models.CategoryDesign:     f.Design,
		models.CategoryBehavioral: f.Behavioral,
	}}

	seen := make(map[string]bool)
	for cat, bank := range c.banks {
		if len(bank) == 0 {
			return nil, fmt.Errorf("%w: %s", models.ErrEmptyCatalog, cat)
		}
		for i := range bank {
			q := &bank[i]
			q.Category = cat
			if q.ID == "" {
				return nil, fmt.Errorf("question %d in %s bank has no id", i, cat)
			}
			if seen[q.ID] {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			seen[q.ID] = true
			if q.Prompt == "" {
				return nil, fmt.Errorf("question %s has an empty prompt", q.ID)
			}
		}
	}

	slog.Debug("Catalog loaded",
		"coding", len(f.Coding), "design", len(f.Design), "behavioral", len(f.Behavioral))
	return c, nil
}

// QuestionByID finds a question by its unique id across all banks.
func (c *Catalog) QuestionByID(id string) (models.Question, bool) {
	for _, bank := range c.banks {
		for _, q := range bank {
			if q.ID == id {
				return q, true
			}
		}
	}
	return models.Question{}, false
}

// Len returns the number of questions in a category's bank.
func (c *Catalog) Len(category models.Category) int {
	return len(c.banks[category])
}

// NextQuestion returns the question at position cursor mod bank size.
// Deterministic and stateless: the caller owns and advances the cursor.
func (c *Catalog) NextQuestion(category models.Category, cursor int) (models.Question, error) {
	bank := c.banks[category]
	if len(bank) == 0 {
		return models.Question{}, fmt.Errorf("%w: %s", models.ErrEmptyCatalog, category)
	}
	idx := cursor % len(bank)
	if idx < 0 {
		idx += len(bank)
	}
	return bank[idx], nil
}

// HintAt returns the hint at index mod the hint count. Wraps rather than
// erroring when the index exceeds the hint count.
func HintAt(q models.Question, index int) (string, error) {
	if len(q.Hints) == 0 {
		return "", models.ErrNoHints
	}
	idx := index % len(q.Hints)
	if idx < 0 {
		idx += len(q.Hints)
	}
	return q.Hints[idx], nil
}
