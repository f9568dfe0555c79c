package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Item is one multiple-choice question over a long context. The JSON tags
// carry the exact LongBench-v2 field names, uppercase choice suffixes
// included, so an exact-match decoder reads the same files; stdlib decoding
// additionally accepts lowercase variants through its case-insensitive
// fallback.
type Item struct {
	ID       string `json:"id,omitempty"`
	Context  string `json:"context"`
	Question string `json:"question"`
	ChoiceA  string `json:"choice_A"`
	ChoiceB  string `json:"choice_B"`
	ChoiceC  string `json:"choice_C"`
	ChoiceD  string `json:"choice_D"`
	Answer   string `json:"answer"`
}

// Validate checks that the item can be asked and graded.
func (it *Item) Validate() error {
	if strings.TrimSpace(it.Context) == "" {
		return fmt.Errorf("context is empty")
	}
	if strings.TrimSpace(it.Question) == "" {
		return fmt.Errorf("question is empty")
	}
	answer := strings.ToUpper(strings.TrimSpace(it.Answer))
	switch answer {
	case "A", "B", "C", "D":
		return nil
	default:
		return fmt.Errorf("answer %q is not one of A-D", it.Answer)
	}
}

// LoadDataset reads a JSON array of items from path. Items without an ID get
// a generated one so per-item log lines stay correlatable.
func LoadDataset(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, path)
	}

	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("dataset item %d: %w", i, err)
		}
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	return items, nil
}

// FilterByTokenBudget drops items whose context exceeds maxTokens, keeping
// run times predictable on long-context datasets. maxTokens <= 0 keeps
// everything.
func FilterByTokenBudget(items []Item, counter TokenCounter, maxTokens int) []Item {
	if maxTokens <= 0 {
		return items
	}
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if counter.Count(it.Context) <= maxTokens {
			kept = append(kept, it)
		}
	}
	return kept
}
