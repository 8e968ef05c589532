package scanning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zombor/receipt-reader/internal/extract"
)

// DecodeFragments parses a fragment document. It accepts either an object
// ({"width":..,"height":..,"fragments":[..]}) or a bare fragment array, with
// or without a surrounding markdown code block. Fragment ids are reassigned
// to their position.
func DecodeFragments(data []byte) (*extract.FragmentSet, error) {
	text := strings.TrimSpace(string(data))

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("empty fragment document")
	}

	var set extract.FragmentSet
	switch text[0] {
	case '[':
		if err := json.Unmarshal([]byte(text), &set.Fragments); err != nil {
			return nil, fmt.Errorf("unmarshaling fragment array: %w", err)
		}
	case '{':
		if err := json.Unmarshal([]byte(text), &set); err != nil {
			return nil, fmt.Errorf("unmarshaling fragment document: %w", err)
		}
	default:
		return nil, fmt.Errorf("no JSON object or array found in document")
	}

	if set.Fragments == nil {
		return nil, fmt.Errorf("document has no fragments array")
	}
	for i := range set.Fragments {
		set.Fragments[i].ID = i
	}

	return &set, nil
}
