// Package profile models the subset of a Croissant-like data profile that
// profilelens consults: top-level metadata (keywords, description, headline),
// the distribution list, and record sets with their fields. Everything else
// in a profile document is ignored; no schema validation is attempted.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// DataProfile is the parsed view of one profile JSON document.
type DataProfile struct {
	ID           string              `json:"@id"`
	Name         string              `json:"name"`
	Headline     string              `json:"headline"`
	Description  string              `json:"description"`
	Keywords     StringList          `json:"keywords"`
	Distribution []DistributionEntry `json:"distribution"`
	RecordSets   []RecordSet         `json:"recordSet"`
}

// DistributionEntry is one declared physical resource (file or folder).
type DistributionEntry struct {
	ID             string `json:"@id"`
	Type           string `json:"@type"`
	Name           string `json:"name"`
	EncodingFormat string `json:"encodingFormat"`
	Includes       string `json:"includes"`
	ContentURL     string `json:"contentUrl"`
}

// RecordSet is a named group of fields describing a profile's logical schema.
type RecordSet struct {
	ID     string  `json:"@id"`
	Name   string  `json:"name"`
	Fields []Field `json:"field"`
}

// Field is one record-set entry, optionally bound back to a distribution
// entry through its source reference.
type Field struct {
	Type     string     `json:"@type"`
	Name     string     `json:"name"`
	Source   Source     `json:"source"`
	Keywords StringList `json:"keywords"`
	Samples  StringList `json:"sample"`
}

// Source is a field's back-reference to the distribution entry it comes from.
type Source struct {
	FileSet    Ref `json:"fileSet"`
	FileObject Ref `json:"fileObject"`
}

// Ref is a reference to another entity by @id.
type Ref struct {
	ID string `json:"@id"`
}

// StringList unmarshals a JSON value that may be a single string or an array.
// Non-string array entries are dropped.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StringList, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	*s = out
	return nil
}

// Load reads and parses a profile file.
func Load(path string) (*DataProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return Parse(data)
}

// Parse parses profile JSON bytes.
func Parse(data []byte) (*DataProfile, error) {
	var dp DataProfile
	if err := json.Unmarshal(data, &dp); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	return &dp, nil
}
