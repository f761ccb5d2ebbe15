// Package dataset reads method corpora and writes selection reports.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	caseselection "github.com/Mineru98/case-selection-go"
)

// Record fields produced by Load
const (
	FieldMethodName = "method_name"
	FieldFileCode   = "file_code"
	FieldMethodCode = "method_code"
)

// LoadJSON reads a corpus file, see Load
func LoadJSON(path string) ([]caseselection.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	records, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Load decodes a JSON object mapping item names to objects with at least
// file_code and method_code. Records keep the order of the file; the item name
// is stored under method_name. Non-string fields are ignored.
func Load(r io.Reader) ([]caseselection.Record, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	records := make([]caseselection.Record, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read item name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var content map[string]json.RawMessage
		if err := dec.Decode(&content); err != nil {
			return nil, fmt.Errorf("decode item %q: %w", name, err)
		}

		record := caseselection.Record{FieldMethodName: name}
		for field, raw := range content {
			var value string
			if err := json.Unmarshal(raw, &value); err == nil {
				record[field] = value
			}
		}
		for _, required := range []string{FieldFileCode, FieldMethodCode} {
			if _, ok := record[required]; !ok {
				return nil, fmt.Errorf("item %q has no %s", name, required)
			}
		}
		records = append(records, record)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return records, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
