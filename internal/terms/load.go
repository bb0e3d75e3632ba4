package terms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadError reports malformed reference data. It is fatal at startup:
// a pipeline is never built on a partially loaded dictionary.
type LoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := "dictionary load failed"
	if e.Source != "" {
		msg += " (" + e.Source + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// Source data format: category name mapped to its term entries.
type sourceFile map[string][]Entry

// Load reads a dictionary from r in the given format ("json", "yaml").
func Load(r io.Reader, format string) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Reason: "reading source", Err: err}
	}

	var src sourceFile
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, &LoadError{Reason: "parsing JSON", Err: err}
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &src); err != nil {
			return nil, &LoadError{Reason: "parsing YAML", Err: err}
		}
	default:
		return nil, &LoadError{Reason: fmt.Sprintf("unsupported dictionary format %q", format)}
	}

	if len(src) == 0 {
		return nil, &LoadError{Reason: "source defines no categories"}
	}

	entries := make(map[Category][]Entry, len(src))
	for name, list := range src {
		cat, err := ParseCategory(name)
		if err != nil {
			return nil, &LoadError{Reason: err.Error()}
		}
		entries[cat] = list
	}
	return New(entries)
}

// LoadFile loads a dictionary from path, inferring the format from the
// file extension (.json, .yaml, .yml).
func LoadFile(path string) (*Dictionary, error) {
	if path == "" {
		return nil, &LoadError{Reason: "dictionary path cannot be empty"}
	}
	f, err := os.Open(path) //nolint:gosec // G304: opening a user-provided dictionary file is expected
	if err != nil {
		return nil, &LoadError{Source: path, Reason: "opening source", Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing dictionary file: %v\n", err)
		}
	}()

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return nil, &LoadError{Source: path, Reason: "cannot infer format without a file extension"}
	}
	d, err := Load(f, format)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Source == "" {
			le.Source = path
		}
		return nil, err
	}
	return d, nil
}
