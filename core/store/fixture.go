package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/siteplan/core/model"
)

// File is the layout of an event fixture file.
type File struct {
	Events []EventRecord `json:"events" yaml:"events"`
}

// LoadEvents reads events from a JSON or YAML file, choosing the format from
// the extension.
func LoadEvents(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	events, err := DecodeEvents(f, ext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// DecodeEvents reads a fixture from r in the given format ("yaml", "yml" or
// "json"). Events are converted but their intervals are not validated.
func DecodeEvents(r io.Reader, format string) ([]model.Event, error) {
	var file File
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
			return nil, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&file); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	events := make([]model.Event, 0, len(file.Events))
	for _, rec := range file.Events {
		ev, err := rec.ToEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
