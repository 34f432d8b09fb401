package universe

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File reads the universe from a YAML file on every call, so edits apply
// to the next batch without a restart:
//
//	tickers:
//	  - RELIANCE.NS
//	  - TCS.NS
type File struct {
	path string
}

type universeFile struct {
	Tickers []string `yaml:"tickers"`
}

// NewFile creates a file-backed universe
func NewFile(path string) *File {
	return &File{path: path}
}

// Name implements contracts.UniverseSource
func (f *File) Name() string { return "file" }

// Symbols implements contracts.UniverseSource
func (f *File) Symbols(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	var uf universeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&uf); err != nil {
		return nil, fmt.Errorf("parse universe file: %w", err)
	}

	return clean(uf.Tickers), nil
}
