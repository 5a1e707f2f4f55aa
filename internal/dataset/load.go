package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a dataset from a JSON or YAML file and indexes it.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	catalog, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	return catalog, nil
}

// Decode reads a dataset from r. JSON is accepted as a subset of YAML.
func Decode(r io.Reader) (*Catalog, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if ds.ID == "" {
		return nil, fmt.Errorf("dataset id is required")
	}
	return NewCatalog(&ds)
}
