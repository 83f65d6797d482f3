// Package ruleset loads the read-only content tables of the arena (difficulties,
// classes, skills, statuses, terrain, combos, personalities) from YAML and checks
// their referential integrity once at startup.
package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// decodeFile parses the YAML document at path into out, rejecting unknown fields.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// loadDir reads every .yaml file in dir, in lexical order, as one T each.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed entries (may be empty slice) or a non-nil error.
func loadDir[T any](dir string) ([]*T, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(files))
	for _, path := range files {
		var v T
		if err := decodeFile(path, &v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

// yamlFiles returns the .yaml and .yml files directly inside dir, sorted by name.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
