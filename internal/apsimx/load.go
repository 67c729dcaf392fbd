package apsimx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileExtension is the extension of the engine's model files.
const FileExtension = ".apsimx"

// Load reads and decodes a model file.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	root, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model file %s: %w", path, err)
	}
	return root, nil
}

// LoadBytes decodes a model tree from JSON.
func LoadBytes(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Type == "" {
		return nil, fmt.Errorf("root object has no $type")
	}
	return &root, nil
}

// FromMap builds a tree from a generic Go mirror of the file schema, as
// produced by decoding JSON or YAML into map[string]any.
func FromMap(m map[string]any) (*Node, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode model map: %w", err)
	}
	return LoadBytes(data)
}

// Save writes the tree rooted at n to path, indented the way the engine's
// own editor writes files.
func (n *Node) Save(path string) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model %q: %w", n.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file %s: %w", path, err)
	}
	return nil
}

// ExamplePath locates a bundled example by name (case-insensitive, with or
// without extension). Examples ship next to the engine's bin directory.
func ExamplePath(binDir, name string) (string, error) {
	want := strings.ToLower(strings.TrimSuffix(name, FileExtension)) + FileExtension
	dirs := []string{
		filepath.Join(binDir, "..", "Examples"),
		filepath.Join(binDir, "Examples"),
	}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.ToLower(e.Name()) == want {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrExampleNotFound, name, strings.Join(dirs, ", "))
}

// LoadExample loads a bundled example such as "Maize".
func LoadExample(binDir, name string) (*Node, string, error) {
	path, err := ExamplePath(binDir, name)
	if err != nil {
		return nil, "", err
	}
	root, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return root, path, nil
}
