package prompt

import (
	"fmt"
	"io/fs"
)

// Bundle groups the prompts of one domain with an error-message label.
type Bundle struct {
	label   string
	prompts map[string]map[string]string
}

// LoadBundle loads every YAML prompt under dir in fsys into a Bundle.
func LoadBundle(fsys fs.FS, dir string, label string) (*Bundle, error) {
	loaded, err := LoadYAMLDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	return &Bundle{label: label, prompts: loaded}, nil
}

// Prompt looks up a prompt map by name.
func (b *Bundle) Prompt(name string) (map[string]string, error) {
	if b == nil {
		return nil, fmt.Errorf("prompts not initialized")
	}
	return Get(b.prompts, name, b.label)
}

// Field fetches a required field from a prompt map.
func (b *Bundle) Field(data map[string]string, key string, label string) (string, error) {
	return Field(data, key, label)
}
