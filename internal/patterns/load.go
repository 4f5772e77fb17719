package patterns

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed default_patterns.yaml
var defaultPatterns []byte

// ErrEmptySet is returned when a pattern file declares no patterns.
var ErrEmptySet = errors.New("pattern set is empty")

// Default returns the built-in pattern set.
func Default() (*Set, error) {
	return ParseYAML(defaultPatterns)
}

// Load reads a pattern file. The extension picks the decoder: .json, .toml,
// anything else is read as YAML. Declaration order is preserved.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}

	var set *Set
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		set, err = ParseJSON(data)
	case ".toml":
		set, err = ParseTOML(data)
	default:
		set, err = ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return set, nil
}

// ParseYAML decodes a top-level mapping of name to source.
func ParseYAML(data []byte) (*Set, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, ErrEmptySet
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of name to pattern", root.Line)
	}

	var list []Pattern
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: pattern %q must be a string", v.Line, k.Value)
		}
		list = append(list, Pattern{Name: k.Value, Source: v.Value})
	}
	return build(list)
}

// ParseJSON decodes a top-level object of name to source.
func ParseJSON(data []byte) (*Set, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected an object of name to pattern")
	}

	var list []Pattern
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name := tok.(string)

		var src string
		if err := dec.Decode(&src); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", name, err)
		}
		list = append(list, Pattern{Name: name, Source: src})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after the pattern object")
	}
	return build(list)
}

// ParseTOML decodes top-level string keys of name to source.
func ParseTOML(data []byte) (*Set, error) {
	var raw map[string]string
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	var list []Pattern
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		list = append(list, Pattern{Name: key[0], Source: raw[key[0]]})
	}
	return build(list)
}

func build(list []Pattern) (*Set, error) {
	if len(list) == 0 {
		return nil, ErrEmptySet
	}
	return New(list...)
}
