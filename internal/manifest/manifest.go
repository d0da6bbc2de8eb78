// Package manifest reads and writes the version field of project manifests.
//
// JSON manifests (package.json) are edited in place so that key order,
// indentation and trailing newline survive. YAML manifests are edited
// through a yaml.v3 node tree, which keeps comments.
package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/versioner/internal/errors"
)

// Format is a manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format of path from its extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Exists reports whether the manifest at path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadVersion returns the version stored in the manifest at path.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	switch FormatOf(path) {
	case FormatYAML:
		var doc struct {
			Version string `yaml:"version"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return "", err
		}
		return doc.Version, nil
	default:
		var doc struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", err
		}
		return doc.Version, nil
	}
}

// WriteVersion sets the version of the manifest at path.
func WriteVersion(path, version string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var updated []byte
	switch FormatOf(path) {
	case FormatYAML:
		updated, err = setYAMLVersion(data, version)
	default:
		updated, err = setJSONVersion(data, version)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, updated, info.Mode().Perm())
}

func setJSONVersion(data []byte, version string) ([]byte, error) {
	if !json.Valid(data) {
		return nil, errors.NewValidationError("manifest is not valid JSON")
	}

	start, end, err := topLevelVersion(data)
	if err != nil {
		return nil, err
	}

	quoted, err := json.Marshal(version)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(quoted))
	buf.Write(data[:start])
	buf.Write(quoted)
	buf.Write(data[end:])
	return buf.Bytes(), nil
}

// topLevelVersion returns the byte span of the string value of the
// top-level "version" member of a valid JSON document. Members of nested
// objects are skipped whole.
func topLevelVersion(data []byte) (start, end int, err error) {
	invalid := func(cause error) error {
		return errors.NewValidationError("manifest is not valid JSON").WithCause(cause)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return 0, 0, invalid(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return 0, 0, errors.NewValidationError("manifest is not a JSON object")
	}

	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return 0, 0, invalid(err)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return 0, 0, invalid(err)
		}
		if key != "version" {
			continue
		}

		if len(value) == 0 || value[0] != '"' {
			return 0, 0, errors.NewValidationError("manifest version is not a string").
				WithField("version").WithValue(string(value))
		}
		stop := int(dec.InputOffset())
		return stop - len(value), stop, nil
	}

	return 0, 0, errors.NewValidationError("manifest has no version field").WithField("version")
}

func setYAMLVersion(data []byte, version string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.NewValidationError("manifest is not a YAML mapping")
	}

	mapping := doc.Content[0]
	set := false
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == "version" {
			value := mapping.Content[i+1]
			value.Kind = yaml.ScalarNode
			value.Tag = "!!str"
			value.Value = version
			set = true
			break
		}
	}
	if !set {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "version"},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: version},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
