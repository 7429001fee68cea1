// Package schema validates export artifacts against the declared schema
// document. The same logic runs against freshly generated bytes before a
// write and against committed artifacts in CI.
package schema

import (
	"os"
	"regexp"

	"github.com/goccy/go-yaml"

	"github.com/tech4life-beyond/toil-registry/internal/embedded"
	"github.com/tech4life-beyond/toil-registry/pkg/errors"
)

// Document is the declared export schema: required fields, the identifier
// pattern, and the enumerated status and license-state values.
type Document struct {
	SchemaVersion         string   `yaml:"schema_version"`
	TOILIDPattern         string   `yaml:"toil_id_pattern"`
	RequiredProductFields []string `yaml:"required_product_fields"`
	Statuses              []string `yaml:"statuses"`
	LicenseStates         []string `yaml:"license_states"`

	idPattern *regexp.Regexp
}

// Load reads and parses the schema document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return parse(path, data)
}

// LoadOrEmbedded loads the schema document at path, falling back to the
// embedded copy when the file does not exist.
func LoadOrEmbedded(path string) (*Document, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Embedded()
}

// Embedded parses the schema document shipped inside the binary.
func Embedded() (*Document, error) {
	return parse("embedded schema", embedded.SchemaYAML)
}

func parse(name string, data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if doc.SchemaVersion == "" {
		return nil, &errors.ConfigError{Component: "schema", Message: "schema_version is not declared"}
	}
	if doc.TOILIDPattern == "" {
		return nil, &errors.ConfigError{Component: "schema", Message: "toil_id_pattern is not declared"}
	}
	pattern, err := regexp.Compile(doc.TOILIDPattern)
	if err != nil {
		return nil, &errors.ConfigError{Component: "schema", Message: "invalid toil_id_pattern", Err: err}
	}
	doc.idPattern = pattern
	return &doc, nil
}
