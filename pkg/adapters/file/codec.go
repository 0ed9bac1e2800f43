package file

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/project"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension. Anything that is
// not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Ext returns the canonical extension, dot included.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Encode serializes a document.
func Encode(doc *project.Document, f Format) ([]byte, error) {
	if f == FormatYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a document. The raw payload is first read into a generic
// map and then decoded with mapstructure, so hand-edited files may use
// quoted numbers for coordinates and omit optional fields.
func Decode(data []byte, f Format) (*project.Document, error) {
	var raw map[string]any
	var err error
	if f == FormatYAML {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", f, err)
	}

	var doc project.Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       propertyValueHook,
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = project.CurrentVersion
	}
	return &doc, nil
}

var valueType = reflect.TypeOf(domain.Value{})

// propertyValueHook turns decoded scalars into domain.Value. It runs before
// weak typing, so a property holding a number is rejected rather than
// silently becoming a string.
func propertyValueHook(from, to reflect.Type, data any) (any, error) {
	if to != valueType {
		return data, nil
	}
	return domain.ValueOf(data)
}
