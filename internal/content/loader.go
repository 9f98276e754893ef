// Package content loads game models from JSON or YAML documents and
// generates new ones with an LLM.
package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/conceptlink/internal/graph"
)

// SupportedMajor is the content format major version this build reads.
const SupportedMajor = "v1"

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor infers the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported content file extension %q", filepath.Ext(path))
}

//go:embed schema/model.schema.json
var modelSchemaJSON []byte

const modelSchemaURL = "schema://conceptlink/model.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func modelSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(modelSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse model schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(modelSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add model schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(modelSchemaURL)
	})
	return compiledSchema, schemaErr
}

// LoadFile reads and validates a game model from disk.
func LoadFile(path string) (*graph.Model, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Decode parses a document, checks it against the model schema and the
// supported version, and runs the model's structural validation. Any
// failure means the model cannot be played.
func Decode(data []byte, format Format) (*graph.Model, error) {
	raw, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	sch, err := modelSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var m graph.Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := CheckVersion(m.Version); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// toJSON normalizes a document to JSON bytes so both formats share one
// validation and decode path.
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			return nil, fmt.Errorf("document is not valid JSON")
		}
		return data, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("convert YAML to JSON: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// CheckVersion accepts semantic versions with the supported major. A
// missing "v" prefix is tolerated.
func CheckVersion(version string) error {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("content version %q is not a semantic version", version)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("content version %s is not supported (want %s.x.x)", version, SupportedMajor)
	}
	return nil
}

// Encode serializes a model in the given format.
func Encode(m *graph.Model, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(m, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// WriteFile encodes m using the format implied by path.
func WriteFile(path string, m *graph.Model) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(m, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
