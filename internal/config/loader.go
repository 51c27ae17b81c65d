package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// configSchema is the JSON schema every run configuration must satisfy
// before it is decoded. Catching shape errors here gives one message per
// violation instead of a silently zero-valued struct.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["events"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string"},
    "events": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 1
    },
    "samples": {"type": "integer", "minimum": 1},
    "discardFirst": {"type": "boolean"},
    "workload": {
      "type": "object",
      "required": ["kind"],
      "additionalProperties": false,
      "properties": {
        "kind": {"enum": ["sleep", "spin", "alloc"]},
        "duration": {"type": ["string", "integer"]},
        "allocBytes": {"type": "integer", "minimum": 1},
        "allocCount": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

var compiledSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.json", strings.NewReader(configSchema)); err != nil {
		panic(fmt.Sprintf("embedded config schema: %v", err))
	}
	return compiler.MustCompile("config.json")
}()

// LoadConfig loads a run configuration from a file.
//
// The format is determined by extension: .json is JSON, everything else is
// parsed as YAML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses configuration data, validating it against the embedded
// schema before decoding.
func ParseConfig(data []byte, path string) (*Config, error) {
	isJSON := strings.ToLower(filepath.Ext(path)) == ".json"

	var raw any
	if isJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
		// The schema validator expects JSON-decoded values; round-trip
		// the YAML document through JSON to normalize them.
		normalized, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize config: %w", err)
		}
		if err := json.Unmarshal(normalized, &raw); err != nil {
			return nil, fmt.Errorf("failed to normalize config: %w", err)
		}
	}

	if err := compiledSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("config does not match schema: %w", err)
	}

	var cfg Config
	if isJSON {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	return &cfg, nil
}
