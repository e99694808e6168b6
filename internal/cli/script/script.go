// Package script loads YAML command scripts: a list of (plugin, command,
// args) entries queued before a run. The document structure is validated
// against a JSON schema before any entry is handed to the manager, so a
// malformed script fails as a whole with a pointed message instead of a
// cascade of queue errors.
package script

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Entry is one scripted command invocation.
type Entry struct {
	Plugin  string   `yaml:"plugin" json:"plugin"`
	Command string   `yaml:"command" json:"command"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// scriptSchema constrains the script document shape. Unknown plugin or
// command names are not checked here; ordinary queue validation reports
// those per entry.
const scriptSchema = `{
  "type": "object",
  "required": ["commands"],
  "additionalProperties": false,
  "properties": {
    "commands": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["plugin", "command"],
        "additionalProperties": false,
        "properties": {
          "plugin": {"type": "string", "minLength": 1},
          "command": {"type": "string", "minLength": 1},
          "args": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

type scriptDoc struct {
	Commands []Entry `yaml:"commands" json:"commands"`
}

// Load reads, validates and parses the script at path.
func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates and parses script content.
func Parse(raw []byte) ([]Entry, error) {
	// YAML -> generic -> JSON so the schema validator can see it.
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("script is not valid YAML: %w", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to convert script to JSON: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(scriptSchema),
		gojsonschema.NewBytesLoader(asJSON))
	if err != nil {
		return nil, fmt.Errorf("script schema validation failed: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("invalid script: %s", strings.Join(problems, "; "))
	}

	var doc scriptDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	return doc.Commands, nil
}
