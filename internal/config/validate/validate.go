package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	sigsyaml "sigs.k8s.io/yaml"
)

const schemaBase = "https://open-edge-platform.github.io/os-patch-composer/schema/"

//go:embed schema/repository.schema.json
var repositorySchema []byte

//go:embed schema/config.schema.json
var configSchema []byte

// ValidateAgainstSchema compiles schema under name, resolves ref within it
// (empty for the root) and validates the JSON document data.
func ValidateAgainstSchema(name string, schema []byte, data []byte, ref string) error {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("loading schema %s: %w", name, err)
	}
	sch, err := c.Compile(name + ref)
	if err != nil {
		return fmt.Errorf("compiling schema %s%s: %w", name, ref, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation against %s failed: %w", name, err)
	}
	return nil
}

// ValidateRepositoryJSON validates a solver repository dump.
func ValidateRepositoryJSON(data []byte) error {
	return ValidateAgainstSchema(schemaBase+"repository.schema.json", repositorySchema, data, "")
}

// ValidateConfigJSON validates a configuration document.
func ValidateConfigJSON(data []byte) error {
	return ValidateAgainstSchema(schemaBase+"config.schema.json", configSchema, data, "")
}

// YAMLToJSON converts a YAML document so it can be validated and decoded
// as JSON.
func YAMLToJSON(data []byte) ([]byte, error) {
	j, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return j, nil
}
