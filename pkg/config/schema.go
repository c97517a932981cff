package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "reviewer.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Schema returns the JSON schema config files are validated against.
func Schema() []byte {
	return schemaJSON
}

// SchemaError reports a config file whose structure does not match the schema,
// such as a misspelled key or a string where a number belongs.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s does not match the config schema: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ValidateFile checks a config file structurally against the schema and then
// semantically with Validate. Structural checks catch unknown keys, which
// Load silently ignores.
func ValidateFile(path string) error {
	k, err := loadKoanf(path)
	if err != nil {
		return err
	}

	sch, err := loadSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(k.Raw())
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	if err := sch.Validate(inst); err != nil {
		return &SchemaError{Path: path, Err: err}
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	return cfg.Validate()
}
