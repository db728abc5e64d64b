package loader

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/specialistvlad/stagegrid/internal/config"
)

//go:embed schema/arrangements.schema.json
var schemaSource []byte

const schemaURL = "arrangements.schema.json"

type schema struct {
	compiled *jsonschema.Schema
}

func mustCompileSchema() *schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaSource))
	if err != nil {
		panic(fmt.Sprintf("embedded arrangement schema is not valid JSON: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		panic(fmt.Sprintf("cannot add embedded arrangement schema: %v", err))
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("cannot compile embedded arrangement schema: %v", err))
	}
	return &schema{compiled: compiled}
}

// validate checks a JSON document against the schema. Malformed JSON is a
// read error, a schema violation a configuration error.
func (s *schema) validate(source string, data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return config.ReadError(source, err)
	}
	if err := s.compiled.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return config.Invalidf("%s does not match the arrangement schema: %v", source, verr)
		}
		return config.Invalidf("%s: %v", source, err)
	}
	return nil
}
