package pipeline

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed extracted_schema.json
var extractedSchema []byte

var compiledExtractedSchema = mustCompile(extractedSchema)

func mustCompile(raw []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extracted.json", bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("add extracted schema: %v", err))
	}
	schema, err := compiler.Compile("extracted.json")
	if err != nil {
		panic(fmt.Sprintf("compile extracted schema: %v", err))
	}
	return schema
}

// validateExtractedSnapshot checks the persisted field snapshot before it is
// written. A snapshot that fails here means an extraction rule regressed.
func validateExtractedSnapshot(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := compiledExtractedSchema.Validate(v); err != nil {
		return fmt.Errorf("snapshot does not match schema: %w", err)
	}
	return nil
}
