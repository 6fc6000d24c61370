package scoring

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/skillfit/internal/skills"
)

//go:embed roles.schema.json
var roleSchema string

// FieldError is a single schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError reports every violation found in a role table document.
type SchemaError struct {
	Path   string
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("role table %q is invalid: %s", e.Path, strings.Join(parts, "; "))
}

type roleEntry struct {
	Name   string   `mapstructure:"name"`
	Skills []string `mapstructure:"skills"`
}

// LoadTable reads a JSON role table of the form
// [{"name": "...", "skills": ["..."]}] and validates it before use.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading role table: %w", err)
	}
	return ParseTable(path, data)
}

// ParseTable validates and decodes role table JSON. The name is used in errors.
func ParseTable(name string, data []byte) (*Table, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding role table %q: %w", name, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(roleSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating role table %q: %w", name, err)
	}
	if !result.Valid() {
		schemaErr := &SchemaError{Path: name, Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, schemaErr
	}

	var entries []roleEntry
	if err := mapstructure.Decode(doc, &entries); err != nil {
		return nil, fmt.Errorf("decoding role table %q: %w", name, err)
	}

	roles := make([]RoleProfile, 0, len(entries))
	for _, entry := range entries {
		roles = append(roles, RoleProfile{Name: strings.TrimSpace(entry.Name), Skills: skills.CanonicalSet(entry.Skills...)})
	}
	return NewTable(roles), nil
}
