package form

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const definitionSchemaURL = "schema://promptform/definition.json"

// definitionSchema is deliberately loose about grading members: those are
// decoded leniently by Number/Answer/Column. It rejects documents that are
// not shaped like a form at all.
var definitionSchema = map[string]any{
	"type":     "object",
	"required": []any{"title", "fields"},
	"properties": map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"isQuiz":      map[string]any{"type": "boolean"},
		"quizType":    map[string]any{"enum": []any{"KNOWLEDGE", "OUTCOME", ""}},
		"fields": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "type"},
				"properties": map[string]any{
					"name":    map[string]any{"type": "string"},
					"type":    map[string]any{"enum": fieldTypeEnum()},
					"options": map[string]any{"type": "array", "items": map[string]any{"type": []any{"string", "number"}}},
					"rows":    map[string]any{"type": "array", "items": map[string]any{"type": []any{"string", "number"}}},
					"columns": map[string]any{"type": "array"},
					"scoring": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"outcomeId"},
						},
					},
				},
			},
		},
		"resultPages": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"title"},
				"properties": map[string]any{
					"title":      map[string]any{"type": "string"},
					"outcomeId":  map[string]any{"type": "string"},
					"scoreRange": map[string]any{"type": "object"},
				},
			},
		},
	},
}

func fieldTypeEnum() []any {
	out := make([]any, len(FieldTypes))
	for i, t := range FieldTypes {
		out[i] = string(t)
	}
	return out
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(definitionSchemaURL, definitionSchema); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(definitionSchemaURL)
	})
	return compiled, compileErr
}

// ParseDefinition validates raw JSON against the form schema and decodes it.
// Errors wrap ErrInvalidDefinition.
func ParseDefinition(raw []byte) (Definition, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Definition{}, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidDefinition, err)
	}
	sch, err := schema()
	if err != nil {
		return Definition{}, fmt.Errorf("compile form schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := checkNames(def); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// checkNames rejects duplicate or blank names on answerable fields, which
// would make submissions ambiguous.
func checkNames(def Definition) error {
	seen := map[string]bool{}
	for i, f := range def.Fields {
		if f.Type == FieldSection || f.Type == FieldSubmit {
			continue
		}
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("%w: field #%d has no name", ErrInvalidDefinition, i+1)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate field name %q", ErrInvalidDefinition, name)
		}
		seen[name] = true
	}
	return nil
}
