package curriculum

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema/exercises.schema.json
var exercisesSchema []byte

type exerciseSchema struct {
	schema *gojsonschema.Schema
}

func newExerciseSchema() (*exerciseSchema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(exercisesSchema))
	if err != nil {
		return nil, fmt.Errorf("compile exercise schema: %w", err)
	}
	return &exerciseSchema{schema: s}, nil
}

// validate checks a YAML exercise document against the JSON schema.
func (s *exerciseSchema) validate(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
}
