package capability

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/dyike/hedgehog/internal/models"
)

// resultSchema is the reflected JSON schema of one result variant.
type resultSchema struct {
	text   string
	loader *gojsonschema.Schema
}

// Check reports every schema violation in doc. A doc that is not JSON at
// all yields a single problem.
func (s *resultSchema) Check(doc string) []string {
	res, err := s.loader.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return []string{fmt.Sprintf("output is not valid JSON: %v", err)}
	}
	if res.Valid() {
		return nil
	}
	problems := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		problems = append(problems, e.String())
	}
	return problems
}

type schemaCache struct {
	mu      sync.Mutex
	schemas map[models.Persona]*resultSchema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{schemas: make(map[models.Persona]*resultSchema)}
}

func (c *schemaCache) get(p models.Persona) (*resultSchema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.schemas[p]; ok {
		return s, nil
	}
	s, err := reflectSchema(p)
	if err != nil {
		return nil, err
	}
	c.schemas[p] = s
	return s, nil
}

func reflectSchema(p models.Persona) (*resultSchema, error) {
	v, err := models.NewResult(p)
	if err != nil {
		return nil, err
	}
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	data, err := json.Marshal(r.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", p, err)
	}

	// gojsonschema tries to resolve the draft URLs; the prompt does not need them either.
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s schema: %w", p, err)
	}
	delete(doc, "$schema")
	delete(doc, "$id")

	loader, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", p, err)
	}
	text, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", p, err)
	}
	return &resultSchema{text: string(text), loader: loader}, nil
}
