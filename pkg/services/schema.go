package services

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrMalformed is returned for resources that are not valid JSON or do not
// match their schema
var ErrMalformed = errors.New("malformed resource")

var (
	schemasOnce sync.Once
	schemas     map[string]*gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() {
	schemas = make(map[string]*gojsonschema.Schema)
	for _, kind := range []string{"maps", "updates"} {
		data, err := schemaFS.ReadFile("schemas/" + kind + ".schema.json")
		if err != nil {
			schemasErr = fmt.Errorf("reading %s schema: %w", kind, err)
			return
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			schemasErr = fmt.Errorf("compiling %s schema: %w", kind, err)
			return
		}
		schemas[kind] = s
	}
}

// Validate checks data against the named schema ("maps" or "updates")
func Validate(kind string, data []byte) error {
	schemasOnce.Do(loadSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	s, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("no schema for %q", kind)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, kind, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s: %s", ErrMalformed, kind, strings.Join(msgs, "; "))
	}
	return nil
}
