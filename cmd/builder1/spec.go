package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUsage reports a bad command line (exit code 2).
	ErrUsage = errors.New("builder1: usage")

	// ErrInvalidSpec reports a spec (file or annotated struct) the generator cannot render.
	ErrInvalidSpec = errors.New("builder1: invalid spec")

	// ErrTypeNotFound is returned when -type names no struct in the package directory.
	ErrTypeNotFound = errors.New("builder1: type not found")

	// ErrNotAnnotated is returned when the struct exists but lacks the //obuild:builder directive.
	ErrNotAnnotated = errors.New("builder1: type not annotated with //" + annotation)
)

// Field describes one staged value: the setter method Name, the target struct
// Field it is copied into, and its Go Type expression.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Field string `json:"field" yaml:"field"`
	Type  string `json:"type" yaml:"type"`
}

// ImportSpec models one Go import: optional alias and full import path.
type ImportSpec struct {
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`
	Path  string `json:"path" yaml:"path"`
}

// Spec is the full input schema consumed by the generator.
//
// It is either decoded from a *.builder.json / *.builder.yaml file or derived
// from an annotated struct declaration.
type Spec struct {
	Package string `json:"package" yaml:"package"`
	Type    string `json:"type" yaml:"type"`

	// BuilderName defaults to <Type>Builder.
	BuilderName string `json:"builderName" yaml:"builderName"`

	// Constructor defaults to New<BuilderName>.
	Constructor string `json:"constructor" yaml:"constructor"`

	Imports []ImportSpec `json:"imports" yaml:"imports"`
	Fields  []Field      `json:"fields" yaml:"fields"`
}

// loadSpec decodes a spec file. The format is picked from the extension.
func loadSpec(specPath string) (*Spec, []byte, error) {
	raw, err := os.ReadFile(specPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read spec: %w", err)
	}

	var spec Spec
	switch ext := strings.ToLower(filepath.Ext(specPath)); ext {
	case ".json":
		if err := json.Unmarshal(raw, &spec); err != nil {
			return nil, nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidSpec, specPath, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &spec); err != nil {
			return nil, nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidSpec, specPath, err)
		}
	default:
		return nil, nil, fmt.Errorf("%w: unsupported spec extension %q (want .json, .yaml or .yml)", ErrInvalidSpec, ext)
	}

	return &spec, raw, nil
}

func applyDefaults(spec *Spec) {
	if strings.TrimSpace(spec.BuilderName) == "" {
		spec.BuilderName = spec.Type + "Builder"
	}
	if strings.TrimSpace(spec.Constructor) == "" {
		spec.Constructor = "New" + spec.BuilderName
	}
}

// validateSpec checks that the spec renders into compilable Go.
// It never constrains field values; generated builders accept anything.
func validateSpec(spec *Spec) error {
	var missingFields []string

	requireIdent := func(fieldName, value string) {
		if !token.IsIdentifier(strings.TrimSpace(value)) {
			missingFields = append(missingFields, fieldName)
		}
	}

	requireIdent("package", spec.Package)
	requireIdent("type", spec.Type)
	requireIdent("builderName", spec.BuilderName)
	requireIdent("constructor", spec.Constructor)

	if len(spec.Fields) == 0 {
		missingFields = append(missingFields, "fields (must have at least 1)")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("%w: missing or invalid: %v", ErrInvalidSpec, missingFields)
	}

	// Setters and staging slots share the builder's selector namespace.
	allSlots := make(map[string]string, len(spec.Fields))
	for _, field := range spec.Fields {
		allSlots[stagingName(field.Field)] = field.Field
	}

	seenSetters := make(map[string]struct{}, len(spec.Fields))
	seenTargets := make(map[string]struct{}, len(spec.Fields))
	seenSlots := make(map[string]struct{}, len(spec.Fields))

	for _, field := range spec.Fields {
		if field.Name == "" || field.Field == "" || field.Type == "" {
			return fmt.Errorf("%w: each field must have name/field/type; got: %+v", ErrInvalidSpec, field)
		}
		if !token.IsIdentifier(field.Name) || !token.IsIdentifier(field.Field) {
			return fmt.Errorf("%w: field name/field must be Go identifiers; got: %+v", ErrInvalidSpec, field)
		}
		if field.Name == "Build" {
			return fmt.Errorf("%w: setter name %q collides with the terminal Build method", ErrInvalidSpec, field.Name)
		}
		if owner, ok := allSlots[field.Name]; ok {
			return fmt.Errorf("%w: setter name %q collides with the staging slot of field %s", ErrInvalidSpec, field.Name, owner)
		}
		if _, err := parser.ParseExpr(field.Type); err != nil {
			return fmt.Errorf("%w: field %s has unparsable type %q: %v", ErrInvalidSpec, field.Field, field.Type, err)
		}
		if _, ok := seenSetters[field.Name]; ok {
			return fmt.Errorf("%w: duplicate setter name: %s", ErrInvalidSpec, field.Name)
		}
		if _, ok := seenTargets[field.Field]; ok {
			return fmt.Errorf("%w: duplicate target field: %s", ErrInvalidSpec, field.Field)
		}
		slot := stagingName(field.Field)
		if _, ok := seenSlots[slot]; ok {
			return fmt.Errorf("%w: fields collide on staging slot %q", ErrInvalidSpec, slot)
		}
		seenSetters[field.Name] = struct{}{}
		seenTargets[field.Field] = struct{}{}
		seenSlots[slot] = struct{}{}
	}

	return nil
}

// stagingName derives the unexported builder slot (and setter parameter) name
// for a target field: FirstName -> firstName, ID -> id, URLPath -> urlPath.
func stagingName(field string) string {
	runes := []rune(field)

	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}

	switch {
	case upper == 0:
	case upper == len(runes) || upper == 1:
		for i := 0; i < upper; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	default:
		// Keep the last capital: it starts the next word.
		for i := 0; i < upper-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}

	name := string(runes)
	// "b" is the receiver.
	if token.IsKeyword(name) || name == "b" {
		name += "Value"
	}
	return name
}
