package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/format"
	"path/filepath"
	"text/template"
)

// fieldView is a Field plus the names the template needs.
type fieldView struct {
	Setter string
	Target string
	Slot   string
	Type   string
	Clone  string
}

// templateData is the input passed to the Go template.
type templateData struct {
	Spec       Spec
	Source     string
	SourceHash string
	Imports    []ImportSpec
	Fields     []fieldView
}

func newTemplateData(spec *Spec, sourcePath string, sourceContent []byte, imports []ImportSpec) templateData {
	views := make([]fieldView, 0, len(spec.Fields))
	for _, field := range spec.Fields {
		views = append(views, fieldView{
			Setter: field.Name,
			Target: field.Field,
			Slot:   stagingName(field.Field),
			Type:   field.Type,
			Clone:  cloneFunc(field.Type),
		})
	}

	return templateData{
		Spec:       *spec,
		Source:     filepath.ToSlash(filepath.Base(sourcePath)),
		SourceHash: sha256Hex(sourceContent),
		Imports:    imports,
		Fields:     views,
	}
}

// render executes the builder template and gofmts the result.
func render(data templateData) ([]byte, error) {
	var out bytes.Buffer
	if err := genTemplate.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gofmt generated source: %w", err)
	}
	return formatted, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// genTemplate is the Go source template used to generate the builder code.
var genTemplate = template.Must(
	template.New("builder1").Parse(`// Code generated by builder1; DO NOT EDIT.
// Source: {{.Source}}
// Source-SHA256: {{.SourceHash}}

package {{.Spec.Package}}
{{- if .Imports}}

import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{- end}}

// {{.Spec.BuilderName}} stages {{.Spec.Type}} fields through chainable setters.
// Unset fields keep their zero value. A {{.Spec.BuilderName}} is not safe for
// concurrent use.
type {{.Spec.BuilderName}} struct {
{{- range .Fields}}
	{{.Slot}} {{.Type}}
{{- end}}
}

// {{.Spec.Constructor}} returns an empty {{.Spec.BuilderName}}.
func {{.Spec.Constructor}}() *{{.Spec.BuilderName}} {
	return &{{.Spec.BuilderName}}{}
}
{{- range .Fields}}

// {{.Setter}} stages {{$.Spec.Type}}.{{.Target}}.
func (b *{{$.Spec.BuilderName}}) {{.Setter}}({{.Slot}} {{.Type}}) *{{$.Spec.BuilderName}} {
	b.{{.Slot}} = {{.Slot}}
	return b
}
{{- end}}

// Build returns a new {{.Spec.Type}} holding the staged values.
// Every call returns an independent value.
func (b *{{.Spec.BuilderName}}) Build() *{{.Spec.Type}} {
	return &{{.Spec.Type}}{
{{- range .Fields}}
		{{.Target}}: {{if .Clone}}{{.Clone}}.Clone(b.{{.Slot}}){{else}}b.{{.Slot}}{{end}},
{{- end}}
	}
}
`),
)
