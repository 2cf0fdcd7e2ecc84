package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

// annotation marks a struct for builder generation. It goes in the type's doc
// comment as a directive line: //obuild:builder
const annotation = "obuild:builder"

// tagKey is the struct tag consulted per field: `builder:"-"` skips the field,
// `builder:"Name"` renames its setter.
const tagKey = "builder"

// sourceFile is the Go file (or spec file) a builder is generated from.
type sourceFile struct {
	Path    string
	Content []byte
	Imports []ImportSpec
}

// isPackageSource reports whether fileName is a hand-written Go file of the package.
func isPackageSource(fileName string) bool {
	return strings.HasSuffix(fileName, ".go") &&
		!strings.HasSuffix(fileName, "_test.go") &&
		!strings.HasSuffix(fileName, ".gen.go")
}

// specFromStruct locates `type typeName struct{...}` in packageDir and turns it into a Spec.
//
// Files that fail to parse are skipped so that a half-edited sibling file does not
// block generation for a struct declared elsewhere.
func specFromStruct(packageDir, typeName string) (*Spec, *sourceFile, error) {
	dirEntries, err := os.ReadDir(packageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("read package dir: %w", err)
	}

	fileSet := token.NewFileSet()

	for _, entry := range dirEntries {
		if entry.IsDir() || !isPackageSource(entry.Name()) {
			continue
		}

		filePath := filepath.Join(packageDir, entry.Name())
		content, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		parsedFile, err := parser.ParseFile(fileSet, filePath, content, parser.ParseComments)
		if err != nil {
			continue
		}

		typeSpec, doc := findTypeSpec(parsedFile, typeName)
		if typeSpec == nil {
			continue
		}

		structType, ok := typeSpec.Type.(*ast.StructType)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s is not a struct type", ErrInvalidSpec, typeName)
		}
		if typeSpec.TypeParams != nil && len(typeSpec.TypeParams.List) > 0 {
			return nil, nil, fmt.Errorf("%w: generic type %s is not supported", ErrInvalidSpec, typeName)
		}
		if !hasAnnotation(doc) {
			return nil, nil, fmt.Errorf("%w: %s in %s", ErrNotAnnotated, typeName, filePath)
		}

		fields, err := fieldsFromStruct(structType)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", typeName, err)
		}

		spec := &Spec{
			Package: parsedFile.Name.Name,
			Type:    typeName,
			Fields:  fields,
		}
		source := &sourceFile{
			Path:    filePath,
			Content: content,
			Imports: importsOf(parsedFile),
		}
		return spec, source, nil
	}

	return nil, nil, fmt.Errorf("%w: %s in %s", ErrTypeNotFound, typeName, packageDir)
}

// findTypeSpec returns the named type spec and the doc comment that applies to it.
// A lone spec in an unparenthesized `type X struct` declaration carries its doc on the GenDecl.
func findTypeSpec(file *ast.File, typeName string) (*ast.TypeSpec, *ast.CommentGroup) {
	for _, declaration := range file.Decls {
		genDecl, ok := declaration.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok || typeSpec.Name.Name != typeName {
				continue
			}
			doc := typeSpec.Doc
			if doc == nil && !genDecl.Lparen.IsValid() {
				doc = genDecl.Doc
			}
			return typeSpec, doc
		}
	}
	return nil, nil
}

// hasAnnotation scans raw comment lines; CommentGroup.Text drops directives.
func hasAnnotation(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, comment := range doc.List {
		text := strings.TrimPrefix(comment.Text, "//")
		if text == annotation || strings.HasPrefix(text, annotation+" ") {
			return true
		}
	}
	return false
}

func fieldsFromStruct(structType *ast.StructType) ([]Field, error) {
	var fields []Field

	for _, astField := range structType.Fields.List {
		// Embedded fields are promoted, not staged.
		if len(astField.Names) == 0 {
			continue
		}

		setterOverride := ""
		if astField.Tag != nil {
			rawTag, err := strconv.Unquote(astField.Tag.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: bad struct tag %s", ErrInvalidSpec, astField.Tag.Value)
			}
			setterOverride = reflect.StructTag(rawTag).Get(tagKey)
		}
		if setterOverride == "-" {
			continue
		}
		if setterOverride != "" && len(astField.Names) > 1 {
			return nil, fmt.Errorf("%w: tag %s:%q on a multi-name field", ErrInvalidSpec, tagKey, setterOverride)
		}

		typeExpr := types.ExprString(astField.Type)
		for _, name := range astField.Names {
			if !name.IsExported() {
				continue
			}
			setter := name.Name
			if setterOverride != "" {
				setter = setterOverride
			}
			fields = append(fields, Field{Name: setter, Field: name.Name, Type: typeExpr})
		}
	}

	return fields, nil
}

// importsOf lists a file's imports.
func importsOf(file *ast.File) []ImportSpec {
	var imports []ImportSpec
	for _, importDecl := range file.Imports {
		importPath, err := strconv.Unquote(importDecl.Path.Value)
		if err != nil {
			continue
		}
		importAlias := ""
		if importDecl.Name != nil {
			importAlias = importDecl.Name.Name
		}
		imports = append(imports, ImportSpec{Alias: importAlias, Path: importPath})
	}
	return imports
}

// readImportsFromFile parses imports from a Go file.
func readImportsFromFile(goFilePath string) ([]ImportSpec, error) {
	fileSet := token.NewFileSet()
	parsedFile, err := parser.ParseFile(fileSet, goFilePath, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}
	return importsOf(parsedFile), nil
}

// findOwnerGoGenerateFile finds the Go source file in packageDir that contains a go:generate
// directive invoking cmd/builder1.
//
// Spec mode uses the owner file's imports to resolve package qualifiers in field types.
func findOwnerGoGenerateFile(packageDir string) (string, error) {
	dirEntries, err := os.ReadDir(packageDir)
	if err != nil {
		return "", err
	}

	for _, entry := range dirEntries {
		if entry.IsDir() || !isPackageSource(entry.Name()) {
			continue
		}

		filePath := filepath.Join(packageDir, entry.Name())
		fileBytes, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		if bytes.Contains(fileBytes, []byte("go:generate")) && bytes.Contains(fileBytes, []byte("cmd/builder1")) {
			return filePath, nil
		}
	}

	return "", fmt.Errorf("could not find owner file with go:generate invoking cmd/builder1 in %s", packageDir)
}
