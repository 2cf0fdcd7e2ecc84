package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"path"
	"regexp"
	"sort"
	"strings"
)

var majorVersionSuffix = regexp.MustCompile(`^v[0-9]+$`)

func ensureImport(imports *[]ImportSpec, required ImportSpec) {
	for _, existing := range *imports {
		if existing.Path == required.Path {
			// Don’t duplicate the path; keep existing alias as-is.
			return
		}
	}
	*imports = append(*imports, required)
}

// importDefaultIdent guesses the package name of an unaliased import:
// "time" -> time, "example.com/mod/v2" -> mod, "gopkg.in/yaml.v3" -> yaml.
// Packages whose declared name differs from the guess must be imported with an alias.
func importDefaultIdent(importPath string) string {
	// Import paths always use forward slashes, even on Windows.
	cleaned := strings.TrimSpace(importPath)
	base := path.Base(cleaned)
	if majorVersionSuffix.MatchString(base) && path.Dir(cleaned) != "." {
		base = path.Base(path.Dir(cleaned))
	}
	if dot := strings.Index(base, ".v"); dot > 0 && majorVersionSuffix.MatchString(base[dot+1:]) {
		base = base[:dot]
	}
	return base
}

// importIdent is the identifier an import is referenced by in source.
func importIdent(imp ImportSpec) string {
	if imp.Alias != "" {
		return imp.Alias
	}
	return importDefaultIdent(imp.Path)
}

// usedPackages returns package qualifiers referenced by a type expression
// (time.Time -> time, map[string]*url.URL -> url).
func usedPackages(typeExpr string) ([]string, error) {
	expr, err := parser.ParseExpr(typeExpr)
	if err != nil {
		return nil, err
	}

	var qualifiers []string
	ast.Inspect(expr, func(node ast.Node) bool {
		selector, ok := node.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := selector.X.(*ast.Ident); ok {
			qualifiers = append(qualifiers, ident.Name)
		}
		return false
	})
	return qualifiers, nil
}

// cloneFunc returns the stdlib package whose Clone copies a value of typeExpr
// ("slices" for slice types, "maps" for map types) or "" when assignment already copies.
func cloneFunc(typeExpr string) string {
	trimmed := strings.TrimSpace(typeExpr)
	switch {
	case strings.HasPrefix(trimmed, "[]"):
		return "slices"
	case strings.HasPrefix(trimmed, "map["):
		return "maps"
	default:
		return ""
	}
}

// resolveImports builds the final imports list for the generated file.
//
// Rules:
//   - Only candidates whose identifier is referenced by a field type are kept
//   - Every qualifier used by a field type must be matched by a candidate
//   - slices / maps are added when a field needs cloning
//   - Result is deduplicated by path and sorted by path
func resolveImports(fields []Field, candidates []ImportSpec) ([]ImportSpec, error) {
	byIdent := make(map[string]ImportSpec, len(candidates))
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.Path) == "" {
			continue
		}
		ident := importIdent(candidate)
		if ident == "_" || ident == "." {
			continue
		}
		if _, ok := byIdent[ident]; !ok {
			byIdent[ident] = candidate
		}
	}

	var finalImports []ImportSpec
	for _, field := range fields {
		qualifiers, err := usedPackages(field.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s type %q: %v", ErrInvalidSpec, field.Field, field.Type, err)
		}
		for _, qualifier := range qualifiers {
			imp, ok := byIdent[qualifier]
			if !ok {
				return nil, fmt.Errorf("%w: field %s type %q references package %q with no matching import",
					ErrInvalidSpec, field.Field, field.Type, qualifier)
			}
			ensureImport(&finalImports, imp)
		}

		if pkg := cloneFunc(field.Type); pkg != "" {
			if imp, ok := byIdent[pkg]; ok && imp.Path != pkg {
				return nil, fmt.Errorf("%w: identifier %q is bound to %q but generated code needs the standard library package",
					ErrInvalidSpec, pkg, imp.Path)
			}
			ensureImport(&finalImports, ImportSpec{Path: pkg})
		}
	}

	// Drop aliases that only restate the default identifier.
	for i := range finalImports {
		if finalImports[i].Alias == importDefaultIdent(finalImports[i].Path) {
			finalImports[i].Alias = ""
		}
	}

	sort.Slice(finalImports, func(i, j int) bool { return finalImports[i].Path < finalImports[j].Path })
	return finalImports, nil
}
