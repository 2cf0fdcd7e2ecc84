package main

import (
	"go/ast"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// specFromStruct()
// -----------------------------------------------------------------------------

// Covers the annotated-struct happy path:
// - package name taken from the file
// - exported named fields become setters in declaration order
// - builder:"-" skips, builder:"Name" renames
// - unexported and multi-name fields
// - broken sibling files and test/generated files are ignored
func TestSpecFromStruct_AnnotatedStruct(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	userPath := writeTempFile(t, dir, "user.go", annotatedUserSource)
	writeTempFile(t, dir, "broken.go", "package")
	writeTempFile(t, dir, "user_test.go", "package people\n\n//obuild:builder\ntype User struct{ Wrong int }\n")
	writeTempFile(t, dir, "user_builder.gen.go", "package people\n\n//obuild:builder\ntype User struct{ Wrong int }\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.go"), 0o755))

	spec, source, err := specFromStruct(dir, "User")
	require.NoError(t, err)

	assert.Equal(t, "people", spec.Package)
	assert.Equal(t, "User", spec.Type)
	assert.Equal(t, []Field{
		{Name: "FirstName", Field: "FirstName", Type: "string"},
		{Name: "LastName", Field: "LastName", Type: "string"},
		{Name: "Nick", Field: "NickName", Type: "string"},
		{Name: "Age", Field: "Age", Type: "int"},
		{Name: "Born", Field: "Born", Type: "time.Time"},
		{Name: "Home", Field: "Home", Type: "*url.URL"},
		{Name: "X", Field: "X", Type: "int"},
		{Name: "Y", Field: "Y", Type: "int"},
	}, spec.Fields)

	assert.Equal(t, userPath, source.Path)
	assert.Equal(t, annotatedUserSource, string(source.Content))
	assert.Contains(t, source.Imports, ImportSpec{Path: "time"})
	assert.Contains(t, source.Imports, ImportSpec{Path: "net/url"})
	assert.Contains(t, source.Imports, ImportSpec{Alias: "strs", Path: "strings"})
}

func TestSpecFromStruct_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		typeName  string
		source    string
		missing   bool
		expectErr error
		errSub    string
	}{
		{
			name:      "struct without directive",
			typeName:  "Other",
			source:    annotatedUserSource,
			expectErr: ErrNotAnnotated,
		},
		{
			name:      "type not found",
			typeName:  "Missing",
			source:    annotatedUserSource,
			expectErr: ErrTypeNotFound,
		},
		{
			name:      "not a struct",
			typeName:  "Alias",
			source:    annotatedUserSource,
			expectErr: ErrInvalidSpec,
			errSub:    "not a struct",
		},
		{
			name:     "generic struct",
			typeName: "Box",
			source: `package p

//obuild:builder
type Box[T any] struct{ Val T }
`,
			expectErr: ErrInvalidSpec,
			errSub:    "generic",
		},
		{
			name:     "rename tag on multi-name field",
			typeName: "Pair",
			source: `package p

//obuild:builder
type Pair struct {
	A, B int ` + "`builder:\"Both\"`" + `
}
`,
			expectErr: ErrInvalidSpec,
			errSub:    "multi-name",
		},
		{
			name:     "missing directory",
			typeName: "User",
			missing:  true,
			errSub:   "read package dir",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tc.missing {
				dir = filepath.Join(dir, "missing")
			} else {
				writeTempFile(t, dir, "src.go", tc.source)
			}

			_, _, err := specFromStruct(dir, tc.typeName)
			require.Error(t, err)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
			}
			if tc.errSub != "" {
				assert.Contains(t, err.Error(), tc.errSub)
			}
		})
	}
}

// Covers doc placement: grouped type declarations carry doc on the spec,
// single declarations carry it on the GenDecl.
func TestSpecFromStruct_GroupedDeclaration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTempFile(t, dir, "types.go", `package p

// not applied to members
//
//obuild:builder
type (
	// Plain has no directive.
	Plain struct{ A int }

	//obuild:builder
	Marked struct{ B int }
)
`)

	_, _, err := specFromStruct(dir, "Plain")
	require.ErrorIs(t, err, ErrNotAnnotated)

	spec, _, err := specFromStruct(dir, "Marked")
	require.NoError(t, err)
	assert.Equal(t, []Field{{Name: "B", Field: "B", Type: "int"}}, spec.Fields)
}

//
// -----------------------------------------------------------------------------
// hasAnnotation()
// -----------------------------------------------------------------------------

func TestHasAnnotation(t *testing.T) {
	t.Parallel()

	group := func(lines ...string) *ast.CommentGroup {
		cg := &ast.CommentGroup{}
		for _, line := range lines {
			cg.List = append(cg.List, &ast.Comment{Text: line})
		}
		return cg
	}

	assert.False(t, hasAnnotation(nil))
	assert.False(t, hasAnnotation(group("// User is a person.")))
	assert.False(t, hasAnnotation(group("// obuild:builder")))
	assert.False(t, hasAnnotation(group("//obuild:builders")))
	assert.True(t, hasAnnotation(group("// User.", "//", "//obuild:builder")))
	assert.True(t, hasAnnotation(group("//obuild:builder with trailing words")))
}

//
// -----------------------------------------------------------------------------
// findOwnerGoGenerateFile() / readImportsFromFile()
// -----------------------------------------------------------------------------

func TestFindOwnerGoGenerateFile(t *testing.T) {
	t.Parallel()

	t.Run("finds owner and skips test/gen files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTempFile(t, dir, "a_test.go", "//go:generate go run ../../cmd/builder1\npackage p\n")
		writeTempFile(t, dir, "b.gen.go", "//go:generate go run ../../cmd/builder1\npackage p\n")
		writeTempFile(t, dir, "c.go", "//go:generate stringer -type X\npackage p\n")
		owner := writeTempFile(t, dir, "d.go", "package p\n\n//go:generate go run ../../cmd/builder1 --spec x.builder.yaml --out x.gen.go\n")

		got, err := findOwnerGoGenerateFile(dir)
		require.NoError(t, err)
		assert.Equal(t, owner, got)
	})

	t.Run("no owner", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTempFile(t, dir, "c.go", "package p\n")

		_, err := findOwnerGoGenerateFile(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not find owner file")
	})

	t.Run("missing dir", func(t *testing.T) {
		t.Parallel()

		_, err := findOwnerGoGenerateFile(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
	})
}

func TestReadImportsFromFile_SuccessAndParseError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := readImportsFromFile(writeTempFile(t, dir, "bad.go", "package"))
	require.Error(t, err)

	imports, err := readImportsFromFile(writeTempFile(t, dir, "good.go", `package svc

import (
	"fmt"
	u "net/url"
	_ "embed"
)
`))
	require.NoError(t, err)
	assert.Equal(t, []ImportSpec{
		{Path: "fmt"},
		{Alias: "u", Path: "net/url"},
		{Alias: "_", Path: "embed"},
	}, imports)
}
