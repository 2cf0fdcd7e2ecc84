package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// annotatedUserSource is a package file declaring an annotated User struct.
const annotatedUserSource = `package people

import (
	"time"

	"net/url"
	strs "strings"
)

//go:generate go run ../../cmd/builder1 --type User --out ./user_builder.gen.go

// User is a person.
//
//obuild:builder
type User struct {
	FirstName string
	LastName  string
	NickName  string ` + "`json:\"nick\" builder:\"Nick\"`" + `
	Age       int
	Secret    string ` + "`builder:\"-\"`" + `
	Born      time.Time
	Home      *url.URL
	internal  strs.Builder
	X, Y      int
}

// Other is not annotated.
type Other struct {
	Name string
}

// Alias is not a struct.
//
//obuild:builder
type Alias int
`

// minimalSpecJSON returns a minimal builder spec that passes validateSpec.
func minimalSpecJSON() []byte {
	return []byte(`{
  "package": "svc",
  "type": "User",
  "fields": [
    { "name": "Name", "field": "Name", "type": "string" }
  ]
}`)
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
// It lets tests force errors on Write and Close without touching real files.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// restoreWriteSeams puts the real file seams back when the test ends.
func restoreWriteSeams(t *testing.T) {
	t.Helper()
	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile = origCreate
		removeFile = origRemove
		chmodFile = origChmod
		renameFile = origRename
	})
}
