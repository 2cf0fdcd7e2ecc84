// Command builder1 generates chainable builders for plain Go structs.
//
// A builder stages field values one setter at a time and materializes a fresh
// struct on Build(). builder1 writes that boilerplate for you from either an
// annotated struct or a small spec file, so it stays in sync with the type.
//
// Annotation mode
//
// Mark the struct with the //obuild:builder directive and add a go:generate
// line in the same package:
//
//	//go:generate go run ../../cmd/builder1 --type User --out ./user_builder.gen.go
//
//	// User is a person.
//	//
//	//obuild:builder
//	type User struct {
//		FirstName string
//		LastName  string
//		NickName  string
//		Age       int
//		Secret    string `builder:"-"`     // skipped
//		Email     string `builder:"Mail"`  // setter renamed to Mail
//	}
//
// Exported named fields get a setter; unexported and embedded fields are skipped.
//
// Spec mode
//
// When the struct cannot carry the directive (or lives elsewhere), describe it
// in *.builder.json or *.builder.yaml:
//
//	package: profile
//	type: Profile
//	builderName: ProfileDraft     # default <Type>Builder
//	constructor: DraftProfile     # default New<BuilderName>
//	imports:
//	  - path: time
//	fields:
//	  - { name: WithHandle, field: Handle, type: string }
//	  - { name: JoinedAt,   field: JoinedAt, type: time.Time }
//
// Package qualifiers in field types are resolved against the spec imports and
// the imports of the owner file (the file holding the go:generate line).
//
// Imports are matched by identifier without loading packages. An unaliased
// import is assumed to be named after the last element of its path, minus a
// /vN or .vN major version suffix ("gopkg.in/yaml.v3" is yaml). Import a
// package whose declared name differs from that, such as
// "github.com/foo/go-bar" declaring package bar, under an explicit alias in
// the source file or the spec imports:
//
//	import bar "github.com/foo/go-bar"
//
// Setter names share the builder's selector namespace with its unexported
// staging slots (FirstName stages into firstName), so a setter may not be
// named like any slot.
//
// Generated API (summary)
//
//   - New<Type>Builder() *<Type>Builder
//   - (b *<Type>Builder) <Field>(v T) *<Type>Builder   // one per field, returns b
//   - (b *<Type>Builder) Build() *<Type>               // new value per call
//
// Setters accept any value; Build never fails. Unset fields keep their zero
// value. Slice and map fields are cloned on Build so results never share
// backing storage with the builder or with each other. Builders are not safe
// for concurrent use.
//
// Flags
//
//	--type     annotated struct name (annotation mode)
//	--spec     spec file path (spec mode)
//	--dir      package directory to scan in annotation mode (default: dir of --out)
//	--out      output file, written atomically
//	--dry-run  print to stdout instead of writing --out
//	-v         debug logging
//
// Exit codes: 0 success, 1 generation error, 2 usage error.
package main
