// Package obuild generates chainable builders for plain Go structs.
//
// A builder stages field values through one setter per field, each returning
// the builder, and materializes a fresh value on Build():
//
//	me := user.NewUserBuilder().
//		FirstName("HeAn").
//		LastName("Zhu").
//		NickName("violet").
//		Age(22).
//		Build()
//
// Construction never fails: setters accept any value, unset fields keep their
// zero value, and every Build() returns an independent snapshot.
//
// The builders are generated, not written:
//   - cmd/builder1: the go:generate tool (annotated struct or JSON/YAML spec in, builder out)
//   - examples/user: annotation mode, the User / UserBuilder pair and a startup demo
//   - examples/profile: spec mode with renamed setters and cloned slice/map fields
//
// There is no runtime package to import; generated code depends only on the
// standard library.
package obuild
