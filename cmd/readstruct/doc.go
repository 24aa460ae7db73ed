// Package readstruct reads (some of) struct info from source files, which is
// what rowgen needs to generate row mapping code.
//
// To keep codes short and simple, field types are recorded as written in
// source only if they are one of:
//
//   1. identifier, like int or Person
//   2. qualified identifier, like time.Time or rowmap.Row
//   3. pointer or slice of above, like *string or []byte
//
// Other types (maps, funcs, unnamed structs...) get an empty RawType.
package readstruct
