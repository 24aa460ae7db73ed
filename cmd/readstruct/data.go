package readstruct

// Info records basic info about a struct and its fields.
//
// For a struct like this:
//
//     package wtf
//     type S struct {
//         rowmap.Row
//         A int `col:"A"`
//         b *string
//         C struct{ X int }
//     }
//
// Equivilent Info struct will be:
//
//     Info {
//         Package: "wtf",
//         Name: "S",
//         Fields: []Field{
//             Field{
//                 Name: "Row",
//                 Exported: true,
//                 Embedded: true,
//                 RawType: "rowmap.Row",
//             },
//             Field{
//                 Name: "A",
//                 Exported: true,
//                 Tags: "`col:\"A\"`",
//                 RawType: "int",
//             },
//             Field{
//                 Name: "b",
//                 Exported: false,
//                 RawType: "*string",
//             },
//             Field{
//                 Name: "C",
//                 Exported: true,
//                 RawType: "",
//             },
//         },
//     }
type Info struct {
	Package string
	Name    string
	Fields  []Field
	Imports []Import // imports of the file declaring the struct
}

// Import is an import declaration. Name is the alias, or last element of
// Path if not aliased.
type Import struct {
	Name string
	Path string
}

// Import finds import referred by name in RawType
func (i *Info) Import(name string) (Import, bool) {
	for _, x := range i.Imports {
		if x.Name == name {
			return x, true
		}
	}
	return Import{}, false
}

// Field records basic info about a field. Fields are listed in source order,
// a declaration like "a, b int" produces two fields.
type Field struct {
	Name     string
	Exported bool
	Embedded bool
	Tags     string // raw tag literal, backquotes included
	RawType  string
}

// Tag returns value of key in the struct tag, like reflect.StructTag.Get
func (f Field) Tag(key string) string {
	return tagOf(f.Tags, key)
}
