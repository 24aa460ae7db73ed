// package rowmap is a thin tool to map go struct to/from SQL table row by row
//
// A data type embeds Row, declares a static Schema and exposes its fields
// through Field:
//
//     var (
//         colName = &rowmap.Column{Name: "NAME", MaxLength: 40}
//         colRev  = &rowmap.Column{Name: "REV", AutoInsert: true, AutoUpdate: true}
//         schema  = rowmap.NewSchema("PEOPLE", "GEN_PEOPLE_ID", colName, colRev)
//     )
//
//     type Person struct {
//         rowmap.Row
//         name string
//         rev  int64
//     }
//
//     func (p *Person) Field(c *rowmap.Column) interface{} {
//         switch c {
//         case colName:
//             return &p.name
//         case colRev:
//             return &p.rev
//         }
//         return nil
//     }
//
//     func (p *Person) SetName(v string) { rowmap.SetField(&p.Row, colName, &p.name, v) }
//
// cmd/rowgen generates all of above from struct tags.
//
// Rows remember the original value of every changed field. Save writes only
// changed columns (INSERT with an id from the sequence generator if the row
// is new, UPDATE otherwise), then reads columns computed by the database back
// into the row. Cancel restores original values.
//
// Every statement runs on single shared connection held by Connector. The
// package level functions use Default connector.
package rowmap
