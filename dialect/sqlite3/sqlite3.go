// Package sqlite3 implements SQLite dialect.
//
// SQLite has no sequence generator, they are emulated by single-row tables
// (see dialect.Stub). This dialect accepts one parameter:
//
//   - seqcol=VALUE: Name of the value column of generator tables.
//
// For example:
//
//     sqlite3:seqcol=NEXT_ID
//
// Importing this package also registers github.com/mattn/go-sqlite3.
package sqlite3

import (
	"github.com/Ronmi/rowmap/dialect"

	_ "github.com/mattn/go-sqlite3"
)

type drv struct {
	dialect.Stub
}

// New creates the dialect with parameters
func New(params map[string]string) dialect.Dialect {
	s := dialect.NewStub("sqlite3", params)
	s.Migrate = "sqlite3"
	return drv{Stub: s}
}

func init() {
	dialect.Register("sqlite3", New)
}
