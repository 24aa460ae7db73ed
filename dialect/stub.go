package dialect

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DefaultSequenceColumn is the value column of table-emulated generators
const DefaultSequenceColumn = "VALUE"

// Stub implements most of methods of a Dialect.
//
// By providing a driver name and quote function, most features a dialect
// should implement is prepared for you. Generators are emulated by a
// single-row table holding last issued value in SequenceColumn.
type Stub struct {
	Driver         string
	QuoteFunc      func(name string) string
	SequenceColumn string
	Migrate        string
}

// NewStub creates a Stub quoting with double quote
func NewStub(driverName string, params map[string]string) Stub {
	col := DefaultSequenceColumn
	if c, ok := params["seqcol"]; ok && c != "" {
		col = c
	}

	return Stub{
		Driver:         driverName,
		QuoteFunc:      QuoteDouble,
		SequenceColumn: col,
	}
}

// QuoteDouble quotes identifier with ANSI double quote
func QuoteDouble(name string) string {
	return `"` + strings.Replace(name, `"`, `""`, -1) + `"`
}

func (s Stub) DriverName() string {
	return s.Driver
}

func (s Stub) DSN(dsn string) (string, error) {
	return dsn, nil
}

func (s Stub) Quote(name string) string {
	if s.QuoteFunc == nil {
		return QuoteDouble(name)
	}
	return s.QuoteFunc(name)
}

func (s Stub) Placeholder(pos int) string {
	return "?"
}

func (s Stub) seqCol() string {
	if s.SequenceColumn == "" {
		return s.Quote(DefaultSequenceColumn)
	}
	return s.Quote(s.SequenceColumn)
}

// NextValue increases the emulated generator with UPDATE ... RETURNING
func (s Stub) NextValue(q sqlx.Ext, generator string) (ret int64, err error) {
	col := s.seqCol()
	qstr := fmt.Sprintf(
		"UPDATE %s SET %s=%s+1 RETURNING %s",
		s.Quote(generator), col, col, col,
	)
	err = q.QueryRowx(qstr).Scan(&ret)
	return
}

// CreateGenerator creates the single-row table backing an emulated generator
func (s Stub) CreateGenerator(q sqlx.Ext, generator string, start int64) error {
	col := s.seqCol()
	qstr := fmt.Sprintf(
		"CREATE TABLE %s (%s BIGINT NOT NULL)",
		s.Quote(generator), col,
	)
	if _, err := q.Exec(qstr); err != nil {
		return err
	}

	qstr = fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%d)",
		s.Quote(generator), col, start,
	)
	_, err := q.Exec(qstr)
	return err
}

func (s Stub) MigrateDialect() string {
	return s.Migrate
}
