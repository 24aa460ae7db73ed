// Package firebird implements Firebird dialect.
//
// Firebird has native generators (sequences), which are read with gen_id.
// Migrations are not supported since sql-migrate does not know Firebird.
//
// Importing this package also registers github.com/nakagami/firebirdsql.
package firebird

import (
	"fmt"

	"github.com/Ronmi/rowmap/dialect"
	"github.com/jmoiron/sqlx"

	_ "github.com/nakagami/firebirdsql"
)

// NextValueSQL returns the statement issuing next value of generator
func NextValueSQL(generator string) string {
	return fmt.Sprintf("select gen_id(%s, 1) from rdb$database", generator)
}

type drv struct {
	dialect.Stub
}

func (d drv) NextValue(q sqlx.Ext, generator string) (ret int64, err error) {
	err = q.QueryRowx(NextValueSQL(generator)).Scan(&ret)
	return
}

func (d drv) CreateGenerator(q sqlx.Ext, generator string, start int64) error {
	if _, err := q.Exec("create generator " + generator); err != nil {
		return err
	}

	_, err := q.Exec(fmt.Sprintf("set generator %s to %d", generator, start))
	return err
}

// New creates the dialect with parameters
func New(params map[string]string) dialect.Dialect {
	return drv{Stub: dialect.NewStub("firebirdsql", params)}
}

func init() {
	dialect.Register("firebird", New)
}
