package mysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ronmi/rowmap/dialect"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func quote(name string) string {
	return "`" + strings.Replace(name, "`", "``", -1) + "`"
}

type drv struct {
	dialect.Stub
}

// DSN forces parseTime and default location
func (d drv) DSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("dialect: mysql: invalid dsn: %w", err)
	}

	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}

// NextValue increases generator table with LAST_INSERT_ID(expr)
func (d drv) NextValue(q sqlx.Ext, generator string) (int64, error) {
	col := d.Quote(d.SequenceColumn)
	qstr := fmt.Sprintf(
		"UPDATE %s SET %s=LAST_INSERT_ID(%s+1)",
		d.Quote(generator), col, col,
	)
	res, err := q.Exec(qstr)
	if err != nil {
		return 0, err
	}

	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return 0, fmt.Errorf("dialect: mysql: generator %s has %d rows", generator, n)
	}

	return res.LastInsertId()
}

// New creates the dialect with parameters
func New(params map[string]string) dialect.Dialect {
	s := dialect.NewStub("mysql", params)
	s.QuoteFunc = quote
	s.Migrate = "mysql"
	return drv{Stub: s}
}

func init() {
	dialect.Register("mysql", New)
}
