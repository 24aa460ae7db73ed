package rowmap

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/Ronmi/rowmap/dialect"
	"github.com/jmoiron/sqlx"
)

// size of statement cache remembering parameters
const paramCacheSize = 256

// Connector holds the one live database connection.
//
// Connector IS NOT ZERO VALUE SAFE. Always create with NewConnector(), or use
// Default.
//
// Statements are executed synchronously on the connection; Connector does not
// prevent concurrent callers from interleaving statements outside a
// transaction.
type Connector struct {
	// Logger receives connection failures and errors swallowed by
	// Table.Select. Set to nil to discard.
	Logger *log.Logger

	// Trace, if set, is called with every statement as generated (before
	// placeholders are rewritten for the dialect) and its bound arguments.
	Trace func(stmt string, args []interface{})

	lock   sync.RWMutex
	db     *sqlx.DB
	dia    dialect.Dialect
	params *paramCache
}

// NewConnector creates a connector without connection
func NewConnector() *Connector {
	return &Connector{
		Logger: log.New(os.Stderr, "rowmap: ", log.LstdFlags),
		params: newParamCache(paramCacheSize),
	}
}

// Default is the process-wide connector used by package level functions
var Default = NewConnector()

func (c *Connector) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

func (c *Connector) trace(stmt string, args []interface{}) {
	if c.Trace != nil {
		c.Trace(stmt, args)
	}
}

// Connect opens the connection. dialectStr selects the dialect (see package
// dialect), dsn is passed to database/sql driver.
//
// Errors are not returned but logged, Connect returns false if anything
// goes wrong. Previous connection is closed after successful connecting.
func (c *Connector) Connect(dialectStr, dsn string) bool {
	d, err := dialect.Get(dialectStr)
	if err != nil {
		c.logf("cannot connect: %s", err)
		return false
	}

	if dsn, err = d.DSN(dsn); err != nil {
		c.logf("cannot connect: %s", err)
		return false
	}

	db, err := sqlx.Open(d.DriverName(), dsn)
	if err != nil {
		c.logf("cannot open %s connection: %s", d.DriverName(), err)
		return false
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		c.logf("cannot connect to %s database: %s", d.DriverName(), err)
		db.Close()
		return false
	}

	c.lock.Lock()
	old := c.db
	c.db, c.dia = db, d
	c.lock.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			c.logf("error closing previous connection: %s", err)
		}
	}
	return true
}

// Close closes the connection.
func (c *Connector) Close() error {
	c.lock.Lock()
	db := c.db
	c.db, c.dia = nil, nil
	c.lock.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// Connected reports whether Connect succeeded and Close yet called
func (c *Connector) Connected() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.db != nil
}

// DB returns stored *sqlx.DB, nil if not connected
func (c *Connector) DB() *sqlx.DB {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.db
}

// Dialect returns dialect in use, nil if not connected
func (c *Connector) Dialect() dialect.Dialect {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.dia
}

// ext selects where to execute statements: tx if given, connection otherwise
func (c *Connector) ext(tx *Tx) (sqlx.Ext, dialect.Dialect, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.db == nil {
		return nil, nil, ErrNotConnected
	}
	if tx != nil {
		return tx.tx, c.dia, nil
	}
	return c.db, c.dia, nil
}

// bind finds parameters in stmt, binds value of each one and rewrites them
// to placeholders of the dialect.
func (c *Connector) bind(d dialect.Dialect, stmt string, value func(pos int, name string) (interface{}, error)) (string, []interface{}, error) {
	params := c.params.get(stmt)
	args := make([]interface{}, len(params))
	for pos, p := range params {
		v, err := value(pos, p.name)
		if err != nil {
			return "", nil, err
		}
		args[pos] = normalizeArg(v)
	}

	c.trace(stmt, args)
	return rewrite(stmt, params, d.Placeholder), args, nil
}

// BeginTransaction starts a transaction on the connection
func (c *Connector) BeginTransaction() (*Tx, error) {
	db := c.DB()
	if db == nil {
		return nil, ErrNotConnected
	}

	tx, err := db.Beginx()
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, c: c}, nil
}

// Execute executes a statement without result.
//
// Parameters are not supported, values must be inlined into stmt by caller.
// NEVER inline untrusted input, it opens door to SQL injection.
func (c *Connector) Execute(stmt string, tx *Tx) error {
	q, _, err := c.ext(tx)
	if err != nil {
		return err
	}

	c.trace(stmt, nil)
	_, err = q.Exec(stmt)
	return err
}

// execNamed executes stmt with parameters bound by name
func (c *Connector) execNamed(tx *Tx, stmt string, vals map[string]interface{}) error {
	q, d, err := c.ext(tx)
	if err != nil {
		return err
	}

	qstr, args, err := c.bind(d, stmt, named(vals))
	if err != nil {
		return err
	}

	_, err = q.Exec(qstr, args...)
	return err
}

// queryx executes query with parameters bound in order of appearance
func (c *Connector) queryx(tx *Tx, stmt string, params []interface{}) (*sqlx.Rows, error) {
	q, d, err := c.ext(tx)
	if err != nil {
		return nil, err
	}

	qstr, args, err := c.bind(d, stmt, positional(params))
	if err != nil {
		return nil, err
	}

	return q.Queryx(qstr, args...)
}

// ExecuteScalar executes a query and returns first column of first row.
//
// Tokens starting with @ are parameters, they are bound to params in order
// of appearance.
func (c *Connector) ExecuteScalar(stmt string, tx *Tx, params ...interface{}) (ret interface{}, err error) {
	q, d, err := c.ext(tx)
	if err != nil {
		return
	}

	qstr, args, err := c.bind(d, stmt, positional(params))
	if err != nil {
		return
	}

	err = q.QueryRowx(qstr, args...).Scan(&ret)
	return
}

// Query reads result of a query into dest using sqlx.Select, suitable for
// ad-hoc reports which are not rows of a Table. Parameters are bound like
// ExecuteScalar.
func (c *Connector) Query(dest interface{}, stmt string, tx *Tx, params ...interface{}) error {
	q, d, err := c.ext(tx)
	if err != nil {
		return err
	}

	qstr, args, err := c.bind(d, stmt, positional(params))
	if err != nil {
		return err
	}

	return sqlx.Select(q, dest, qstr, args...)
}

// GenNextGenValue increases a sequence generator and returns new value.
func (c *Connector) GenNextGenValue(generator string, tx *Tx) (int64, error) {
	q, d, err := c.ext(tx)
	if err != nil {
		return 0, err
	}

	v, err := d.NextValue(q, generator)
	if err != nil {
		return 0, fmt.Errorf("rowmap: generator %s: %w", generator, err)
	}
	return v, nil
}

// CreateGenerator creates a sequence generator, next value of which is start+1
func (c *Connector) CreateGenerator(generator string, start int64, tx *Tx) error {
	q, d, err := c.ext(tx)
	if err != nil {
		return err
	}

	return d.CreateGenerator(q, generator, start)
}

// Connect opens connection of Default connector
func Connect(dialectStr, dsn string) bool {
	return Default.Connect(dialectStr, dsn)
}

// BeginTransaction starts a transaction on Default connector
func BeginTransaction() (*Tx, error) {
	return Default.BeginTransaction()
}

// Execute executes a statement on Default connector, see Connector.Execute
func Execute(stmt string, tx *Tx) error {
	return Default.Execute(stmt, tx)
}

// ExecuteScalar executes a query on Default connector, see Connector.ExecuteScalar
func ExecuteScalar(stmt string, tx *Tx, params ...interface{}) (interface{}, error) {
	return Default.ExecuteScalar(stmt, tx, params...)
}

// GenNextGenValue reads generator on Default connector
func GenNextGenValue(generator string, tx *Tx) (int64, error) {
	return Default.GenNextGenValue(generator, tx)
}
