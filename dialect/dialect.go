// Package dialect abstracts the vendor-specific parts of rowmap: which
// database/sql driver to open, how identifiers are quoted, what a
// placeholder looks like and how sequence generators are read.
//
// A dialect is selected by a plain string, much like a DSN:
//
//     name
//     name:param1=value1;param2=value2
//
// Implementations register themselves in init(), see sub-packages.
package dialect

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
)

// ErrUnknownDialect is returned by Get when no dialect is registered with
// requested name.
var ErrUnknownDialect = errors.New("dialect: unknown dialect")

// Dialect is used to generate vendor-specific SQL syntax
type Dialect interface {
	// DriverName is the name of database/sql driver to open
	DriverName() string

	// DSN validates and normalizes the data source name before opening it
	DSN(dsn string) (string, error)

	// Quote quotes identifiers like table name or column name
	Quote(name string) string

	// Placeholder returns parameter marker for pos-th (zero based)
	// parameter in statement
	Placeholder(pos int) string

	// NextValue increases the generator and returns the new value
	NextValue(q sqlx.Ext, generator string) (int64, error)

	// CreateGenerator creates a generator, next value of which is start+1
	CreateGenerator(q sqlx.Ext, generator string, start int64) error

	// MigrateDialect returns dialect name known to sql-migrate, or empty
	// string if migration is not supported
	MigrateDialect() string
}

// Factory creates a dialect from parsed parameters
type Factory func(params map[string]string) Dialect

var (
	registered = map[string]Factory{}
	lock       sync.RWMutex
)

// Register registers a dialect for use in rowmap.
//
// Note: later one with the same name will be discarded.
func Register(name string, f Factory) {
	lock.Lock()
	defer lock.Unlock()

	if _, ok := registered[name]; ok {
		return
	}

	registered[name] = f
}

// Parse splits dialect string into name and parameters
func Parse(str string) (name string, params map[string]string) {
	params = map[string]string{}
	arr := strings.SplitN(str, ":", 2)
	name = strings.TrimSpace(arr[0])
	if len(arr) < 2 {
		return
	}

	for _, kv := range strings.Split(arr[1], ";") {
		if kv == "" {
			continue
		}
		p := strings.SplitN(kv, "=", 2)
		k := strings.TrimSpace(p[0])
		if len(p) == 1 {
			params[k] = ""
			continue
		}
		params[k] = strings.TrimSpace(p[1])
	}

	return
}

// Get creates dialect according to the dialect string
func Get(str string) (Dialect, error) {
	name, params := Parse(str)

	lock.RLock()
	f, ok := registered[name]
	lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}

	return f(params), nil
}
