package rowmap

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx"
)

// discard scans unknown columns into nothing
type discard struct{}

func (discard) Scan(interface{}) error {
	return nil
}

// Table is the query surface of one table, creating rows of type T.
//
// T is usually a pointer to a struct embedding Row.
type Table[T Record] struct {
	conn   *Connector
	schema *Schema
	create func() T
}

// NewTable creates a table. Nil conn means Default connector.
//
// create allocates an empty record, it should not touch embedded Row.
func NewTable[T Record](conn *Connector, schema *Schema, create func() T) *Table[T] {
	if conn == nil {
		conn = Default
	}

	return &Table[T]{
		conn:   conn,
		schema: schema,
		create: create,
	}
}

// Schema returns schema of the table
func (t *Table[T]) Schema() *Schema {
	return t.schema
}

// Connector returns connector executing statements of the table
func (t *Table[T]) Connector() *Connector {
	return t.conn
}

// New creates a new row bound to this table
func (t *Table[T]) New() T {
	rec := t.create()
	rec.Base().bind(t, rec)
	return rec
}

// Select executes a query and creates a row for each result. Tokens starting
// with @ are parameters, bound to params in order of appearance.
//
// Select returns nil if anything goes wrong, the error is logged. Use Query
// if you have to tell failure from empty result.
func (t *Table[T]) Select(query string, tx *Tx, params ...interface{}) (ret []T) {
	defer func() {
		if r := recover(); r != nil {
			t.conn.logf("select from %s failed: %v", t.schema.Table, r)
			ret = nil
		}
	}()

	ret, err := t.Query(query, tx, params...)
	if err != nil {
		t.conn.logf("select from %s failed: %s", t.schema.Table, err)
		return nil
	}
	return ret
}

// Query is like Select, but returns the error. Empty result is a non-nil
// empty slice.
func (t *Table[T]) Query(query string, tx *Tx, params ...interface{}) ([]T, error) {
	rows, err := t.conn.queryx(tx, query, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	ret := []T{}
	for rows.Next() {
		rec := t.New()
		if err := t.read(rows, names, t.schema.Column, rec); err != nil {
			return nil, err
		}
		ret = append(ret, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ret, nil
}

// read scans current row of rows into rec. lookup decides which result
// column goes to which field, others are discarded.
func (t *Table[T]) read(rows *sqlx.Rows, names []string, lookup func(string) *Column, rec Record) error {
	holders := make([]interface{}, len(names))
	targets := make([]*Column, len(names))
	var id *int64

	for idx, name := range names {
		name = strings.ToUpper(name)
		if name == t.schema.IDColumn {
			id = new(int64)
			holders[idx] = id
			continue
		}

		col := lookup(name)
		if col == nil {
			holders[idx] = discard{}
			continue
		}

		ptr := rec.Field(col)
		if ptr == nil {
			return fmt.Errorf("%w: %s.%s", ErrNoField, t.schema.Table, col.Name)
		}
		holders[idx] = holderOf(reflect.TypeOf(ptr).Elem())
		targets[idx] = col
	}

	if err := rows.Scan(holders...); err != nil {
		return err
	}

	values := make([]interface{}, len(holders))
	for idx, col := range targets {
		if col != nil {
			values[idx] = scanned(reflect.TypeOf(rec.Field(col)).Elem(), holders[idx])
		}
	}

	t.populate(rec, id, targets, values)
	return nil
}

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

// nullable reports whether a field of type typ can hold NULL by itself
func nullable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return reflect.PtrTo(typ).Implements(scannerType)
}

// holderOf allocates scan destination for a field of type typ. Fields which
// cannot hold NULL are scanned through an extra pointer.
func holderOf(typ reflect.Type) interface{} {
	if nullable(typ) {
		return reflect.New(typ).Interface()
	}
	return reflect.New(reflect.PtrTo(typ)).Interface()
}

// scanned returns value in holder allocated by holderOf, NULL becomes zero
// value of typ
func scanned(typ reflect.Type, holder interface{}) interface{} {
	v := reflect.ValueOf(holder).Elem()
	if nullable(typ) {
		return v.Interface()
	}
	if v.IsNil() {
		return reflect.Zero(typ).Interface()
	}
	return v.Elem().Interface()
}

// populate stores values read from database into rec in reading mode.
//
// If a column has unsaved change, new value replaces the recorded original
// value instead, so the change survives and Cancel reverts to what is in
// database now.
func (t *Table[T]) populate(rec Record, id *int64, targets []*Column, values []interface{}) {
	r := rec.Base()
	changed := make([]string, 0, len(targets))

	r.lock.Lock()
	r.reading.Store(true)
	if id != nil {
		r.id = *id
	}
	for idx, col := range targets {
		if col == nil {
			continue
		}

		v := values[idx]
		ptr := rec.Field(col)
		if sameValue(valueOf(ptr), v) {
			continue
		}
		if r.dirty.replace(col, v) {
			continue
		}
		assign(ptr, v)
		changed = append(changed, col.Name)
	}
	r.reading.Store(false)
	r.lock.Unlock()

	for _, n := range changed {
		r.notify(n)
	}
}

// refresh reads cols of rec from database
func (t *Table[T]) refresh(rec Record, cols []*Column, tx *Tx) error {
	r := rec.Base()
	if len(cols) == 0 || r.IsNew() {
		return nil
	}
	if t.schema.Table == "" {
		return ErrNoTable
	}

	names := make([]string, len(cols))
	lookup := make(map[string]*Column, len(cols))
	for idx, c := range cols {
		names[idx] = c.Name
		lookup[c.Name] = c
	}

	qstr := fmt.Sprintf(
		"select %s from %s where %s=%d",
		strings.Join(names, ", "),
		t.schema.Table,
		t.schema.IDColumn,
		r.ID(),
	)
	rows, err := t.conn.queryx(tx, qstr, nil)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		return rows.Err()
	}
	result, err := rows.Columns()
	if err != nil {
		return err
	}

	return t.read(rows, result, func(n string) *Column { return lookup[n] }, rec)
}

// RefreshAfterInsert reads columns computed by database on insert
func (t *Table[T]) RefreshAfterInsert(rec Record, tx *Tx) error {
	return t.refresh(rec, t.schema.AutoInserted(), tx)
}

// RefreshAfterUpdate reads columns computed by database on update
func (t *Table[T]) RefreshAfterUpdate(rec Record, tx *Tx) error {
	return t.refresh(rec, t.schema.AutoUpdated(), tx)
}

// RefreshAll reads every column of rec stored in the table, join columns
// excluded.
func (t *Table[T]) RefreshAll(rec Record, tx *Tx) error {
	cols := make([]*Column, 0, len(t.schema.Columns))
	for _, c := range t.schema.Columns {
		if !c.Join {
			cols = append(cols, c)
		}
	}
	return t.refresh(rec, cols, tx)
}

// RefreshRow reads every column of row, keeping unsaved changes
func (t *Table[T]) RefreshRow(row T, tx *Tx) error {
	return t.RefreshAll(row, tx)
}
