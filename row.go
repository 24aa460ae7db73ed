package rowmap

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// NoID is the id of rows never saved
const NoID int64 = -1

// ModifiedField is the field name notified when modified flag changes
const ModifiedField = "Modified"

// name of the id parameter in generated INSERT/UPDATE
const idParam = "ID"

// Record is implemented by data types embedding Row.
type Record interface {
	// Base returns the embedded row, promoted from Row
	Base() *Row

	// Field returns pointer to the field mapped to col, nil if not mapped
	Field(col *Column) interface{}
}

// Owner is what a Row needs from the Table creating it. It is implemented
// by Table.
type Owner interface {
	Schema() *Schema
	Connector() *Connector

	// RefreshAfterInsert reads columns computed by database on insert
	RefreshAfterInsert(rec Record, tx *Tx) error
	// RefreshAfterUpdate reads columns computed by database on update
	RefreshAfterUpdate(rec Record, tx *Tx) error
	// RefreshAll reads all columns
	RefreshAll(rec Record, tx *Tx) error
}

// Row represents one record of a table, embed it in your data type.
//
// Row IS NOT ZERO VALUE SAFE. Always create rows with Table.New or
// Table.Select.
//
// Changes made through SetField are tracked until Save or Cancel. After
// Delete, the row should not be used anymore.
type Row struct {
	id    int64
	owner Owner
	self  Record

	lock     sync.Mutex // guards dirty and modified
	dirty    dirtyMap
	modified bool
	reading  atomic.Bool

	olock     sync.Mutex
	observers []func(field string)
}

// Base returns r itself, it makes every type embedding Row half a Record
func (r *Row) Base() *Row {
	return r
}

func (r *Row) bind(owner Owner, self Record) {
	r.id = NoID
	r.owner = owner
	r.self = self
}

// ID returns identifier of the row, NoID if never saved
func (r *Row) ID() int64 {
	return r.id
}

// IsNew reports whether the row is never saved
func (r *Row) IsNew() bool {
	return r.id == NoID
}

// Owner returns the table creating this row
func (r *Row) Owner() Owner {
	return r.owner
}

// Modified reports whether the row has changes not yet saved
func (r *Row) Modified() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.modified
}

// Changed returns names of changed columns, in the order they are changed
func (r *Row) Changed() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	cols := r.dirty.columns()
	ret := make([]string, len(cols))
	for idx, c := range cols {
		ret[idx] = c.Name
	}
	return ret
}

// Original returns value of col before first change since last save
func (r *Row) Original(col *Column) (interface{}, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.dirty.get(col)
}

// OnChange registers an observer, which is called with column name whenever
// a field changes, or with ModifiedField when modified flag changes.
//
// Observers are called synchronously without any lock of the row held.
func (r *Row) OnChange(fn func(field string)) {
	r.olock.Lock()
	defer r.olock.Unlock()
	r.observers = append(r.observers, fn)
}

func (r *Row) notify(field string) {
	r.olock.Lock()
	obs := make([]func(string), len(r.observers))
	copy(obs, r.observers)
	r.olock.Unlock()

	for _, fn := range obs {
		fn(field)
	}
}

func (r *Row) setModified(v bool) {
	r.lock.Lock()
	changed := r.modified != v
	r.modified = v
	r.lock.Unlock()

	if changed {
		r.notify(ModifiedField)
	}
}

// SetField stores value into field, which is mapped to col, and tracks the
// change. It returns false if value equals to current one.
//
// Only first change of a column since last save is recorded, so Cancel
// restores value loaded from database. Auto updated and join columns are
// not recorded. Strings longer than col.MaxLength are truncated.
//
// Rows being read from database store value as-is.
func SetField[T comparable](r *Row, col *Column, field *T, value T) bool {
	r.lock.Lock()
	if *field == value {
		r.lock.Unlock()
		return false
	}

	if r.reading.Load() {
		*field = value
		r.lock.Unlock()
		r.notify(col.Name)
		return true
	}

	if col.Tracked() {
		r.dirty.remember(col, *field)
	}
	*field = truncate(col, value)
	r.lock.Unlock()

	r.setModified(true)
	r.notify(col.Name)
	return true
}

// Save writes changed columns into database, INSERT if the row is new and
// UPDATE otherwise, then reads auto updated columns back. It returns false
// if nothing changed.
//
// New rows get an id from generator of the schema.
//
// If the row is written but auto updated columns cannot be read back, Save
// returns true with the error.
func (r *Row) Save(tx *Tx) (bool, error) {
	saved, inserting, err := r.write(tx)
	if err != nil {
		return false, err
	}
	if !saved {
		r.setModified(false)
		return false, nil
	}

	if inserting {
		err = r.owner.RefreshAfterInsert(r.self, tx)
	} else {
		err = r.owner.RefreshAfterUpdate(r.self, tx)
	}
	r.setModified(false)
	return true, err
}

func (r *Row) write(tx *Tx) (saved, inserting bool, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.dirty.len() == 0 {
		return
	}
	if r.owner == nil || r.self == nil {
		err = ErrUnbound
		return
	}

	s := r.owner.Schema()
	if s.Table == "" {
		err = ErrNoTable
		return
	}
	c := r.owner.Connector()
	d := c.Dialect()
	if d == nil {
		err = ErrNotConnected
		return
	}

	cols := r.dirty.columns()
	vals := make(map[string]interface{}, len(cols)+1)
	for _, col := range cols {
		ptr := r.self.Field(col)
		if ptr == nil {
			err = fmt.Errorf("%w: %s.%s", ErrNoField, s.Table, col.Name)
			return
		}
		vals[col.Name] = valueOf(ptr)
	}

	id := r.id
	inserting = id == NoID
	var qstr string
	if inserting {
		if s.Generator == "" {
			err = ErrNoGenerator
			return
		}
		if id, err = c.GenNextGenValue(s.Generator, tx); err != nil {
			return
		}
		qstr = insertSQL(d.Quote(s.Table), s.IDColumn, cols)
	} else {
		qstr = updateSQL(d.Quote(s.Table), s.IDColumn, cols)
	}
	vals[idParam] = id

	if err = c.execNamed(tx, qstr, vals); err != nil {
		return
	}

	r.dirty.clear()
	r.id = id
	saved = true
	return
}

// insert into "T" (ID, A, B) values (@ID, @A, @B)
func insertSQL(table, idCol string, cols []*Column) string {
	cb := &strings.Builder{}
	vb := &strings.Builder{}
	cb.WriteString("insert into " + table + " (" + idCol + ", ")
	vb.WriteString("(@" + idParam + ", ")

	last := len(cols) - 1
	for idx, c := range cols {
		cb.WriteString(c.Name)
		vb.WriteString("@" + c.Name)
		if idx != last {
			cb.WriteString(", ")
			vb.WriteString(", ")
		} else {
			cb.WriteString(")")
			vb.WriteString(")")
		}
	}

	return cb.String() + " values " + vb.String()
}

// update "T" set A=@A, B=@B where ID=@ID
func updateSQL(table, idCol string, cols []*Column) string {
	b := &strings.Builder{}
	b.WriteString("update " + table + " set ")

	last := len(cols) - 1
	for idx, c := range cols {
		b.WriteString(c.Name + "=@" + c.Name)
		if idx != last {
			b.WriteString(", ")
		} else {
			b.WriteString(" ")
		}
	}

	b.WriteString("where " + idCol + "=@" + idParam)
	return b.String()
}

// Cancel restores every changed field to its original value.
func (r *Row) Cancel() {
	r.lock.Lock()
	r.reading.Store(true)
	names := make([]string, 0, r.dirty.len())
	if r.self != nil {
		for _, e := range r.dirty.entries {
			if ptr := r.self.Field(e.col); ptr != nil {
				assign(ptr, e.old)
				names = append(names, e.col.Name)
			}
		}
	}
	r.dirty.clear()
	r.reading.Store(false)
	r.lock.Unlock()

	for _, n := range names {
		r.notify(n)
	}
	r.setModified(false)
}

// Delete deletes the row from database. It does nothing if the row is new.
func (r *Row) Delete(tx *Tx) error {
	if r.IsNew() {
		return nil
	}
	if r.owner == nil {
		return ErrUnbound
	}

	s := r.owner.Schema()
	if s.Table == "" || s.IDColumn == "" {
		return ErrNoTable
	}
	c := r.owner.Connector()
	d := c.Dialect()
	if d == nil {
		return ErrNotConnected
	}

	qstr := fmt.Sprintf(
		"delete from %s where %s=%d",
		d.Quote(s.Table),
		d.Quote(s.IDColumn),
		r.id,
	)
	return c.Execute(qstr, tx)
}
