package rowmap

import (
	"fmt"
	"strings"
)

// DefaultIDColumn is the id column name used by NewSchema
const DefaultIDColumn = "ID"

// Column describes how a field maps to a table column.
//
// Columns are compared by identity, declare them once as package variables.
// Do not change a Column after it is placed in a Schema.
type Column struct {
	Name       string // column name, upper-cased by NewSchema
	MaxLength  int    // max length of string value in runes, 0 means unbounded
	AutoInsert bool   // computed by database on insert
	AutoUpdate bool   // computed by database on update
	Join       bool   // read-only, populated from related table
}

// Tracked reports whether changes to this column are saved by Row.
//
// Auto updated and join columns are never written.
func (c *Column) Tracked() bool {
	return !(c.AutoInsert || c.AutoUpdate || c.Join)
}

func (c *Column) String() string {
	return c.Name
}

// Schema is the mapping of one table, built once per type with NewSchema.
type Schema struct {
	Table     string // table name
	Generator string // sequence generator issuing ids for new rows
	IDColumn  string // id column, defaults to DefaultIDColumn
	Columns   []*Column

	byName     map[string]*Column
	autoInsert []*Column
	autoUpdate []*Column
}

// NewSchema creates schema of a table. It panics if column names duplicate.
//
// Generator is required only to insert new rows.
func NewSchema(table, generator string, cols ...*Column) *Schema {
	return NewSchemaID(table, generator, DefaultIDColumn, cols...)
}

// NewSchemaID is like NewSchema, but use another id column
func NewSchemaID(table, generator, idColumn string, cols ...*Column) *Schema {
	s := &Schema{
		Table:     table,
		Generator: generator,
		IDColumn:  strings.ToUpper(idColumn),
		Columns:   cols,
		byName:    make(map[string]*Column, len(cols)),
	}

	for _, c := range cols {
		c.Name = strings.ToUpper(c.Name)
		if c.Name == "" {
			panic(fmt.Errorf("rowmap: %s: column without name", table))
		}
		if c.Name == s.IDColumn || c.Name == idParam {
			panic(fmt.Errorf("rowmap: %s: column %s collides with the id column", table, c.Name))
		}
		if _, ok := s.byName[c.Name]; ok {
			panic(fmt.Errorf("rowmap: %s: duplicated column %s", table, c.Name))
		}
		s.byName[c.Name] = c

		if c.AutoInsert {
			s.autoInsert = append(s.autoInsert, c)
		}
		if c.AutoUpdate {
			s.autoUpdate = append(s.autoUpdate, c)
		}
	}

	return s
}

// Column finds column by name, case insensitive
func (s *Schema) Column(name string) *Column {
	return s.byName[strings.ToUpper(name)]
}

// AutoInserted returns columns to refresh after insert
func (s *Schema) AutoInserted() []*Column {
	return s.autoInsert
}

// AutoUpdated returns columns to refresh after update
func (s *Schema) AutoUpdated() []*Column {
	return s.autoUpdate
}
