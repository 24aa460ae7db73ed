package rowmap

import (
	"fmt"
	"strings"
)

// Condition compares a column with a value, combine bits to get others
type Condition int

// Supported conditions
const (
	Equal          Condition = 0x1
	Greater        Condition = 0x2
	Smaller        Condition = 0x4
	NotEqual                 = Greater | Smaller
	GreaterOrEqual           = Greater | Equal
	SmallerOrEqual           = Smaller | Equal
)

var operators = map[Condition]string{
	Equal:          "=",
	Greater:        ">",
	Smaller:        "<",
	NotEqual:       "<>",
	GreaterOrEqual: ">=",
	SmallerOrEqual: "<=",
}

// Operator returns SQL operator of the condition
func (c Condition) Operator() (string, error) {
	op, ok := operators[c]
	if !ok {
		return "", fmt.Errorf("rowmap: invalid condition %#x", int(c))
	}
	return op, nil
}

// Constraint restricts rows returned by Table.SelectWhere. Nil Column means
// the id column.
type Constraint struct {
	Column *Column
	Cond   Condition
	Value  interface{}
}

// whereSQL builds `select * from "T" where A=@A and B>@B`
func whereSQL(table, idCol string, cons []Constraint) (string, []interface{}, error) {
	b := &strings.Builder{}
	b.WriteString("select * from " + table)

	params := make([]interface{}, 0, len(cons))
	for idx, c := range cons {
		op, err := c.Cond.Operator()
		if err != nil {
			return "", nil, err
		}

		name := idCol
		if c.Column != nil {
			name = c.Column.Name
		}

		if idx == 0 {
			b.WriteString(" where ")
		} else {
			b.WriteString(" and ")
		}
		b.WriteString(name + op + "@" + name)
		params = append(params, c.Value)
	}

	return b.String(), params, nil
}

// SelectWhere selects rows matching all constraints, or every row if
// none given. Like Select, it returns nil if anything goes wrong.
func (t *Table[T]) SelectWhere(tx *Tx, cons ...Constraint) []T {
	d := t.conn.Dialect()
	if d == nil {
		t.conn.logf("select from %s failed: %s", t.schema.Table, ErrNotConnected)
		return nil
	}

	qstr, params, err := whereSQL(d.Quote(t.schema.Table), t.schema.IDColumn, cons)
	if err != nil {
		t.conn.logf("select from %s failed: %s", t.schema.Table, err)
		return nil
	}

	return t.Select(qstr, tx, params...)
}
