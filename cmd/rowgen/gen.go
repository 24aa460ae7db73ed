package main

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Ronmi/rowmap/cmd/readstruct"
)

const rowmapPath = "github.com/Ronmi/rowmap"

type options struct {
	table     string
	generator string
	id        string
	pkg       string
}

// column is a field tagged with col
type column struct {
	field      readstruct.Field
	name       string
	maxLen     int
	autoInsert bool
	autoUpdate bool
	join       bool
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

// parseTag parses `col:"NAME,len=40,auto,join"`, ok is false if f is not tagged
func parseTag(f readstruct.Field) (ret column, ok bool, err error) {
	tag := f.Tag("col")
	if tag == "" || tag == "-" {
		return
	}
	ok = true
	ret.field = f

	opts := strings.Split(tag, ",")
	ret.name = strings.ToUpper(strings.TrimSpace(opts[0]))
	if ret.name == "" {
		ret.name = strings.ToUpper(f.Name)
	}

	for _, o := range opts[1:] {
		switch o = strings.TrimSpace(o); {
		case o == "auto":
			ret.autoInsert, ret.autoUpdate = true, true
		case o == "auto_insert":
			ret.autoInsert = true
		case o == "auto_update":
			ret.autoUpdate = true
		case o == "join":
			ret.join = true
		case strings.HasPrefix(o, "len="):
			if ret.maxLen, err = strconv.Atoi(o[4:]); err != nil || ret.maxLen < 0 {
				err = fmt.Errorf("field %s: invalid length %q", f.Name, o[4:])
				return
			}
		default:
			err = fmt.Errorf("field %s: unknown option %q", f.Name, o)
			return
		}
	}

	switch {
	case f.Embedded:
		err = fmt.Errorf("field %s: embedded field cannot be a column", f.Name)
	case f.RawType == "":
		err = fmt.Errorf("field %s: unsupported type", f.Name)
	case strings.HasPrefix(f.RawType, "[]"):
		err = fmt.Errorf("field %s: %s is not comparable", f.Name, f.RawType)
	}
	return
}

// methods of rowmap.Row, getters must not shadow them
var rowMethods = map[string]bool{
	"Base": true, "ID": true, "IsNew": true, "Owner": true, "Modified": true,
	"Changed": true, "Original": true, "OnChange": true, "Save": true,
	"Cancel": true, "Delete": true, "Field": true,
}

func columns(st readstruct.Info, idCol string) (ret []column, err error) {
	embedRow := false
	seen := map[string]string{idCol: "(id)"}

	for _, f := range st.Fields {
		if f.Embedded && (f.RawType == "Row" || strings.HasSuffix(f.RawType, ".Row")) {
			embedRow = true
			continue
		}

		c, ok, e := parseTag(f)
		if e != nil {
			return nil, e
		}
		if !ok {
			continue
		}
		if prev, dup := seen[c.name]; dup {
			return nil, fmt.Errorf("fields %s and %s map to same column %s", prev, f.Name, c.name)
		}
		if !f.Exported && rowMethods[upperFirst(f.Name)] {
			return nil, fmt.Errorf("field %s: getter conflicts with method of rowmap.Row", f.Name)
		}
		seen[c.name] = f.Name
		ret = append(ret, c)
	}

	if !embedRow {
		return nil, fmt.Errorf("%s does not embed rowmap.Row", st.Name)
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%s has no field tagged with col", st.Name)
	}
	return
}

// qualifier returns package name used in raw type, like time in *time.Time
func qualifier(typ string) string {
	typ = strings.TrimLeft(typ, "*[]")
	if idx := strings.IndexByte(typ, '.'); idx > 0 {
		return typ[:idx]
	}
	return ""
}

func (c column) varName(st readstruct.Info) string {
	return lowerFirst(st.Name) + "Col" + upperFirst(c.field.Name)
}

func gen(st readstruct.Info, opt options) ([]byte, error) {
	idCol := strings.ToUpper(opt.id)
	if idCol == "" {
		idCol = "ID"
	}
	cols, err := columns(st, idCol)
	if err != nil {
		return nil, err
	}

	pkg := opt.pkg
	if pkg == "" {
		pkg = st.Package
	}

	buf := &bytes.Buffer{}
	if err := genHeader(buf, st, pkg, cols); err != nil {
		return nil, err
	}
	genVars(buf, st, opt, cols)
	genField(buf, st, cols)
	genAccessors(buf, st, cols)
	genTable(buf, st)

	code, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated code is invalid: %w", err)
	}
	return code, nil
}

func genHeader(buf *bytes.Buffer, st readstruct.Info, pkg string, cols []column) error {
	imports := map[string]string{"rowmap": rowmapPath}
	for _, c := range cols {
		q := qualifier(c.field.RawType)
		if q == "" {
			continue
		}
		i, ok := st.Import(q)
		if !ok {
			return fmt.Errorf("field %s: package %s is not imported", c.field.Name, q)
		}
		imports[q] = i.Path
	}

	var std, others []string
	for name, p := range imports {
		line := strconv.Quote(p)
		if name != path.Base(p) {
			line = name + " " + line
		}
		if strings.Contains(strings.SplitN(p, "/", 2)[0], ".") {
			others = append(others, line)
		} else {
			std = append(std, line)
		}
	}
	sort.Strings(std)
	sort.Strings(others)

	groups := make([]string, 0, 2)
	for _, g := range [][]string{std, others} {
		if len(g) > 0 {
			groups = append(groups, strings.Join(g, "\n\t"))
		}
	}

	fmt.Fprintf(buf, `// Code generated by rowgen. DO NOT EDIT.

package %s

import (
	%s
)

`, pkg, strings.Join(groups, "\n\n\t"))
	return nil
}

func genVars(buf *bytes.Buffer, st readstruct.Info, opt options, cols []column) {
	buf.WriteString("var (\n")
	names := make([]string, len(cols))
	for idx, c := range cols {
		names[idx] = c.varName(st)

		opts := []string{"Name: " + strconv.Quote(c.name)}
		if c.maxLen > 0 {
			opts = append(opts, "MaxLength: "+strconv.Itoa(c.maxLen))
		}
		if c.autoInsert {
			opts = append(opts, "AutoInsert: true")
		}
		if c.autoUpdate {
			opts = append(opts, "AutoUpdate: true")
		}
		if c.join {
			opts = append(opts, "Join: true")
		}
		fmt.Fprintf(buf, "\t%s = &rowmap.Column{%s}\n", names[idx], strings.Join(opts, ", "))
	}

	fmt.Fprintf(buf, "\n\t// %sSchema maps %s to table %s\n", st.Name, st.Name, opt.table)
	if opt.id == "" {
		fmt.Fprintf(
			buf,
			"\t%sSchema = rowmap.NewSchema(%q, %q, %s)\n",
			st.Name, opt.table, opt.generator, strings.Join(names, ", "),
		)
	} else {
		fmt.Fprintf(
			buf,
			"\t%sSchema = rowmap.NewSchemaID(%q, %q, %q, %s)\n",
			st.Name, opt.table, opt.generator, opt.id, strings.Join(names, ", "),
		)
	}
	buf.WriteString(")\n\n")
}

func genField(buf *bytes.Buffer, st readstruct.Info, cols []column) {
	fmt.Fprintf(buf, `// Field implements rowmap.Record
func (r *%s) Field(c *rowmap.Column) interface{} {
	switch c {
`, st.Name)
	for _, c := range cols {
		fmt.Fprintf(buf, "\tcase %s:\n\t\treturn &r.%s\n", c.varName(st), c.field.Name)
	}
	buf.WriteString("\t}\n\treturn nil\n}\n\n")
}

func genAccessors(buf *bytes.Buffer, st readstruct.Info, cols []column) {
	for _, c := range cols {
		f := c.field
		acc := upperFirst(f.Name)

		// exported fields are accessed directly
		if !f.Exported {
			fmt.Fprintf(
				buf,
				"// %s returns value of column %s\nfunc (r *%s) %s() %s {\n\treturn r.%s\n}\n\n",
				acc, c.name,
				st.Name, acc, f.RawType,
				f.Name,
			)
		}

		if c.join {
			continue
		}
		fmt.Fprintf(
			buf,
			"// Set%s changes value of column %s, returns false if unchanged\nfunc (r *%s) Set%s(v %s) bool {\n\treturn rowmap.SetField(&r.Row, %s, &r.%s, v)\n}\n\n",
			acc, c.name,
			st.Name, acc, f.RawType,
			c.varName(st), f.Name,
		)
	}
}

func genTable(buf *bytes.Buffer, st readstruct.Info) {
	fmt.Fprintf(
		buf,
		`// New%sTable creates table of %s, nil conn means rowmap.Default
func New%sTable(conn *rowmap.Connector) *rowmap.Table[*%s] {
	return rowmap.NewTable(conn, %sSchema, func() *%s { return &%s{} })
}
`,
		st.Name, st.Name,
		st.Name, st.Name,
		st.Name, st.Name, st.Name,
	)
}
