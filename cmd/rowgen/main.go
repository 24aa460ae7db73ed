// Command rowgen generates row mapping code for a struct embedding rowmap.Row.
//
// Fields tagged with "col" become columns:
//
//     type Person struct {
//         rowmap.Row
//         name string  `col:"NAME,len=40"`
//         nick *string `col:",len=8"`
//         rev  int64   `col:"REV,auto"`
//         team string  `col:"TEAM,join"`
//     }
//
// Tag options:
//
//   - len=N: max length of string value
//   - auto: computed by database on insert and update
//   - auto_insert, auto_update: computed by database on insert or update only
//   - join: read-only, populated from related table
//
// Column name defaults to upper-cased field name. Untagged fields are left
// alone.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Ronmi/rowmap/cmd/readstruct"
)

func doc() {
	x := os.Args[0]
	fmt.Fprintf(
		flag.CommandLine.Output(),
		`
As %s generates one struct per execution, you can chain it up with go:generate

  //go:generate %s -n Person -t PEOPLE -o person_row.go

Example usage of generated code:

  people := NewPersonTable(nil)
  p := people.New()
  p.SetName("John")
  if _, err := p.Save(nil); err != nil {
      return err
  }
`,
		x,
		x,
	)
}

func main() {
	var (
		dir  string
		name string
		opt  options
		out  string
	)

	u := flag.Usage
	flag.Usage = func() {
		u()
		doc()
	}

	flag.StringVar(&dir, "d", ".", "Where to find source files. (Defult to current dir)")
	flag.StringVar(&name, "n", "", "Struct name. (required)")
	flag.StringVar(&opt.table, "t", "", "Table name. (Default to upper-cased struct name)")
	flag.StringVar(&opt.generator, "g", "", "Generator name. (Default to GEN_<table>_ID)")
	flag.StringVar(&opt.id, "id", "", "ID column. (Default to ID)")
	flag.StringVar(&opt.pkg, "p", "", "Package name. (Default to package of the struct)")
	flag.StringVar(&out, "o", "", "Output file. (Default to stdout)")
	flag.Parse()

	if name == "" {
		flag.Usage()
		os.Exit(2)
	}

	st, err := readstruct.FindFirstIn(dir, readstruct.ByName(name))
	if err != nil {
		log.Fatalf("Cannot find struct %s in %s: %s", name, dir, err)
	}
	if opt.table == "" {
		opt.table = strings.ToUpper(st.Name)
	}
	if opt.generator == "" {
		opt.generator = "GEN_" + opt.table + "_ID"
	}

	code, err := gen(st, opt)
	if err != nil {
		log.Fatalf("Cannot generate code for %s: %s", name, err)
	}

	if out == "" {
		if _, err := os.Stdout.Write(code); err != nil {
			log.Fatalf("Error writing to stdout: %s", err)
		}
		return
	}
	if err := os.WriteFile(out, code, 0644); err != nil {
		log.Fatalf("Error writing to %s: %s", out, err)
	}
}
