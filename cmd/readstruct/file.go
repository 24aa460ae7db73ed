package readstruct

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"path/filepath"
	"strings"
)

// goFiles lists non-test go source files in dir
func goFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return nil, err
	}

	ret := files[:0]
	for _, f := range files {
		if !strings.HasSuffix(f, "_test.go") {
			ret = append(ret, f)
		}
	}
	return ret, nil
}

func parseFromDir(fset *token.FileSet, dir string) (ret []*ast.File, err error) {
	files, err := goFiles(dir)
	if err != nil {
		return
	}
	ret = make([]*ast.File, 0, len(files))

	for _, f := range files {
		if a, e := parseFromFile(fset, f); e == nil {
			ret = append(ret, a)
		}
	}

	return
}

func parseFromFile(fset *token.FileSet, fn string) (ret *ast.File, err error) {
	ret, err = parser.ParseFile(fset, fn, nil, parser.ParseComments)
	return
}

func parseFromReader(fset *token.FileSet, r io.Reader) (ret *ast.File, err error) {
	ret, err = parser.ParseFile(fset, "input.go", r, parser.ParseComments)
	return
}
