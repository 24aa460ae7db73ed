package readstruct

import (
	"errors"
	"go/ast"
	"go/token"
)

// ErrNotFound is returned by FindFirstIn if no struct matches
var ErrNotFound = errors.New("readstruct: cannot find matching structure")

// FindFirstIn filters all go source files in dir, return first matching struct info
// which test by filter function "by"
//
// Example usage:
//
//     FindFirstIn("testdata", ByName("A"))
func FindFirstIn(dir string, by func(*Info) bool) (info Info, err error) {
	files, err := goFiles(dir)
	if err != nil {
		return
	}

	fset := token.NewFileSet()
	for _, fn := range files {
		if a, e := parseFromFile(fset, fn); e == nil {
			if i, ok := filterResult(a, by); ok {
				return i, nil
			}
		}
	}

	err = ErrNotFound
	return
}

func filterResult(a *ast.File, f func(*Info) bool) (info Info, ok bool) {
	for _, i := range extractFromAst(a) {
		if ok = f(&i); ok {
			info = i
			return
		}
	}

	return
}

// ByName matches struct by its name
func ByName(name string) func(*Info) bool {
	return func(i *Info) bool {
		return i.Name == name
	}
}
