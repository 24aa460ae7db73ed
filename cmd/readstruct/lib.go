package readstruct

import (
	"go/token"
	"io"
)

// ExtractFromDir extracts complete and valid struct info from all go files
// in dir, test files excluded.
//
// Files causing parse error are silently ignored. The only possible error
// returned comes from filepath.Glob(). Also, incomplete and generic structs
// are silently ignored.
func ExtractFromDir(dir string) (info []Info, err error) {
	fset := token.NewFileSet()
	files, err := parseFromDir(fset, dir)
	if err != nil {
		return
	}

	for _, f := range files {
		info = append(info, extractFromAst(f)...)
	}

	return
}

// ExtractFromFile extracts complete and valid struct info from specified file.
//
// Only errors from parser.ParseFile is returned.
func ExtractFromFile(fn string) (info []Info, err error) {
	fset := token.NewFileSet()
	f, err := parseFromFile(fset, fn)
	if err != nil {
		return
	}

	info = extractFromAst(f)
	return
}

// ExtractFromReader extracts complete and valid struct info from io.Reader.
//
// Only errors from parser.ParseFile is returned.
func ExtractFromReader(r io.Reader) (info []Info, err error) {
	fset := token.NewFileSet()
	f, err := parseFromReader(fset, r)
	if err != nil {
		return
	}

	info = extractFromAst(f)
	return
}
