package readstruct

import (
	"go/ast"
	"go/token"
	"path"
	"reflect"
	"strconv"
	"unicode"
	"unicode/utf8"
)

func extractFromAst(f *ast.File) (ret []Info) {
	pkg := f.Name.Name
	imports := extractImports(f)

	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}

		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.TypeParams != nil {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Incomplete {
				continue
			}

			info := Info{
				Package: pkg,
				Name:    ts.Name.Name,
				Fields:  make([]Field, 0, len(st.Fields.List)),
				Imports: imports,
			}
			for _, field := range st.Fields.List {
				info.Fields = append(info.Fields, extractFieldFromAst(field)...)
			}

			ret = append(ret, info)
		}
	}

	return
}

func extractImports(f *ast.File) []Import {
	ret := make([]Import, 0, len(f.Imports))
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		name := path.Base(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		ret = append(ret, Import{Name: name, Path: p})
	}
	return ret
}

func extractFieldFromAst(f *ast.Field) (ret []Field) {
	typ := typeString(f.Type)
	tags := ""
	if f.Tag != nil {
		tags = f.Tag.Value
	}

	if len(f.Names) == 0 {
		return []Field{extractEmbedFieldFromAst(f.Type, typ, tags)}
	}

	ret = make([]Field, 0, len(f.Names))
	for _, n := range f.Names {
		ret = append(ret, Field{
			Name:     n.Name,
			Exported: isExported(n.Name),
			Tags:     tags,
			RawType:  typ,
		})
	}

	return
}

func extractEmbedFieldFromAst(expr ast.Expr, typ, tags string) (ret Field) {
	if x, ok := expr.(*ast.StarExpr); ok {
		expr = x.X
	}
	switch x := expr.(type) {
	case *ast.Ident:
		ret.Name = x.Name
	case *ast.SelectorExpr:
		ret.Name = x.Sel.Name
	}

	ret.Embedded = true
	ret.Exported = isExported(ret.Name)
	ret.Tags = tags
	ret.RawType = typ
	return
}

// typeString renders supported type expressions, empty string for others
func typeString(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.SelectorExpr:
		pkg, ok := x.X.(*ast.Ident)
		if !ok {
			return ""
		}
		return pkg.Name + "." + x.Sel.Name
	case *ast.StarExpr:
		if s := typeString(x.X); s != "" {
			return "*" + s
		}
	case *ast.ArrayType:
		if x.Len != nil {
			return ""
		}
		if s := typeString(x.Elt); s != "" {
			return "[]" + s
		}
	}

	return ""
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func tagOf(raw, key string) string {
	if raw == "" {
		return ""
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return ""
	}
	return reflect.StructTag(s).Get(key)
}
