package extractor

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/rs/zerolog/log"

	"github.com/gleaner-cli/gleaner/internal/lang"
)

// parseGo extracts top-level functions, methods, and type declarations via
// the Go AST. Doc comments attached to a declaration are included in the
// fragment body.
func (p *FragmentParser) parseGo(path, project string, src []byte) ([]Fragment, []Warning) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, []Warning{{Path: path, Message: fmt.Sprintf("go parse: %v", err)}}
	}

	var (
		fragments []Fragment
		warnings  []Warning
	)
	add := func(name string, kind Kind, start, end token.Pos) {
		sp, ep := fset.Position(start), fset.Position(end)
		if !p.admit(name, sp.Line, ep.Line) {
			return
		}
		code := string(src[sp.Offset:ep.Offset])
		f, err := newFragment(path, project, name, kind, lang.Go, sp.Line, ep.Line, code)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Message: err.Error()})
			return
		}
		fragments = append(fragments, f)
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			kind := KindFunction
			if d.Recv != nil && len(d.Recv.List) > 0 {
				kind = KindMethod
				if recv := receiverName(d.Recv.List[0].Type); recv != "" {
					name = recv + "." + name
				}
			}
			start := d.Pos()
			if d.Doc != nil {
				start = d.Doc.Pos()
			}
			add(name, kind, start, d.End())
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			if len(d.Specs) == 1 {
				if ts, ok := d.Specs[0].(*ast.TypeSpec); ok {
					start := d.Pos()
					if d.Doc != nil {
						start = d.Doc.Pos()
					}
					add(ts.Name.Name, KindClass, start, d.End())
				}
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				start := ts.Pos()
				if ts.Doc != nil {
					start = ts.Doc.Pos()
				}
				add(ts.Name.Name, KindClass, start, ts.End())
			}
		}
	}

	log.Debug().Str("path", path).Int("fragments", len(fragments)).Msg("parsed go file")
	return fragments, warnings
}

// receiverName extracts the bare receiver type name, unwrapping pointers
// and generic instantiations.
func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	default:
		return ""
	}
}
