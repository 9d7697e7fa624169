// Package selector parses model selector expressions using Participle.
//
// A selector names one model and optionally restricts its fields:
//
//	res.partner
//	res.partner[name,email]
//	res.partner[-message_ids]
//
// Bare field names form an allow-list; names prefixed with "-" are dropped
// from whatever remains.
package selector

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/modelkit/odoogen/odoo"
)

// Selector is one parsed model selector.
type Selector struct {
	Model   string
	Include []string
	Exclude []string
}

type selectorExpr struct {
	Model  string       `@Ident`
	Fields []*fieldTerm `("[" @@ ("," @@)* "]")?`
}

type fieldTerm struct {
	Exclude bool   `@"-"?`
	Name    string `@Ident`
}

var selectorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Punct", Pattern: `[\[\],\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[selectorExpr](
	participle.Lexer(selectorLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a single selector expression.
func Parse(input string) (Selector, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Selector{}, fmt.Errorf("selector: empty expression")
	}

	expr, err := parser.ParseString("", trimmed)
	if err != nil {
		return Selector{}, fmt.Errorf("selector: parse %q: %w", trimmed, err)
	}

	sel := Selector{Model: expr.Model}
	for _, term := range expr.Fields {
		if strings.Contains(term.Name, ".") {
			return Selector{}, fmt.Errorf("selector: field name %q must not contain dots", term.Name)
		}
		if term.Exclude {
			sel.Exclude = append(sel.Exclude, term.Name)
		} else {
			sel.Include = append(sel.Include, term.Name)
		}
	}
	return sel, nil
}

// ParseAll parses a list of selector expressions, failing on the first bad one.
func ParseAll(inputs []string) ([]Selector, error) {
	sels := make([]Selector, 0, len(inputs))
	for _, input := range inputs {
		sel, err := Parse(input)
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

// Apply filters field metadata through the selector, preserving the incoming
// order. An empty selector passes everything through.
func (s Selector) Apply(metas []odoo.FieldMetadata) []odoo.FieldMetadata {
	if len(s.Include) == 0 && len(s.Exclude) == 0 {
		return metas
	}

	include := make(map[string]struct{}, len(s.Include))
	for _, name := range s.Include {
		include[name] = struct{}{}
	}
	exclude := make(map[string]struct{}, len(s.Exclude))
	for _, name := range s.Exclude {
		exclude[name] = struct{}{}
	}

	var out []odoo.FieldMetadata
	for _, meta := range metas {
		if len(include) > 0 {
			if _, ok := include[meta.Name]; !ok {
				continue
			}
		}
		if _, drop := exclude[meta.Name]; drop {
			continue
		}
		out = append(out, meta)
	}
	return out
}

// String renders the selector back to its expression form.
func (s Selector) String() string {
	if len(s.Include) == 0 && len(s.Exclude) == 0 {
		return s.Model
	}
	terms := make([]string, 0, len(s.Include)+len(s.Exclude))
	terms = append(terms, s.Include...)
	for _, name := range s.Exclude {
		terms = append(terms, "-"+name)
	}
	return s.Model + "[" + strings.Join(terms, ",") + "]"
}
