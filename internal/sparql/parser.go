package sparql

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/undefinedsco/quintstore/internal/rdf"
)

// Parse turns a SPARQL query string into a Query. It covers the
// subset the planner can usefully inspect: SELECT and ASK with basic
// graph patterns, GRAPH scoping, FILTER, OPTIONAL, UNION, MINUS, and
// the solution modifiers. CONSTRUCT, DESCRIBE, and update forms are
// classified but not parsed further. Anything beyond the subset is a
// parse error, which callers treat as "delegate", never as failure.
func Parse(query string) (*Query, error) {
	p := &parser{lex: newLexer(query), prefixes: map[string]string{}}
	return p.parseQuery()
}

type parser struct {
	lex      *lexer
	prefixes map[string]string
}

func (p *parser) parseQuery() (*Query, error) {
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokKeyword {
			return nil, fmt.Errorf("expected query form, got %q", tok.text)
		}

		switch tok.text {
		case "PREFIX":
			if err := p.parsePrefix(); err != nil {
				return nil, err
			}
		case "BASE":
			p.lex.next()
			if _, err := p.expect(tokIRI); err != nil {
				return nil, err
			}
		case "SELECT":
			return p.parseSelect()
		case "ASK":
			return p.parseAsk()
		case "CONSTRUCT":
			return &Query{Form: FormConstruct}, nil
		case "DESCRIBE":
			return &Query{Form: FormDescribe}, nil
		case "INSERT", "DELETE", "LOAD", "CLEAR", "CREATE", "DROP", "COPY", "MOVE", "ADD", "WITH":
			return &Query{Form: FormUpdate}, nil
		default:
			return nil, fmt.Errorf("unsupported query form %q", tok.text)
		}
	}
}

func (p *parser) parsePrefix() error {
	p.lex.next() // PREFIX
	name, err := p.expect(tokPName)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(name.text, ":") {
		return fmt.Errorf("malformed prefix declaration %q", name.text)
	}
	iri, err := p.expect(tokIRI)
	if err != nil {
		return err
	}
	p.prefixes[strings.TrimSuffix(name.text, ":")] = iri.text
	return nil
}

func (p *parser) parseSelect() (*Query, error) {
	p.lex.next() // SELECT

	var distinct, reduced bool
	tok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokKeyword && tok.text == "DISTINCT" {
		distinct = true
		p.lex.next()
	} else if tok.kind == tokKeyword && tok.text == "REDUCED" {
		reduced = true
		p.lex.next()
	}

	vars, err := p.parseProjection()
	if err != nil {
		return nil, err
	}

	group, err := p.parseWhere()
	if err != nil {
		return nil, err
	}

	root := Node(Project{Vars: vars, Input: group})
	if distinct {
		root = Distinct{Input: root}
	} else if reduced {
		root = Reduced{Input: root}
	}

	root, err = p.parseModifiers(root)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return &Query{Form: FormSelect, Root: root}, nil
}

func (p *parser) parseAsk() (*Query, error) {
	p.lex.next() // ASK
	group, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	root, err := p.parseModifiers(Project{Input: group})
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return &Query{Form: FormAsk, Root: root}, nil
}

func (p *parser) parseProjection() ([]string, error) {
	tok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokStar {
		p.lex.next()
		return nil, nil // SELECT *
	}

	var vars []string
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokVar {
			break
		}
		p.lex.next()
		vars = append(vars, tok.text)
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("empty SELECT projection")
	}
	return vars, nil
}

func (p *parser) parseWhere() (Node, error) {
	tok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokKeyword && tok.text == "WHERE" {
		p.lex.next()
	}
	return p.parseGroup()
}

// parseGroup parses { ... }, combining siblings into Join chains and
// wrapping trailing FILTERs around the result.
func (p *parser) parseGroup() (Node, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}

	var (
		acc     Node
		bgp     []TriplePattern
		filters []string
	)

	flushBGP := func() {
		if len(bgp) > 0 {
			acc = joinNodes(acc, BGP{Patterns: bgp})
			bgp = nil
		}
	}

	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.kind == tokRBrace:
			p.lex.next()
			flushBGP()
			if acc == nil {
				acc = BGP{}
			}
			for _, expr := range filters {
				acc = Filter{Expr: expr, Input: acc}
			}
			return acc, nil

		case tok.kind == tokKeyword && tok.text == "GRAPH":
			p.lex.next()
			gterm, err := p.parseTermOrVar()
			if err != nil {
				return nil, err
			}
			sub, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			flushBGP()
			acc = joinNodes(acc, Graph{Graph: gterm, Input: sub})

		case tok.kind == tokKeyword && tok.text == "OPTIONAL":
			p.lex.next()
			sub, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			flushBGP()
			if acc == nil {
				acc = BGP{}
			}
			acc = LeftJoin{Left: acc, Right: sub}

		case tok.kind == tokKeyword && tok.text == "MINUS":
			p.lex.next()
			sub, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			flushBGP()
			if acc == nil {
				acc = BGP{}
			}
			acc = Minus{Left: acc, Right: sub}

		case tok.kind == tokKeyword && tok.text == "FILTER":
			p.lex.next()
			expr, err := p.parseFilterExpr()
			if err != nil {
				return nil, err
			}
			filters = append(filters, expr)

		case tok.kind == tokLBrace:
			sub, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			// Possibly the head of a UNION chain.
			for {
				tok, err := p.lex.peek()
				if err != nil {
					return nil, err
				}
				if tok.kind != tokKeyword || tok.text != "UNION" {
					break
				}
				p.lex.next()
				right, err := p.parseGroup()
				if err != nil {
					return nil, err
				}
				sub = Union{Left: sub, Right: right}
			}
			flushBGP()
			acc = joinNodes(acc, sub)

		case tok.kind == tokDot:
			p.lex.next()

		default:
			triples, err := p.parseTriples()
			if err != nil {
				return nil, err
			}
			bgp = append(bgp, triples...)
		}
	}
}

func joinNodes(left, right Node) Node {
	if left == nil {
		return right
	}
	return Join{Left: left, Right: right}
}

// parseTriples parses one subject with its ;-separated predicate lists
// and ,-separated object lists.
func (p *parser) parseTriples() ([]TriplePattern, error) {
	subject, err := p.parseTermOrVar()
	if err != nil {
		return nil, err
	}

	var out []TriplePattern
	for {
		predicate, err := p.parseTermOrVar()
		if err != nil {
			return nil, err
		}
		for {
			object, err := p.parseTermOrVar()
			if err != nil {
				return nil, err
			}
			out = append(out, TriplePattern{Subject: subject, Predicate: predicate, Object: object})

			tok, err := p.lex.peek()
			if err != nil {
				return nil, err
			}
			if tok.kind != tokComma {
				break
			}
			p.lex.next()
		}

		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokSemicolon {
			return out, nil
		}
		p.lex.next()
		// Allow a trailing ; before . or }
		tok, err = p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokDot || tok.kind == tokRBrace {
			return out, nil
		}
	}
}

// parseFilterExpr captures the raw FILTER expression text: either a
// parenthesized expression or a function-call form. The planner never
// interprets it, so raw text suffices.
func (p *parser) parseFilterExpr() (string, error) {
	tok, err := p.lex.next()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	depth := 0

	switch tok.kind {
	case tokLParen:
		depth = 1
		b.WriteString("(")
	case tokKeyword, tokPName:
		// Built-in call: NAME ( args )
		b.WriteString(tok.text)
		open, err := p.expect(tokLParen)
		if err != nil {
			return "", err
		}
		_ = open
		b.WriteString("(")
		depth = 1
	default:
		return "", fmt.Errorf("unsupported FILTER syntax at %q", tok.text)
	}

	for depth > 0 {
		tok, err := p.lex.next()
		if err != nil {
			return "", err
		}
		switch tok.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
			if depth == 0 {
				b.WriteString(")")
				return b.String(), nil
			}
		case tokEOF:
			return "", fmt.Errorf("unterminated FILTER expression")
		}
		b.WriteString(tok.text)
		b.WriteString(" ")
	}
	return b.String(), nil
}

func (p *parser) parseModifiers(root Node) (Node, error) {
	var (
		orderBy            []OrderCondition
		limit, offset      int
		hasLimit, hasSlice bool
	)

	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokKeyword {
			break
		}
		switch tok.text {
		case "ORDER":
			p.lex.next()
			by, err := p.lex.next()
			if err != nil {
				return nil, err
			}
			if by.kind != tokKeyword || by.text != "BY" {
				return nil, fmt.Errorf("expected BY after ORDER, got %q", by.text)
			}
			orderBy, err = p.parseOrderConditions()
			if err != nil {
				return nil, err
			}
		case "LIMIT":
			p.lex.next()
			n, err := p.expectInt()
			if err != nil {
				return nil, err
			}
			limit, hasLimit, hasSlice = n, true, true
		case "OFFSET":
			p.lex.next()
			n, err := p.expectInt()
			if err != nil {
				return nil, err
			}
			offset, hasSlice = n, true
		default:
			return root, nil
		}
	}

	if len(orderBy) > 0 {
		root = insertOrderBy(root, orderBy)
	}
	if hasSlice {
		root = Slice{Limit: limit, HasLimit: hasLimit, Offset: offset, Input: root}
	}
	return root, nil
}

// insertOrderBy places OrderBy below Project/Distinct/Reduced, where
// the algebra defines it.
func insertOrderBy(root Node, conds []OrderCondition) Node {
	switch n := root.(type) {
	case Distinct:
		n.Input = insertOrderBy(n.Input, conds)
		return n
	case Reduced:
		n.Input = insertOrderBy(n.Input, conds)
		return n
	case Project:
		n.Input = OrderBy{Conditions: conds, Input: n.Input}
		return n
	default:
		return OrderBy{Conditions: conds, Input: root}
	}
}

func (p *parser) parseOrderConditions() ([]OrderCondition, error) {
	var conds []OrderCondition
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.kind == tokVar:
			p.lex.next()
			conds = append(conds, OrderCondition{Var: tok.text, Simple: true})

		case tok.kind == tokKeyword && (tok.text == "ASC" || tok.text == "DESC"):
			p.lex.next()
			desc := tok.text == "DESC"
			if _, err := p.expect(tokLParen); err != nil {
				return nil, err
			}
			inner, err := p.lex.next()
			if err != nil {
				return nil, err
			}
			cond := OrderCondition{Desc: desc}
			if inner.kind == tokVar {
				cond.Var = inner.text
				cond.Simple = true
			} else {
				cond.Expr = inner.text
			}
			closing, err := p.lex.next()
			if err != nil {
				return nil, err
			}
			if closing.kind != tokRParen {
				// Expression with more tokens: consume to the close,
				// mark non-simple.
				cond.Simple = false
				cond.Var = ""
				depth := 1
				if closing.kind == tokLParen {
					depth++
				}
				for depth > 0 {
					t, err := p.lex.next()
					if err != nil {
						return nil, err
					}
					switch t.kind {
					case tokLParen:
						depth++
					case tokRParen:
						depth--
					case tokEOF:
						return nil, fmt.Errorf("unterminated ORDER BY expression")
					}
				}
			}
			conds = append(conds, cond)

		default:
			if len(conds) == 0 {
				return nil, fmt.Errorf("empty ORDER BY")
			}
			return conds, nil
		}
	}
}

// parseTermOrVar parses one triple-pattern position.
func (p *parser) parseTermOrVar() (TermOrVar, error) {
	tok, err := p.lex.next()
	if err != nil {
		return TermOrVar{}, err
	}

	switch tok.kind {
	case tokVar:
		return TermOrVar{Var: tok.text}, nil

	case tokIRI:
		return TermOrVar{Term: rdf.IRI(tok.text)}, nil

	case tokPName:
		iri, err := p.expandPName(tok.text)
		if err != nil {
			return TermOrVar{}, err
		}
		return TermOrVar{Term: rdf.IRI(iri)}, nil

	case tokBlank:
		return TermOrVar{Term: rdf.NewBlankNodeWithLabel(tok.text)}, nil

	case tokA:
		return TermOrVar{Term: rdf.IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")}, nil

	case tokString:
		return p.parseLiteralTail(tok.text)

	case tokNumber:
		return TermOrVar{Term: numberLiteral(tok.text)}, nil

	case tokKeyword:
		switch tok.text {
		case "TRUE":
			return TermOrVar{Term: rdf.NewBoolean(true)}, nil
		case "FALSE":
			return TermOrVar{Term: rdf.NewBoolean(false)}, nil
		}
		return TermOrVar{}, fmt.Errorf("unexpected keyword %q in triple pattern", tok.text)

	default:
		return TermOrVar{}, fmt.Errorf("unexpected token %q in triple pattern", tok.text)
	}
}

// parseLiteralTail handles the optional @lang / ^^datatype suffix.
func (p *parser) parseLiteralTail(lexical string) (TermOrVar, error) {
	tok, err := p.lex.peek()
	if err != nil {
		return TermOrVar{}, err
	}

	switch tok.kind {
	case tokLang:
		p.lex.next()
		return TermOrVar{Term: rdf.NewLangLiteral(lexical, tok.text)}, nil
	case tokDTStart:
		p.lex.next()
		dt, err := p.lex.next()
		if err != nil {
			return TermOrVar{}, err
		}
		switch dt.kind {
		case tokIRI:
			return TermOrVar{Term: rdf.NewTypedLiteral(lexical, rdf.IRI(dt.text))}, nil
		case tokPName:
			iri, err := p.expandPName(dt.text)
			if err != nil {
				return TermOrVar{}, err
			}
			return TermOrVar{Term: rdf.NewTypedLiteral(lexical, rdf.IRI(iri))}, nil
		default:
			return TermOrVar{}, fmt.Errorf("expected datatype IRI after ^^, got %q", dt.text)
		}
	default:
		return TermOrVar{Term: rdf.NewLiteral(lexical)}, nil
	}
}

func numberLiteral(text string) rdf.Literal {
	if strings.ContainsAny(text, "eE") {
		return rdf.NewTypedLiteral(text, rdf.XSDDouble)
	}
	if strings.Contains(text, ".") {
		return rdf.NewTypedLiteral(text, rdf.XSDDecimal)
	}
	return rdf.NewTypedLiteral(text, rdf.XSDInteger)
}

func (p *parser) expandPName(pname string) (string, error) {
	i := strings.Index(pname, ":")
	if i < 0 {
		return "", fmt.Errorf("malformed prefixed name %q", pname)
	}
	base, ok := p.prefixes[pname[:i]]
	if !ok {
		return "", fmt.Errorf("undeclared prefix %q", pname[:i])
	}
	return base + pname[i+1:], nil
}

func (p *parser) expect(kind tokKind) (token, error) {
	tok, err := p.lex.next()
	if err != nil {
		return token{}, err
	}
	if tok.kind != kind {
		return token{}, fmt.Errorf("unexpected token %q", tok.text)
	}
	return tok, nil
}

func (p *parser) expectInt() (int, error) {
	tok, err := p.expect(tokNumber)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range tok.text {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("expected integer, got %q", tok.text)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

func (p *parser) expectEOF() error {
	tok, err := p.lex.peek()
	if err != nil {
		return err
	}
	if tok.kind != tokEOF {
		return fmt.Errorf("trailing input at %q", tok.text)
	}
	return nil
}
