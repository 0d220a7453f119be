package ast

// variableLetters are the single lowercase letters the grammar reserves for
// bound variables (§3). Anything else appearing as a zero-arity term is a
// constant.
var variableLetters = map[string]bool{
	"x": true, "y": true, "z": true, "u": true, "v": true, "w": true,
}

func isVariableName(name string) bool {
	return variableLetters[name]
}

// Parser performs recursive-descent parsing per the grammar in §4.A. The
// parser is total: every accepted string yields exactly one AST.
type Parser struct {
	lex   *lexer
	input string
	cur   token
}

// Parse tokenizes and parses a single formula, discarding a trailing '.'.
func Parse(input string) (*Node, error) {
	p := &Parser{lex: newLexer(input), input: input}
	if err := p.advance(); err != nil {
		return nil, err
	}

	node, err := p.parseIff()
	if err != nil {
		return nil, err
	}

	if p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.kind != tokEOF {
		return nil, newParseError(p.input, p.cur.pos, "unexpected trailing input")
	}
	return node, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.next(p.input)
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) expect(k tokenKind, what string) (token, error) {
	if p.cur.kind != k {
		return token{}, newParseError(p.input, p.cur.pos, "expected %s", what)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return tok, nil
}

// formula := iff
func (p *Parser) parseFormula() (*Node, error) { return p.parseIff() }

// iff := implies ('<->' implies)?   ; right-associative
func (p *Parser) parseIff() (*Node, error) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokIff {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		return NewIff(left, right), nil
	}
	return left, nil
}

// implies := or ('->' or)?   ; right-associative
func (p *Parser) parseImplies() (*Node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokImplies {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return NewImplies(left, right), nil
	}
	return left, nil
}

// or := and ('|' and)*
func (p *Parser) parseOr() (*Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewOr(left, right)
	}
	return left, nil
}

// and := literal ('&' literal)*
func (p *Parser) parseAnd() (*Node, error) {
	left, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		left = NewAnd(left, right)
	}
	return left, nil
}

// literal := '-'* (atom | term '=' term)
func (p *Parser) parseLiteral() (*Node, error) {
	negCount := 0
	for p.cur.kind == tokNot {
		negCount++
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	var node *Node
	var err error
	switch p.cur.kind {
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err = p.parseFormula()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
	case tokQuantifier:
		node, err = p.parseQuantified()
		if err != nil {
			return nil, err
		}
	case tokIdent:
		first, err2 := p.parseTerm()
		if err2 != nil {
			return nil, err2
		}
		if p.cur.kind == tokEquals {
			if err := p.advance(); err != nil {
				return nil, err
			}
			second, err2 := p.parseTerm()
			if err2 != nil {
				return nil, err2
			}
			node = NewEquals(first, second)
		} else {
			node = termToPredicate(first)
		}
	default:
		return nil, newParseError(p.input, p.cur.pos, "expected formula")
	}

	for i := 0; i < negCount; i++ {
		node = NewNot(node)
	}
	return node, nil
}

// termToPredicate reinterprets a term parsed in atom position (i.e. not
// followed by '=') as a predicate application — the same AST shape,
// disambiguated only by syntactic position per §3.
func termToPredicate(t *Node) *Node {
	switch t.Kind {
	case KFunction:
		return NewPredicate(t.Name, t.Args...)
	default:
		return NewPredicate(t.Name)
	}
}

// quantified := ('all'|'exists') IDENT+ formula
func (p *Parser) parseQuantified() (*Node, error) {
	isForall := p.cur.value == "all"
	if err := p.advance(); err != nil {
		return nil, err
	}

	var vars []string
	if p.cur.kind != tokIdent {
		return nil, newParseError(p.input, p.cur.pos, "expected bound variable after quantifier")
	}
	vars = append(vars, p.cur.value)
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.cur.kind == tokIdent && isVariableName(p.cur.value) {
		vars = append(vars, p.cur.value)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	body, err := p.parseFormula()
	if err != nil {
		return nil, err
	}

	result := body
	for i := len(vars) - 1; i >= 0; i-- {
		if isForall {
			result = NewForall(vars[i], result)
		} else {
			result = NewExists(vars[i], result)
		}
	}
	return result, nil
}

// term := IDENT ('(' termList ')')?
func (p *Parser) parseTerm() (*Node, error) {
	tok, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseTermList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return NewFunction(tok.value, args...), nil
	}
	if isVariableName(tok.value) {
		return NewVariable(tok.value), nil
	}
	return NewConstant(tok.value), nil
}

// termList := term (',' term)*
func (p *Parser) parseTermList() ([]*Node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	args := []*Node{first}
	for p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		args = append(args, next)
	}
	return args, nil
}
