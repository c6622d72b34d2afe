package query

// Parse lexes and parses a query string. A blank input yields the zero
// Query; every failure is a *Error carrying a best-effort source offset.
//
// Grammar:
//
//	query        := filter? sortClause?
//	filter       := orExpr
//	orExpr       := andExpr ("or" andExpr)*
//	andExpr      := notExpr (("and")? notExpr)*
//	notExpr      := "not" notExpr | primary
//	primary      := "(" orExpr ")" | fieldCompareOrTextSearch
//	fieldCompareOrTextSearch := (IDENT | STRING) [":" valueExpr]
//	valueExpr    := value (".." value) | value ("," value)+ | value
//	sortClause   := "sort by" ":" sortDirective ("," sortDirective)*
//	sortDirective:= IDENT ("asc" | "desc")?
func Parse(input string) (Query, error) {
	tokens, err := Lex(input)
	if err != nil {
		return Query{}, err
	}

	p := &parser{tokens: tokens}
	return p.parseQuery()
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) parseQuery() (Query, error) {
	var q Query

	if !p.match(TokEOF) && !p.match(TokSortBy) {
		filter, err := p.parseOr()
		if err != nil {
			return Query{}, err
		}
		q.Filter = filter
	}

	if p.match(TokSortBy) {
		sorts, err := p.parseSortClause()
		if err != nil {
			return Query{}, err
		}
		q.Sort = sorts
	}

	if !p.match(TokEOF) {
		tok := p.current()
		return Query{}, newError(ErrUnexpectedToken, tok.Offset, "unexpected token %q", tok.Text)
	}
	return q, nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.match(TokOr) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for {
		if p.match(TokAnd) {
			p.advance()
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = And{Left: left, Right: right}
			continue
		}

		// Implicit AND: adjacent expressions with no keyword between
		// them conjoin, so "status:open priority:0" reads as one And.
		if p.startsExpression() {
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = And{Left: left, Right: right}
			continue
		}

		return left, nil
	}
}

// startsExpression reports whether the current token can begin another
// conjunct. EOF, "sort by", ")", "or" and "and" all end the run.
func (p *parser) startsExpression() bool {
	switch p.current().Kind {
	case TokNot, TokLParen, TokIdent, TokString, TokNumber:
		return true
	default:
		return false
	}
}

func (p *parser) parseNot() (Node, error) {
	if p.match(TokNot) {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	if p.match(TokLParen) {
		p.advance()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(TokRParen) {
			tok := p.current()
			return nil, newError(ErrExpectedToken, tok.Offset, "expected ')', got %q", tok.Text)
		}
		p.advance()
		return node, nil
	}

	tok := p.current()
	switch tok.Kind {
	case TokIdent, TokString:
	case TokEOF:
		return nil, newError(ErrUnexpectedToken, tok.Offset, "unexpected end of query")
	default:
		return nil, newError(ErrUnexpectedToken, tok.Offset, "unexpected token %q", tok.Text)
	}
	p.advance()

	name := tok.Text
	if tok.Kind == TokString {
		name = tok.Str
	}

	// No ":" makes the token a bare free-text term across every
	// free-text-searchable field.
	if !p.match(TokColon) {
		return Contains{Text: name}, nil
	}
	p.advance()

	field, ok := LookupField(name)
	if !ok {
		return nil, unknownFieldError(name, tok.Offset)
	}
	return p.parseValueExpr(field)
}

func (p *parser) parseValueExpr(field *Field) (Node, error) {
	first, err := p.parseValue(field)
	if err != nil {
		return nil, err
	}

	if p.match(TokDotDot) {
		p.advance()
		max, err := p.parseValue(field)
		if err != nil {
			return nil, err
		}
		return Range{Field: field, Min: first, Max: max}, nil
	}

	if p.match(TokComma) {
		values := []Value{first}
		for p.match(TokComma) {
			p.advance()
			v, err := p.parseValue(field)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return In{Field: field, Values: values}, nil
	}

	// A single value on a list-valued field tests membership, not
	// whole-value equality.
	if field.Kind == KindList {
		return Has{Field: field, Value: first}, nil
	}
	return Equals{Field: field, Value: first}, nil
}

func (p *parser) parseValue(field *Field) (Value, error) {
	tok := p.current()
	switch tok.Kind {
	case TokString, TokNumber, TokIdent:
	default:
		return Value{}, newError(ErrExpectedValue, tok.Offset, "expected value for field %q, got %q", field.Name, tok.Text)
	}
	p.advance()

	v, cerr := coerceValue(decodeLiteral(tok), field, tok.Offset)
	if cerr != nil {
		return Value{}, cerr
	}
	return v, nil
}

func (p *parser) parseSortClause() ([]SortDirective, error) {
	p.advance() // consume "sort by"

	if !p.match(TokColon) {
		tok := p.current()
		return nil, newError(ErrExpectedToken, tok.Offset, "expected ':' after \"sort by\"")
	}
	p.advance()

	var sorts []SortDirective
	for {
		tok := p.current()
		if tok.Kind != TokIdent {
			return nil, newError(ErrExpectedToken, tok.Offset, "expected sort field, got %q", tok.Text)
		}
		p.advance()

		field, ok := LookupField(tok.Text)
		if !ok {
			return nil, unknownFieldError(tok.Text, tok.Offset)
		}

		dir := Asc
		switch p.current().Kind {
		case TokAsc:
			p.advance()
		case TokDesc:
			dir = Desc
			p.advance()
		}
		sorts = append(sorts, SortDirective{Field: field, Dir: dir})

		if !p.match(TokComma) {
			return sorts, nil
		}
		p.advance()
	}
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF}
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}
