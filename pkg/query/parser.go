package query

import (
	"fmt"
	"strconv"
)

// ParseError reports a grammar violation: an unexpected token, a missing
// required symbol, or running out of tokens inside a clause. Parsing is
// total and deterministic; the same input always yields the same Query or
// the same error.
type ParseError struct {
	Msg   string
	Query string
	Pos   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// Parse tokenizes and parses query text into a structured Query.
func Parse(input string) (*Query, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, tokens: tokens}
	return p.parseQuery()
}

// parser consumes the token stream with single-token lookahead.
type parser struct {
	input  string
	tokens []Token
	pos    int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Query: p.input, Pos: pos}
}

// errEOF is the error for running out of tokens inside a clause.
func (p *parser) errEOF(what string) error {
	return &ParseError{Msg: "unexpected end of query, expected " + what, Query: p.input, Pos: len(p.input)}
}

// expectSymbol consumes the next token, which must be the given symbol.
func (p *parser) expectSymbol(sym string) error {
	tok, ok := p.next()
	if !ok {
		return p.errEOF(fmt.Sprintf("%q", sym))
	}
	if tok.Type != TokenSymbol || tok.Text != sym {
		return p.errorf(tok.Pos, "expected %q, got %q", sym, tok.Text)
	}
	return nil
}

// acceptSymbol consumes the next token only if it is the given symbol.
func (p *parser) acceptSymbol(sym string) bool {
	tok, ok := p.peek()
	if ok && tok.Type == TokenSymbol && tok.Text == sym {
		p.pos++
		return true
	}
	return false
}

// acceptKeyword consumes the next token only if it is the given keyword.
func (p *parser) acceptKeyword(kw string) bool {
	tok, ok := p.peek()
	if ok && tok.Type == TokenKeyword && tok.Text == kw {
		p.pos++
		return true
	}
	return false
}

// acceptOperatorText consumes the next token only if it is an operator
// with the given text.
func (p *parser) acceptOperatorText(op string) bool {
	tok, ok := p.peek()
	if ok && tok.Type == TokenOperator && tok.Text == op {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectIdentifier(what string) (Token, error) {
	tok, ok := p.next()
	if !ok {
		return Token{}, p.errEOF(what)
	}
	if tok.Type != TokenIdentifier {
		return Token{}, p.errorf(tok.Pos, "expected %s, got %q", what, tok.Text)
	}
	return tok, nil
}

// --- Query structure ---

func (p *parser) parseQuery() (*Query, error) {
	q := &Query{}

	for {
		tok, ok := p.peek()
		if !ok {
			return q, nil
		}
		if tok.Type != TokenKeyword {
			return nil, p.errorf(tok.Pos, "expected clause keyword, got %q", tok.Text)
		}

		switch tok.Text {
		case "MATCH":
			p.pos++
			if err := p.parseMatch(q); err != nil {
				return nil, err
			}
		case "WHERE":
			p.pos++
			if err := p.parseWhere(q); err != nil {
				return nil, err
			}
		case "RETURN":
			p.pos++
			if err := p.parseReturn(q); err != nil {
				return nil, err
			}
		case "ORDER":
			p.pos++
			if !p.acceptKeyword("BY") {
				return nil, p.errorf(tok.Pos, "expected BY after ORDER")
			}
			if err := p.parseOrderBy(q); err != nil {
				return nil, err
			}
		case "SKIP":
			p.pos++
			n, err := p.parseNonNegativeInt("SKIP")
			if err != nil {
				return nil, err
			}
			q.Skip = &n
		case "LIMIT":
			p.pos++
			n, err := p.parseNonNegativeInt("LIMIT")
			if err != nil {
				return nil, err
			}
			q.Limit = &n
		case "CREATE":
			// Recognized but not parsed here; stop.
			q.Create = true
			return q, nil
		default:
			return nil, p.errorf(tok.Pos, "unexpected keyword %q", tok.Text)
		}
	}
}

// --- MATCH ---

func (p *parser) parseMatch(q *Query) error {
	for {
		clause, err := p.parseMatchClause()
		if err != nil {
			return err
		}
		q.Matches = append(q.Matches, *clause)
		if !p.acceptSymbol(",") {
			return nil
		}
	}
}

func (p *parser) parseMatchClause() (*MatchClause, error) {
	node, err := p.parseNodePattern()
	if err != nil {
		return nil, err
	}
	clause := &MatchClause{Node: *node}

	// Optional single-hop relationship pattern:
	//   -[...]->   -[...]-   <-[...]-
	switch {
	case p.acceptOperatorText(OpLt):
		// <-[...]-
		if err := p.expectSymbol("-"); err != nil {
			return nil, err
		}
		rel, err := p.parseRelDetail()
		if err != nil {
			return nil, err
		}
		rel.Direction = "in"
		if err := p.expectSymbol("-"); err != nil {
			return nil, err
		}
		clause.Rel = rel

	case p.acceptSymbol("-"):
		// -[...]-> or -[...]-
		rel, err := p.parseRelDetail()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("-"); err != nil {
			return nil, err
		}
		if p.acceptOperatorText(OpGt) {
			rel.Direction = "out"
		} else {
			rel.Direction = "both"
		}
		clause.Rel = rel

	default:
		return clause, nil
	}

	// Target node pattern after a relationship: accepted but not captured
	// (single-hop patterns only).
	if tok, ok := p.peek(); ok && tok.Type == TokenSymbol && tok.Text == "(" {
		if _, err := p.parseNodePattern(); err != nil {
			return nil, err
		}
	}
	return clause, nil
}

func (p *parser) parseNodePattern() (*NodePattern, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	node := &NodePattern{}

	if tok, ok := p.peek(); ok && tok.Type == TokenIdentifier {
		node.Variable = tok.Text
		p.pos++
	}
	for p.acceptSymbol(":") {
		label, err := p.expectIdentifier("label")
		if err != nil {
			return nil, err
		}
		node.Labels = append(node.Labels, label.Text)
	}
	if tok, ok := p.peek(); ok && tok.Type == TokenSymbol && tok.Text == "{" {
		props, err := p.parsePropertyMap()
		if err != nil {
			return nil, err
		}
		node.Properties = props
	}

	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return node, nil
}

// parseRelDetail parses the optional bracketed part of a relationship
// pattern: [variable? (:type)? propertyMap?]. Without brackets the
// relationship is unconstrained.
func (p *parser) parseRelDetail() (*RelPattern, error) {
	rel := &RelPattern{}
	if !p.acceptSymbol("[") {
		return rel, nil
	}

	if tok, ok := p.peek(); ok && tok.Type == TokenIdentifier {
		rel.Variable = tok.Text
		p.pos++
	}
	if p.acceptSymbol(":") {
		relType, err := p.expectIdentifier("relationship type")
		if err != nil {
			return nil, err
		}
		rel.Type = relType.Text
	}
	if tok, ok := p.peek(); ok && tok.Type == TokenSymbol && tok.Text == "{" {
		props, err := p.parsePropertyMap()
		if err != nil {
			return nil, err
		}
		rel.Properties = props
	}

	if err := p.expectSymbol("]"); err != nil {
		return nil, err
	}
	return rel, nil
}

// parsePropertyMap parses { key: value, ... }. Values are strings,
// numbers, or bare identifiers treated as literal strings.
func (p *parser) parsePropertyMap() (map[string]any, error) {
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	props := make(map[string]any)

	if p.acceptSymbol("}") {
		return props, nil
	}
	for {
		key, err := p.expectIdentifier("property name")
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(":"); err != nil {
			return nil, err
		}
		value, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		props[key.Text] = value

		if p.acceptSymbol(",") {
			continue
		}
		if err := p.expectSymbol("}"); err != nil {
			return nil, err
		}
		return props, nil
	}
}

// parseScalar parses a string, number, or bare identifier literal.
func (p *parser) parseScalar() (any, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.errEOF("value")
	}
	switch tok.Type {
	case TokenString:
		return tok.Text, nil
	case TokenNumber:
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid number %q", tok.Text)
		}
		return n, nil
	case TokenIdentifier:
		// Bare identifiers are literal values, not variable references.
		return tok.Text, nil
	}
	return nil, p.errorf(tok.Pos, "expected value, got %q", tok.Text)
}

// --- WHERE ---

func (p *parser) parseWhere(q *Query) error {
	for {
		cond, err := p.parseCondition()
		if err != nil {
			return err
		}
		q.Where = append(q.Where, *cond)

		// AND and OR both just continue the condition list; evaluation is
		// always conjunctive.
		if p.acceptKeyword("AND") || p.acceptKeyword("OR") {
			continue
		}
		return nil
	}
}

func (p *parser) parseCondition() (*Condition, error) {
	variable, err := p.expectIdentifier("variable")
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("."); err != nil {
		return nil, err
	}
	property, err := p.expectIdentifier("property name")
	if err != nil {
		return nil, err
	}

	op, ok := p.next()
	if !ok {
		return nil, p.errEOF("operator")
	}
	if op.Type != TokenOperator {
		return nil, p.errorf(op.Pos, "expected operator, got %q", op.Text)
	}

	var value any
	if op.Text == OpIn || op.Text == OpNotIn {
		value, err = p.parseList()
	} else {
		value, err = p.parseScalar()
	}
	if err != nil {
		return nil, err
	}

	return &Condition{
		Variable: variable.Text,
		Property: property.Text,
		Operator: op.Text,
		Value:    value,
	}, nil
}

// parseList parses [ value, ... ] for IN / NOT IN operands.
func (p *parser) parseList() (any, error) {
	if err := p.expectSymbol("["); err != nil {
		return nil, err
	}
	values := []any{}

	if p.acceptSymbol("]") {
		return values, nil
	}
	for {
		v, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if p.acceptSymbol(",") {
			continue
		}
		if err := p.expectSymbol("]"); err != nil {
			return nil, err
		}
		return values, nil
	}
}

// --- RETURN / ORDER BY / pagination ---

func (p *parser) parseReturn(q *Query) error {
	if p.acceptKeyword("DISTINCT") {
		q.Distinct = true
	}
	for {
		item := ReturnItem{}
		variable, err := p.expectIdentifier("return variable")
		if err != nil {
			return err
		}
		item.Variable = variable.Text

		if p.acceptSymbol(".") {
			property, err := p.expectIdentifier("property name")
			if err != nil {
				return err
			}
			item.Property = property.Text
		}
		if p.acceptKeyword("AS") {
			alias, err := p.expectIdentifier("alias")
			if err != nil {
				return err
			}
			item.Alias = alias.Text
		}
		q.Return = append(q.Return, item)

		if !p.acceptSymbol(",") {
			return nil
		}
	}
}

func (p *parser) parseOrderBy(q *Query) error {
	for {
		item := OrderItem{}
		variable, err := p.expectIdentifier("order variable")
		if err != nil {
			return err
		}
		item.Variable = variable.Text

		if err := p.expectSymbol("."); err != nil {
			return err
		}
		property, err := p.expectIdentifier("property name")
		if err != nil {
			return err
		}
		item.Property = property.Text

		if p.acceptKeyword("DESC") {
			item.Descending = true
		} else {
			p.acceptKeyword("ASC")
		}
		q.OrderBy = append(q.OrderBy, item)

		if !p.acceptSymbol(",") {
			return nil
		}
	}
}

func (p *parser) parseNonNegativeInt(clause string) (int, error) {
	tok, ok := p.next()
	if !ok {
		return 0, p.errEOF("integer after " + clause)
	}
	if tok.Type != TokenNumber {
		return 0, p.errorf(tok.Pos, "expected integer after %s, got %q", clause, tok.Text)
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil || n < 0 {
		return 0, p.errorf(tok.Pos, "%s requires a non-negative integer, got %q", clause, tok.Text)
	}
	return n, nil
}
