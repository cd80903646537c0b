// Package query implements the Cypher-like query language of KraphDB:
// a tokenizer, the query AST, and a single-lookahead recursive descent
// parser. The package is pure text processing; it knows nothing about the
// graph store.
package query

import "fmt"

// TokenType classifies a lexed token.
type TokenType int

const (
	TokenKeyword TokenType = iota
	TokenIdentifier
	TokenOperator
	TokenNumber
	TokenString
	TokenSymbol
)

func (t TokenType) String() string {
	switch t {
	case TokenKeyword:
		return "keyword"
	case TokenIdentifier:
		return "identifier"
	case TokenOperator:
		return "operator"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenSymbol:
		return "symbol"
	}
	return "unknown"
}

// Token is one lexed unit of query text. Pos is the byte offset of the
// token's first character in the original input. Keywords and word
// operators carry their canonical uppercase spelling in Text; strings
// carry their unescaped content.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}

// keywords is the fixed keyword set, matched case-insensitively.
var keywords = map[string]struct{}{
	"MATCH": {}, "WHERE": {}, "RETURN": {}, "ORDER": {}, "BY": {},
	"LIMIT": {}, "SKIP": {}, "CREATE": {}, "AND": {}, "OR": {},
	"NOT": {}, "AS": {}, "ASC": {}, "DESC": {}, "DISTINCT": {},
}

// Operator spellings produced by the tokenizer. Word operators are
// resolved during word scanning; the two-word forms are joined into a
// single token.
const (
	OpEq         = "="
	OpNeq        = "!="
	OpNeqAlt     = "<>"
	OpLt         = "<"
	OpGt         = ">"
	OpLte        = "<="
	OpGte        = ">="
	OpContains   = "CONTAINS"
	OpStartsWith = "STARTS WITH"
	OpEndsWith   = "ENDS WITH"
	OpIn         = "IN"
	OpNotIn      = "NOT IN"
)

// LexError reports a character the tokenizer could not match against any
// token pattern.
type LexError struct {
	Char rune
	Pos  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("unexpected character %q at offset %d", e.Char, e.Pos)
}
