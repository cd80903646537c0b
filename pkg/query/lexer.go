package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize lexes raw query text into a flat token sequence, discarding
// whitespace. At each position the patterns are tried in priority order:
// word (keyword / word operator / identifier), symbolic operator, quoted
// string, number, single-character symbol. Returns a LexError on the first
// character no pattern matches.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	i := 0

	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])

		switch {
		case unicode.IsSpace(r):
			i += size

		case isWordStart(r):
			tok, next := scanWord(input, i)
			tokens = append(tokens, tok)
			i = next

		case r == '\'' || r == '"':
			tok, next, err := scanString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next

		case isDigit(r) || (r == '-' && i+1 < len(input) && isDigit(rune(input[i+1]))):
			tok, next := scanNumber(input, i)
			tokens = append(tokens, tok)
			i = next

		case strings.ContainsRune("<>=!", r):
			tok, next, ok := scanOperator(input, i)
			if !ok {
				return nil, &LexError{Char: r, Pos: i}
			}
			tokens = append(tokens, tok)
			i = next

		case strings.ContainsRune("(){}[],:.-", r):
			tokens = append(tokens, Token{Type: TokenSymbol, Text: string(r), Pos: i})
			i += size

		default:
			return nil, &LexError{Char: r, Pos: i}
		}
	}
	return tokens, nil
}

func isWordStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isWordPart(r rune) bool {
	return isWordStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// scanWord reads an identifier-shaped word and classifies it as keyword,
// word operator, or identifier. The two-word operators (STARTS WITH,
// ENDS WITH, NOT IN) are joined into a single operator token here.
func scanWord(input string, start int) (Token, int) {
	end := start
	for end < len(input) && isWordPart(rune(input[end])) {
		end++
	}
	word := input[start:end]
	upper := strings.ToUpper(word)

	joinNext := func(expected, op string) (Token, int, bool) {
		nextStart := end
		for nextStart < len(input) && unicode.IsSpace(rune(input[nextStart])) {
			nextStart++
		}
		nextEnd := nextStart
		for nextEnd < len(input) && isWordPart(rune(input[nextEnd])) {
			nextEnd++
		}
		if strings.ToUpper(input[nextStart:nextEnd]) == expected {
			return Token{Type: TokenOperator, Text: op, Pos: start}, nextEnd, true
		}
		return Token{}, 0, false
	}

	switch upper {
	case "STARTS":
		if tok, next, ok := joinNext("WITH", OpStartsWith); ok {
			return tok, next
		}
	case "ENDS":
		if tok, next, ok := joinNext("WITH", OpEndsWith); ok {
			return tok, next
		}
	case "NOT":
		if tok, next, ok := joinNext("IN", OpNotIn); ok {
			return tok, next
		}
	case "CONTAINS", "IN":
		return Token{Type: TokenOperator, Text: upper, Pos: start}, end
	}

	if _, ok := keywords[upper]; ok {
		return Token{Type: TokenKeyword, Text: upper, Pos: start}, end
	}
	return Token{Type: TokenIdentifier, Text: word, Pos: start}, end
}

// scanString reads a single- or double-quoted string with backslash
// escapes. The token text is the unescaped content without quotes.
// An unterminated string is a LexError at the opening quote.
func scanString(input string, start int) (Token, int, error) {
	quote := rune(input[start])
	var b strings.Builder
	i := start + 1

	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch r {
		case '\\':
			if i+size >= len(input) {
				return Token{}, 0, &LexError{Char: quote, Pos: start}
			}
			esc, escSize := utf8.DecodeRuneInString(input[i+size:])
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(esc)
			}
			i += size + escSize
		case quote:
			return Token{Type: TokenString, Text: b.String(), Pos: start}, i + size, nil
		default:
			b.WriteRune(r)
			i += size
		}
	}
	return Token{}, 0, &LexError{Char: quote, Pos: start}
}

// scanNumber reads an optionally negative number with an optional
// fractional part.
func scanNumber(input string, start int) (Token, int) {
	end := start
	if input[end] == '-' {
		end++
	}
	for end < len(input) && isDigit(rune(input[end])) {
		end++
	}
	if end < len(input) && input[end] == '.' && end+1 < len(input) && isDigit(rune(input[end+1])) {
		end++
		for end < len(input) && isDigit(rune(input[end])) {
			end++
		}
	}
	return Token{Type: TokenNumber, Text: input[start:end], Pos: start}, end
}

// scanOperator matches the symbolic operators, longest first.
func scanOperator(input string, start int) (Token, int, bool) {
	for _, op := range []string{OpLte, OpGte, OpNeqAlt, OpNeq, OpEq, OpLt, OpGt} {
		if strings.HasPrefix(input[start:], op) {
			return Token{Type: TokenOperator, Text: op, Pos: start}, start + len(op), true
		}
	}
	return Token{}, 0, false
}
