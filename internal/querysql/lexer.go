package querysql

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/sqlmongo/internal/ir"
	"github.com/roach88/sqlmongo/internal/queryir"
)

type tokenKind int

const (
	tokEnd tokenKind = iota
	tokIdent
	tokKeyword
	tokString
	tokNumber
	tokOp
	tokStar
	tokComma
	tokLParen
	tokRParen
	tokSemicolon
)

func (k tokenKind) String() string {
	switch k {
	case tokEnd:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokKeyword:
		return "keyword"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokOp:
		return "operator"
	case tokStar:
		return "'*'"
	case tokComma:
		return "','"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokSemicolon:
		return "';'"
	default:
		return fmt.Sprintf("tokenKind(%d)", int(k))
	}
}

// token is one lexeme of the query text.
type token struct {
	kind tokenKind

	// text is the lexeme exactly as written.
	text string

	// val is the decoded value: the upper-cased keyword, the unescaped
	// string, the number text or the operator.
	val string

	// segs holds the path segments of an identifier, NFC-normalised.
	segs []string

	// quoted is set when an identifier's only segment was quoted, which
	// stops it from being read as a keyword.
	quoted bool

	pos int
}

func (t token) String() string {
	if t.kind == tokEnd {
		return t.kind.String()
	}
	return fmt.Sprintf("%s %q", t.kind, t.text)
}

// isKeyword reports whether t is the keyword kw (upper case).
func (t token) isKeyword(kw string) bool {
	return t.kind == tokKeyword && t.val == kw
}

// comparisonOps maps every accepted operator spelling to its AST operator.
var comparisonOps = map[string]queryir.Operator{
	"=":  queryir.OpEq,
	"!=": queryir.OpNe,
	"<>": queryir.OpNe,
	">":  queryir.OpGt,
	">=": queryir.OpGte,
	"<":  queryir.OpLt,
	"<=": queryir.OpLte,
}

// lexer reads tokens lazily so that the first error in reading order is the
// one reported.
type lexer struct {
	src    string
	pos    int
	peeked *token
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// peek returns the next token without consuming it.
func (l *lexer) peek() (token, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	t, err := l.scan()
	if err != nil {
		return token{}, err
	}
	l.peeked = &t
	return t, nil
}

// next consumes and returns the next token.
func (l *lexer) next() (token, error) {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t, nil
	}
	return l.scan()
}

func (l *lexer) rune() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) byteAt(i int) byte {
	if i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := l.rune()
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) scan() (token, error) {
	l.skipSpace()
	start := l.pos
	if start >= len(l.src) {
		return token{kind: tokEnd, pos: start}, nil
	}

	c := l.src[start]
	switch {
	case c == '*':
		l.pos++
		return l.punct(tokStar, start), nil
	case c == ',':
		l.pos++
		return l.punct(tokComma, start), nil
	case c == '(':
		l.pos++
		return l.punct(tokLParen, start), nil
	case c == ')':
		l.pos++
		return l.punct(tokRParen, start), nil
	case c == ';':
		l.pos++
		return l.punct(tokSemicolon, start), nil
	case c == '\'':
		return l.scanString()
	case strings.IndexByte("=!<>", c) >= 0:
		return l.scanOperator()
	case isDigit(c),
		c == '-' && (isDigit(l.byteAt(start+1)) || l.byteAt(start+1) == '.' && isDigit(l.byteAt(start+2))),
		c == '.' && isDigit(l.byteAt(start+1)):
		return l.scanNumber()
	case c == '`' || c == '"':
		return l.scanIdent()
	}

	r, size := l.rune()
	if isIdentStart(r) {
		return l.scanIdent()
	}
	return token{}, newParseError(ErrCodeUnexpectedToken,
		token{text: l.src[start : start+size], pos: start},
		"unexpected character")
}

func (l *lexer) punct(kind tokenKind, start int) token {
	text := l.src[start:l.pos]
	return token{kind: kind, text: text, val: text, pos: start}
}

// scanString reads a single-quoted string. A doubled quote stands for one
// quote character.
func (l *lexer) scanString() (token, error) {
	start := l.pos
	val, ok := l.readQuoted('\'')
	tok := token{kind: tokString, text: l.src[start:l.pos], val: val, pos: start}
	if !ok {
		return token{}, newParseError(ErrCodeUnterminatedString, tok, "unterminated string literal")
	}
	return tok, nil
}

// readQuoted consumes a quoted run starting at the opening quote q and
// returns its unescaped content. ok is false when the input ends first.
func (l *lexer) readQuoted(q byte) (string, bool) {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == q {
			if l.byteAt(l.pos+1) == q {
				b.WriteByte(q)
				l.pos += 2
				continue
			}
			l.pos++
			return b.String(), true
		}
		b.WriteByte(c)
		l.pos++
	}
	return b.String(), false
}

// scanOperator reads a maximal run of comparison characters. Anything that
// is not a known operator is rejected as a whole, so "==" is one unknown
// operator rather than "=" followed by a stray "=".
func (l *lexer) scanOperator() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && strings.IndexByte("=!<>", l.src[l.pos]) >= 0 {
		l.pos++
	}
	text := l.src[start:l.pos]
	tok := token{kind: tokOp, text: text, pos: start}
	op, ok := comparisonOps[text]
	if !ok {
		return token{}, newParseError(ErrCodeUnknownOperator, tok, "unknown operator")
	}
	tok.val = string(op)
	return tok, nil
}

// scanNumber reads a numeric literal. The run is taken greedily, including
// letters, so that "12abc" is reported as one malformed literal.
func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c), c == '.', c == '_', isASCIILetter(c):
			l.pos++
		case (c == '+' || c == '-') && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'):
			l.pos++
		default:
			text := l.src[start:l.pos]
			return token{kind: tokNumber, text: text, val: text, pos: start}, nil
		}
	}
	text := l.src[start:l.pos]
	return token{kind: tokNumber, text: text, val: text, pos: start}, nil
}

// scanIdent reads a field path: segments separated by dots, each either a
// bare word or a quoted name (`...` or "..."). Segments after the first
// may be all digits, which addresses an array element.
func (l *lexer) scanIdent() (token, error) {
	start := l.pos
	var segs []string
	quoted := false
	for {
		segStart := l.pos
		var seg string
		switch c := l.byteAt(l.pos); {
		case c == '`' || c == '"':
			val, ok := l.readQuoted(c)
			if !ok {
				return token{}, newParseError(ErrCodeUnterminatedString,
					token{text: l.src[segStart:l.pos], pos: segStart},
					"unterminated quoted identifier")
			}
			if val == "" {
				return token{}, newParseError(ErrCodeUnexpectedToken,
					token{text: l.src[segStart:l.pos], pos: segStart},
					"empty quoted identifier")
			}
			seg = val
			quoted = len(segs) == 0
		default:
			for l.pos < len(l.src) {
				r, size := l.rune()
				if !isIdentPart(r) {
					break
				}
				l.pos += size
			}
			seg = l.src[segStart:l.pos]
			if seg == "" {
				return token{}, newParseError(ErrCodeUnexpectedToken,
					token{text: l.src[start:l.pos], pos: start},
					"field name expected after '.'")
			}
		}
		segs = append(segs, ir.NormalizeKey(seg))

		if l.byteAt(l.pos) != '.' {
			break
		}
		l.pos++
	}

	tok := token{kind: tokIdent, text: l.src[start:l.pos], segs: segs, quoted: quoted, pos: start}
	if len(segs) == 1 && !quoted && queryir.IsReserved(segs[0]) {
		tok.kind = tokKeyword
		tok.val = strings.ToUpper(segs[0])
		tok.segs = nil
	}
	return tok, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
