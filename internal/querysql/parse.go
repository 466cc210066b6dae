package querysql

import (
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sqlmongo/internal/ir"
	"github.com/roach88/sqlmongo/internal/queryir"
)

// Parse reads one query in the SQL subset and returns its syntax tree.
//
//	query      := SELECT selectList FROM identifier [WHERE expr] [";"]
//	selectList := "*" | field {"," field}
//	field      := path [AS name]
//	expr       := andExpr {OR andExpr}
//	andExpr    := term {AND term}
//	term       := path op literal | path IN list | "(" expr ")"
//	literal    := string | number | TRUE | FALSE | NULL | DATE string | list
//	list       := "(" literal {"," literal} ")"
//
// Keywords are case-insensitive. AND binds tighter than OR and both chains
// associate to the left.
//
// Parse is deterministic: the same input always yields an equal Query or an
// equal *ParseError. All errors are *ParseError.
func Parse(input string) (queryir.Query, error) {
	p := &parser{lex: newLexer(input)}
	q, err := p.parseQuery()
	if err != nil {
		return queryir.Query{}, err
	}
	return q, nil
}

type parser struct {
	lex *lexer
}

// keywords that introduce clauses this subset does not implement, with the
// feature named in the error.
var unsupportedClauses = map[string]string{
	"JOIN":     "joins are",
	"INNER":    "joins are",
	"LEFT":     "joins are",
	"RIGHT":    "joins are",
	"OUTER":    "joins are",
	"CROSS":    "joins are",
	"GROUP":    "GROUP BY is",
	"HAVING":   "HAVING is",
	"ORDER":    "ORDER BY is",
	"LIMIT":    "LIMIT is",
	"OFFSET":   "OFFSET is",
	"UNION":    "UNION is",
	"DISTINCT": "DISTINCT is",
	"INSERT":   "INSERT is",
	"UPDATE":   "UPDATE is",
	"DELETE":   "DELETE is",
	"NOT":      "NOT is",
	"LIKE":     "LIKE is",
	"BETWEEN":  "BETWEEN is",
	"IS":       "IS [NOT] NULL is",
	"EXISTS":   "EXISTS is",
}

func unsupportedKeyword(tok token) (*ParseError, bool) {
	if tok.kind != tokKeyword {
		return nil, false
	}
	feature, ok := unsupportedClauses[tok.val]
	if !ok {
		return nil, false
	}
	return unsupported(tok, feature), true
}

func (p *parser) parseQuery() (queryir.Query, error) {
	var q queryir.Query

	tok, err := p.lex.next()
	if err != nil {
		return q, err
	}
	if !tok.isKeyword("SELECT") {
		if pe, ok := unsupportedKeyword(tok); ok {
			return q, pe
		}
		return q, newParseError(ErrCodeMissingClause, tok, "query must start with SELECT")
	}

	if q.Projection, err = p.parseSelectList(); err != nil {
		return q, err
	}

	tok, err = p.lex.next()
	if err != nil {
		return q, err
	}
	if !tok.isKeyword("FROM") {
		return q, newParseError(ErrCodeMissingClause, tok, "FROM expected, got %s", tok)
	}

	if q.Collection, err = p.parseCollection(); err != nil {
		return q, err
	}

	tok, err = p.lex.peek()
	if err != nil {
		return q, err
	}
	if tok.isKeyword("WHERE") {
		p.lex.next()
		if q.Filter, err = p.parseOr(); err != nil {
			return q, err
		}
	}

	return q, p.parseEnd()
}

// parseEnd accepts an optional ';' and then requires the end of input.
func (p *parser) parseEnd() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok.kind == tokSemicolon {
		if tok, err = p.lex.next(); err != nil {
			return err
		}
	}
	if tok.kind == tokEnd {
		return nil
	}
	if pe, ok := unsupportedKeyword(tok); ok {
		return pe
	}
	return newParseError(ErrCodeUnexpectedToken, tok, "end of query expected, got %s", tok)
}

func (p *parser) parseSelectList() ([]queryir.Field, error) {
	tok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokStar {
		p.lex.next()
		return nil, nil
	}
	if pe, ok := unsupportedKeyword(tok); ok {
		return nil, pe
	}

	var fields []queryir.Field
	for {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)

		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokComma {
			return fields, nil
		}
		p.lex.next()
	}
}

func (p *parser) parseField() (queryir.Field, error) {
	var f queryir.Field

	tok, err := p.lex.next()
	if err != nil {
		return f, err
	}
	if tok.kind == tokStar {
		return f, newParseError(ErrCodeUnexpectedToken, tok, "'*' cannot be combined with other fields")
	}
	if tok.kind != tokIdent {
		return f, newParseError(ErrCodeUnexpectedToken, tok, "field name expected, got %s", tok)
	}
	if err := p.rejectCall(); err != nil {
		return f, err
	}
	f.Path = ir.Path(tok.segs)

	next, err := p.lex.peek()
	if err != nil {
		return f, err
	}
	if !next.isKeyword("AS") {
		return f, nil
	}
	p.lex.next()

	alias, err := p.lex.next()
	if err != nil {
		return f, err
	}
	if alias.kind != tokIdent || len(alias.segs) != 1 {
		return f, newParseError(ErrCodeUnexpectedToken, alias, "alias name expected after AS, got %s", alias)
	}
	f.Alias = alias.segs[0]
	return f, nil
}

// rejectCall fails when the identifier just read is followed by "(", which
// makes it a function call or aggregate such as COUNT(*).
func (p *parser) rejectCall() error {
	tok, err := p.lex.peek()
	if err != nil {
		return err
	}
	if tok.kind == tokLParen {
		return unsupported(tok, "functions and aggregates are")
	}
	return nil
}

func (p *parser) parseCollection() (string, error) {
	tok, err := p.lex.next()
	if err != nil {
		return "", err
	}
	switch tok.kind {
	case tokIdent:
	case tokLParen:
		return "", unsupported(tok, "subqueries are")
	default:
		return "", newParseError(ErrCodeUnexpectedToken, tok, "collection name expected, got %s", tok)
	}

	next, err := p.lex.peek()
	if err != nil {
		return "", err
	}
	if next.kind == tokComma {
		return "", unsupported(next, "joins are")
	}
	if pe, ok := unsupportedKeyword(next); ok {
		return "", pe
	}
	// Collection names may contain dots (system.users).
	return strings.Join(tok.segs, "."), nil
}

// parseOr parses an OR chain of AND chains.
func (p *parser) parseOr() (queryir.Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if !tok.isKeyword("OR") {
			return left, nil
		}
		p.lex.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = queryir.Or{Left: left, Right: right}
	}
}

func (p *parser) parseAnd() (queryir.Predicate, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if !tok.isKeyword("AND") {
			return left, nil
		}
		p.lex.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = queryir.And{Left: left, Right: right}
	}
}

func (p *parser) parseTerm() (queryir.Predicate, error) {
	tok, err := p.lex.next()
	if err != nil {
		return nil, err
	}

	switch tok.kind {
	case tokLParen:
		inner, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if inner.isKeyword("SELECT") {
			return nil, unsupported(inner, "subqueries are")
		}
		pred, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if closing.kind != tokRParen {
			return nil, newParseError(ErrCodeUnexpectedToken, closing, "')' expected, got %s", closing)
		}
		return pred, nil
	case tokIdent:
		return p.parseComparison(tok)
	}

	if pe, ok := unsupportedKeyword(tok); ok {
		return nil, pe
	}
	return nil, newParseError(ErrCodeUnexpectedToken, tok, "condition expected, got %s", tok)
}

func (p *parser) parseComparison(field token) (queryir.Predicate, error) {
	if err := p.rejectCall(); err != nil {
		return nil, err
	}

	tok, err := p.lex.next()
	if err != nil {
		return nil, err
	}

	var op queryir.Operator
	switch {
	case tok.kind == tokOp:
		op = queryir.Operator(tok.val)
	case tok.isKeyword("IN"):
		op = queryir.OpIn
	default:
		if pe, ok := unsupportedKeyword(tok); ok {
			return nil, pe
		}
		return nil, newParseError(ErrCodeUnexpectedToken, tok, "comparison operator expected, got %s", tok)
	}

	value, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return queryir.Comparison{Path: ir.Path(field.segs), Op: op, Value: value}, nil
}

func (p *parser) parseLiteral() (ir.IRValue, error) {
	tok, err := p.lex.next()
	if err != nil {
		return nil, err
	}

	switch tok.kind {
	case tokString:
		return ir.IRString(tok.val), nil
	case tokNumber:
		return parseNumber(tok)
	case tokLParen:
		return p.parseList(tok)
	case tokKeyword:
		switch tok.val {
		case "TRUE":
			return ir.IRBool(true), nil
		case "FALSE":
			return ir.IRBool(false), nil
		case "NULL":
			return ir.IRNull{}, nil
		}
	case tokIdent:
		if isDateKeyword(tok) {
			return p.parseDate(tok)
		}
		if err := p.rejectCall(); err != nil {
			return nil, err
		}
		return nil, unsupported(tok, "comparing two fields is")
	}
	return nil, newParseError(ErrCodeUnexpectedToken, tok, "literal expected, got %s", tok)
}

// parseList reads the rest of a parenthesised literal list. Lists may nest;
// whether a nested list makes sense is the translator's decision.
func (p *parser) parseList(open token) (ir.IRValue, error) {
	first, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if first.isKeyword("SELECT") {
		return nil, unsupported(first, "subqueries are")
	}

	list := ir.IRArray{}
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		list = append(list, v)

		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return list, nil
		case tokEnd:
			return nil, newParseError(ErrCodeUnexpectedToken, tok, "')' expected to close list opened at position %d", open.pos)
		default:
			return nil, newParseError(ErrCodeUnexpectedToken, tok, "',' or ')' expected, got %s", tok)
		}
	}
}

func isDateKeyword(tok token) bool {
	if len(tok.segs) != 1 || tok.quoted {
		return false
	}
	word := strings.ToUpper(tok.segs[0])
	return word == "DATE" || word == "TIMESTAMP"
}

// dateLayouts are tried in order for DATE '...' literals. Layouts without a
// zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (p *parser) parseDate(kw token) (ir.IRValue, error) {
	tok, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokString {
		return nil, newParseError(ErrCodeMalformedLiteral, tok, "quoted date expected after %s", kw.text)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, tok.val, time.UTC); err == nil {
			return ir.NewIRDateTime(t), nil
		}
	}
	return nil, newParseError(ErrCodeMalformedLiteral, tok, "invalid date %q", tok.val)
}

// isDecimal reports whether s uses only decimal notation. strconv also
// accepts hex mantissas and digit separators, which SQL literals do not.
func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c), c == '.', c == 'e', c == 'E':
		case c == '+' || c == '-':
			if i > 0 && s[i-1] != 'e' && s[i-1] != 'E' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// parseNumber reads integers as IRInt and anything with a fraction or an
// exponent as IRFloat.
func parseNumber(tok token) (ir.IRValue, error) {
	s := tok.val
	if !isDecimal(s) {
		return nil, newParseError(ErrCodeMalformedLiteral, tok, "invalid number %q", s)
	}
	if !strings.ContainsAny(s, ".eE") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, newParseError(ErrCodeMalformedLiteral, tok, "invalid integer %q", s)
		}
		return ir.IRInt(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, newParseError(ErrCodeMalformedLiteral, tok, "invalid number %q", s)
	}
	return ir.IRFloat(f), nil
}
