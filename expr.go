package plotscript

import (
	"math"
	"strconv"
	"unicode"
)

// varResolver resolves identifiers to values during evaluation. The
// scope stack is the normal implementation; the static checker plugs in a
// permissive one.
type varResolver interface {
	lookup(name string) (float64, bool)
}

// exprParser evaluates one expression string against the current scope.
// Parsing and evaluation are a single pass; precedence climbs through the
// parse functions from parseOr (loosest) down to parsePrimary (tightest).
type exprParser struct {
	tokens []string
	pos    int
	line   int
	scope  varResolver
}

// evalExpression evaluates exprText and returns its numeric value.
// Comparisons and logical operators yield 0 or 1 so their results feed
// directly into arithmetic contexts.
func evalExpression(exprText string, scope varResolver, line int) (float64, *ScriptError) {
	tokens := tokenizeExpr(exprText)
	if len(tokens) == 0 {
		return 0, scriptErr(ErrExpression, line, "Empty expression")
	}

	p := &exprParser{tokens: tokens, line: line, scope: scope}
	v, err := p.parseOr()
	if err != nil {
		return 0, err
	}
	if p.pos < len(p.tokens) {
		return 0, scriptErr(ErrExpression, line, "Unexpected token '%s'", p.tokens[p.pos])
	}
	return v, nil
}

// tokenizeExpr splits an expression into number, identifier and operator
// tokens. Unknown characters come through as single-character tokens and
// are rejected by the parser.
func tokenizeExpr(s string) []string {
	var tokens []string
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		switch {
		case unicode.IsSpace(ch):
			i++
		case ch >= '0' && ch <= '9' || ch == '.':
			start := i
			for i < len(runes) && (runes[i] >= '0' && runes[i] <= '9' || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
		case unicode.IsLetter(ch) || ch == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
		default:
			if i+1 < len(runes) {
				switch two := string(runes[i : i+2]); two {
				case "==", "!=", "<=", ">=", "&&", "||":
					tokens = append(tokens, two)
					i += 2
					continue
				}
			}
			tokens = append(tokens, string(ch))
			i++
		}
	}
	return tokens
}

func (p *exprParser) peek() (string, bool) {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos], true
	}
	return "", false
}

func (p *exprParser) next() (string, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *exprParser) parseOr() (float64, *ScriptError) {
	left, err := p.parseAnd()
	if err != nil {
		return 0, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok != "||" {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return 0, err
		}
		left = boolValue(truthy(left) || truthy(right))
	}
}

func (p *exprParser) parseAnd() (float64, *ScriptError) {
	left, err := p.parseComparison()
	if err != nil {
		return 0, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok != "&&" {
			return left, nil
		}
		p.pos++
		right, err := p.parseComparison()
		if err != nil {
			return 0, err
		}
		left = boolValue(truthy(left) && truthy(right))
	}
}

// parseComparison accepts at most one comparison operator. A second one
// is left unconsumed, so chains like 1 < 2 < 3 surface as an unexpected
// trailing token instead of silently associating.
func (p *exprParser) parseComparison() (float64, *ScriptError) {
	left, err := p.parseAdditive()
	if err != nil {
		return 0, err
	}
	tok, ok := p.peek()
	if !ok || !isComparisonOp(tok) {
		return left, nil
	}
	p.pos++
	right, err := p.parseAdditive()
	if err != nil {
		return 0, err
	}
	switch tok {
	case "==":
		return boolValue(left == right), nil
	case "!=":
		return boolValue(left != right), nil
	case "<":
		return boolValue(left < right), nil
	case "<=":
		return boolValue(left <= right), nil
	case ">":
		return boolValue(left > right), nil
	default: // ">="
		return boolValue(left >= right), nil
	}
}

func (p *exprParser) parseAdditive() (float64, *ScriptError) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return 0, err
	}
	for {
		tok, ok := p.peek()
		if !ok || (tok != "+" && tok != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.parseMultiplicative()
		if err != nil {
			return 0, err
		}
		if tok == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

// parseMultiplicative handles * / %. Division and modulo follow IEEE
// floating-point semantics; divide-by-zero yields Inf or NaN and
// propagates.
func (p *exprParser) parseMultiplicative() (float64, *ScriptError) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		tok, ok := p.peek()
		if !ok || (tok != "*" && tok != "/" && tok != "%") {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch tok {
		case "*":
			left *= right
		case "/":
			left /= right
		default:
			left = math.Mod(left, right)
		}
	}
}

func (p *exprParser) parseUnary() (float64, *ScriptError) {
	tok, ok := p.peek()
	if !ok {
		return 0, scriptErr(ErrExpression, p.line, "Unexpected end of expression")
	}
	switch tok {
	case "-":
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case "+":
		p.pos++
		return p.parseUnary()
	case "!":
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return boolValue(!truthy(v)), nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, *ScriptError) {
	tok, ok := p.next()
	if !ok {
		return 0, scriptErr(ErrExpression, p.line, "Unexpected end of expression")
	}

	if tok == "(" {
		v, err := p.parseOr()
		if err != nil {
			return 0, err
		}
		closing, ok := p.next()
		if !ok {
			return 0, scriptErr(ErrExpression, p.line, "Unmatched parenthesis")
		}
		if closing != ")" {
			return 0, scriptErr(ErrExpression, p.line, "Unexpected token '%s'", closing)
		}
		return v, nil
	}

	ch := tok[0]
	if ch >= '0' && ch <= '9' || ch == '.' {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, scriptErr(ErrUndefinedVariable, p.line, "invalid number '%s'", tok)
		}
		return v, nil
	}

	if identPattern.MatchString(tok) {
		if v, found := p.scope.lookup(tok); found {
			return v, nil
		}
		return 0, scriptErr(ErrUndefinedVariable, p.line, "undefined variable '%s'", tok)
	}

	return 0, scriptErr(ErrExpression, p.line, "Unexpected token '%s'", tok)
}

func isComparisonOp(tok string) bool {
	switch tok {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func truthy(v float64) bool {
	return v != 0
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
