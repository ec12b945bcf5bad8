package plotscript

import (
	"strconv"
	"unicode"
)

// tokenReader lazily scans the input data for whitespace/quote-delimited
// tokens with single-token lookahead. The cursor advances monotonically
// and is never rewound; peek caches at most one token.
type tokenReader struct {
	input  []rune
	pos    int
	peeked *string
	logger *Logger
}

func newTokenReader(input string, logger *Logger) *tokenReader {
	return &tokenReader{
		input:  []rune(input),
		logger: logger,
	}
}

// next scans the following token from the cursor. Quoted runs ("..." or
// '...') become a single token with the content re-wrapped in double
// quotes so downstream handling is uniform; an unterminated quote takes
// the rest of the input. Everything else is a maximal run of
// non-whitespace, non-quote characters.
func (r *tokenReader) next() (string, bool) {
	for r.pos < len(r.input) && unicode.IsSpace(r.input[r.pos]) {
		r.pos++
	}
	if r.pos >= len(r.input) {
		return "", false
	}

	ch := r.input[r.pos]
	if ch == '"' || ch == '\'' {
		quote := ch
		r.pos++
		start := r.pos
		for r.pos < len(r.input) && r.input[r.pos] != quote {
			r.pos++
		}
		content := string(r.input[start:r.pos])
		if r.pos < len(r.input) {
			r.pos++ // closing quote
		}
		return "\"" + content + "\"", true
	}

	start := r.pos
	for r.pos < len(r.input) && !unicode.IsSpace(r.input[r.pos]) && r.input[r.pos] != '"' && r.input[r.pos] != '\'' {
		r.pos++
	}
	return string(r.input[start:r.pos]), true
}

// peek returns the next token without consuming it, caching it until
// consume is called. ok is false when the stream is exhausted.
func (r *tokenReader) peek() (string, bool) {
	if r.peeked != nil {
		return *r.peeked, true
	}
	tok, ok := r.next()
	if !ok {
		return "", false
	}
	r.peeked = &tok
	return tok, true
}

// consume returns the next token. line attributes the error when the
// stream is exhausted.
func (r *tokenReader) consume(line int) (string, *ScriptError) {
	if r.peeked != nil {
		tok := *r.peeked
		r.peeked = nil
		r.logger.TraceCat(CatToken, "consumed %q", tok)
		return tok, nil
	}
	tok, ok := r.next()
	if !ok {
		return "", scriptErr(ErrEndOfInput, line, "the input data has no more tokens")
	}
	r.logger.TraceCat(CatToken, "consumed %q", tok)
	return tok, nil
}

// consumeNumber consumes one token and parses it as a floating-point
// literal. Quoted tokens never parse, so quoted input data cannot satisfy
// a numeric read.
func (r *tokenReader) consumeNumber(line int) (float64, *ScriptError) {
	tok, err := r.consume(line)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseFloat(tok, 64)
	if perr != nil {
		return 0, scriptErr(ErrExpectedNumber, line, "expected a number in the input data, got '%s'", tok)
	}
	return v, nil
}

// splitTokens tokenizes a whole string at once under the same rules the
// stream reader uses. Command arguments and group headers go through
// here.
func splitTokens(s string) []string {
	r := &tokenReader{input: []rune(s)}
	var out []string
	for {
		tok, ok := r.next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

// isQuoted reports whether tok is a re-wrapped quoted token.
func isQuoted(tok string) bool {
	return len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"'
}

// stripQuotes removes the wrapping double quotes from a quoted token.
func stripQuotes(tok string) string {
	if isQuoted(tok) {
		return tok[1 : len(tok)-1]
	}
	return tok
}
