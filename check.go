package plotscript

import (
	"fmt"
	"strings"
)

// Issue is one finding from CheckScript. Warnings flag statements the
// interpreter would silently drop; everything else is an error the
// interpreter would raise regardless of input data.
type Issue struct {
	Line    int
	Kind    ErrorKind
	Message string
	Warning bool
}

func (is Issue) String() string {
	if is.Warning {
		return fmt.Sprintf("line %d: warning: %s", is.Line, is.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", is.Line, is.Kind, is.Message)
}

// anyVars resolves every identifier, so parsing an expression against it
// surfaces only structural problems. The checker uses it throughout; the
// interpreter uses it for conditions it parses without evaluating.
type anyVars struct{}

func (anyVars) lookup(string) (float64, bool) { return 0, true }

// CheckScript statically validates a format script without running it:
// block structure, keywords, headers, break/continue placement and
// expression syntax. Whether a variable will be defined depends on the
// input data, so identifier resolution is not checked. Findings come back
// in line order; an empty result means the script is structurally sound.
func CheckScript(script string) []Issue {
	c := &checker{lines: splitScriptLines(script)}
	c.checkRange(0, len(c.lines), 0, 0)
	return c.issues
}

type checker struct {
	lines  []scriptLine
	issues []Issue
}

func (c *checker) report(err *ScriptError) {
	c.issues = append(c.issues, Issue{Line: err.Line, Kind: err.Kind, Message: err.Message})
}

func (c *checker) warn(line int, format string, args ...interface{}) {
	c.issues = append(c.issues, Issue{Line: line, Message: fmt.Sprintf(format, args...), Warning: true})
}

// skipDeeper advances past lines indented beyond col, recovering after a
// header whose block failed to materialize.
func (c *checker) skipDeeper(start, to, col int) int {
	j := start
	for j < to && (c.lines[j].blank || c.lines[j].indent > col) {
		j++
	}
	return j
}

func (c *checker) checkRange(from, to, baseline, loopDepth int) {
	i := from
	for i < to {
		ln := c.lines[i]
		if ln.blank {
			i++
			continue
		}
		if ln.indent > baseline {
			c.report(scriptErr(ErrIndentation, ln.num, "unexpected indent"))
			i++
			continue
		}
		i = c.checkStatement(i, to, loopDepth)
	}
}

// checkExpr validates expression syntax with all identifiers resolvable.
func (c *checker) checkExpr(text string, line int) {
	if _, err := evalExpression(text, anyVars{}, line); err != nil {
		c.report(err)
	}
}

// checkBlock validates and measures a header's block. ok is false when no
// block exists, in which case the caller should recover via skipDeeper.
func (c *checker) checkBlock(i, to int) (from, end, bodyCol int, ok bool) {
	ln := c.lines[i]
	from, end, bodyCol, err := extractBlock(c.lines, i+1, to, ln.indent, ln.num)
	if err != nil {
		c.report(err)
		return 0, 0, 0, false
	}
	return from, end, bodyCol, true
}

func (c *checker) checkStatement(i, to, loopDepth int) int {
	ln := c.lines[i]
	word, rest := splitKeyword(strings.TrimSpace(ln.text))

	switch strings.ToLower(word) {
	case "read":
		for _, name := range strings.Fields(rest) {
			if !identPattern.MatchString(name) {
				c.report(scriptErr(ErrSyntax, ln.num, "invalid variable name '%s'", name))
			} else if isReservedWord(name) {
				c.report(scriptErr(ErrSyntax, ln.num, "'%s' is a reserved keyword and cannot be a variable name", name))
			}
		}
		return i + 1

	case "rep":
		header, herr := headerBody(rest, "rep", ln.num)
		if herr != nil {
			c.report(herr)
			return c.skipDeeper(i+1, to, ln.indent)
		}
		if header == "" {
			c.report(scriptErr(ErrSyntax, ln.num, "missing loop count in 'rep'"))
		} else {
			exprText := header
			if fields := strings.Fields(header); len(fields) >= 2 && identPattern.MatchString(fields[0]) {
				if isReservedWord(fields[0]) {
					c.report(scriptErr(ErrSyntax, ln.num, "'%s' is a reserved keyword and cannot be a loop variable", fields[0]))
				}
				exprText = strings.TrimSpace(header[len(fields[0]):])
			}
			c.checkExpr(exprText, ln.num)
		}
		from, end, bodyCol, ok := c.checkBlock(i, to)
		if !ok {
			return c.skipDeeper(i+1, to, ln.indent)
		}
		c.checkRange(from, end, bodyCol, loopDepth+1)
		return end

	case "group":
		header, herr := headerBody(rest, "group", ln.num)
		if herr != nil {
			c.report(herr)
			return c.skipDeeper(i+1, to, ln.indent)
		}
		if tokens := splitTokens(header); len(tokens) != 1 || !isQuoted(tokens[0]) {
			c.checkExpr(header, ln.num)
		}
		from, end, bodyCol, ok := c.checkBlock(i, to)
		if !ok {
			return c.skipDeeper(i+1, to, ln.indent)
		}
		c.checkRange(from, end, bodyCol, loopDepth)
		return end

	case "if":
		return c.checkIfChain(i, to, rest, loopDepth)

	case "elif":
		c.report(scriptErr(ErrSyntax, ln.num, "'elif' without matching 'if'"))
		return c.skipDeeper(i+1, to, ln.indent)

	case "else":
		c.report(scriptErr(ErrSyntax, ln.num, "'else' without matching 'if'"))
		return c.skipDeeper(i+1, to, ln.indent)

	case "break", "continue":
		kw := strings.ToLower(word)
		if rest != "" {
			c.report(scriptErr(ErrSyntax, ln.num, "unexpected token after '%s'", kw))
		}
		if loopDepth == 0 {
			c.report(scriptErr(ErrSyntax, ln.num, "'%s' outside of a loop", kw))
		}
		return i + 1

	case "point", "line", "seg", "circle", "poly", "push", "text":
		c.checkCommand(strings.ToLower(word), rest, ln.num)
		return i + 1

	default:
		c.report(scriptErr(ErrSyntax, ln.num, "Unknown command: %s", word))
		return i + 1
	}
}

func (c *checker) checkIfChain(i, to int, rest string, loopDepth int) int {
	ln := c.lines[i]
	header, herr := headerBody(rest, "if", ln.num)
	if herr != nil {
		c.report(herr)
		return c.skipDeeper(i+1, to, ln.indent)
	}
	c.checkExpr(header, ln.num)

	from, end, bodyCol, ok := c.checkBlock(i, to)
	if !ok {
		return c.skipDeeper(i+1, to, ln.indent)
	}
	c.checkRange(from, end, bodyCol, loopDepth)
	next := end

	for {
		j := next
		for j < to && c.lines[j].blank {
			j++
		}
		if j >= to || c.lines[j].indent != ln.indent {
			return next
		}

		hln := c.lines[j]
		word, hrest := splitKeyword(strings.TrimSpace(hln.text))
		switch strings.ToLower(word) {
		case "elif":
			cond, cerr := headerBody(hrest, "elif", hln.num)
			if cerr != nil {
				c.report(cerr)
				return c.skipDeeper(j+1, to, hln.indent)
			}
			if cond == "" {
				c.report(scriptErr(ErrExpression, hln.num, "Empty expression"))
			} else {
				c.checkExpr(cond, hln.num)
			}
			bFrom, bEnd, bCol, ok := c.checkBlock(j, to)
			if !ok {
				return c.skipDeeper(j+1, to, hln.indent)
			}
			c.checkRange(bFrom, bEnd, bCol, loopDepth)
			next = bEnd

		case "else":
			body, cerr := headerBody(hrest, "else", hln.num)
			if cerr != nil {
				c.report(cerr)
				return c.skipDeeper(j+1, to, hln.indent)
			}
			if body != "" {
				c.report(scriptErr(ErrSyntax, hln.num, "unexpected token after 'else'"))
			}
			bFrom, bEnd, bCol, ok := c.checkBlock(j, to)
			if !ok {
				return c.skipDeeper(j+1, to, hln.indent)
			}
			c.checkRange(bFrom, bEnd, bCol, loopDepth)
			return bEnd

		default:
			return next
		}
	}
}

// checkCommand classifies arguments the way the executor would, with
// every identifier treated as resolvable. That makes the numeric count an
// upper bound on what any run can see, so a shortfall found here means
// the command is dropped on every run. The string count is the opposite:
// a token holding an identifier may still fall back to a label at
// runtime, so only tokens that can never become strings are excluded.
func (c *checker) checkCommand(keyword, rest string, line int) {
	var nums, maybeStrs int
	for _, tok := range splitTokens(rest) {
		switch {
		case strings.HasPrefix(tok, "#"):
		case isQuoted(tok):
			maybeStrs++
		default:
			if _, err := evalExpression(tok, anyVars{}, line); err != nil {
				maybeStrs++
				continue
			}
			nums++
			if containsIdentifier(tok) {
				maybeStrs++
			}
		}
	}

	minNums := map[string]int{"point": 2, "push": 2, "line": 4, "seg": 4, "circle": 3}
	switch keyword {
	case "point", "push", "line", "seg", "circle":
		if nums < minNums[keyword] {
			c.warn(line, "'%s' is always ignored: needs at least %d numeric arguments, got %d", keyword, minNums[keyword], nums)
		}
	case "poly":
		if nums > 0 && (nums < 6 || nums%2 != 0) {
			c.warn(line, "'poly' is always ignored: needs an even count of at least 6 numeric arguments, got %d", nums)
		}
	case "text":
		if nums < 2 {
			c.warn(line, "'text' is always ignored: needs at least 2 numeric arguments, got %d", nums)
		} else if maybeStrs == 0 {
			c.warn(line, "'text' is always ignored: needs a quoted content argument")
		}
	}
}

// containsIdentifier reports whether an expression token references any
// variable.
func containsIdentifier(tok string) bool {
	for _, t := range tokenizeExpr(tok) {
		if identPattern.MatchString(t) {
			return true
		}
	}
	return false
}
