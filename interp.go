package plotscript

import (
	"math"
	"strings"
	"time"
)

// run holds the state of one interpretation: the parsed script lines, the
// data cursor, the scope stack, emitted shapes and flow bookkeeping. A
// run is single-threaded and owns all of its state exclusively.
type run struct {
	lines     []scriptLine
	tokens    *tokenReader
	scope     *scopeStack
	shapes    []Shape
	buffer    []Coord // points accumulated by Push, drained by Poly
	counters  map[ShapeType]int
	groups    []string // group id stack, innermost last
	deadline  time.Time
	timeout   time.Duration
	loopDepth int
	logger    *Logger
}

func newRun(script, data string, timeout time.Duration, logger *Logger) *run {
	return &run{
		lines:    splitScriptLines(script),
		tokens:   newTokenReader(data, logger),
		scope:    newScopeStack(logger),
		counters: make(map[ShapeType]int),
		deadline: time.Now().Add(timeout),
		timeout:  timeout,
		logger:   logger,
	}
}

// execute interprets the whole script and returns the emitted shapes, or
// the terminal error.
func (r *run) execute() ([]Shape, *ScriptError) {
	out := r.execRange(0, len(r.lines), 0)
	if eo, ok := out.(errorOutcome); ok {
		return nil, eo.err
	}
	return r.shapes, nil
}

// checkDeadline compares the wall clock against the run's budget. It is
// called at the top of every statement dispatch and once per loop
// iteration, nowhere else.
func (r *run) checkDeadline(line int) *ScriptError {
	if time.Now().After(r.deadline) {
		return scriptErr(ErrTimeout, line,
			"Execution timed out after %d ms. The script may contain an infinite loop, or the timeout may be too low.",
			r.timeout.Milliseconds())
	}
	return nil
}

// execRange interprets the statements in lines[from:to] at the given
// indentation baseline. Returns the first non-normal outcome so break,
// continue and errors propagate to the enclosing construct.
func (r *run) execRange(from, to, baseline int) outcome {
	i := from
	for i < to {
		ln := r.lines[i]
		if ln.blank {
			i++
			continue
		}
		if err := r.checkDeadline(ln.num); err != nil {
			return errorOutcome{err}
		}
		if ln.indent > baseline {
			return errorOutcome{scriptErr(ErrIndentation, ln.num, "unexpected indent")}
		}

		out, next := r.execStatement(i, to)
		if _, ok := out.(normalOutcome); !ok {
			return out
		}
		i = next
	}
	return normalOutcome{}
}

// splitKeyword separates a statement's leading keyword from the rest of
// the line. A colon bounds the keyword like whitespace does, so block
// headers without spaces ("else:") still split; the colon stays in rest.
func splitKeyword(stmt string) (word, rest string) {
	idx := strings.IndexFunc(stmt, func(ch rune) bool {
		return ch == ' ' || ch == '\t' || ch == ':'
	})
	if idx < 0 {
		return stmt, ""
	}
	return stmt[:idx], strings.TrimSpace(stmt[idx:])
}

// headerBody strips the trailing colon from a block header, returning the
// text between the keyword and the colon.
func headerBody(rest, keyword string, line int) (string, *ScriptError) {
	if !strings.HasSuffix(rest, ":") {
		return "", scriptErr(ErrSyntax, line, "expected ':' at the end of the '%s' line", keyword)
	}
	return strings.TrimSpace(rest[:len(rest)-1]), nil
}

// execStatement interprets the statement starting at index i and returns
// its outcome plus the index of the next statement to run (past any block
// the statement owns).
func (r *run) execStatement(i, to int) (outcome, int) {
	ln := r.lines[i]
	word, rest := splitKeyword(strings.TrimSpace(ln.text))
	keyword := strings.ToLower(word)
	r.logger.TraceCat(CatFlow, "line %d: %s", ln.num, keyword)

	switch keyword {
	case "read":
		if err := r.execRead(rest, ln.num); err != nil {
			return errorOutcome{err}, i + 1
		}
		return normalOutcome{}, i + 1

	case "rep":
		return r.execRep(i, to, rest)

	case "group":
		return r.execGroup(i, to, rest)

	case "if":
		return r.execIfChain(i, to, rest)

	case "elif":
		return errorOutcome{scriptErr(ErrSyntax, ln.num, "'elif' without matching 'if'")}, i + 1

	case "else":
		return errorOutcome{scriptErr(ErrSyntax, ln.num, "'else' without matching 'if'")}, i + 1

	case "break":
		if rest != "" {
			return errorOutcome{scriptErr(ErrSyntax, ln.num, "unexpected token after 'break'")}, i + 1
		}
		if r.loopDepth == 0 {
			return errorOutcome{scriptErr(ErrSyntax, ln.num, "'break' outside of a loop")}, i + 1
		}
		return breakOutcome{}, i + 1

	case "continue":
		if rest != "" {
			return errorOutcome{scriptErr(ErrSyntax, ln.num, "unexpected token after 'continue'")}, i + 1
		}
		if r.loopDepth == 0 {
			return errorOutcome{scriptErr(ErrSyntax, ln.num, "'continue' outside of a loop")}, i + 1
		}
		return continueOutcome{}, i + 1

	case "point", "line", "seg", "circle", "poly", "push", "text":
		if err := r.execCommand(keyword, rest, ln.num); err != nil {
			return errorOutcome{err}, i + 1
		}
		return normalOutcome{}, i + 1

	default:
		return errorOutcome{scriptErr(ErrSyntax, ln.num, "Unknown command: %s", word)}, i + 1
	}
}

// execRep runs a rep loop. The iteration count is evaluated once, before
// the loop, and truncated toward zero; NaN and negative counts run zero
// iterations, +Inf runs until the deadline catches it. Each iteration
// gets a fresh scope frame so variables introduced inside it vanish when
// the iteration ends.
func (r *run) execRep(i, to int, rest string) (outcome, int) {
	ln := r.lines[i]
	header, herr := headerBody(rest, "rep", ln.num)
	if herr != nil {
		return errorOutcome{herr}, i + 1
	}
	if header == "" {
		return errorOutcome{scriptErr(ErrSyntax, ln.num, "missing loop count in 'rep'")}, i + 1
	}

	loopVar := ""
	exprText := header
	if fields := strings.Fields(header); len(fields) >= 2 && identPattern.MatchString(fields[0]) {
		if isReservedWord(fields[0]) {
			return errorOutcome{scriptErr(ErrSyntax, ln.num, "'%s' is a reserved keyword and cannot be a loop variable", fields[0])}, i + 1
		}
		loopVar = fields[0]
		exprText = strings.TrimSpace(header[len(fields[0]):])
	}

	countVal, eerr := evalExpression(exprText, r.scope, ln.num)
	if eerr != nil {
		return errorOutcome{eerr}, i + 1
	}
	iterations := math.Trunc(countVal)

	from, end, bodyCol, berr := extractBlock(r.lines, i+1, to, ln.indent, ln.num)
	if berr != nil {
		return errorOutcome{berr}, i + 1
	}
	r.logger.DebugCat(CatFlow, "rep at line %d: %g iterations, body lines %d-%d", ln.num, iterations, r.lines[from].num, r.lines[end-1].num)

	r.loopDepth++
	for idx := 0.0; idx < iterations; idx++ {
		if err := r.checkDeadline(ln.num); err != nil {
			r.loopDepth--
			return errorOutcome{err}, end
		}

		r.scope.push()
		if loopVar != "" {
			r.scope.define(loopVar, idx)
		}
		out := r.execRange(from, end, bodyCol)
		r.scope.pop()

		switch out.(type) {
		case breakOutcome:
			r.loopDepth--
			return normalOutcome{}, end
		case continueOutcome:
			// proceed to the next iteration
		case errorOutcome:
			r.loopDepth--
			return out, end
		}
	}
	r.loopDepth--
	return normalOutcome{}, end
}

// execGroup runs a group block: the id is pushed for the duration of the
// body and the prior id restored on exit, whatever the body's outcome.
func (r *run) execGroup(i, to int, rest string) (outcome, int) {
	ln := r.lines[i]
	header, herr := headerBody(rest, "group", ln.num)
	if herr != nil {
		return errorOutcome{herr}, i + 1
	}
	id, gerr := r.resolveGroupID(header, ln.num)
	if gerr != nil {
		return errorOutcome{gerr}, i + 1
	}
	from, end, bodyCol, berr := extractBlock(r.lines, i+1, to, ln.indent, ln.num)
	if berr != nil {
		return errorOutcome{berr}, i + 1
	}

	r.groups = append(r.groups, id)
	out := r.execRange(from, end, bodyCol)
	r.groups = r.groups[:len(r.groups)-1]

	if _, ok := out.(normalOutcome); !ok {
		return out, end
	}
	return normalOutcome{}, end
}

// resolveGroupID turns a group header into its id: a single quoted token
// is taken literally, anything else is evaluated as an expression and the
// numeric result stringified.
func (r *run) resolveGroupID(text string, line int) (string, *ScriptError) {
	tokens := splitTokens(text)
	if len(tokens) == 1 && isQuoted(tokens[0]) {
		return stripQuotes(tokens[0]), nil
	}
	v, err := evalExpression(text, r.scope, line)
	if err != nil {
		return "", err
	}
	return formatNumber(v), nil
}

// execIfChain runs an if/elif/else chain. Headers are checked top to
// bottom; the first truthy condition's body runs. Once a body has run,
// later headers are still parsed and their blocks measured to advance
// the cursor, but their conditions are not evaluated against the scope.
func (r *run) execIfChain(i, to int, rest string) (outcome, int) {
	ln := r.lines[i]
	header, herr := headerBody(rest, "if", ln.num)
	if herr != nil {
		return errorOutcome{herr}, i + 1
	}
	condVal, eerr := evalExpression(header, r.scope, ln.num)
	if eerr != nil {
		return errorOutcome{eerr}, i + 1
	}
	from, end, bodyCol, berr := extractBlock(r.lines, i+1, to, ln.indent, ln.num)
	if berr != nil {
		return errorOutcome{berr}, i + 1
	}

	executed := false
	if truthy(condVal) {
		out := r.execRange(from, end, bodyCol)
		if _, ok := out.(normalOutcome); !ok {
			return out, end
		}
		executed = true
	}
	next := end

	for {
		j := next
		for j < to && r.lines[j].blank {
			j++
		}
		if j >= to || r.lines[j].indent != ln.indent {
			return normalOutcome{}, next
		}

		hln := r.lines[j]
		word, hrest := splitKeyword(strings.TrimSpace(hln.text))
		switch strings.ToLower(word) {
		case "elif":
			cond, cerr := headerBody(hrest, "elif", hln.num)
			if cerr != nil {
				return errorOutcome{cerr}, j + 1
			}
			if cond == "" {
				return errorOutcome{scriptErr(ErrExpression, hln.num, "Empty expression")}, j + 1
			}
			bFrom, bEnd, bCol, xerr := extractBlock(r.lines, j+1, to, hln.indent, hln.num)
			if xerr != nil {
				return errorOutcome{xerr}, j + 1
			}
			if !executed {
				v, verr := evalExpression(cond, r.scope, hln.num)
				if verr != nil {
					return errorOutcome{verr}, j + 1
				}
				if truthy(v) {
					out := r.execRange(bFrom, bEnd, bCol)
					if _, ok := out.(normalOutcome); !ok {
						return out, bEnd
					}
					executed = true
				}
			} else if _, verr := evalExpression(cond, anyVars{}, hln.num); verr != nil {
				// skipped conditions still parse; identifiers need not resolve
				return errorOutcome{verr}, j + 1
			}
			next = bEnd

		case "else":
			body, cerr := headerBody(hrest, "else", hln.num)
			if cerr != nil {
				return errorOutcome{cerr}, j + 1
			}
			if body != "" {
				return errorOutcome{scriptErr(ErrSyntax, hln.num, "unexpected token after 'else'")}, j + 1
			}
			bFrom, bEnd, bCol, xerr := extractBlock(r.lines, j+1, to, hln.indent, hln.num)
			if xerr != nil {
				return errorOutcome{xerr}, j + 1
			}
			if !executed {
				out := r.execRange(bFrom, bEnd, bCol)
				if _, ok := out.(normalOutcome); !ok {
					return out, bEnd
				}
			}
			// the chain cannot continue past an else
			return normalOutcome{}, bEnd

		default:
			return normalOutcome{}, next
		}
	}
}
