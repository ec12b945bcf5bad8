package plotscript

import "strings"

// scriptLine is one physical line of the format script after comment
// stripping, with its tab-expanded indentation column precomputed.
type scriptLine struct {
	num    int    // 1-based line number
	raw    string // original text, kept for error context
	text   string // comment-stripped, right-trimmed
	indent int    // column of the first non-whitespace rune
	blank  bool   // empty or comment-only
}

// tabStop is the column multiple tabs expand to.
const tabStop = 4

// indentWidth computes the indentation column of a line with tabs
// expanded to the next multiple of tabStop. Literal character counts
// would make mixed tab/space scripts nest unpredictably.
func indentWidth(s string) int {
	col := 0
	for _, ch := range s {
		switch ch {
		case ' ':
			col++
		case '\t':
			col = (col/tabStop + 1) * tabStop
		default:
			return col
		}
	}
	return col
}

// stripComment removes a //-introduced comment, ignoring markers inside
// quoted strings. Both quote styles open a string; a quote closes only
// its own style.
func stripComment(s string) string {
	var quote rune
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '/':
			if i+1 < len(runes) && runes[i+1] == '/' {
				return string(runes[:i])
			}
		}
	}
	return s
}

// splitScriptLines breaks a script into lines with comments stripped and
// indentation measured.
func splitScriptLines(script string) []scriptLine {
	raw := strings.Split(script, "\n")
	lines := make([]scriptLine, len(raw))
	for i, r := range raw {
		r = strings.TrimRight(r, "\r")
		text := strings.TrimRight(stripComment(r), " \t")
		lines[i] = scriptLine{
			num:    i + 1,
			raw:    r,
			text:   text,
			indent: indentWidth(text),
			blank:  strings.TrimSpace(text) == "",
		}
	}
	return lines
}

// extractBlock carves out the indented block belonging to a header line.
// start is the index just past the header, limit the exclusive end of the
// enclosing block, headerCol the header's indentation column. The first
// non-blank line establishes the block's column; lines are included while
// blank or indented at least that much. Returns the half-open index range
// and the established column.
func extractBlock(lines []scriptLine, start, limit, headerCol, headerLine int) (from, end, bodyCol int, err *ScriptError) {
	i := start
	for i < limit && lines[i].blank {
		i++
	}
	if i >= limit {
		return 0, 0, 0, scriptErr(ErrIndentation, headerLine, "expected an indented block")
	}
	if lines[i].indent <= headerCol {
		return 0, 0, 0, scriptErr(ErrIndentation, lines[i].num, "expected an indented block")
	}

	from = i
	bodyCol = lines[i].indent
	end = i + 1
	for end < limit {
		if !lines[end].blank && lines[end].indent < bodyCol {
			break
		}
		end++
	}
	return from, end, bodyCol, nil
}
