package plotscript

import (
	"fmt"
	"strings"
)

// execRead consumes one number from the data stream per listed name and
// binds it into the environment. Invalid names error; zero names is a
// no-op.
func (r *run) execRead(rest string, line int) *ScriptError {
	for _, name := range strings.Fields(rest) {
		if !identPattern.MatchString(name) {
			return scriptErr(ErrSyntax, line, "invalid variable name '%s'", name)
		}
		if isReservedWord(name) {
			return scriptErr(ErrSyntax, line, "'%s' is a reserved keyword and cannot be a variable name", name)
		}
		v, err := r.tokens.consumeNumber(line)
		if err != nil {
			return err
		}
		r.scope.set(name, v)
	}
	return nil
}

// commandArgs is the classified argument list of one shape command.
type commandArgs struct {
	nums  []float64
	strs  []string // labels in argument order
	color string   // last # token wins
}

// classifyArgs sorts each argument token into a bucket: # prefixes are
// color literals, quoted tokens are strings, everything else is evaluated
// as an expression. A token that fails to evaluate silently becomes an
// opaque label string rather than an error.
func (r *run) classifyArgs(rest string, line int) commandArgs {
	var args commandArgs
	for _, tok := range splitTokens(rest) {
		switch {
		case strings.HasPrefix(tok, "#"):
			args.color = tok
		case isQuoted(tok):
			args.strs = append(args.strs, stripQuotes(tok))
		default:
			v, err := evalExpression(tok, r.scope, line)
			if err != nil {
				r.logger.DebugCat(CatCommand, "argument %q did not evaluate (%s), treating as label", tok, err.Kind)
				args.strs = append(args.strs, tok)
				continue
			}
			args.nums = append(args.nums, v)
		}
	}
	return args
}

// execCommand runs one shape command. Under-supplied commands are dropped
// silently rather than erroring; extra numeric arguments are ignored.
func (r *run) execCommand(keyword, rest string, line int) *ScriptError {
	args := r.classifyArgs(rest, line)
	label := ""
	if len(args.strs) > 0 {
		label = args.strs[0]
	}

	switch keyword {
	case "point":
		if len(args.nums) < 2 {
			r.dropCommand(keyword, line, len(args.nums))
			return nil
		}
		r.emit(Shape{Type: TypePoint, X: args.nums[0], Y: args.nums[1], Color: args.color, Label: label})

	case "push":
		if len(args.nums) < 2 {
			r.dropCommand(keyword, line, len(args.nums))
			return nil
		}
		r.buffer = append(r.buffer, Coord{X: args.nums[0], Y: args.nums[1]})

	case "line":
		if len(args.nums) < 4 {
			r.dropCommand(keyword, line, len(args.nums))
			return nil
		}
		r.emit(Shape{Type: TypeLine, X1: args.nums[0], Y1: args.nums[1], X2: args.nums[2], Y2: args.nums[3], Color: args.color, Label: label})

	case "seg":
		if len(args.nums) < 4 {
			r.dropCommand(keyword, line, len(args.nums))
			return nil
		}
		r.emit(Shape{Type: TypeSegment, X1: args.nums[0], Y1: args.nums[1], X2: args.nums[2], Y2: args.nums[3], Color: args.color, Label: label})

	case "circle":
		if len(args.nums) < 3 {
			r.dropCommand(keyword, line, len(args.nums))
			return nil
		}
		r.emit(Shape{Type: TypeCircle, X: args.nums[0], Y: args.nums[1], R: args.nums[2], Color: args.color, Label: label})

	case "poly":
		r.execPoly(args, label, line)

	case "text":
		if len(args.nums) < 2 || len(args.strs) == 0 {
			r.dropCommand(keyword, line, len(args.nums))
			return nil
		}
		content := args.strs[len(args.strs)-1]
		fontSize := 12.0
		if len(args.nums) >= 3 {
			fontSize = args.nums[2]
		}
		r.emit(Shape{Type: TypeText, X: args.nums[0], Y: args.nums[1], Text: content, FontSize: fontSize, Color: args.color})
	}
	return nil
}

// execPoly emits a polygon either by draining the Push buffer (no numeric
// arguments) or from an inline coordinate list of at least three even
// pairs. Anything in between is dropped.
func (r *run) execPoly(args commandArgs, label string, line int) {
	if len(args.nums) == 0 {
		if len(r.buffer) == 0 {
			r.logger.DebugCat(CatCommand, "poly at line %d: empty point buffer, ignoring", line)
			return
		}
		pts := make([]Coord, len(r.buffer))
		copy(pts, r.buffer)
		r.buffer = r.buffer[:0]
		r.emit(Shape{Type: TypePolygon, Points: pts, Color: args.color, Label: label})
		return
	}

	if len(args.nums) >= 6 && len(args.nums)%2 == 0 {
		pts := make([]Coord, 0, len(args.nums)/2)
		for k := 0; k+1 < len(args.nums); k += 2 {
			pts = append(pts, Coord{X: args.nums[k], Y: args.nums[k+1]})
		}
		r.emit(Shape{Type: TypePolygon, Points: pts, Color: args.color, Label: label})
		return
	}

	r.dropCommand("poly", line, len(args.nums))
}

// dropCommand records a silently ignored under-supplied command.
func (r *run) dropCommand(keyword string, line, got int) {
	r.logger.DebugCat(CatCommand, "%s at line %d: insufficient arguments (%d numeric), ignoring", keyword, line, got)
}

// emit assigns the shape's id, default color and group, then appends it.
// The palette swatch is chosen by total emission count, so colors are a
// pure function of emission order.
func (r *run) emit(s Shape) {
	s.ID = fmt.Sprintf("%s%d", idPrefixes[s.Type], r.counters[s.Type])
	r.counters[s.Type]++
	if s.Color == "" {
		s.Color = defaultPalette[len(r.shapes)%len(defaultPalette)]
	}
	if len(r.groups) > 0 {
		s.GroupID = r.groups[len(r.groups)-1]
	}
	r.shapes = append(r.shapes, s)
	r.logger.DebugCat(CatCommand, "emitted %s %s", s.Type, s.ID)
}
