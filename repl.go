package plotscript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// REPLConfig configures the REPL behavior
type REPLConfig struct {
	ShowBanner bool // Whether to show the startup banner
}

// REPL provides an interactive session. Script lines accumulate in a
// buffer; an empty line (or :run) interprets the whole buffer against the
// current input data and prints the shapes.
type REPL struct {
	interp  *Interpreter
	config  REPLConfig
	input   io.Reader
	output  io.Writer
	script  []string // accumulated script lines
	data    string   // current input data
	timeout time.Duration
	width   int // terminal width for clipping shape listings
}

// NewREPL creates a REPL bound to stdin/stdout.
func NewREPL(in *Interpreter, config REPLConfig) *REPL {
	r := &REPL{
		interp:  in,
		config:  config,
		input:   os.Stdin,
		output:  os.Stdout,
		timeout: in.Config().Timeout,
		width:   80,
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			r.width = w
		}
	}
	return r
}

// NewREPLWithIO creates a REPL with explicit streams, used by tests and
// embedders with their own terminal handling.
func NewREPLWithIO(in *Interpreter, config REPLConfig, input io.Reader, output io.Writer) *REPL {
	return &REPL{
		interp:  in,
		config:  config,
		input:   input,
		output:  output,
		timeout: in.Config().Timeout,
		width:   80,
	}
}

func (r *REPL) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.output, format, args...)
}

// Start begins the session and blocks until :quit or end of input.
func (r *REPL) Start() error {
	if r.config.ShowBanner {
		r.printf("PlotScript Interactive Mode. Type :help for commands, :quit to leave.\n\n")
	}

	scanner := bufio.NewScanner(r.input)
	r.printf("ps> ")
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, ":"):
			if quit := r.handleDirective(trimmed); quit {
				return nil
			}
		case trimmed == "":
			r.runBuffer()
		default:
			r.script = append(r.script, line)
		}
		r.printf("ps> ")
	}
	r.printf("\n")
	return scanner.Err()
}

func (r *REPL) handleDirective(line string) (quit bool) {
	cmd, arg := line, ""
	if sp := strings.IndexAny(line, " \t"); sp >= 0 {
		cmd, arg = line[:sp], strings.TrimSpace(line[sp+1:])
	}

	switch cmd {
	case ":quit", ":exit", ":q":
		return true

	case ":help", ":h":
		r.printHelp()

	case ":run":
		r.runBuffer()

	case ":show":
		if len(r.script) == 0 {
			r.printf("script buffer is empty\n")
			break
		}
		for i, ln := range r.script {
			r.printf("%3d | %s\n", i+1, ln)
		}

	case ":clear":
		r.script = nil
		r.printf("script cleared\n")

	case ":load":
		b, err := os.ReadFile(arg)
		if err != nil {
			r.printf("error: %v\n", err)
			break
		}
		r.script = strings.Split(strings.TrimRight(string(b), "\n"), "\n")
		r.printf("loaded %d lines from %s\n", len(r.script), arg)

	case ":data":
		r.data = arg
		r.printf("input data set (%d bytes)\n", len(arg))

	case ":datafile":
		b, err := os.ReadFile(arg)
		if err != nil {
			r.printf("error: %v\n", err)
			break
		}
		r.data = string(b)
		r.printf("loaded %d bytes of input data from %s\n", len(b), arg)

	case ":timeout":
		ms, err := strconv.Atoi(arg)
		if err != nil || ms <= 0 {
			r.printf("usage: :timeout <milliseconds>\n")
			break
		}
		r.timeout = time.Duration(ms) * time.Millisecond
		r.printf("timeout set to %d ms\n", ms)

	case ":check":
		issues := CheckScript(strings.Join(r.script, "\n"))
		if len(issues) == 0 {
			r.printf("no issues found\n")
			break
		}
		for _, issue := range issues {
			r.printf("%s\n", issue)
		}

	case ":json":
		shapes, ok := r.interpretBuffer()
		if !ok {
			break
		}
		out, err := MarshalShapes(shapes, true)
		if err != nil {
			r.printf("error: %v\n", err)
			break
		}
		r.printf("%s\n", out)

	case ":debug":
		on := arg == "on"
		r.interp.Logger().SetEnabled(on)
		if on {
			r.interp.Logger().EnableAllCategories()
		}
		r.printf("debug %s\n", map[bool]string{true: "on", false: "off"}[on])

	default:
		r.printf("unknown directive %s (try :help)\n", cmd)
	}
	return false
}

func (r *REPL) printHelp() {
	r.printf(`directives:
  :run              interpret the script buffer (empty line does the same)
  :show             list the script buffer
  :clear            empty the script buffer
  :load FILE        replace the buffer with a script file
  :data TEXT        set the input data inline
  :datafile FILE    load the input data from a file
  :timeout MS       set the execution budget
  :check            statically check the buffer without running it
  :json             interpret and print shapes as JSON
  :debug on|off     toggle debug logging
  :quit             leave
`)
}

// interpretBuffer runs the current buffer, printing any error. ok is
// false when the buffer is empty or the run failed.
func (r *REPL) interpretBuffer() ([]Shape, bool) {
	if len(r.script) == 0 {
		r.printf("nothing to run\n")
		return nil, false
	}
	shapes, err := r.interp.InterpretWithTimeout(strings.Join(r.script, "\n"), r.data, r.timeout)
	if err != nil {
		var serr *ScriptError
		if errors.As(err, &serr) {
			r.printf("%s\n", serr.Error())
			for _, ctx := range serr.Context {
				r.printf("  %s\n", ctx)
			}
		} else {
			r.printf("error: %v\n", err)
		}
		return nil, false
	}
	return shapes, true
}

func (r *REPL) runBuffer() {
	shapes, ok := r.interpretBuffer()
	if !ok {
		return
	}
	r.printSummary(shapes)
}

func (r *REPL) printSummary(shapes []Shape) {
	counts := CountByType(shapes)
	types := make([]string, 0, len(counts))
	for t, n := range counts {
		types = append(types, fmt.Sprintf("%d %s", n, t))
	}
	sort.Strings(types)

	if len(shapes) == 0 {
		r.printf("0 shapes\n")
		return
	}
	r.printf("%d shapes (%s)\n", len(shapes), strings.Join(types, ", "))
	for _, s := range shapes {
		r.printf("%s\n", clipLine(describeShape(s), r.width))
	}
	if min, max, ok := Bounds(shapes); ok {
		r.printf("bounds: (%s, %s) to (%s, %s)\n",
			formatNumber(min.X), formatNumber(min.Y), formatNumber(max.X), formatNumber(max.Y))
	}
}

// describeShape renders one shape as a single summary line.
func describeShape(s Shape) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-8s", s.ID, s.Type)
	switch s.Type {
	case TypePoint:
		fmt.Fprintf(&b, "(%s, %s)", formatNumber(s.X), formatNumber(s.Y))
	case TypeLine, TypeSegment:
		fmt.Fprintf(&b, "(%s, %s)-(%s, %s)", formatNumber(s.X1), formatNumber(s.Y1), formatNumber(s.X2), formatNumber(s.Y2))
	case TypeCircle:
		fmt.Fprintf(&b, "(%s, %s) r=%s", formatNumber(s.X), formatNumber(s.Y), formatNumber(s.R))
	case TypePolygon:
		fmt.Fprintf(&b, "%d points", len(s.Points))
	case TypeText:
		fmt.Fprintf(&b, "(%s, %s) %q %spx", formatNumber(s.X), formatNumber(s.Y), s.Text, formatNumber(s.FontSize))
	}
	fmt.Fprintf(&b, " %s", s.Color)
	if s.Label != "" {
		fmt.Fprintf(&b, " %q", s.Label)
	}
	if s.GroupID != "" {
		fmt.Fprintf(&b, " [%s]", s.GroupID)
	}
	return b.String()
}

func clipLine(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
