package plotscript

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Config holds interpreter configuration
type Config struct {
	Debug            bool          // Enable debug logging
	DebugCategories  []string      // Categories enabled for debug output (empty = all)
	Timeout          time.Duration // Execution budget per run
	CacheSize        int           // Max entries in the result cache (0 disables caching)
	ShowErrorContext bool          // Attach script context lines to errors
	ContextLines     int           // Context lines shown around the error line
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		Timeout:          3000 * time.Millisecond,
		CacheSize:        0,
		ShowErrorContext: true,
		ContextLines:     2,
	}
}

// ErrorKind classifies a script error. The kind doubles as the message
// prefix, so rendered errors read like "SyntaxError: unknown command".
type ErrorKind string

const (
	ErrSyntax            ErrorKind = "SyntaxError"
	ErrIndentation       ErrorKind = "IndentationError"
	ErrExpression        ErrorKind = "ExpressionError"
	ErrUndefinedVariable ErrorKind = "UndefinedVariableOrInvalidNumber"
	ErrEndOfInput        ErrorKind = "UnexpectedEndOfInput"
	ErrExpectedNumber    ErrorKind = "ExpectedNumber"
	ErrTimeout           ErrorKind = "ExecutionTimedOut"
)

// ScriptError is a terminal interpretation error with position information.
// Every error aborts the whole run; the interpreter never recovers and
// continues. Context carries the original script lines for error reporting.
type ScriptError struct {
	Kind    ErrorKind
	Message string
	Line    int // 1-based script line, 0 if unknown
	Context []string
}

func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// scriptErr builds a positioned ScriptError.
func scriptErr(kind ErrorKind, line int, format string, args ...interface{}) *ScriptError {
	return &ScriptError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

// outcome is the tagged result of executing one statement or block,
// propagated by return value through the block-processing routines.
// Nothing in the interpreter panics for control flow.
type outcome interface {
	isOutcome()
}

// normalOutcome means execution fell through to the next statement.
type normalOutcome struct{}

// breakOutcome aborts the nearest enclosing loop.
type breakOutcome struct{}

// continueOutcome aborts the rest of the current iteration body.
type continueOutcome struct{}

// errorOutcome carries a terminal error up the block stack.
type errorOutcome struct {
	err *ScriptError
}

func (normalOutcome) isOutcome()   {}
func (breakOutcome) isOutcome()    {}
func (continueOutcome) isOutcome() {}
func (errorOutcome) isOutcome()    {}

// reservedWords are the statement and command keywords. Keyword matching
// is case-insensitive, so none of these can be a variable name in any
// capitalization.
var reservedWords = map[string]bool{
	"point": true, "line": true, "seg": true, "circle": true,
	"poly": true, "push": true, "text": true, "read": true,
	"rep": true, "group": true, "if": true, "elif": true,
	"else": true, "break": true, "continue": true,
}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isReservedWord reports whether name is a keyword, ignoring case.
func isReservedWord(name string) bool {
	return reservedWords[strings.ToLower(name)]
}
