// Package plotscript provides an interpreter for format scripts: small
// indentation-structured programs that read a stream of numeric tokens
// and emit drawing primitives (points, lines, segments, circles,
// polygons, text) for a renderer to consume.
//
// Basic usage:
//
//	ps := plotscript.New(nil)
//	shapes, err := ps.Interpret("Read x y\nPoint x y", "3 4")
package plotscript

import (
	"strings"
	"time"
)

// Interpreter runs format scripts. It is safe for concurrent use: every
// run owns its state exclusively, and the optional result cache is
// internally locked.
type Interpreter struct {
	config *Config
	logger *Logger
	cache  *resultCache
}

// New creates a new interpreter instance. A nil config selects defaults.
func New(config *Config) *Interpreter {
	if config == nil {
		config = DefaultConfig()
	}

	logger := NewLogger(config.Debug)
	if config.Debug {
		if len(config.DebugCategories) == 0 {
			logger.EnableAllCategories()
		} else {
			for _, cat := range config.DebugCategories {
				logger.EnableCategory(LogCategory(cat))
			}
		}
	}

	in := &Interpreter{config: config, logger: logger}
	if config.CacheSize > 0 {
		in.cache = newResultCache(config.CacheSize, logger)
	}
	return in
}

// Logger exposes the interpreter's logger so embedders can route their
// own diagnostics through the same sink.
func (in *Interpreter) Logger() *Logger {
	return in.logger
}

// Config returns the active configuration.
func (in *Interpreter) Config() *Config {
	return in.config
}

// Interpret runs the script against the input data under the configured
// timeout. On success the emitted shapes come back in emission order; on
// failure the returned error is a *ScriptError and the shape list is nil.
func (in *Interpreter) Interpret(script, data string) ([]Shape, error) {
	return in.InterpretWithTimeout(script, data, in.config.Timeout)
}

// InterpretWithTimeout is Interpret with a per-call execution budget.
func (in *Interpreter) InterpretWithTimeout(script, data string, timeout time.Duration) ([]Shape, error) {
	if in.cache != nil {
		if shapes, ok := in.cache.get(script, data, timeout); ok {
			return shapes, nil
		}
	}

	start := time.Now()
	r := newRun(script, data, timeout, in.logger)
	shapes, serr := r.execute()
	if serr != nil {
		if in.config.ShowErrorContext && serr.Line > 0 {
			serr.Context = formatSourceContext(strings.Split(script, "\n"), serr.Line, in.config.ContextLines)
		}
		return nil, serr
	}
	in.logger.DebugCat(CatApp, "interpreted %d lines into %d shapes in %s", len(r.lines), len(shapes), time.Since(start))

	// Timeouts are wall-clock-dependent, so only successful runs are
	// cached; those are fully deterministic.
	if in.cache != nil {
		in.cache.put(script, data, timeout, shapes)
	}
	return shapes, nil
}

// CacheStats reports result-cache hits, misses and current size. All
// zeros when caching is disabled.
func (in *Interpreter) CacheStats() (hits, misses uint64, size int) {
	if in.cache == nil {
		return 0, 0, 0
	}
	return in.cache.stats()
}

// Interpret is a one-shot convenience with default configuration.
// timeoutMs <= 0 selects the default budget of 3000 ms.
func Interpret(script, data string, timeoutMs int) ([]Shape, error) {
	config := DefaultConfig()
	if timeoutMs > 0 {
		config.Timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	return New(config).Interpret(script, data)
}
