package plotscript

// scopeStack holds the variable environment as a stack of frames. The
// root frame lives for the whole run; loops push a frame per iteration so
// variables introduced inside an iteration vanish when it ends, while
// assignment to an existing outer variable still sticks.
type scopeStack struct {
	frames []map[string]float64
	logger *Logger
}

func newScopeStack(logger *Logger) *scopeStack {
	return &scopeStack{
		frames: []map[string]float64{make(map[string]float64)},
		logger: logger,
	}
}

// push opens a new innermost frame.
func (s *scopeStack) push() {
	s.frames = append(s.frames, make(map[string]float64))
}

// pop discards the innermost frame. The root frame is never popped.
func (s *scopeStack) pop() {
	if len(s.frames) <= 1 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// lookup resolves a name from the innermost frame outward.
func (s *scopeStack) lookup(name string) (float64, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return 0, false
}

// set updates the nearest frame that already holds name, or defines it in
// the innermost frame if none does. Read into an existing variable from
// inside a loop therefore persists past the iteration.
func (s *scopeStack) set(name string, v float64) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i][name]; ok {
			s.frames[i][name] = v
			s.logger.TraceCat(CatScope, "set %s=%v in frame %d", name, v, i)
			return
		}
	}
	s.define(name, v)
}

// define binds name in the innermost frame unconditionally, shadowing any
// outer binding. Loop induction variables are bound this way.
func (s *scopeStack) define(name string, v float64) {
	frame := s.frames[len(s.frames)-1]
	frame[name] = v
	s.logger.TraceCat(CatScope, "define %s=%v in frame %d", name, v, len(s.frames)-1)
}

// depth returns the number of open frames.
func (s *scopeStack) depth() int {
	return len(s.frames)
}

// flatten returns the visible bindings, inner frames winning over outer.
func (s *scopeStack) flatten() map[string]float64 {
	out := make(map[string]float64)
	for _, frame := range s.frames {
		for k, v := range frame {
			out[k] = v
		}
	}
	return out
}
