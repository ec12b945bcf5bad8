package plotscript

import (
	"testing"
)

func TestIndentWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"x", 0},
		{"  x", 2},
		{"    x", 4},
		{"\tx", 4},
		{"\t\tx", 8},
		{" \tx", 4},
		{"   \tx", 4},
		{"    \tx", 8},
		{"\t  x", 6},
		{"", 0},
		{"    ", 4},
	}

	for _, tc := range tests {
		if got := indentWidth(tc.in); got != tc.want {
			t.Errorf("%q: expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Point 1 2", "Point 1 2"},
		{"Point 1 2 // note", "Point 1 2 "},
		{"// whole line", ""},
		{`Text 0 0 "a // b"`, `Text 0 0 "a // b"`},
		{`Text 0 0 'a // b' // real`, `Text 0 0 'a // b' `},
		{`Text 0 0 "unclosed // inside`, `Text 0 0 "unclosed // inside`},
		{"a / b // c", "a / b "},
	}

	for _, tc := range tests {
		if got := stripComment(tc.in); got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSplitScriptLines(t *testing.T) {
	script := "Point 1 2\r\n  indented // c\n\n// only comment"
	lines := splitScriptLines(script)

	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(lines))
	}
	if lines[0].num != 1 || lines[0].text != "Point 1 2" || lines[0].indent != 0 {
		t.Errorf("Line 1 parsed wrong: %+v", lines[0])
	}
	if lines[1].text != "  indented" || lines[1].indent != 2 {
		t.Errorf("Line 2 parsed wrong: %+v", lines[1])
	}
	if !lines[2].blank {
		t.Error("Line 3 should be blank")
	}
	if !lines[3].blank {
		t.Error("Comment-only line should be blank")
	}
}

func TestExtractBlock(t *testing.T) {
	parse := func(s string) []scriptLine { return splitScriptLines(s) }

	t.Run("Simple block", func(t *testing.T) {
		lines := parse("rep 2:\n  a\n  b\nc")
		from, end, col, err := extractBlock(lines, 1, len(lines), 0, 1)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if from != 1 || end != 3 || col != 2 {
			t.Errorf("Expected [1,3) col 2, got [%d,%d) col %d", from, end, col)
		}
	})

	t.Run("Blank lines inside the block", func(t *testing.T) {
		lines := parse("rep 2:\n  a\n\n  b\nc")
		from, end, col, err := extractBlock(lines, 1, len(lines), 0, 1)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if from != 1 || end != 4 || col != 2 {
			t.Errorf("Expected [1,4) col 2, got [%d,%d) col %d", from, end, col)
		}
	})

	t.Run("Blank lines before the block", func(t *testing.T) {
		lines := parse("rep 2:\n\n  a")
		from, _, _, err := extractBlock(lines, 1, len(lines), 0, 1)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if from != 2 {
			t.Errorf("Expected block to start at 2, got %d", from)
		}
	})

	t.Run("Deeper lines extend the block", func(t *testing.T) {
		lines := parse("rep 2:\n  a\n      b\nc")
		_, end, _, err := extractBlock(lines, 1, len(lines), 0, 1)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if end != 3 {
			t.Errorf("Expected end 3, got %d", end)
		}
	})

	t.Run("No block at end of input", func(t *testing.T) {
		lines := parse("rep 2:")
		_, _, _, err := extractBlock(lines, 1, len(lines), 0, 1)
		if err == nil || err.Kind != ErrIndentation {
			t.Fatalf("Expected indentation error, got %v", err)
		}
		if err.Line != 1 {
			t.Errorf("Error should point at the header line, got %d", err.Line)
		}
	})

	t.Run("Dedented line instead of block", func(t *testing.T) {
		lines := parse("rep 2:\nnext")
		_, _, _, err := extractBlock(lines, 1, len(lines), 0, 1)
		if err == nil || err.Kind != ErrIndentation {
			t.Fatalf("Expected indentation error, got %v", err)
		}
		if err.Line != 2 {
			t.Errorf("Error should point at the offending line, got %d", err.Line)
		}
	})

	t.Run("Nested header respects its own column", func(t *testing.T) {
		lines := parse("if 1:\n  rep 2:\n    a\n  b")
		from, end, col, err := extractBlock(lines, 2, len(lines), 2, 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if from != 2 || end != 3 || col != 4 {
			t.Errorf("Expected [2,3) col 4, got [%d,%d) col %d", from, end, col)
		}
	})
}
