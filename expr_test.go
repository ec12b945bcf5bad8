package plotscript

import (
	"math"
	"strings"
	"testing"
)

type mapVars map[string]float64

func (m mapVars) lookup(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

func TestExpressionEvaluation(t *testing.T) {
	vars := mapVars{"x": 5, "y": 2.5, "zero": 0}

	tests := []struct {
		expr string
		want float64
	}{
		{"42", 42},
		{"3.25", 3.25},
		{".5", 0.5},
		{"1 + 2", 3},
		{"10 - 4 - 3", 3},
		{"2 * 3 + 4", 10},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"10 % 3", 1},
		{"2 * (1 + (2 + 3))", 12},
		{"-5 + 2", -3},
		{"- -5", 5},
		{"2 * -3", -6},
		{"+7", 7},
		{"!0", 1},
		{"!5", 0},
		{"!!5", 1},
		{"x * 2", 10},
		{"x + y", 7.5},
		{"1 + 1 == 2", 1},
		{"3 > 2", 1},
		{"2 >= 3", 0},
		{"1 != 2", 1},
		{"x <= 5", 1},
		{"1 && 0", 0},
		{"1 && 2", 1},
		{"0 || 3", 1},
		{"0 || 0", 0},
		{"1 < 2 && 2 < 3", 1},
		{"1 || 0 && 0", 1},
		{"(1 || 0) && 0", 0},
		{"zero || x", 1},
		{"x % 2 == 1", 1},
	}

	for _, tc := range tests {
		got, err := evalExpression(tc.expr, vars, 1)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.expr, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %v, got %v", tc.expr, tc.want, got)
		}
	}
}

func TestExpressionSpecialValues(t *testing.T) {
	vars := mapVars{}

	t.Run("Division by zero", func(t *testing.T) {
		got, err := evalExpression("1 / 0", vars, 1)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !math.IsInf(got, 1) {
			t.Errorf("Expected +Inf, got %v", got)
		}

		got, _ = evalExpression("-1 / 0", vars, 1)
		if !math.IsInf(got, -1) {
			t.Errorf("Expected -Inf, got %v", got)
		}
	})

	t.Run("NaN propagates", func(t *testing.T) {
		got, err := evalExpression("0 / 0 + 1", vars, 1)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !math.IsNaN(got) {
			t.Errorf("Expected NaN, got %v", got)
		}
	})

	t.Run("NaN never compares equal", func(t *testing.T) {
		got, _ := evalExpression("0 / 0 == 0 / 0", vars, 1)
		if got != 0 {
			t.Errorf("Expected 0, got %v", got)
		}
	})

	t.Run("Infinity is truthy", func(t *testing.T) {
		got, _ := evalExpression("1 / 0 && 1", vars, 1)
		if got != 1 {
			t.Errorf("Expected 1, got %v", got)
		}
	})
}

func TestExpressionErrors(t *testing.T) {
	vars := mapVars{"x": 5}

	tests := []struct {
		expr    string
		kind    ErrorKind
		message string
	}{
		{"", ErrExpression, "Empty expression"},
		{"   ", ErrExpression, "Empty expression"},
		{"1 +", ErrExpression, "Unexpected end of expression"},
		{"!", ErrExpression, "Unexpected end of expression"},
		{"1 &&", ErrExpression, "Unexpected end of expression"},
		{"(1 + 2", ErrExpression, "Unmatched parenthesis"},
		{"1 2", ErrExpression, "Unexpected token '2'"},
		{"1 < 2 < 3", ErrExpression, "Unexpected token '<'"},
		{"1 == 1 == 1", ErrExpression, "Unexpected token '=='"},
		{"x @ 2", ErrExpression, "Unexpected token '@'"},
		{")", ErrExpression, "Unexpected token ')'"},
		{"nope", ErrUndefinedVariable, "undefined variable 'nope'"},
		{"1.2.3", ErrUndefinedVariable, "invalid number '1.2.3'"},
		{"x + nope", ErrUndefinedVariable, "undefined variable 'nope'"},
	}

	for _, tc := range tests {
		_, err := evalExpression(tc.expr, vars, 7)
		if err == nil {
			t.Errorf("%q: expected an error", tc.expr)
			continue
		}
		if err.Kind != tc.kind {
			t.Errorf("%q: expected kind %s, got %s", tc.expr, tc.kind, err.Kind)
		}
		if !strings.Contains(err.Message, tc.message) {
			t.Errorf("%q: expected message %q, got %q", tc.expr, tc.message, err.Message)
		}
		if err.Line != 7 {
			t.Errorf("%q: expected line 7, got %d", tc.expr, err.Line)
		}
	}
}

func TestExpressionEvaluatesBothLogicalSides(t *testing.T) {
	// Logical operators do not short-circuit: an undefined variable on
	// the right side is an error even when the left side decides.
	vars := mapVars{}

	_, err := evalExpression("1 || nope", vars, 1)
	if err == nil || err.Kind != ErrUndefinedVariable {
		t.Errorf("Expected undefined variable error, got %v", err)
	}

	_, err = evalExpression("0 && nope", vars, 1)
	if err == nil || err.Kind != ErrUndefinedVariable {
		t.Errorf("Expected undefined variable error, got %v", err)
	}
}

func TestTokenizeExpr(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"1+2", []string{"1", "+", "2"}},
		{"a>=b", []string{"a", ">=", "b"}},
		{"x&&y||z", []string{"x", "&&", "y", "||", "z"}},
		{"n_1 * 2.5", []string{"n_1", "*", "2.5"}},
		{"!(a==b)", []string{"!", "(", "a", "==", "b", ")"}},
		{"", nil},
	}

	for _, tc := range tests {
		got := tokenizeExpr(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("%q: expected %v, got %v", tc.in, tc.want, got)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("%q: token %d: expected %q, got %q", tc.in, i, tc.want[i], got[i])
			}
		}
	}
}
