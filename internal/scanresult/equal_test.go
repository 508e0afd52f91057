package scanresult

import (
	"encoding/json"
	"testing"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same numbers", json.Number("1"), json.Number("1"), true},
		{"int and float text", json.Number("1"), json.Number("1.0"), true},
		{"different numbers", json.Number("1"), json.Number("2"), false},
		{"large ints differ", json.Number("9007199254740993"), json.Number("9007199254740992"), false},
		{"large ints equal", json.Number("123456789012345678901234567890"), json.Number("123456789012345678901234567890"), true},
		{"negative zero int", json.Number("-0"), json.Number("0"), true},
		{"exponent and int", json.Number("1e2"), json.Number("100"), true},
		{"number and string", json.Number("1"), "1", false},
		{"nested maps", map[string]any{"a": []any{"x", nil, true}}, map[string]any{"a": []any{"x", nil, true}}, true},
		{"missing key", map[string]any{"a": "x"}, map[string]any{"b": "x"}, false},
		{"extra key", map[string]any{"a": "x"}, map[string]any{"a": "x", "b": "y"}, false},
		{"order matters in arrays", []any{"a", "b"}, []any{"b", "a"}, false},
		{"document vs map", Document{"files": []any{}}, map[string]any{"files": []any{}}, true},
		{"records vs array", []Document{{"a": "b"}}, []any{map[string]any{"a": "b"}}, true},
		{"null vs missing", map[string]any{"a": nil}, map[string]any{}, false},
		{"bool", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Equal(tt.b, tt.a); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v (reversed)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}
