package scanresult

import (
	"reflect"
	"testing"
)

func TestCondenseError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single line", "ERROR: boom", "ERROR: boom"},
		{"single line with newline", "ERROR: boom\n", "ERROR: boom\n"},
		{"five lines", "Traceback\n  a\n  b\n  c\nValueError: x", "Traceback\nValueError: x"},
		{"trailing newline", "l1\nl2\nl3\n", "l1\nl3\n"},
		{"crlf", "l1\r\nl2\r\nl3\r\n", "l1\r\nl3\r\n"},
		{"bare cr", "l1\rl2\rl3", "l1\rl3"},
		{"two lines", "first\nlast", "first\nlast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CondenseError(tt.in); got != tt.want {
				t.Errorf("CondenseError(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCondenseError_Idempotent(t *testing.T) {
	in := "Traceback\n  a\n  b\nValueError: x\n"
	once := CondenseError(in)
	if twice := CondenseError(once); twice != once {
		t.Errorf("second pass changed %q to %q", once, twice)
	}
}

func TestStreamlineErrors(t *testing.T) {
	in := []string{"one", "a\nb\nc\nd\ne"}
	got := StreamlineErrors(in)

	want := []string{"one", "a\ne"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StreamlineErrors = %q, want %q", got, want)
	}
	if in[1] != "a\nb\nc\nd\ne" {
		t.Error("StreamlineErrors should not modify its input")
	}
}

func TestStreamlineHeaders_Timeout(t *testing.T) {
	header := func() map[string]any {
		return map[string]any{
			"tool_version":    "32.0.0",
			"start_timestamp": "2024-01-01T000000.000000",
			"end_timestamp":   "2024-01-01T000001.000000",
			"duration":        "1.2",
			"options": map[string]any{
				"--timeout": "222.2",
				"--verbose": true,
				"--json-pp": "-",
			},
			"errors": []any{},
		}
	}

	tests := []struct {
		name        string
		onPlatform  bool
		wantTimeout bool
	}{
		{"extra timeout platform", true, false},
		{"other platform", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := header()
			got := StreamlineHeaders([]map[string]any{in}, Options{ExtraTimeoutPlatform: tt.onPlatform})[0]

			for _, k := range []string{"tool_version", "start_timestamp", "end_timestamp", "duration"} {
				if _, ok := got[k]; ok {
					t.Errorf("header still has %q", k)
				}
			}

			options := got["options"].(map[string]any)
			if _, ok := options["--verbose"]; ok {
				t.Error("--verbose should be removed")
			}
			if _, ok := options["--timeout"]; ok != tt.wantTimeout {
				t.Errorf("--timeout present = %v, want %v", ok, tt.wantTimeout)
			}
			if options["--json-pp"] != "-" {
				t.Error("unrelated options should be kept")
			}

			if _, ok := in["tool_version"]; !ok {
				t.Error("StreamlineHeaders should not modify its input")
			}
		})
	}
}

func TestStreamlineHeaders_OtherTimeoutKept(t *testing.T) {
	h := map[string]any{
		"options": map[string]any{"--timeout": "120"},
		"errors":  []any{},
	}
	got := StreamlineHeaders([]map[string]any{h}, Options{ExtraTimeoutPlatform: true})[0]

	if got["options"].(map[string]any)["--timeout"] != "120" {
		t.Error("a timeout other than the CI sentinel should be kept")
	}
}

func TestStreamlineHeaders_CondensesErrors(t *testing.T) {
	h := map[string]any{
		"errors": []any{"Failed to scan a.txt\n  trace\nError: x\n", "short"},
	}
	got := StreamlineHeaders([]map[string]any{h}, Options{})[0]

	want := []any{"Failed to scan a.txt\nError: x\n", "short"}
	if !reflect.DeepEqual(got["errors"], want) {
		t.Errorf("errors = %q, want %q", got["errors"], want)
	}
}

func TestStreamlineFile(t *testing.T) {
	f := map[string]any{
		"path":        "a.txt",
		"date":        "2024-01-01",
		"scan_errors": []any{"x\ny\nz"},
	}

	kept := StreamlineFile(f, Options{})
	if kept["date"] != "2024-01-01" {
		t.Error("date should be kept unless RemoveFileDate is set")
	}
	if !reflect.DeepEqual(kept["scan_errors"], []any{"x\nz"}) {
		t.Errorf("scan_errors = %q", kept["scan_errors"])
	}

	removed := StreamlineFile(f, Options{RemoveFileDate: true})
	if _, ok := removed["date"]; ok {
		t.Error("date should be removed with RemoveFileDate")
	}
	if _, ok := f["date"]; !ok {
		t.Error("StreamlineFile should not modify its input")
	}
}

func TestCleanup_SortsFiles(t *testing.T) {
	doc := Document{
		"files": []any{
			map[string]any{"path": "b.txt"},
			map[string]any{"path": "a.txt"},
		},
	}

	got, err := Cleanup(doc, Options{})
	if err != nil {
		t.Fatalf("Cleanup error: %v", err)
	}

	if paths := got.Paths(); !reflect.DeepEqual(paths, []string{"a.txt", "b.txt"}) {
		t.Errorf("paths = %v, want [a.txt b.txt]", paths)
	}
	if paths := doc.Paths(); !reflect.DeepEqual(paths, []string{"b.txt", "a.txt"}) {
		t.Errorf("input reordered to %v", paths)
	}
}

func TestCleanup_MissingFiles(t *testing.T) {
	if _, err := Cleanup(Document{"headers": []any{}}, Options{}); err == nil {
		t.Fatal("expected error for document without files")
	}
}

func TestCleanup_Idempotent(t *testing.T) {
	doc := Document{
		"headers": []any{map[string]any{
			"tool_version": "1.0",
			"options":      map[string]any{"--timeout": "222.2", "--verbose": true},
			"errors":       []any{"a\nb\nc"},
		}},
		"files": []any{
			map[string]any{"path": "z", "date": "d", "scan_errors": []any{"l1\nl2\nl3\n"}},
			map[string]any{"path": "a"},
		},
	}
	opts := Options{RemoveFileDate: true, ExtraTimeoutPlatform: true}

	once, err := Cleanup(doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Cleanup(once, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed document:\nonce:  %v\ntwice: %v", once, twice)
	}
}

func TestStreamlineRecords_KeepsOrder(t *testing.T) {
	records := []Document{
		{"headers": []any{map[string]any{"tool_version": "1", "errors": []any{}}}},
		{"files": []any{
			map[string]any{"path": "b", "date": "x"},
			map[string]any{"path": "a", "date": "y"},
		}},
	}

	got := StreamlineRecords(records, Options{RemoveFileDate: true})

	if _, ok := got[0].Headers()[0]["tool_version"]; ok {
		t.Error("tool_version should be removed from record headers")
	}
	if paths := got[1].Paths(); !reflect.DeepEqual(paths, []string{"b", "a"}) {
		t.Errorf("JSON-Lines files should keep their order, got %v", paths)
	}
	if _, ok := got[1].Files()[0]["date"]; ok {
		t.Error("date should be removed")
	}
	if _, ok := records[0].Headers()[0]["tool_version"]; !ok {
		t.Error("StreamlineRecords should not modify its input")
	}
}

func TestAddExtraTimeout(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		onPlatform bool
		want       []string
	}{
		{"adds on platform", []string{"--json", "out.json"}, true, []string{"--json", "out.json", "--timeout", WindowsCITimeout}},
		{"other platform", []string{"--json"}, false, []string{"--json"}},
		{"already set", []string{"--timeout", "10"}, true, []string{"--timeout", "10"}},
		{"already set inline", []string{"--timeout=10"}, true, []string{"--timeout=10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddExtraTimeout(tt.args, tt.onPlatform, "")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AddExtraTimeout = %v, want %v", got, tt.want)
			}
		})
	}
}
