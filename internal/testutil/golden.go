package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"scancmp/internal/config"
	scerrors "scancmp/internal/errors"
	"scancmp/internal/scanresult"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 3

// Mismatch holds both sides of a failed comparison as YAML text, which
// diffs line by line far better than a single JSON blob.
type Mismatch struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
}

// NewMismatch renders expected and got as YAML.
func NewMismatch(path string, expected, got any) (*Mismatch, error) {
	exp, err := RenderYAML(expected)
	if err != nil {
		return nil, err
	}
	res, err := RenderYAML(got)
	if err != nil {
		return nil, err
	}
	return &Mismatch{Path: path, Expected: exp, Got: res}, nil
}

// Diff returns a unified-style diff from Expected to Got.
func (m *Mismatch) Diff() string {
	return unifiedDiff(m.Expected, m.Got, m.Path)
}

// String returns the diff followed by how to accept the new results.
func (m *Mismatch) String() string {
	return fmt.Sprintf("%s\nRun with %s=1 to regenerate %s", m.Diff(), config.RegenEnvVar, m.Path)
}

// RenderYAML renders a generic JSON value as YAML with sorted keys.
func RenderYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlValue(v)); err != nil {
		return "", scerrors.New(scerrors.InternalError, "failed to render YAML", err)
	}
	if err := enc.Close(); err != nil {
		return "", scerrors.New(scerrors.InternalError, "failed to render YAML", err)
	}
	return buf.String(), nil
}

// yamlValue converts json.Number to YAML numbers and unwraps documents.
func yamlValue(v any) any {
	switch t := v.(type) {
	case scanresult.Document:
		return yamlValue(map[string]any(t))
	case []scanresult.Document:
		out := make([]any, len(t))
		for i, d := range t {
			out[i] = yamlValue(d)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = yamlValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = yamlValue(item)
		}
		return out
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// unifiedDiff returns the hunks that turn expected into got, or "" when
// they are the same.
func unifiedDiff(expected, got, path string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        diffLines(expected),
		B:        diffLines(got),
		FromFile: path + " (expected)",
		ToFile:   path + " (got)",
		Context:  diffContext,
	})
	if err != nil {
		return fmt.Sprintf("diff unavailable: %v\n", err)
	}
	return diff
}

// diffLines splits text into newline-terminated lines.
func diffLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i := range lines {
		lines[i] += "\n"
	}
	return lines
}

// AssertJSONScan fails t when the scan at resultPath does not match
// expectedPath. See Checker.CheckJSONScan.
func AssertJSONScan(t testing.TB, c *Checker, expectedPath, resultPath string) {
	t.Helper()
	failOnError(t, c.CheckJSONScan(expectedPath, resultPath))
}

// AssertJSONLinesScan fails t when the JSON-Lines scan at resultPath does
// not match expectedPath. See Checker.CheckJSONLinesScan.
func AssertJSONLinesScan(t testing.TB, c *Checker, expectedPath, resultPath string) {
	t.Helper()
	failOnError(t, c.CheckJSONLinesScan(expectedPath, resultPath))
}

// AssertJSON fails t when results do not match expectedPath.
func AssertJSON(t testing.TB, c *Checker, expectedPath string, results any) {
	t.Helper()
	failOnError(t, c.CheckJSON(expectedPath, results))
}

// AssertLoadBothJSON fails t when the JSON at resultPath does not match
// expectedPath.
func AssertLoadBothJSON(t testing.TB, c *Checker, expectedPath, resultPath string) {
	t.Helper()
	failOnError(t, c.LoadBothAndCheckJSON(expectedPath, resultPath))
}

func failOnError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		return
	}
	if m, ok := MismatchOf(err); ok {
		t.Fatalf("Fixture mismatch for %s:\n%s", m.Path, m)
		return
	}
	t.Fatalf("Fixture check failed: %v", err)
}
