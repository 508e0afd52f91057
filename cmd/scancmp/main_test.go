package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scancmp/internal/config"
	scerrors "scancmp/internal/errors"
	"scancmp/internal/purl"
	"scancmp/internal/scanresult"
)

var basicFixture = filepath.Join("..", "..", "testdata", "scans", "basic")

// execute runs the CLI with args and an empty config directory.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv(config.RegenEnvVar, "")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", t.TempDir()}, args...))

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheck_JSONScan(t *testing.T) {
	expected := filepath.Join(basicFixture, "expected", "result.json")
	result := filepath.Join(basicFixture, "result.json")

	out, _, err := execute(t, "check", "json-scan", "--remove-file-date", expected, result)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.HasPrefix(out, "ok  ") {
		t.Errorf("stdout = %q", out)
	}

	_, _, err = execute(t, "check", "json-scan", expected, result)
	if !scerrors.HasCode(err, scerrors.FixtureMismatch) {
		t.Fatalf("file dates should make the check fail, got %v", err)
	}
	if msg := formatError(err); !strings.Contains(msg, config.RegenEnvVar) {
		t.Errorf("mismatch output should explain regeneration:\n%s", msg)
	}
}

func TestCheck_JSONLinesScan(t *testing.T) {
	_, _, err := execute(t, "check", "jsonlines-scan", "--remove-file-date", "--check-headers",
		filepath.Join(basicFixture, "expected", "result.jsonl.json"),
		filepath.Join(basicFixture, "result.jsonl"))
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
}

func TestCheck_KeepUUID(t *testing.T) {
	_, _, err := execute(t, "check", "json-scan", "--remove-file-date", "--keep-uuid",
		filepath.Join(basicFixture, "expected", "result.json"),
		filepath.Join(basicFixture, "result.json"))
	if !scerrors.HasCode(err, scerrors.FixtureMismatch) {
		t.Errorf("raw uuids should differ, got %v", err)
	}
}

func TestCheck_Regen(t *testing.T) {
	expected := filepath.Join(t.TempDir(), "expected.json")
	result := filepath.Join(basicFixture, "result.json")

	out, _, err := execute(t, "check", "json-scan", "--regen", expected, result)
	if err != nil {
		t.Fatalf("check --regen error: %v", err)
	}
	if !strings.HasPrefix(out, "regenerated ") {
		t.Errorf("stdout = %q", out)
	}
	if _, err := os.Stat(expected); err != nil {
		t.Fatalf("fixture not written: %v", err)
	}

	if _, _, err := execute(t, "check", "json-scan", expected, result); err != nil {
		t.Errorf("check against the regenerated fixture failed: %v", err)
	}
}

func TestCheck_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing args", []string{"check", "json-scan"}},
		{"unknown kind", []string{"check", "xml", "a.json", "b.json"}},
		{"missing result", []string{"check", "json", "a.json", filepath.Join(basicFixture, "missing.json")}},
		{"bad log level", []string{"check", "json", "--log-level", "loud", "a.json", "b.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCheck_ConfigFile(t *testing.T) {
	t.Setenv(config.RegenEnvVar, "")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scancmp.yaml"), []byte("removeFileDate: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	expected := filepath.Join(basicFixture, "expected", "result.json")
	result := filepath.Join(basicFixture, "result.json")

	run := func(extra ...string) error {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		args := append([]string{"check", "json-scan", "--config-dir", dir}, extra...)
		cmd.SetArgs(append(args, expected, result))
		return cmd.Execute()
	}

	if err := run(); err != nil {
		t.Errorf("config file should remove file dates: %v", err)
	}
	if err := run("--remove-file-date=false"); !scerrors.HasCode(err, scerrors.FixtureMismatch) {
		t.Errorf("flag should override the config file, got %v", err)
	}
}

func TestCheck_Logging(t *testing.T) {
	_, stderr, err := execute(t, "check", "json-scan", "-vv", "--remove-file-date",
		filepath.Join(basicFixture, "expected", "result.json"),
		filepath.Join(basicFixture, "result.json"))
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.Contains(stderr, "[debug] Loaded scan") {
		t.Errorf("-vv should log loads at debug level, stderr:\n%s", stderr)
	}

	_, stderr, _ = execute(t, "check", "json-scan", "-q", "--log-level", "debug", "--remove-file-date",
		filepath.Join(basicFixture, "expected", "result.json"),
		filepath.Join(basicFixture, "result.json"))
	if stderr != "" {
		t.Errorf("-q should silence logging, stderr:\n%s", stderr)
	}
}

func TestNormalize(t *testing.T) {
	out, _, err := execute(t, "normalize", "--remove-file-date", filepath.Join(basicFixture, "result.json"))
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}

	doc, err := scanresult.DecodeDocument([]byte(out))
	if err != nil {
		t.Fatalf("output is not a JSON object: %v", err)
	}
	if _, ok := doc[scanresult.KeyHeaders]; ok {
		t.Error("headers should be dropped")
	}
	paths := doc.Paths()
	if len(paths) != 3 || paths[0] != "samples" {
		t.Errorf("Paths() = %v, want sorted", paths)
	}
	if uid := doc.Packages()[0]["package_uid"]; !strings.HasSuffix(uid.(string), purl.FixedUUID) {
		t.Errorf("package_uid = %v", uid)
	}
}

func TestNormalize_JSONLinesToFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "records.json.gz")

	out, _, err := execute(t, "normalize", "--jsonlines", "-o", output, filepath.Join(basicFixture, "result.jsonl"))
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	if out != "" {
		t.Errorf("nothing should be printed with -o, got %q", out)
	}

	v, err := scanresult.LoadValue(output)
	if err != nil {
		t.Fatalf("LoadValue error: %v", err)
	}
	if records, ok := v.([]any); !ok || len(records) != 4 {
		t.Errorf("output should be an array of 4 records, got %v", v)
	}
}

func TestSuite(t *testing.T) {
	out, _, err := execute(t, "suite", filepath.Join(basicFixture, "fixtures.toml"))
	if err != nil {
		t.Fatalf("suite error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok    json lines scan") || !strings.Contains(out, "2 fixture cases passed") {
		t.Errorf("stdout = %q", out)
	}
}

func TestSuite_Failure(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "fixtures.toml")
	expected, _ := filepath.Abs(filepath.Join(basicFixture, "expected", "result.json"))
	result, _ := filepath.Abs(filepath.Join(basicFixture, "result.json"))
	content := "[[case]]\nname = 'dates kept'\nexpected = '" + expected + "'\nresult = '" + result + "'\n"
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "suite", manifest)
	if err == nil || !strings.Contains(err.Error(), "1 of 1") {
		t.Errorf("expected a failure summary, got %v", err)
	}
	if !strings.Contains(out, "FAIL  dates kept") {
		t.Errorf("stdout = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version error: %v", err)
	}
	if !strings.HasPrefix(out, "scancmp version ") {
		t.Errorf("--version = %q", out)
	}

	out, _, err = execute(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.Contains(out, "Commit: ") {
		t.Errorf("version = %q", out)
	}
}

func TestFormatError(t *testing.T) {
	if got := formatError(errors.New("boom")); got != "Error: boom" {
		t.Errorf("formatError(plain) = %q", got)
	}

	err := scerrors.New(scerrors.ManifestInvalid, "bad manifest", nil)
	got := formatError(err)
	if !strings.Contains(got, "[MANIFEST_INVALID] bad manifest") || !strings.Contains(got, "hint: ") {
		t.Errorf("formatError(coded) = %q", got)
	}
}

func TestStyles_PlainForNonTerminal(t *testing.T) {
	text := "--- a (expected)\n+++ a (got)\n@@ -1,1 +1,1 @@\n-x: 1\n+x: 2\n  hint: regenerate (X=1)\n"
	if got := newStyles(&bytes.Buffer{}).colorize(text); got != text {
		t.Errorf("colorize() = %q, want the text unchanged", got)
	}
}
