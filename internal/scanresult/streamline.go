package scanresult

import (
	"runtime"
	"strings"
	"unicode/utf8"

	scerrors "scancmp/internal/errors"
)

// WindowsCITimeout is the --timeout value passed to the scanner on Windows
// CI, where scans run slower than the default timeout allows.
const WindowsCITimeout = "222.2"

// ExtraTimeoutOS is the operating system that gets the extra timeout.
const ExtraTimeoutOS = "windows"

// Header keys removed by StreamlineHeaders.
var volatileHeaderKeys = []string{
	"tool_version",
	"start_timestamp",
	"end_timestamp",
	"duration",
}

// Options controls how scan results are streamlined.
type Options struct {
	// RemoveFileDate drops the "date" attribute of every file.
	RemoveFileDate bool

	// ExtraTimeoutPlatform is set when the scans under test were run with
	// the extra CI timeout, i.e. on ExtraTimeoutOS.
	ExtraTimeoutPlatform bool

	// ExtraTimeout is the timeout value to strip. Defaults to WindowsCITimeout.
	ExtraTimeout string
}

// DefaultOptions returns options for the current platform.
func DefaultOptions() Options {
	return Options{
		ExtraTimeoutPlatform: runtime.GOOS == ExtraTimeoutOS,
		ExtraTimeout:         WindowsCITimeout,
	}
}

func (o Options) timeout() string {
	if o.ExtraTimeout == "" {
		return WindowsCITimeout
	}
	return o.ExtraTimeout
}

// AddExtraTimeout returns args with "--timeout <timeout>" appended when
// onPlatform is set and args carry no --timeout yet. args is not modified.
func AddExtraTimeout(args []string, onPlatform bool, timeout string) []string {
	out := append([]string(nil), args...)
	if !onPlatform {
		return out
	}
	for _, a := range args {
		if a == "--timeout" || strings.HasPrefix(a, "--timeout=") {
			return out
		}
	}
	if timeout == "" {
		timeout = WindowsCITimeout
	}
	return append(out, "--timeout", timeout)
}

// CondenseError keeps only the first and last line of a multi-line error,
// line endings included. Errors of one line or less are returned as is.
func CondenseError(s string) string {
	lines := splitLinesKeepEnds(s)
	if len(lines) <= 1 {
		return s
	}
	return lines[0] + lines[len(lines)-1]
}

// StreamlineErrors returns a copy of errs with every error condensed.
func StreamlineErrors(errs []string) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = CondenseError(e)
	}
	return out
}

// StreamlineHeaders returns copies of headers with run-specific data removed.
func StreamlineHeaders(headers []map[string]any, opts Options) []map[string]any {
	out := make([]map[string]any, len(headers))
	for i, h := range headers {
		c := cloneMap(h)
		streamlineHeader(c, opts)
		out[i] = c
	}
	return out
}

// StreamlineFile returns a copy of a per-file mapping with its scan errors
// condensed and, if requested, its date removed.
func StreamlineFile(file map[string]any, opts Options) map[string]any {
	c := cloneMap(file)
	streamlineFile(c, opts)
	return c
}

// Cleanup returns a streamlined copy of doc with files sorted by path.
// doc must carry a "files" array.
func Cleanup(doc Document, opts Options) (Document, error) {
	if !doc.HasFiles() {
		return nil, scerrors.New(scerrors.MissingFiles, `scan result has no "files" array`, nil)
	}
	out := doc.Clone()
	streamlineDocument(out, opts)
	out.sortFilesByPath()
	return out, nil
}

// StreamlineRecords returns streamlined copies of JSON-Lines records. Files
// keep their order and records without files are accepted.
func StreamlineRecords(records []Document, opts Options) []Document {
	out := make([]Document, len(records))
	for i, r := range records {
		c := r.Clone()
		streamlineDocument(c, opts)
		out[i] = c
	}
	return out
}

func streamlineDocument(doc Document, opts Options) {
	for _, h := range doc.Headers() {
		streamlineHeader(h, opts)
	}
	for _, f := range doc.Files() {
		streamlineFile(f, opts)
	}
}

func streamlineHeader(h map[string]any, opts Options) {
	for _, k := range volatileHeaderKeys {
		delete(h, k)
	}
	if options := mappingField(h, "options"); options != nil {
		if opts.ExtraTimeoutPlatform {
			if v, ok := textOf(options["--timeout"]); ok && v == opts.timeout() {
				delete(options, "--timeout")
			}
		}
		delete(options, "--verbose")
	}
	condenseAll(h["errors"])
}

func streamlineFile(f map[string]any, opts Options) {
	condenseAll(f["scan_errors"])
	if opts.RemoveFileDate {
		delete(f, "date")
	}
}

// condenseAll condenses every string of an errors array in place.
func condenseAll(v any) {
	errs, ok := v.([]any)
	if !ok {
		return
	}
	for i, e := range errs {
		if s, ok := e.(string); ok {
			errs[i] = CondenseError(s)
		}
	}
}

// splitLinesKeepEnds splits s at line boundaries, keeping the boundary
// with each line. "\r\n" counts as one boundary.
func splitLinesKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		end := -1
		switch r {
		case '\r':
			end = i + size
			if end < len(s) && s[end] == '\n' {
				end++
			}
		case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
			end = i + size
		}
		if end < 0 {
			i += size
			continue
		}
		lines = append(lines, s[start:end])
		start, i = end, end
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
