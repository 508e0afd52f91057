// Package scanresult loads scan-result documents and rewrites the parts of
// them that change from one scanner run to the next, so that two runs over
// the same input compare equal.
package scanresult

import (
	"encoding/json"
	"sort"
)

// Top-level keys of a scan-result document.
const (
	KeyHeaders      = "headers"
	KeyFiles        = "files"
	KeyPackages     = "packages"
	KeyDependencies = "dependencies"
)

// Document is a decoded scan-result document. Values are the generic JSON
// forms produced by a json.Decoder with UseNumber: map[string]any, []any,
// string, json.Number, bool and nil. Keys this package does not know about
// are kept as is.
type Document map[string]any

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

// Without returns a copy of d without key. Values are shared with d.
func (d Document) Without(key string) Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// Sequence returns the array stored under key, or nil when the key is
// absent or holds something else.
func (d Document) Sequence(key string) []any {
	s, _ := d[key].([]any)
	return s
}

// Mappings returns the objects of the array stored under key. Non-object
// elements are skipped. The returned maps are the ones held by d.
func (d Document) Mappings(key string) []map[string]any {
	return mappings(d[key])
}

// Headers returns the header mappings, or nil when absent.
func (d Document) Headers() []map[string]any { return d.Mappings(KeyHeaders) }

// Files returns the per-file mappings, or nil when absent.
func (d Document) Files() []map[string]any { return d.Mappings(KeyFiles) }

// Packages returns the package mappings, or nil when absent.
func (d Document) Packages() []map[string]any { return d.Mappings(KeyPackages) }

// Dependencies returns the dependency mappings, or nil when absent.
func (d Document) Dependencies() []map[string]any { return d.Mappings(KeyDependencies) }

// HasFiles reports whether d carries a "files" array.
func (d Document) HasFiles() bool {
	_, ok := d[KeyFiles].([]any)
	return ok
}

// Paths returns the "path" of every file, in document order.
func (d Document) Paths() []string {
	files := d.Files()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, stringField(f, "path"))
	}
	return paths
}

// sortFilesByPath orders the "files" array in place by path. Entries
// without a path sort first; equal paths keep their order.
func (d Document) sortFilesByPath() {
	files := d.Sequence(KeyFiles)
	sort.SliceStable(files, func(i, j int) bool {
		return pathOf(files[i]) < pathOf(files[j])
	})
}

func pathOf(v any) string {
	m, _ := v.(map[string]any)
	return stringField(m, "path")
}

func mappings(v any) []map[string]any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(s))
	for _, item := range s {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// mappingField returns m[key] as an object, or nil.
func mappingField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

// stringField returns m[key] as a string, or "".
func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// textOf returns the text of a string or number value.
func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Document:
		return Document(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}
