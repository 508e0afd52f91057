package scanresult

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	scerrors "scancmp/internal/errors"
)

// LoadJSON reads the single-document scan result at path, streamlines it
// and sorts its files by path.
func LoadJSON(path string, opts Options) (Document, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseJSON(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseJSON decodes a single-document scan result, streamlines it and sorts
// its files by path.
func ParseJSON(data []byte, opts Options) (Document, error) {
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	return Cleanup(doc, opts)
}

// LoadJSONLines reads a JSON-Lines scan result at path. Every non-blank
// line is one record.
func LoadJSONLines(path string) ([]Document, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := ParseJSONLines(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ParseJSONLines decodes one JSON object per line.
func ParseJSONLines(data []byte) ([]Document, error) {
	var records []Document
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		doc, err := DecodeDocument(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, scerrors.New(scerrors.FileUnreadable, "reading JSON lines", err)
	}
	return records, nil
}

// DecodeDocument decodes data, which must hold exactly one JSON object.
func DecodeDocument(data []byte) (Document, error) {
	v, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, scerrors.New(scerrors.MalformedJSON, fmt.Sprintf("expected a JSON object, got %s", kindOf(v)), nil)
	}
	return Document(m), nil
}

// DecodeValue decodes data, which must hold exactly one JSON value.
// Numbers are kept as json.Number. data must be valid UTF-8.
func DecodeValue(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, scerrors.New(scerrors.MalformedJSON, "invalid JSON: not valid UTF-8", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, scerrors.New(scerrors.MalformedJSON, "invalid JSON", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, scerrors.New(scerrors.MalformedJSON, "invalid JSON: trailing data after value", err)
	}
	return v, nil
}

// LoadValue reads and decodes the JSON file at path without streamlining.
func LoadValue(path string) (any, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := DecodeValue(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Generic converts v to the generic JSON form used by Document, so that
// typed results can be compared with decoded fixtures.
func Generic(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, scerrors.New(scerrors.InternalError, "failed to marshal value", err)
	}
	return DecodeValue(data)
}

// ReadFile reads path, decompressing .gz and .zst files.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scerrors.New(scerrors.FileUnreadable, fmt.Sprintf("cannot read %s", path), err)
	}

	switch compressionOf(path) {
	case compressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, scerrors.New(scerrors.FileUnreadable, fmt.Sprintf("cannot decompress %s", path), err)
		}
		defer func() { _ = zr.Close() }()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, scerrors.New(scerrors.FileUnreadable, fmt.Sprintf("cannot decompress %s", path), err)
		}
		return out, nil
	case compressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, scerrors.New(scerrors.InternalError, "cannot create zstd decoder", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, scerrors.New(scerrors.FileUnreadable, fmt.Sprintf("cannot decompress %s", path), err)
		}
		return out, nil
	default:
		return data, nil
	}
}

type compression int

const (
	compressionNone compression = iota
	compressionGzip
	compressionZstd
)

func compressionOf(path string) compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return compressionGzip
	case strings.HasSuffix(path, ".zst"):
		return compressionZstd
	default:
		return compressionNone
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
