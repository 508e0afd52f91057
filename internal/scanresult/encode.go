package scanresult

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	scerrors "scancmp/internal/errors"
)

// Encode returns v as pretty-printed JSON: 2-space indent, "," and ": "
// separators, HTML characters left unescaped, trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, scerrors.New(scerrors.InternalError, "failed to encode JSON", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes v to path as pretty-printed JSON, compressed when path
// ends in .gz or .zst. Parent directories are created.
func WriteFile(path string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}

	switch compressionOf(path) {
	case compressionGzip:
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return scerrors.New(scerrors.WriteFailed, fmt.Sprintf("cannot compress %s", path), err)
		}
		if err := zw.Close(); err != nil {
			return scerrors.New(scerrors.WriteFailed, fmt.Sprintf("cannot compress %s", path), err)
		}
		data = buf.Bytes()
	case compressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return scerrors.New(scerrors.InternalError, "cannot create zstd encoder", err)
		}
		data = enc.EncodeAll(data, nil)
		_ = enc.Close()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return scerrors.New(scerrors.WriteFailed, fmt.Sprintf("cannot create directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return scerrors.New(scerrors.WriteFailed, fmt.Sprintf("cannot write %s", path), err)
	}
	return nil
}
