// Package testutil compares scan results against expected fixture files,
// or regenerates those fixtures from the results.
package testutil

import (
	"errors"
	"fmt"
	"log/slog"

	"scancmp/internal/config"
	scerrors "scancmp/internal/errors"
	"scancmp/internal/scanresult"
	"scancmp/internal/slogutil"
)

// Checker compares results with expected fixtures. The zero value compares
// without uuid normalization; use NewChecker or DefaultChecker for the
// usual settings.
type Checker struct {
	// Regen overwrites the expected fixture with the results, which are
	// then used as the expectation.
	Regen bool

	// RemoveUUID rewrites package identifiers to a fixed uuid qualifier.
	RemoveUUID bool

	// CheckHeaders keeps scan headers in the comparison.
	CheckHeaders bool

	// Streamline controls header and file streamlining.
	Streamline scanresult.Options

	Logger *slog.Logger
}

// NewChecker creates a checker from configuration.
func NewChecker(cfg *config.Config, logger *slog.Logger) *Checker {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Checker{
		Regen:        cfg.Regen,
		RemoveUUID:   cfg.RemoveUUID,
		CheckHeaders: cfg.CheckHeaders,
		Streamline:   cfg.StreamlineOptions(),
		Logger:       logger,
	}
}

// DefaultChecker returns a checker with default settings, regenerating
// fixtures when config.RegenEnvVar is set.
func DefaultChecker() *Checker {
	cfg := config.DefaultConfig()
	if regen, ok := config.RegenFromEnv(); ok {
		cfg.Regen = regen
	}
	return NewChecker(cfg, nil)
}

func (c *Checker) log() *slog.Logger {
	if c.Logger == nil {
		return slogutil.NewDiscardLogger()
	}
	return c.Logger
}

// CheckJSONScan compares the single-document scan at resultPath with the
// one at expectedPath. Both are streamlined, sorted by path, optionally
// uuid-normalized and stripped of headers.
func (c *Checker) CheckJSONScan(expectedPath, resultPath string) error {
	results, err := c.loadScan(resultPath)
	if err != nil {
		return err
	}

	var expected scanresult.Document
	if c.Regen {
		if err := c.regenerate(expectedPath, results); err != nil {
			return err
		}
		expected = results
	} else {
		expected, err = c.loadScan(expectedPath)
		if err != nil {
			return err
		}
	}

	return c.compare(expectedPath, expected, results)
}

func (c *Checker) loadScan(path string) (scanresult.Document, error) {
	doc, err := scanresult.LoadJSON(path, c.Streamline)
	if err != nil {
		return nil, err
	}
	if c.RemoveUUID {
		doc, err = scanresult.WithFixedUUIDs(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if !c.CheckHeaders {
		doc = doc.Without(scanresult.KeyHeaders)
	}
	c.log().Debug("Loaded scan", slogutil.PathKey, path, "files", len(doc.Files()))
	return doc, nil
}

// CheckJSONLinesScan compares the JSON-Lines scan at resultPath with the
// JSON array of records at expectedPath.
func (c *Checker) CheckJSONLinesScan(expectedPath, resultPath string) error {
	results, err := scanresult.LoadJSONLines(resultPath)
	if err != nil {
		return err
	}
	results, err = c.normalizeRecords(resultPath, results)
	if err != nil {
		return err
	}

	if c.Regen {
		if err := c.regenerate(expectedPath, results); err != nil {
			return err
		}
	}

	expected, err := loadRecordArray(expectedPath)
	if err != nil {
		return err
	}
	expected, err = c.normalizeRecords(expectedPath, expected)
	if err != nil {
		return err
	}

	if !c.CheckHeaders {
		results = withoutHeaders(results)
		expected = withoutHeaders(expected)
	}

	return c.compare(expectedPath, expected, results)
}

func (c *Checker) normalizeRecords(path string, records []scanresult.Document) ([]scanresult.Document, error) {
	if c.RemoveUUID {
		fixed, err := scanresult.RecordsWithFixedUUIDs(records)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		records = fixed
	}
	c.log().Debug("Loaded scan records", slogutil.PathKey, path, "records", len(records))
	return scanresult.StreamlineRecords(records, c.Streamline), nil
}

// NormalizeJSONScan loads the scan at path and normalizes it as
// CheckJSONScan normalizes both of its sides.
func (c *Checker) NormalizeJSONScan(path string) (scanresult.Document, error) {
	return c.loadScan(path)
}

// NormalizeJSONLinesScan loads the JSON-Lines scan at path and normalizes
// its records as CheckJSONLinesScan does.
func (c *Checker) NormalizeJSONLinesScan(path string) ([]scanresult.Document, error) {
	records, err := scanresult.LoadJSONLines(path)
	if err != nil {
		return nil, err
	}
	records, err = c.normalizeRecords(path, records)
	if err != nil {
		return nil, err
	}
	if !c.CheckHeaders {
		records = withoutHeaders(records)
	}
	return records, nil
}

func withoutHeaders(records []scanresult.Document) []scanresult.Document {
	out := make([]scanresult.Document, len(records))
	for i, r := range records {
		out[i] = r.Without(scanresult.KeyHeaders)
	}
	return out
}

// loadRecordArray reads a JSON array of objects.
func loadRecordArray(path string) ([]scanresult.Document, error) {
	v, err := scanresult.LoadValue(path)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, scerrors.New(scerrors.MalformedJSON, fmt.Sprintf("%s: expected a JSON array of scan records", path), nil)
	}
	records := make([]scanresult.Document, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, scerrors.New(scerrors.MalformedJSON, fmt.Sprintf("%s: record %d is not a JSON object", path, i+1), nil)
		}
		records[i] = scanresult.Document(m)
	}
	return records, nil
}

// CheckJSON compares in-memory results with the JSON file at expectedPath.
// results may be any value that marshals to JSON.
func (c *Checker) CheckJSON(expectedPath string, results any) error {
	generic, err := scanresult.Generic(results)
	if err != nil {
		return err
	}
	return c.checkValue(expectedPath, generic)
}

// LoadBothAndCheckJSON compares the JSON file at resultPath with the one at
// expectedPath, without any streamlining.
func (c *Checker) LoadBothAndCheckJSON(expectedPath, resultPath string) error {
	results, err := scanresult.LoadValue(resultPath)
	if err != nil {
		return err
	}
	return c.checkValue(expectedPath, results)
}

func (c *Checker) checkValue(expectedPath string, results any) error {
	if c.Regen {
		if err := c.regenerate(expectedPath, results); err != nil {
			return err
		}
	}
	expected, err := scanresult.LoadValue(expectedPath)
	if err != nil {
		return err
	}
	return c.compare(expectedPath, expected, results)
}

func (c *Checker) regenerate(expectedPath string, results any) error {
	if err := scanresult.WriteFile(expectedPath, results); err != nil {
		return err
	}
	c.log().Info("Regenerated fixture", slogutil.PathKey, expectedPath)
	return nil
}

func (c *Checker) compare(expectedPath string, expected, results any) error {
	if scanresult.Equal(expected, results) {
		return nil
	}

	m, err := NewMismatch(expectedPath, expected, results)
	if err != nil {
		return err
	}
	c.log().Debug("Fixture mismatch", slogutil.PathKey, expectedPath)
	return scerrors.New(scerrors.FixtureMismatch, fmt.Sprintf("results differ from %s", expectedPath), nil).WithDetails(m)
}

// MismatchOf returns the mismatch carried by err, if any.
func MismatchOf(err error) (*Mismatch, bool) {
	var e *scerrors.Error
	if !errors.As(err, &e) || e.Code != scerrors.FixtureMismatch {
		return nil, false
	}
	m, ok := e.Details.(*Mismatch)
	return m, ok
}
