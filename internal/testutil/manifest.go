package testutil

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	scerrors "scancmp/internal/errors"
	"scancmp/internal/slogutil"
)

// Case kinds of a fixture manifest.
const (
	KindJSONScan      = "json-scan"
	KindJSONLinesScan = "jsonlines-scan"
	KindJSON          = "json"
)

// Manifest declares a suite of fixture comparisons.
type Manifest struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Cases is the list of declared comparisons
	Cases []Case `toml:"case"`
}

// Case is one comparison of a manifest. Unset options inherit from the
// Checker running the case.
type Case struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	Expected string `toml:"expected"`
	Result   string `toml:"result"`

	RemoveFileDate *bool `toml:"remove_file_date,omitempty"`
	CheckHeaders   *bool `toml:"check_headers,omitempty"`
	RemoveUUID     *bool `toml:"remove_uuid,omitempty"`
}

// CaseResult is the outcome of running one case. Err is nil on success.
type CaseResult struct {
	Case Case
	Err  error
}

// LoadManifest parses a TOML manifest. Relative expected and result paths
// are resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scerrors.New(scerrors.FileUnreadable, fmt.Sprintf("cannot read manifest %s", path), err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, scerrors.New(scerrors.ManifestInvalid, fmt.Sprintf("cannot parse manifest %s", path), err)
	}
	if m.Version < 1 {
		m.Version = 1
	}

	dir := filepath.Dir(path)
	seen := make(map[string]bool, len(m.Cases))
	for i := range m.Cases {
		tc := &m.Cases[i]
		if err := tc.validate(); err != nil {
			return nil, scerrors.New(scerrors.ManifestInvalid, fmt.Sprintf("%s: case %d", path, i+1), err)
		}
		if seen[tc.Name] {
			return nil, scerrors.New(scerrors.ManifestInvalid, fmt.Sprintf("%s: duplicate case name %q", path, tc.Name), nil)
		}
		seen[tc.Name] = true

		if !filepath.IsAbs(tc.Expected) {
			tc.Expected = filepath.Join(dir, tc.Expected)
		}
		if !filepath.IsAbs(tc.Result) {
			tc.Result = filepath.Join(dir, tc.Result)
		}
	}

	return &m, nil
}

func (tc *Case) validate() error {
	if tc.Name == "" {
		return fmt.Errorf("missing required 'name' field")
	}
	switch tc.Kind {
	case KindJSONScan, KindJSONLinesScan, KindJSON:
	case "":
		tc.Kind = KindJSONScan
	default:
		return fmt.Errorf("case %q: unknown kind %q", tc.Name, tc.Kind)
	}
	if tc.Expected == "" || tc.Result == "" {
		return fmt.Errorf("case %q: 'expected' and 'result' are required", tc.Name)
	}
	return nil
}

// RunManifest runs every case of m, in order, and reports each outcome.
func (c *Checker) RunManifest(m *Manifest) []CaseResult {
	results := make([]CaseResult, 0, len(m.Cases))
	for _, tc := range m.Cases {
		err := c.RunCase(tc)
		if err != nil {
			c.log().Warn("Fixture case failed", slogutil.CaseKey, tc.Name)
		} else {
			c.log().Debug("Fixture case passed", slogutil.CaseKey, tc.Name)
		}
		results = append(results, CaseResult{Case: tc, Err: err})
	}
	return results
}

// RunCase runs a single case with the case's option overrides applied.
// Records logged while it runs carry the case name.
func (c *Checker) RunCase(tc Case) error {
	cc := *c
	cc.Logger = c.log().With(slogutil.CaseKey, tc.Name)
	if tc.RemoveFileDate != nil {
		cc.Streamline.RemoveFileDate = *tc.RemoveFileDate
	}
	if tc.CheckHeaders != nil {
		cc.CheckHeaders = *tc.CheckHeaders
	}
	if tc.RemoveUUID != nil {
		cc.RemoveUUID = *tc.RemoveUUID
	}

	switch tc.Kind {
	case KindJSONScan, "":
		return cc.CheckJSONScan(tc.Expected, tc.Result)
	case KindJSONLinesScan:
		return cc.CheckJSONLinesScan(tc.Expected, tc.Result)
	case KindJSON:
		return cc.LoadBothAndCheckJSON(tc.Expected, tc.Result)
	default:
		return scerrors.New(scerrors.ManifestInvalid, fmt.Sprintf("case %q: unknown kind %q", tc.Name, tc.Kind), nil)
	}
}

// Failed counts the failed results.
func Failed(results []CaseResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
