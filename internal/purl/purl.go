// Package purl rewrites package-url identifiers so that run-specific
// qualifiers do not leak into fixture comparisons.
package purl

import (
	"fmt"

	"github.com/package-url/packageurl-go"

	scerrors "scancmp/internal/errors"
)

// FixedUUID replaces the per-run uuid qualifier of package identifiers.
const FixedUUID = "fixed-uid-done-for-testing-5642512d1758"

// UUIDQualifier is the qualifier key holding the generated identifier.
const UUIDQualifier = "uuid"

// WithFixedUUID parses s and returns it re-serialized with its uuid
// qualifier set to FixedUUID. The qualifier is added when missing.
func WithFixedUUID(s string) (string, error) {
	return WithQualifier(s, UUIDQualifier, FixedUUID)
}

// WithQualifier returns s with qualifier key set to value.
func WithQualifier(s, key, value string) (string, error) {
	p, err := packageurl.FromString(s)
	if err != nil {
		return "", scerrors.New(scerrors.InvalidPurl, fmt.Sprintf("invalid package-url %q", s), err)
	}

	qualifiers := p.Qualifiers.Map()
	qualifiers[key] = value
	p.Qualifiers = packageurl.QualifiersFromMap(qualifiers)

	return p.ToString(), nil
}

// Qualifier returns the value of qualifier key in s, if present.
func Qualifier(s, key string) (string, bool, error) {
	p, err := packageurl.FromString(s)
	if err != nil {
		return "", false, scerrors.New(scerrors.InvalidPurl, fmt.Sprintf("invalid package-url %q", s), err)
	}
	v, ok := p.Qualifiers.Map()[key]
	return v, ok, nil
}
