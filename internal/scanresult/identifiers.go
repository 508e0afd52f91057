package scanresult

import (
	"fmt"

	scerrors "scancmp/internal/errors"
	"scancmp/internal/purl"
)

// WithFixedUUIDs returns a copy of doc where the package-url of every
// package, dependency and file "for_packages" reference carries
// purl.FixedUUID as its uuid qualifier. doc is not modified.
func WithFixedUUIDs(doc Document) (Document, error) {
	out := doc.Clone()
	if err := fixUUIDs(out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordsWithFixedUUIDs applies WithFixedUUIDs to every record.
func RecordsWithFixedUUIDs(records []Document) ([]Document, error) {
	out := make([]Document, len(records))
	for i, r := range records {
		fixed, err := WithFixedUUIDs(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		out[i] = fixed
	}
	return out, nil
}

func fixUUIDs(doc Document) error {
	for _, pkg := range doc.Packages() {
		if err := fixUUIDField(pkg, "package_uid"); err != nil {
			return err
		}
	}

	for _, dep := range doc.Dependencies() {
		if err := fixUUIDField(dep, "dependency_uid"); err != nil {
			return err
		}
		if err := fixUUIDField(dep, "for_package_uid"); err != nil {
			return err
		}
	}

	for _, file := range doc.Files() {
		refs, ok := file["for_packages"].([]any)
		if !ok || len(refs) == 0 {
			continue
		}
		fixed := make([]any, len(refs))
		for i, ref := range refs {
			s, ok := ref.(string)
			if !ok {
				return scerrors.New(scerrors.InvalidPurl,
					fmt.Sprintf("for_packages of %q holds a %s, want a package-url string", stringField(file, "path"), kindOf(ref)), nil)
			}
			p, err := purl.WithFixedUUID(s)
			if err != nil {
				return err
			}
			fixed[i] = p
		}
		file["for_packages"] = fixed
	}

	return nil
}

// fixUUIDField rewrites m[key] when it holds a non-empty string.
func fixUUIDField(m map[string]any, key string) error {
	uid := stringField(m, key)
	if uid == "" {
		return nil
	}
	p, err := purl.WithFixedUUID(uid)
	if err != nil {
		return err
	}
	m[key] = p
	return nil
}
