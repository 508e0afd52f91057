package testutil

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixtureContext locates the files of one fixture directory under
// testdata/scans/.
type FixtureContext struct {
	// Name is the fixture directory name (e.g., "basic")
	Name string

	// Root is the absolute path to the fixture directory
	Root string

	// ExpectedDir is the path to the expected/ directory
	ExpectedDir string
}

// LoadFixture loads a fixture directory, failing the test if it is missing.
func LoadFixture(t testing.TB, name string) *FixtureContext {
	t.Helper()

	root := filepath.Join(getFixturesRoot(t), name)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Fatalf("Fixture directory not found: %s", root)
	}

	return &FixtureContext{
		Name:        name,
		Root:        root,
		ExpectedDir: filepath.Join(root, "expected"),
	}
}

// ResultPath returns the path to a scanner output file of the fixture.
func (f *FixtureContext) ResultPath(file string) string {
	return filepath.Join(f.Root, file)
}

// ExpectedPath returns the path to an expected file of the fixture.
func (f *FixtureContext) ExpectedPath(file string) string {
	return filepath.Join(f.ExpectedDir, file)
}

// CopyTo copies the fixture into a fresh temporary directory, so that
// regeneration does not touch the checked-in files.
func (f *FixtureContext) CopyTo(t testing.TB) *FixtureContext {
	t.Helper()

	dst := filepath.Join(t.TempDir(), f.Name)
	err := filepath.WalkDir(f.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(f.Root, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
	if err != nil {
		t.Fatalf("Failed to copy fixture %s: %v", f.Name, err)
	}

	return &FixtureContext{
		Name:        f.Name,
		Root:        dst,
		ExpectedDir: filepath.Join(dst, "expected"),
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// getFixturesRoot returns the absolute path to testdata/scans/.
func getFixturesRoot(t testing.TB) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// Navigate from internal/testutil to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	fixturesRoot := filepath.Join(projectRoot, "testdata", "scans")

	if _, err := os.Stat(fixturesRoot); os.IsNotExist(err) {
		t.Fatalf("Fixtures root not found: %s", fixturesRoot)
	}

	return fixturesRoot
}
