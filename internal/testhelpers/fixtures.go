package testhelpers

import (
	"os"
	"path/filepath"
)

// LoadFixture reads testhelpers/fixtures/name from a sibling package's test directory.
func LoadFixture(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join("..", "testhelpers", "fixtures", name))
}
