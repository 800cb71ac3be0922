package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const BaseDirName = "NovelLens"

// Paths are the application directories under the workspace root.
type Paths struct {
	Root    string
	Novels  string
	Data    string
	History string
}

// EnsureDefault creates the workspace under the user's home directory.
func EnsureDefault() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

// EnsureAt creates the workspace directories under base: novels/ for
// uploaded texts and data/ for vocabulary caches, the ignored-word list
// and the scan history database.
func EnsureAt(base string) (Paths, error) {
	paths := Paths{
		Root:    base,
		Novels:  filepath.Join(base, "novels"),
		Data:    filepath.Join(base, "data"),
		History: filepath.Join(base, "data", "scan_history.db"),
	}
	for _, p := range []string{paths.Novels, paths.Data} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return Paths{}, fmt.Errorf("mkdir %s: %w", p, err)
		}
	}
	return paths, nil
}
