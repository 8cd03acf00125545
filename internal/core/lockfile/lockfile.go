package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const APIVersion = "1"

// FileEntry records the digest produced for one file.
// Example:
// [files."dist/app.js"]
//
//	algorithm = "sha256"
//	integrity = "sha256-<base64 digest>"
type FileEntry struct {
	Algorithm string `toml:"algorithm"`
	Integrity string `toml:"integrity"`
}

// Lockfile is the integrity manifest (sri-lock.toml by default).
// Keys of Files are slash-separated paths relative to the project root.
type Lockfile struct {
	ApiVersion string               `toml:"api_version"`
	Files      map[string]FileEntry `toml:"files"`
}

// New creates an empty manifest.
func New() *Lockfile {
	return &Lockfile{
		ApiVersion: APIVersion,
		Files:      make(map[string]FileEntry),
	}
}

// Load reads the manifest called name from projectRoot.
// If the file doesn't exist, it returns an empty manifest.
func Load(projectRoot, name string) (*Lockfile, error) {
	lockfilePath := filepath.Join(projectRoot, name)
	lf := New()

	if _, err := os.Stat(lockfilePath); os.IsNotExist(err) {
		return lf, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat manifest %s: %w", lockfilePath, err)
	}

	if _, err := toml.DecodeFile(lockfilePath, lf); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", lockfilePath, err)
	}
	if lf.ApiVersion == "" {
		lf.ApiVersion = APIVersion
	}
	if lf.Files == nil {
		lf.Files = make(map[string]FileEntry)
	}
	return lf, nil
}

// Save writes lf to projectRoot under name.
func Save(projectRoot, name string, lf *Lockfile) error {
	lockfilePath := filepath.Join(projectRoot, name)
	file, err := os.Create(lockfilePath)
	if err != nil {
		return fmt.Errorf("failed to create/truncate manifest %s: %w", lockfilePath, err)
	}
	defer func() { _ = file.Close() }()

	if err := toml.NewEncoder(file).Encode(lf); err != nil {
		return fmt.Errorf("failed to encode manifest %s: %w", lockfilePath, err)
	}
	return nil
}

// Key returns the manifest key for path: cleaned, made relative to the
// working directory when it lies inside it, and slash-separated.
func Key(path string) string {
	p := filepath.Clean(path)
	if filepath.IsAbs(p) {
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, p); err == nil && !outside(rel) {
				p = rel
			}
		}
	}
	return filepath.ToSlash(p)
}

// outside reports whether a path produced by filepath.Rel climbs out of
// its base directory.
func outside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Lookup returns the entry recorded for path.
func (lf *Lockfile) Lookup(path string) (FileEntry, bool) {
	entry, ok := lf.Files[Key(path)]
	return entry, ok
}

// Record adds or replaces the entry for path.
func (lf *Lockfile) Record(path, algorithm, integrity string) {
	if lf.Files == nil {
		lf.Files = make(map[string]FileEntry)
	}
	lf.Files[Key(path)] = FileEntry{
		Algorithm: algorithm,
		Integrity: integrity,
	}
}

// Remove deletes the entry for path and reports whether it existed.
func (lf *Lockfile) Remove(path string) bool {
	key := Key(path)
	if _, ok := lf.Files[key]; !ok {
		return false
	}
	delete(lf.Files, key)
	return true
}

// Paths returns the recorded paths in sorted order.
func (lf *Lockfile) Paths() []string {
	paths := make([]string, 0, len(lf.Files))
	for p := range lf.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
