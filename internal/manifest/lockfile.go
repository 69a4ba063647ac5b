package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// LockfileVersion is the only lockfile format version currently understood.
const LockfileVersion = 1

// Lockfile pins the exact resolved dependency graph for a package, the way
// a Cargo.lock or package-lock.json does: once written, a build reads only
// the lockfile and never re-resolves version requirements.
type Lockfile struct {
	Version  int              `json:"version"`
	Packages []LockedPackage  `json:"packages"`
}

// LockedPackage is one resolved entry in the dependency graph.
type LockedPackage struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Source       string   `json:"source,omitempty"`
	Checksum     string   `json:"checksum,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// NewLockfile creates an empty lockfile at the current version.
func NewLockfile() *Lockfile {
	return &Lockfile{Version: LockfileVersion, Packages: []LockedPackage{}}
}

// LoadLockfile reads and validates a lockfile from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile: %w", err)
	}
	if lf.Version != LockfileVersion {
		return nil, fmt.Errorf("unsupported lockfile version: %d (expected %d)", lf.Version, LockfileVersion)
	}
	seen := make(map[string]bool, len(lf.Packages))
	for _, pkg := range lf.Packages {
		key := pkg.Name + "@" + pkg.Version
		if seen[key] {
			return nil, fmt.Errorf("duplicate locked package: %s", key)
		}
		seen[key] = true
	}
	return &lf, nil
}

// Save writes the lockfile with packages sorted by name so repeated
// resolutions of an unchanged dependency graph produce byte-identical
// output.
func (lf *Lockfile) Save(path string) error {
	sort.Slice(lf.Packages, func(i, j int) bool {
		return lf.Packages[i].Name < lf.Packages[j].Name
	})
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lockfile: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// AddPackage inserts or replaces a locked package entry.
func (lf *Lockfile) AddPackage(pkg LockedPackage) {
	for i, existing := range lf.Packages {
		if existing.Name == pkg.Name {
			lf.Packages[i] = pkg
			return
		}
	}
	lf.Packages = append(lf.Packages, pkg)
}

// FindPackage locates a locked package by name.
func (lf *Lockfile) FindPackage(name string) (*LockedPackage, bool) {
	for i := range lf.Packages {
		if lf.Packages[i].Name == name {
			return &lf.Packages[i], true
		}
	}
	return nil, false
}

// Checksum computes the lockfile's canonical checksum for a package source
// blob: a hex-encoded SHA-256 digest, matching the "checksum" field shape
// written into each locked package entry.
func Checksum(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
