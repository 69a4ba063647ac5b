package manifest

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
)

// PackageManifest is the root of an Aria.toml package/dependency manifest.
//
// This is a distinct concern from the example-tracking Manifest above: where
// that type records the status of this compiler's own .aria test fixtures,
// PackageManifest describes a buildable Aria package's metadata, its
// dependency graph, its feature flags, and per-target dependency overlays.
type PackageManifest struct {
	Package         PackageInfo                 `toml:"package"`
	Dependencies    map[string]DependencySpec    `toml:"dependencies"`
	DevDependencies map[string]DependencySpec    `toml:"dev-dependencies"`
	BuildDependencies map[string]DependencySpec  `toml:"build-dependencies"`
	Features        map[string][]string          `toml:"features"`
	Target          map[string]TargetConfig      `toml:"target"`
}

// PackageInfo holds the [package] table.
type PackageInfo struct {
	Name            string   `toml:"name"`
	Version         string   `toml:"version"`
	Authors         []string `toml:"authors,omitempty"`
	Description     string   `toml:"description,omitempty"`
	License         string   `toml:"license,omitempty"`
	Repository      string   `toml:"repository,omitempty"`
	Keywords        []string `toml:"keywords,omitempty"`
	Homepage        string   `toml:"homepage,omitempty"`
	Documentation   string   `toml:"documentation,omitempty"`
	DefaultFeatures []string `toml:"default-features,omitempty"`
	Targets         []string `toml:"targets,omitempty"`
}

// TargetConfig is the per-target dependency overlay under [target.<tag>].
type TargetConfig struct {
	Dependencies    map[string]DependencySpec `toml:"dependencies"`
	DevDependencies map[string]DependencySpec `toml:"dev-dependencies"`
}

// DependencySpec is either a bare version string ("^1.0") or a detailed
// table ({version, git, branch, tag, rev, path, optional, features,
// default-features}). TOML has no untagged-union decode, so we decode into
// a permissive shape and distinguish the two forms after the fact.
type DependencySpec struct {
	// Simple holds the bare-string form's version requirement. Empty when
	// Detailed was used instead.
	Simple string

	Version         string   `toml:"version"`
	Git             string   `toml:"git,omitempty"`
	Branch          string   `toml:"branch,omitempty"`
	Tag             string   `toml:"tag,omitempty"`
	Rev             string   `toml:"rev,omitempty"`
	Path            string   `toml:"path,omitempty"`
	Optional        bool     `toml:"optional,omitempty"`
	Features        []string `toml:"features,omitempty"`
	DefaultFeatures *bool    `toml:"default-features,omitempty"`
}

// UnmarshalTOML implements toml.Unmarshaler so a dependency entry can be
// either a plain string or a table, mirroring the untagged Rust enum this
// type is ported from.
func (d *DependencySpec) UnmarshalTOML(value interface{}) error {
	switch v := value.(type) {
	case string:
		d.Simple = v
		d.Version = v
		return nil
	case map[string]interface{}:
		if ver, ok := v["version"].(string); ok {
			d.Version = ver
		}
		if git, ok := v["git"].(string); ok {
			d.Git = git
		}
		if branch, ok := v["branch"].(string); ok {
			d.Branch = branch
		}
		if tag, ok := v["tag"].(string); ok {
			d.Tag = tag
		}
		if rev, ok := v["rev"].(string); ok {
			d.Rev = rev
		}
		if path, ok := v["path"].(string); ok {
			d.Path = path
		}
		if opt, ok := v["optional"].(bool); ok {
			d.Optional = opt
		}
		if defFeat, ok := v["default-features"].(bool); ok {
			d.DefaultFeatures = &defFeat
		}
		if feats, ok := v["features"].([]interface{}); ok {
			for _, f := range feats {
				if s, ok := f.(string); ok {
					d.Features = append(d.Features, s)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("dependency spec must be a string or table, got %T", value)
	}
}

// MarshalTOML implements toml.Marshaler, emitting the shortest form that
// round-trips: a bare string when no table-only fields are set.
func (d DependencySpec) MarshalTOML() ([]byte, error) {
	if d.isSimple() {
		return toml.Marshal(d.Version)
	}
	detailed := map[string]interface{}{"version": d.Version}
	if d.Git != "" {
		detailed["git"] = d.Git
	}
	if d.Branch != "" {
		detailed["branch"] = d.Branch
	}
	if d.Tag != "" {
		detailed["tag"] = d.Tag
	}
	if d.Rev != "" {
		detailed["rev"] = d.Rev
	}
	if d.Path != "" {
		detailed["path"] = d.Path
	}
	if d.Optional {
		detailed["optional"] = true
	}
	if len(d.Features) > 0 {
		detailed["features"] = d.Features
	}
	if d.DefaultFeatures != nil {
		detailed["default-features"] = *d.DefaultFeatures
	}
	return toml.Marshal(detailed)
}

func (d DependencySpec) isSimple() bool {
	return d.Git == "" && d.Branch == "" && d.Tag == "" && d.Rev == "" &&
		d.Path == "" && !d.Optional && len(d.Features) == 0 && d.DefaultFeatures == nil
}

// IsOptional reports whether this dependency must be explicitly enabled via
// a feature before it is built.
func (d DependencySpec) IsOptional() bool {
	return d.Optional
}

// GetFeatures returns the features this dependency is built with.
func (d DependencySpec) GetFeatures() []string {
	return d.Features
}

// UsesDefaultFeatures reports whether the dependency's own default feature
// set should be enabled, which is true unless explicitly disabled.
func (d DependencySpec) UsesDefaultFeatures() bool {
	if d.DefaultFeatures == nil {
		return true
	}
	return *d.DefaultFeatures
}

// VersionReq parses the dependency's version requirement string.
func (d DependencySpec) VersionReq() (*semver.Constraints, error) {
	return semver.NewConstraint(d.Version)
}

// NewPackageManifest builds a fresh manifest with sensible defaults, the
// way a package-init command would seed a new Aria.toml.
func NewPackageManifest(name, version string) *PackageManifest {
	return &PackageManifest{
		Package: PackageInfo{
			Name:    name,
			Version: version,
			License: "MIT OR Apache-2.0",
		},
		Dependencies:      map[string]DependencySpec{},
		DevDependencies:   map[string]DependencySpec{},
		BuildDependencies: map[string]DependencySpec{},
		Features:          map[string][]string{},
		Target:            map[string]TargetConfig{},
	}
}

// LoadPackageManifest reads and parses an Aria.toml file.
func LoadPackageManifest(path string) (*PackageManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package manifest: %w", err)
	}
	var m PackageManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse package manifest: %w", err)
	}
	if _, err := semver.NewVersion(m.Package.Version); err != nil {
		return nil, fmt.Errorf("invalid package version %q: %w", m.Package.Version, err)
	}
	return &m, nil
}

// Save writes the manifest back out as pretty-printed TOML.
func (m *PackageManifest) Save(path string) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal package manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// AddDependency adds or replaces a runtime dependency.
func (m *PackageManifest) AddDependency(name string, spec DependencySpec) {
	if m.Dependencies == nil {
		m.Dependencies = map[string]DependencySpec{}
	}
	m.Dependencies[name] = spec
}

// RemoveDependency removes a runtime dependency, reporting whether it existed.
func (m *PackageManifest) RemoveDependency(name string) bool {
	if _, ok := m.Dependencies[name]; !ok {
		return false
	}
	delete(m.Dependencies, name)
	return true
}

// DependenciesForTarget returns the runtime dependency set applicable to a
// build target, merging the common [dependencies] table with any
// [target.<tag>.dependencies] overlay. An overlay entry with the same name
// as a common dependency overrides it; entries that only appear in one side
// pass through unchanged.
func (m *PackageManifest) DependenciesForTarget(target string) map[string]DependencySpec {
	return mergeTargetDeps(m.Dependencies, m.Target[target].Dependencies)
}

// DevDependenciesForTarget is DependenciesForTarget's dev-dependency analogue.
func (m *PackageManifest) DevDependenciesForTarget(target string) map[string]DependencySpec {
	return mergeTargetDeps(m.DevDependencies, m.Target[target].DevDependencies)
}

func mergeTargetDeps(common, overlay map[string]DependencySpec) map[string]DependencySpec {
	deps := make(map[string]DependencySpec, len(common)+len(overlay))
	for name, spec := range common {
		deps[name] = spec
	}
	for name, spec := range overlay {
		deps[name] = spec
	}
	return deps
}

// AddFeature defines a named feature and the features/dependencies it enables.
func (m *PackageManifest) AddFeature(name string, enables []string) {
	if m.Features == nil {
		m.Features = map[string][]string{}
	}
	m.Features[name] = enables
}

// EnabledFeatures computes the full, recursively resolved set of features
// that should be active given the package's default-features and a
// requested set, deduplicated and expanded in request order.
func (m *PackageManifest) EnabledFeatures(requested []string) []string {
	var enabled []string
	seen := map[string]bool{}
	push := func(f string) {
		if !seen[f] {
			seen[f] = true
			enabled = append(enabled, f)
		}
	}
	for _, f := range m.Package.DefaultFeatures {
		push(f)
	}
	for _, f := range requested {
		push(f)
	}

	var resolved []string
	resolvedSeen := map[string]bool{}
	for _, f := range enabled {
		m.resolveFeature(f, &resolved, resolvedSeen)
	}
	return resolved
}

// resolveFeature expands a single feature name into resolved, following
// nested feature references and dep/feature or bare optional-dependency
// enablements, guarding against cycles via resolvedSeen.
func (m *PackageManifest) resolveFeature(feature string, resolved *[]string, resolvedSeen map[string]bool) {
	if resolvedSeen[feature] {
		return
	}
	resolvedSeen[feature] = true
	*resolved = append(*resolved, feature)

	for _, enables := range m.Features[feature] {
		switch {
		case containsSlash(enables):
			// dep/feature form: record as-is, it names a foreign feature.
			*resolved = append(*resolved, enables)
		case m.isFeature(enables):
			m.resolveFeature(enables, resolved, resolvedSeen)
		default:
			// Bare name enabling an optional dependency.
			*resolved = append(*resolved, enables)
		}
	}
}

func (m *PackageManifest) isFeature(name string) bool {
	_, ok := m.Features[name]
	return ok
}

func containsSlash(s string) bool {
	for _, r := range s {
		if r == '/' {
			return true
		}
	}
	return false
}
