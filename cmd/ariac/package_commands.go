package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariacc/ariac/internal/manifest"
)

const manifestFileName = "Aria.toml"
const lockFileName = "aria.lock"

func cmdInit(args []string) error {
	dir := "."
	if len(args) >= 1 {
		dir = args[0]
	}
	path := filepath.Join(dir, manifestFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	name := filepath.Base(absOrSelf(dir))
	m := manifest.NewPackageManifest(name, "0.1.0")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := m.Save(path); err != nil {
		return err
	}
	fmt.Printf("%s Created %s for package %q\n", green("✓"), path, name)
	return nil
}

func absOrSelf(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func cmdAdd(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ariac add <name> [version]")
	}
	name := args[0]
	version := "*"
	if len(args) >= 2 {
		version = args[1]
	}

	m, err := manifest.LoadPackageManifest(manifestFileName)
	if err != nil {
		return fmt.Errorf("loading %s: %w", manifestFileName, err)
	}
	m.AddDependency(name, manifest.DependencySpec{Simple: version, Version: version})
	if err := m.Save(manifestFileName); err != nil {
		return err
	}
	fmt.Printf("%s Added %s = %q to %s\n", green("✓"), name, version, manifestFileName)
	return nil
}

func cmdRemove(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ariac remove <name>")
	}
	name := args[0]

	m, err := manifest.LoadPackageManifest(manifestFileName)
	if err != nil {
		return fmt.Errorf("loading %s: %w", manifestFileName, err)
	}
	if !m.RemoveDependency(name) {
		return fmt.Errorf("%s is not a dependency of this package", name)
	}
	if err := m.Save(manifestFileName); err != nil {
		return err
	}
	fmt.Printf("%s Removed %s from %s\n", green("✓"), name, manifestFileName)
	return nil
}

// cmdInstall resolves the manifest's declared dependencies and writes
// aria.lock. Without a real registry/fetcher in this port, resolution pins
// each dependency to its manifest-declared version requirement verbatim —
// enough to exercise the lockfile format's shape and checksum field.
func cmdInstall(args []string) error {
	m, err := manifest.LoadPackageManifest(manifestFileName)
	if err != nil {
		return fmt.Errorf("loading %s: %w", manifestFileName, err)
	}

	enabled := m.EnabledFeatures(nil)
	lf := manifest.NewLockfile()
	for name, spec := range m.Dependencies {
		if spec.IsOptional() && !featureEnables(enabled, name) {
			continue
		}
		lf.AddPackage(manifest.LockedPackage{
			Name:         name,
			Version:      spec.Version,
			Checksum:     manifest.Checksum([]byte(name + "@" + spec.Version)),
			Dependencies: nil,
		})
	}
	if err := lf.Save(lockFileName); err != nil {
		return err
	}
	fmt.Printf("%s Resolved %d package(s) into %s\n", green("✓"), len(lf.Packages), lockFileName)
	return nil
}

func featureEnables(enabled []string, dep string) bool {
	for _, f := range enabled {
		if f == dep {
			return true
		}
	}
	return false
}

// cmdPublish validates a package is ready to publish: the manifest parses,
// carries required metadata, and (unless --dry-run) an up-to-date lockfile
// exists alongside it.
func cmdPublish(args []string, dryRun bool) error {
	m, err := manifest.LoadPackageManifest(manifestFileName)
	if err != nil {
		return fmt.Errorf("loading %s: %w", manifestFileName, err)
	}
	if m.Package.Name == "" {
		return fmt.Errorf("package.name is required to publish")
	}
	if m.Package.License == "" {
		fmt.Fprintf(os.Stderr, "%s: package.license is not set\n", yellow("Warning"))
	}
	if m.Package.Description == "" {
		fmt.Fprintf(os.Stderr, "%s: package.description is not set\n", yellow("Warning"))
	}

	if dryRun {
		fmt.Printf("%s %s v%s would be published (dry run, no files written)\n",
			green("✓"), m.Package.Name, m.Package.Version)
		return nil
	}

	if _, err := os.Stat(lockFileName); err != nil {
		return fmt.Errorf("%s is missing; run 'ariac install' before publishing", lockFileName)
	}
	fmt.Printf("%s %s v%s is ready to publish\n", green("✓"), m.Package.Name, m.Package.Version)
	return nil
}
