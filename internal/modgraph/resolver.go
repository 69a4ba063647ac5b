package modgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// moduleExt is the source file extension this resolver looks for, taking
// the place of internal/module's ".ail".
const moduleExt = ".aria"

// Resolver turns an import path plus an optional importing-file context
// into a canonical, on-disk module path. It mirrors internal/module's
// resolution order (relative, stdlib, project, local) generalized to
// ModuleId-keyed results.
type Resolver struct {
	projectRoot string
	stdlibPath  string
	searchPaths []string
}

func NewResolver() *Resolver {
	return &Resolver{
		projectRoot: findProjectRoot(),
		stdlibPath:  findStdlibPath(),
		searchPaths: getSearchPaths(),
	}
}

// NewResolverWithRoots builds a Resolver against explicit roots, bypassing
// environment/filesystem discovery. Used by tests.
func NewResolverWithRoots(projectRoot, stdlibPath string, searchPaths []string) *Resolver {
	return &Resolver{projectRoot: projectRoot, stdlibPath: stdlibPath, searchPaths: searchPaths}
}

// Resolve maps an import path to a canonical filesystem path, trying (in
// order) relative, stdlib, project, and local-module resolution forms.
func (r *Resolver) Resolve(importPath, currentFile string) (string, error) {
	switch {
	case strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../"):
		return r.resolveRelative(importPath, currentFile)
	case strings.HasPrefix(importPath, "std/"):
		return r.resolveStdlib(importPath)
	case strings.Contains(importPath, "/"):
		return r.resolveProject(importPath)
	default:
		return r.resolveLocal(importPath, currentFile)
	}
}

func (r *Resolver) resolveRelative(importPath, currentFile string) (string, error) {
	if currentFile == "" {
		return "", fmt.Errorf("relative import %q requires a current file context", importPath)
	}
	path := withExt(filepath.Join(filepath.Dir(currentFile), importPath))
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(normalized); err != nil {
		return "", fmt.Errorf("module not found: %s", importPath)
	}
	return normalized, nil
}

func (r *Resolver) resolveStdlib(importPath string) (string, error) {
	libPath := strings.TrimPrefix(importPath, "std/")
	path := withExt(filepath.Join(r.stdlibPath, libPath))
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(normalized); err != nil {
		return "", fmt.Errorf("stdlib module not found: %s", importPath)
	}
	return normalized, nil
}

func (r *Resolver) resolveProject(importPath string) (string, error) {
	path := withExt(filepath.Join(r.projectRoot, importPath))
	if normalized, err := normalizePath(path); err == nil {
		if _, err := os.Stat(normalized); err == nil {
			return normalized, nil
		}
	}
	for _, sp := range r.searchPaths {
		path := withExt(filepath.Join(sp, importPath))
		if normalized, err := normalizePath(path); err == nil {
			if _, err := os.Stat(normalized); err == nil {
				return normalized, nil
			}
		}
	}
	return "", fmt.Errorf("project module not found: %s", importPath)
}

func (r *Resolver) resolveLocal(importPath, currentFile string) (string, error) {
	if currentFile != "" {
		path := withExt(filepath.Join(filepath.Dir(currentFile), importPath))
		if normalized, err := normalizePath(path); err == nil {
			if _, err := os.Stat(normalized); err == nil {
				return normalized, nil
			}
		}
	}
	return r.resolveProject(importPath)
}

// Identity derives a module's declared identity (its expected name) from
// its canonical path: "std/..." for stdlib members, a project-root-relative
// path for project members, otherwise the bare file name.
func (r *Resolver) Identity(filePath string) (string, error) {
	normalized, err := normalizePath(filePath)
	if err != nil {
		return "", err
	}
	identity := strings.TrimSuffix(normalized, moduleExt)

	if strings.HasPrefix(normalized, r.stdlibPath) {
		if rel, err := filepath.Rel(r.stdlibPath, identity); err == nil {
			return "std/" + filepath.ToSlash(rel), nil
		}
	}
	if strings.HasPrefix(normalized, r.projectRoot) {
		if rel, err := filepath.Rel(r.projectRoot, identity); err == nil {
			return filepath.ToSlash(rel), nil
		}
	}
	return filepath.Base(identity), nil
}

func withExt(path string) string {
	if !strings.HasSuffix(path, moduleExt) {
		return path + moduleExt
	}
	return path
}

func normalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func findProjectRoot() string {
	markers := []string{"go.mod", ".git", "aria.yaml", ".aria"}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	pwd, _ := os.Getwd()
	return pwd
}

func findStdlibPath() string {
	if stdlib := os.Getenv("ARIA_STDLIB"); stdlib != "" {
		return stdlib
	}
	if exe, err := os.Executable(); err == nil {
		for _, cand := range []string{
			filepath.Join(filepath.Dir(exe), "..", "stdlib"),
			filepath.Join(filepath.Dir(exe), "stdlib"),
		} {
			if info, err := os.Stat(cand); err == nil && info.IsDir() {
				return cand
			}
		}
	}
	root := findProjectRoot()
	if stdlib := filepath.Join(root, "stdlib"); dirExists(stdlib) {
		return stdlib
	}
	return filepath.Join(".", "stdlib")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func getSearchPaths() []string {
	var paths []string
	if ariaPath := os.Getenv("ARIA_PATH"); ariaPath != "" {
		for _, p := range strings.Split(ariaPath, string(os.PathListSeparator)) {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".aria", "modules"))
	}
	paths = append(paths, findProjectRoot())
	return paths
}

// caseSensitiveFS reports whether the host filesystem distinguishes file
// name case, matching the GOOS heuristic internal/module uses.
func caseSensitiveFS() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return false
	default:
		return true
	}
}
