// Package loader parses an imported module's source file and extracts its
// export table, for the elaborator's selective-import resolution. It never
// evaluates a module — Aria has no interpreter — so loading stops at the
// surface AST; internal/modgraph builds the full dependency graph this
// package's single-file resolution feeds into.
package loader

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/ariacc/ariac/internal/ast"
	"github.com/ariacc/ariac/internal/iface"
	"github.com/ariacc/ariac/internal/lexer"
	"github.com/ariacc/ariac/internal/parser"
)

// ModuleLoader loads and caches modules.
type ModuleLoader struct {
	cache    map[string]*LoadedModule
	basePath string // Base directory for relative imports
}

// LoadedModule represents a loaded and parsed module.
type LoadedModule struct {
	Path    string
	File    *ast.File
	Imports []string                 // Module paths this module imports
	Exports map[string]*ast.FuncDecl // Export table (for now, just functions)
	Iface   *iface.Iface             // Module interface (after type checking)
}

// NewModuleLoader creates a new module loader.
func NewModuleLoader(basePath string) *ModuleLoader {
	return &ModuleLoader{
		cache:    make(map[string]*LoadedModule),
		basePath: basePath,
	}
}

// Load loads a module by path.
func (ml *ModuleLoader) Load(path string) (*LoadedModule, error) {
	canonicalID := CanonicalModuleID(path)
	if loaded, ok := ml.cache[canonicalID]; ok {
		return loaded, nil
	}

	fullPath := ml.resolvePath(path)
	content, err := ioutil.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", path, err)
	}

	l := lexer.New(string(content), fullPath)
	p := parser.New(l)
	file := p.ParseFile()
	if len(p.Errors()) > 0 {
		return nil, fmt.Errorf("parse errors in %s: %v", path, p.Errors())
	}

	imports := ml.extractImports(file)
	exports := ml.buildExports(file)

	loaded := &LoadedModule{
		Path:    canonicalID,
		File:    file,
		Imports: imports,
		Exports: exports,
	}
	ml.cache[canonicalID] = loaded

	return loaded, nil
}

// resolvePath resolves a module path to a file path.
func (ml *ModuleLoader) resolvePath(path string) string {
	if strings.HasSuffix(path, ".aria") {
		return path
	}

	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		return filepath.Join(ml.basePath, path) + ".aria"
	}

	// Stdlib imports resolve relative to the stdlib root; callers that want
	// ARIA_STDLIB_PATH honored construct the loader with that directory as
	// basePath rather than have this package read the environment itself.
	if strings.HasPrefix(path, "std/") {
		return filepath.Join(ml.basePath, path) + ".aria"
	}

	// Default: treat as repo-relative (don't join with basePath).
	return path + ".aria"
}

// CanonicalModuleID returns the canonical module ID for a path: repo-relative,
// forward slashes, no .aria extension.
func CanonicalModuleID(p string) string {
	p = filepath.Clean(p)
	p = strings.TrimSuffix(p, ".aria")
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return p
}

// buildExports builds the export table for a module.
func (ml *ModuleLoader) buildExports(file *ast.File) map[string]*ast.FuncDecl {
	exports := make(map[string]*ast.FuncDecl)
	for _, fn := range file.Funcs {
		if !strings.HasPrefix(fn.Name, "_") {
			exports[fn.Name] = fn
		}
	}
	return exports
}

// GetExport retrieves an exported symbol from a module.
func (ml *ModuleLoader) GetExport(modulePath, symbol string) (*ast.FuncDecl, error) {
	module, err := ml.Load(modulePath)
	if err != nil {
		return nil, err
	}

	decl, ok := module.Exports[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %s not exported from %s", symbol, modulePath)
	}

	return decl, nil
}

// LoadAll loads a module and all its transitive dependencies.
func (ml *ModuleLoader) LoadAll(roots []string) (map[string]*LoadedModule, error) {
	modules := make(map[string]*LoadedModule)
	visited := make(map[string]bool)
	var searchTrace []string

	var loadDeps func(path string) error
	loadDeps = func(path string) error {
		if visited[path] {
			return nil
		}
		visited[path] = true

		searchTrace = append(searchTrace, fmt.Sprintf("Loading module: %s", path))

		module, err := ml.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load %s (search trace: %v): %w", path, searchTrace, err)
		}
		modules[module.Path] = module

		for _, dep := range module.Imports {
			searchTrace = append(searchTrace, fmt.Sprintf("  -> dependency: %s", dep))
			if err := loadDeps(dep); err != nil {
				return err
			}
		}

		return nil
	}

	for _, root := range roots {
		if err := loadDeps(root); err != nil {
			return nil, err
		}
	}

	return modules, nil
}

// extractImports extracts module paths from import declarations.
func (ml *ModuleLoader) extractImports(file *ast.File) []string {
	var imports []string
	for _, imp := range file.Imports {
		imports = append(imports, imp.Path)
	}
	return imports
}

// LoadInterface loads just the interface of a module (for the linker).
func (ml *ModuleLoader) LoadInterface(modulePath string) (*iface.Iface, error) {
	module, err := ml.Load(modulePath)
	if err != nil {
		return nil, err
	}

	if module.Iface != nil {
		return module.Iface, nil
	}

	return nil, fmt.Errorf("interface not yet built for module %s", modulePath)
}

// NormalizeContent normalizes file content (CRLF, BOM, etc.).
func (ml *ModuleLoader) NormalizeContent(content []byte) []byte {
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		content = content[3:]
	}

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	content = bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))

	return content
}

// CanonicalPath returns the canonical path for a module.
func (ml *ModuleLoader) CanonicalPath(path string) (string, error) {
	fullPath := ml.resolvePath(path)

	canonical, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		canonical = filepath.Clean(fullPath)
	}

	if strings.HasSuffix(canonical, ".aria") {
		canonical = canonical[:len(canonical)-5]
	}
	if strings.HasPrefix(canonical, ml.basePath) {
		canonical = strings.TrimPrefix(canonical, ml.basePath)
		canonical = strings.TrimPrefix(canonical, "/")
	}

	return canonical, nil
}
