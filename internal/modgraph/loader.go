package modgraph

import (
	"fmt"
	"os"

	errs "github.com/ariacc/ariac/internal/errors"
)

func moduleErr(code, format string, args ...any) error {
	return errs.WrapReport(&errs.Report{
		Schema:  "aria.error/v1",
		Code:    code,
		Phase:   "modgraph",
		Message: fmt.Sprintf(format, args...),
		Data:    map[string]any{},
	})
}

// Parser is supplied by the caller so modgraph stays decoupled from
// internal/ast: given a module's source text and canonical path, it
// returns the parsed AST (opaque to modgraph), the module's declared
// name, and the raw import paths it references, in declaration order.
type Parser interface {
	Parse(canonicalPath, source string) (ast any, declaredName string, imports []string, err error)
}

// Loader walks the import graph starting from an entry file, resolving,
// reading, and parsing each module exactly once, and wiring the resulting
// dependency edges into a Graph. It generalizes internal/module.Loader's
// load-and-link pass to the ModuleId/Graph scheme.
type Loader struct {
	resolver *Resolver
	parser   Parser
	graph    *Graph
}

func NewLoader(resolver *Resolver, parser Parser) *Loader {
	return &Loader{resolver: resolver, parser: parser, graph: NewGraph()}
}

// Graph exposes the graph built up across Load calls.
func (l *Loader) Graph() *Graph {
	return l.graph
}

// Load resolves and parses a single module by canonical path if not
// already loaded, recursively loading its dependencies, and returns its
// ModuleId. Safe to call multiple times with the same path (idempotent).
func (l *Loader) Load(canonicalPath string) (ModuleId, error) {
	id := l.graph.Intern(canonicalPath)
	if _, exists := l.graph.Module(id); exists {
		return id, nil
	}

	source, err := os.ReadFile(canonicalPath)
	if err != nil {
		return 0, moduleErr(errs.MGR003, "reading module %s: %v", canonicalPath, err)
	}

	ast, declaredName, imports, err := l.parser.Parse(canonicalPath, string(source))
	if err != nil {
		return 0, moduleErr(errs.MGR001, "parsing module %s: %v", canonicalPath, err)
	}

	m := &Module{
		ID:      id,
		AST:     ast,
		Path:    canonicalPath,
		Name:    declaredName,
		Exports: map[string]bool{},
		Private: map[string]bool{},
	}
	l.graph.AddModule(m)

	for _, importPath := range imports {
		depPath, err := l.resolver.Resolve(importPath, canonicalPath)
		if err != nil {
			return 0, moduleErr(errs.MGR001, "resolving import %q from %s: %v", importPath, canonicalPath, err)
		}
		depID, err := l.Load(depPath)
		if err != nil {
			return 0, err
		}
		l.graph.AddDependency(id, depID)
	}

	return id, nil
}

// Compile loads the full transitive closure from entryPath and returns the
// modules in a valid topological (dependency-first) compile order. A
// circular dependency anywhere in the closure surfaces as a *CycleError.
func (l *Loader) Compile(entryPath string) ([]*Module, error) {
	normalized, err := normalizePath(entryPath)
	if err != nil {
		return nil, moduleErr(errs.MGR005, "invalid entry path %s: %v", entryPath, err)
	}
	if _, err := l.Load(normalized); err != nil {
		return nil, err
	}

	order, err := l.graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	modules := make([]*Module, 0, len(order))
	for _, id := range order {
		m, ok := l.graph.Module(id)
		if !ok {
			return nil, moduleErr(errs.MGR004, "topological order referenced unregistered module id %d", id)
		}
		modules = append(modules, m)
	}
	return modules, nil
}
