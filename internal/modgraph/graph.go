// Package modgraph builds the module dependency graph: resolving imports,
// loading and parsing sources, detecting cycles, and producing a
// topological compile order. It generalizes internal/module's
// string-identity loader to the dense-integer ModuleId scheme.
package modgraph

import (
	"fmt"
	"sort"
)

// ModuleId is an opaque dense integer handed out monotonically by the
// Graph as modules are first referenced. ModuleIds are unique per
// canonical filesystem path.
type ModuleId int

// ResolvedModule is the result of resolving an import to a concrete
// source: {id, canonical path, short name, source text}.
type ResolvedModule struct {
	ID            ModuleId
	CanonicalPath string
	ShortName     string
	Source        string
}

// Module is a parsed, graph-attached unit: {id, parsed AST, path, name,
// dependencies, exports, private}. The AST type itself is supplied by the
// caller (internal/modgraph does not depend on internal/ast to keep the
// graph algorithm reusable against any front end), so it is carried as an
// opaque `any`.
type Module struct {
	ID           ModuleId
	AST          any
	Path         string
	Name         string
	Dependencies []ModuleId // ordered list, declaration order preserved
	Exports      map[string]bool
	Private      map[string]bool
}

// Graph is two adjacency maps (forward deps, reverse deps) plus the node
// set, per spec §3.1.
type Graph struct {
	nodes    map[ModuleId]*Module
	forward  map[ModuleId][]ModuleId // u -> modules u depends on
	reverse  map[ModuleId][]ModuleId // v -> modules that depend on v
	order    []ModuleId              // insertion order, for deterministic iteration
	byPath   map[string]ModuleId
	nextID   ModuleId
}

func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[ModuleId]*Module),
		forward: make(map[ModuleId][]ModuleId),
		reverse: make(map[ModuleId][]ModuleId),
		byPath:  make(map[string]ModuleId),
	}
}

// Intern returns the ModuleId for a canonical path, allocating a fresh one
// on first reference. ModuleIds are unique per canonical filesystem path.
func (g *Graph) Intern(canonicalPath string) ModuleId {
	if id, ok := g.byPath[canonicalPath]; ok {
		return id
	}
	id := g.nextID
	g.nextID++
	g.byPath[canonicalPath] = id
	return id
}

// AddModule registers a fully-parsed module under its already-interned id.
func (g *Graph) AddModule(m *Module) {
	if _, exists := g.nodes[m.ID]; !exists {
		g.order = append(g.order, m.ID)
	}
	g.nodes[m.ID] = m
}

// AddDependency records that u depends on v. Order of calls for a given u
// is preserved in Module.Dependencies so cycle reports can render the
// cycle in declaration order.
func (g *Graph) AddDependency(u, v ModuleId) {
	g.forward[u] = append(g.forward[u], v)
	g.reverse[v] = append(g.reverse[v], u)
	if m, ok := g.nodes[u]; ok {
		m.Dependencies = append(m.Dependencies, v)
	}
}

func (g *Graph) Module(id ModuleId) (*Module, bool) {
	m, ok := g.nodes[id]
	return m, ok
}

func (g *Graph) Dependencies(id ModuleId) []ModuleId {
	return g.forward[id]
}

func (g *Graph) Dependents(id ModuleId) []ModuleId {
	return g.reverse[id]
}

// Len reports the number of distinct modules registered in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// color states used by DetectCycle's DFS.
type color int

const (
	white color = iota // unvisited
	gray               // on-stack
	black              // done
)

// CycleError is returned when DetectCycle finds a cycle: the path slice
// back to the repeated on-stack neighbor, in declaration order, plus the
// short names when available.
type CycleError struct {
	Cycle      []ModuleId
	ShortNames []string
}

func (e *CycleError) Error() string {
	if len(e.ShortNames) > 0 {
		names := ""
		for i, n := range e.ShortNames {
			if i > 0 {
				names += " -> "
			}
			names += n
		}
		return fmt.Sprintf("circular dependency detected: %s", names)
	}
	return fmt.Sprintf("circular dependency detected among module ids %v", e.Cycle)
}

// DetectCycle runs DFS with three colors (unvisited, on-stack, done) over
// every node in declaration order. On encountering an on-stack neighbor,
// it emits the cycle as the path slice back to that neighbor. Self-loops
// are valid cycles. Returns nil if the graph is acyclic.
func (g *Graph) DetectCycle() *CycleError {
	colors := make(map[ModuleId]color, len(g.nodes))
	var stack []ModuleId

	var visit func(ModuleId) *CycleError
	visit = func(u ModuleId) *CycleError {
		colors[u] = gray
		stack = append(stack, u)

		for _, v := range g.forward[u] {
			switch colors[v] {
			case white:
				if err := visit(v); err != nil {
					return err
				}
			case gray:
				// Found the repeated on-stack neighbor: slice the stack
				// back to its first occurrence and close the loop with v.
				start := 0
				for i, id := range stack {
					if id == v {
						start = i
						break
					}
				}
				cycle := append([]ModuleId{}, stack[start:]...)
				cycle = append(cycle, v)
				return &CycleError{Cycle: cycle, ShortNames: g.shortNames(cycle)}
			case black:
				// already fully explored, no cycle through here
			}
		}

		stack = stack[:len(stack)-1]
		colors[u] = black
		return nil
	}

	for _, id := range g.order {
		if colors[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) shortNames(ids []ModuleId) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if m, ok := g.nodes[id]; ok && m.Name != "" {
			names = append(names, m.Name)
		} else {
			names = append(names, fmt.Sprintf("#%d", id))
		}
	}
	return names
}

// TopologicalSort runs Kahn's algorithm using dependency counts: nodes
// with zero remaining dependencies flow into the result first. Ties among
// simultaneously-ready nodes are broken by ascending ModuleId so the
// result is deterministic across runs (the Rust original breaks ties by
// insertion-stack order instead; either is spec-conformant since spec §4.A
// only requires *a* valid topological order, not a canonical one — see
// DESIGN.md).
func (g *Graph) TopologicalSort() ([]ModuleId, error) {
	inDegree := make(map[ModuleId]int, len(g.nodes))
	for _, id := range g.order {
		inDegree[id] = len(g.forward[id])
	}

	var ready []ModuleId
	for _, id := range g.order {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	var result []ModuleId
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		id := ready[0]
		ready = ready[1:]
		result = append(result, id)

		for _, dependent := range g.reverse[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		if cyc := g.DetectCycle(); cyc != nil {
			return nil, cyc
		}
		return nil, fmt.Errorf("circular dependency detected")
	}
	return result, nil
}
