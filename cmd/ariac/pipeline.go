package main

import (
	"fmt"

	"github.com/ariacc/ariac/internal/ast"
	"github.com/ariacc/ariac/internal/codegen"
	"github.com/ariacc/ariac/internal/contracts"
	"github.com/ariacc/ariac/internal/core"
	"github.com/ariacc/ariac/internal/elaborate"
	"github.com/ariacc/ariac/internal/lexer"
	"github.com/ariacc/ariac/internal/mir"
	"github.com/ariacc/ariac/internal/mirlower"
	"github.com/ariacc/ariac/internal/modgraph"
	"github.com/ariacc/ariac/internal/parser"
	"github.com/ariacc/ariac/internal/patterns"
)

// astParser adapts the lexer/parser pair to internal/modgraph.Parser, so the
// module loader can drive parsing without depending on internal/parser
// directly (modgraph stays decoupled from internal/ast's concrete types).
type astParser struct{}

func (astParser) Parse(canonicalPath, source string) (any, string, []string, error) {
	l := lexer.New(source, canonicalPath)
	p := parser.New(l)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, "", nil, errs[0]
	}

	name := canonicalPath
	if file.Module != nil {
		name = file.Module.Path
	}
	imports := make([]string, 0, len(file.Imports))
	for _, imp := range file.Imports {
		imports = append(imports, imp.Path)
	}
	return file, name, imports, nil
}

// verificationMode maps the --verify flag's string spelling onto
// internal/contracts.VerificationMode.
func verificationMode(name string) (contracts.VerificationMode, error) {
	switch name {
	case "off":
		return contracts.Disabled, nil
	case "debug":
		return contracts.Debug, nil
	case "release":
		return contracts.Release, nil
	case "force-all":
		return contracts.ForceAll, nil
	default:
		return contracts.Disabled, fmt.Errorf("unknown verification mode %q (want off, debug, release, force-all)", name)
	}
}

// compileResult is everything a single-file build produces, handed back so
// build/run/check/inspect can each use the slice of it they need.
type compileResult struct {
	File *ast.File
	Core *core.Program
	MIR  *mir.Program
	Obj  *codegen.Module
}

// compileFile runs one source file through the full pipeline: parse,
// elaborate to Core ANF, lower to MIR (with the pattern compiler's
// decision-tree path wired in), verify contracts, and generate the final
// object module. Any stage failing aborts the remaining stages.
// searchPaths extends module resolution beyond the project root and
// stdlib path, normally sourced from ariac.yaml.
func compileFile(path string, verifyMode contracts.VerificationMode, searchPaths []string) (*compileResult, error) {
	resolver := modgraph.NewResolverWithRoots("", "", searchPaths)
	loader := modgraph.NewLoader(resolver, astParser{})

	modules, err := loader.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("loading module: %w", err)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("internal error: compiled no modules from %s", path)
	}
	// The entry file is the last in topological (dependency-first) order.
	entry := modules[len(modules)-1]
	file, ok := entry.AST.(*ast.File)
	if !ok {
		return nil, fmt.Errorf("internal error: loaded module AST is not *ast.File")
	}

	program := &ast.Program{File: file}
	elaborator := elaborate.NewElaboratorWithPath(path)
	coreProg, err := elaborator.Elaborate(program)
	if err != nil {
		return nil, fmt.Errorf("elaborating: %w", err)
	}

	lowerer := mirlower.NewLowerer()
	lowerer.SetDecisionCompiler(patterns.NewCompiler())
	mirProg, err := lowerer.LowerProgram(coreProg)
	if err != nil {
		return nil, fmt.Errorf("lowering to MIR: %w", err)
	}

	if verifyMode.IsEnabled() {
		verifier := contracts.NewVerifier(verifyMode, nil)
		verifier.VerifyProgram(mirProg)
	}

	exported := exportedNames(file)
	obj := codegen.LowerProgram(mirProg, exported)

	return &compileResult{File: file, Core: coreProg, MIR: mirProg, Obj: obj}, nil
}

// exportedNames collects the top-level function names a file marks as
// exported, the set codegen.LowerProgram uses to decide which symbols a
// hypothetical linker stage should see.
func exportedNames(file *ast.File) map[string]bool {
	exported := map[string]bool{}
	for _, fn := range file.Funcs {
		if fn.IsExport {
			exported[fn.Name] = true
		}
	}
	return exported
}
