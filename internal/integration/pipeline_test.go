package integration

import (
	"testing"

	"github.com/ariacc/ariac/internal/ast"
	"github.com/ariacc/ariac/internal/elaborate"
	"github.com/ariacc/ariac/internal/lexer"
	"github.com/ariacc/ariac/internal/mir"
	"github.com/ariacc/ariac/internal/mirlower"
	"github.com/ariacc/ariac/internal/parser"
	"github.com/ariacc/ariac/internal/patterns"
	"github.com/ariacc/ariac/internal/types"
)

// compileToMIR drives one source file through the full front end: parse,
// elaborate to Core ANF, type check, lower to MIR. It stops and returns the
// first stage's error, mirroring cmd/ariac's compileFile without the
// codegen/contracts stages a front-end integration test doesn't need.
func compileToMIR(src string) (*mir.Program, error) {
	l := lexer.New(src, "test.aria")
	p := parser.New(l)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}

	elaborator := elaborate.NewElaborator()
	coreProg, err := elaborator.Elaborate(&ast.Program{File: file})
	if err != nil {
		return nil, err
	}

	if _, err := types.NewCoreTypeChecker().CheckCoreProgram(coreProg); err != nil {
		return nil, err
	}

	lowerer := mirlower.NewLowerer()
	lowerer.SetDecisionCompiler(patterns.NewCompiler())
	return lowerer.LowerProgram(coreProg)
}

func TestFullPipelineWellTypedFunctionsCompile(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "arithmetic",
			src: `func compute() -> int {
  2 + 3 * 4
}
`,
		},
		{
			name: "let binding",
			src: `func compute() -> int {
  let x = 5;
  x * 2
}
`,
		},
		{
			name: "if expression",
			src: `func choose(n: int) -> int {
  if n > 3 then 10 else 20
}
`,
		},
		{
			name: "string concat",
			src: `func greet(name: string) -> string {
  "hello " ++ name
}
`,
		},
		{
			name: "recursive function",
			src: `func fact(n: int) -> int {
  if n <= 1 then 1 else n * fact(n - 1)
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := compileToMIR(tt.src); err != nil {
				t.Fatalf("expected %s to compile, got error: %v", tt.name, err)
			}
		})
	}
}

func TestFullPipelineTypeErrorsAreRejected(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "bool arithmetic",
			src: `func bad() -> int {
  true + 1
}
`,
		},
		{
			name: "string/int comparison",
			src: `func bad() -> bool {
  "hello" > 5
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := compileToMIR(tt.src); err == nil {
				t.Fatalf("expected %s to fail type checking", tt.name)
			}
		})
	}
}

func TestFullPipelineLowersEveryDeclaredFunction(t *testing.T) {
	src := `func helper(x: int) -> int {
  x + 1
}

func main() -> int {
  helper(41)
}
`
	mirProg, err := compileToMIR(src)
	if err != nil {
		t.Fatalf("compiling: %v", err)
	}

	for _, name := range []string{"helper", "main"} {
		if _, ok := mirProg.FunctionByName(name); !ok {
			t.Errorf("expected MIR to contain a lowered function %q", name)
		}
	}
}
