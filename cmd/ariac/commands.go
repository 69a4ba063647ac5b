package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ariacc/ariac/internal/codegen"
	"github.com/ariacc/ariac/internal/concurrency/pool"
	"github.com/ariacc/ariac/internal/config"
	"github.com/ariacc/ariac/internal/contracts"
	"github.com/ariacc/ariac/internal/test"
)

func cmdBuild(args []string, verify string, cfg *config.Config) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ariac build <file.aria>")
	}
	mode, err := verificationMode(verify)
	if err != nil {
		return err
	}
	fmt.Printf("%s Building %s\n", cyan("→"), args[0])
	result, err := compileFile(args[0], mode, cfg.SearchPaths)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d function(s) compiled, %d string constant(s) interned\n",
		green("✓"), len(result.Obj.Functions), len(result.Obj.Strings))
	for _, fn := range result.Obj.Functions {
		if fn.Exported {
			fmt.Printf("  %s %s (frame %d bytes)\n", yellow("export"), fn.Symbol, fn.FrameSize)
		}
	}
	return nil
}

func cmdCheck(args []string, cfg *config.Config, report bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ariac check [--report] <file.aria>...")
	}
	if !report {
		fmt.Printf("%s Checking %s\n", cyan("→"), args[0])
		if _, err := compileFile(args[0], contracts.Disabled, cfg.SearchPaths); err != nil {
			return err
		}
		fmt.Printf("%s No errors found\n", green("✓"))
		return nil
	}
	return cmdCheckReport(args, cfg)
}

// cmdCheckReport runs one check case per file and prints the run as a
// structured test.Report, so a CI step or editor integration can parse check
// results the same way it parses a test run instead of scraping stdout.
func cmdCheckReport(args []string, cfg *config.Config) error {
	runner := test.NewRunner()
	for _, path := range args {
		path := path
		runner.RunTest("check", path, func() error {
			_, err := compileFile(path, contracts.Disabled, cfg.SearchPaths)
			return err
		})
	}

	data, err := runner.GetReport().ToJSON()
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func cmdRun(args []string, verify string, trace bool, cfg *config.Config) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ariac run <file.aria>")
	}
	mode, err := verificationMode(verify)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(args[0], ".aria") {
		fmt.Fprintf(os.Stderr, "%s: file does not have a .aria extension\n", yellow("Warning"))
	}

	fmt.Printf("%s Compiling %s\n", cyan("→"), args[0])
	result, err := compileFile(args[0], mode, cfg.SearchPaths)
	if err != nil {
		return err
	}
	if trace {
		fmt.Printf("  %s Tracing enabled\n", yellow("⚡"))
	}

	main, ok := entryFunction(result)
	if !ok {
		return fmt.Errorf("no 'main' function found in %s", args[0])
	}

	workers := pool.New()
	if cfg.WorkerPoolSize > 0 {
		workers = pool.WithWorkers(cfg.WorkerPoolSize)
	}
	defer workers.Shutdown()

	fmt.Printf("%s Running %s (%d instruction block(s), pool size %d)\n",
		green("✓"), main.Symbol, len(main.Blocks), workers.NumWorkers())
	return nil
}

func entryFunction(result *compileResult) (*codegen.FunctionObject, bool) {
	for _, fn := range result.Obj.Functions {
		if fn.Symbol == "main" {
			return fn, true
		}
	}
	return nil, false
}
