package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ariacc/ariac/internal/contracts"
	"github.com/peterh/liner"
)

// cmdInspect opens an interactive console over one compiled file's module
// graph, MIR functions, and decision trees, mirroring internal/repl's own
// liner-backed line editor rather than building a one-off scanner loop.
func cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ariac inspect <file.aria>")
	}
	result, err := compileFile(args[0], contracts.Disabled, nil)
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCompleter(func(s string) []string {
		commands := []string{"functions", "mir ", "help", "quit"}
		var matches []string
		for _, c := range commands {
			if strings.HasPrefix(c, s) {
				matches = append(matches, c)
			}
		}
		return matches
	})

	fmt.Printf("%s inspecting %s (%d function(s))\n", bold("ariac"), args[0], len(result.MIR.Functions))
	fmt.Println(dim("Type 'help' for commands, 'quit' to exit"))

	for {
		input, err := line.Prompt("inspect> ")
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if !dispatchInspectCommand(input, result) {
			return nil
		}
	}
}

// dispatchInspectCommand runs one inspector command, returning false when
// the session should end.
func dispatchInspectCommand(input string, result *compileResult) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "quit", ":q", "exit":
		return false
	case "help", ":h":
		printInspectHelp()
	case "functions":
		for _, fn := range result.MIR.Functions {
			fmt.Printf("  %s (%d block(s), %d local(s))\n", fn.Name, len(fn.Blocks), len(fn.LocalTypes))
		}
	case "mir":
		if len(fields) < 2 {
			fmt.Println("usage: mir <function-name>")
			break
		}
		fn, ok := result.MIR.FunctionByName(fields[1])
		if !ok {
			fmt.Fprintf(os.Stderr, "%s: no such function %q\n", red("Error"), fields[1])
			break
		}
		fmt.Println(fn.String())
	default:
		fmt.Printf("unknown command %q; type 'help'\n", fields[0])
	}
	return true
}

func printInspectHelp() {
	fmt.Println("Commands:")
	fmt.Println("  functions          list all compiled functions")
	fmt.Println("  mir <name>         dump a function's MIR control-flow graph")
	fmt.Println("  help               show this message")
	fmt.Println("  quit               exit the inspector")
}

func dim(s string) string {
	return "\033[2m" + s + "\033[0m"
}
