// Command ariac is the Aria compiler and package-manager driver: build,
// run, check, package (add/remove/install/publish), and inspect live in
// a single flag-dispatched main.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ariacc/ariac/internal/config"
	"github.com/fatih/color"
)

var (
	// Set by ldflags during release builds.
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	cfg, err := config.LoadFromDir(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		traceFlag   = flag.Bool("trace", false, "Enable execution tracing")
		verifyFlag  = flag.String("verify", "", "Contract verification mode: off, debug, release, force-all (default from ariac.yaml, else debug)")
		dryRun      = flag.Bool("dry-run", false, "Report what a command would do without doing it")
		reportFlag  = flag.Bool("report", false, "Emit a structured JSON test report instead of human-readable output (check only)")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	verify := *verifyFlag
	if verify == "" {
		verify = cfg.Verify
	}
	if verify == "" {
		verify = "debug"
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "build":
		err = cmdBuild(args, verify, cfg)
	case "run":
		err = cmdRun(args, verify, *traceFlag, cfg)
	case "check":
		err = cmdCheck(args, cfg, *reportFlag)
	case "init":
		err = cmdInit(args)
	case "add":
		err = cmdAdd(args)
	case "remove":
		err = cmdRemove(args)
	case "install":
		err = cmdInstall(args)
	case "publish":
		err = cmdPublish(args, *dryRun)
	case "inspect":
		err = cmdInspect(args)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("ariac %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
	fmt.Println("\nThe Aria compiler and package manager")
}

func printHelp() {
	fmt.Println(bold("ariac - the Aria compiler and package manager"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ariac <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file>           Compile a file to an object module\n", cyan("build"))
	fmt.Printf("  %s <file>             Compile and execute a file\n", cyan("run"))
	fmt.Printf("  %s <file>...        Type/contract-check one or more files without running them\n", cyan("check"))
	fmt.Printf("  %s [path]            Scaffold a new package manifest\n", cyan("init"))
	fmt.Printf("  %s <name> [ver]       Add a dependency to Aria.toml\n", cyan("add"))
	fmt.Printf("  %s <name>          Remove a dependency from Aria.toml\n", cyan("remove"))
	fmt.Printf("  %s                Resolve dependencies and write aria.lock\n", cyan("install"))
	fmt.Printf("  %s              Validate a package is ready to publish\n", cyan("publish"))
	fmt.Printf("  %s <file>          Interactively inspect module graph / MIR / decision trees\n", cyan("inspect"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version        Print version information")
	fmt.Println("  --help           Show this help message")
	fmt.Println("  --trace          Enable execution tracing (run only)")
	fmt.Println("  --verify <mode>  Contract verification mode: off, debug, release, force-all")
	fmt.Println("  --dry-run        Report what publish would do without doing it")
	fmt.Println("  --report         Emit a structured JSON test report (check only)")
	fmt.Println()
	fmt.Printf("A %s file in the current directory, if present, supplies default\n", cyan(config.FileName))
	fmt.Println("verification mode, worker-pool size, and extra module search paths.")
}
