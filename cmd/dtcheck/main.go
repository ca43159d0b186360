package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	dirtreecheck "github.com/mattkeenan/dirtreecheck/pkg"
)

const version = "1.0.0"

// Arguments holds the parsed command line
type Arguments struct {
	ScriptPath   string
	ConfigDir    string
	VerboseLevel int
	DebugFlags   string
	NoValidate   bool
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	// Handle help and version early
	if os.Args[1] == "--help" || os.Args[1] == "-h" || os.Args[1] == "help" {
		showHelp()
		return
	}

	if os.Args[1] == "--version" {
		fmt.Printf("dtcheck %s\n", version)
		return
	}

	args, err := parseArguments(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "dtcheck: %v\n", err)
		os.Exit(1)
	}

	validateAfterMutation := true
	if args.ConfigDir != "" {
		cfg, err := dirtreecheck.LoadConfig(args.ConfigDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dtcheck: %v\n", err)
			os.Exit(1)
		}
		cfg.ApplyGlobals()
		validateAfterMutation = cfg.GetValidationConfig().AfterMutation
	}

	// Command line overrides config
	if args.VerboseLevel > 0 {
		dirtreecheck.SetVerboseLevel(args.VerboseLevel)
	}
	if args.DebugFlags != "" {
		dirtreecheck.SetDebugFlags(args.DebugFlags)
	}
	if args.NoValidate {
		validateAfterMutation = false
	}

	script := os.Stdin
	if args.ScriptPath != "-" {
		file, err := os.Open(args.ScriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dtcheck: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		script = file
	}

	dt := dirtreecheck.NewDirTree()
	if err := runScript(dt, script, validateAfterMutation); err != nil {
		fmt.Fprintf(os.Stderr, "dtcheck: %v\n", err)
		os.Exit(1)
	}
}

// parseArguments parses options followed by a single script path (or "-")
func parseArguments(argv []string) (*Arguments, error) {
	args := &Arguments{
		ConfigDir: ".",
	}

	i := 0
	for ; i < len(argv); i++ {
		arg := argv[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			break
		}

		switch arg {
		case "-v", "--verbose":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("option %s requires a level", arg)
			}
			level, err := strconv.Atoi(argv[i])
			if err != nil || level < 0 {
				return nil, fmt.Errorf("invalid verbose level %q", argv[i])
			}
			args.VerboseLevel = level
		case "-d", "--debug":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("option %s requires debug flags", arg)
			}
			args.DebugFlags = argv[i]
		case "-C", "--config-dir":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("option %s requires a directory", arg)
			}
			args.ConfigDir = argv[i]
		case "--no-config":
			args.ConfigDir = ""
		case "--no-validate":
			args.NoValidate = true
		default:
			return nil, fmt.Errorf("unknown option %q", arg)
		}
	}

	if i != len(argv)-1 {
		return nil, fmt.Errorf("expected exactly one script path (or - for stdin)")
	}
	args.ScriptPath = argv[i]

	return args, nil
}

// runScript executes tree commands line by line. Mutations are followed by a
// consistency check when enabled; a failed check aborts the run.
func runScript(dt *dirtreecheck.DirTree, script io.Reader, validateAfterMutation bool) error {
	scanner := bufio.NewScanner(script)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		command := fields[0]
		mutated := false

		switch command {
		case "insert":
			if len(fields) != 2 {
				return fmt.Errorf("line %d: insert requires a path", lineNum)
			}
			if err := dt.Insert(fields[1]); err != nil {
				return fmt.Errorf("line %d: insert %s: %w", lineNum, fields[1], err)
			}
			mutated = true
		case "remove":
			if len(fields) != 2 {
				return fmt.Errorf("line %d: remove requires a path", lineNum)
			}
			if err := dt.Remove(fields[1]); err != nil {
				return fmt.Errorf("line %d: remove %s: %w", lineNum, fields[1], err)
			}
			mutated = true
		case "contains":
			if len(fields) != 2 {
				return fmt.Errorf("line %d: contains requires a path", lineNum)
			}
			fmt.Printf("%s %t\n", fields[1], dt.Contains(fields[1]))
		case "list":
			fmt.Print(dt.Listing())
		case "count":
			fmt.Printf("%d\n", dt.Count())
		case "check":
			if !dt.Validate() {
				return fmt.Errorf("line %d: tree failed consistency check", lineNum)
			}
			fmt.Println("ok")
		case "snapshot":
			if len(fields) != 2 {
				return fmt.Errorf("line %d: snapshot requires a file path", lineNum)
			}
			if err := dt.WriteSnapshot(fields[1]); err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
		case "restore":
			if len(fields) != 2 {
				return fmt.Errorf("line %d: restore requires a file path", lineNum)
			}
			restored, err := dirtreecheck.LoadSnapshot(fields[1])
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
			*dt = *restored
			mutated = true
		default:
			return fmt.Errorf("line %d: unknown command %q", lineNum, command)
		}

		if mutated && validateAfterMutation {
			if !dt.Validate() {
				return fmt.Errorf("line %d: tree failed consistency check after %s", lineNum, command)
			}
		}
	}

	return scanner.Err()
}

func showUsage() {
	fmt.Fprintf(os.Stderr, "usage: dtcheck [options] <script>|-\n")
	fmt.Fprintf(os.Stderr, "Try 'dtcheck --help' for more information.\n")
}

func showHelp() {
	fmt.Println("dtcheck - directory tree builder with consistency checking")
	fmt.Println()
	fmt.Println("usage: dtcheck [options] <script>|-")
	fmt.Println()
	fmt.Println("Reads tree commands from the script file (or stdin with -):")
	fmt.Println("  insert <path>     add a path, creating missing ancestors")
	fmt.Println("  remove <path>     remove a path and its subtree")
	fmt.Println("  contains <path>   report whether a path is present")
	fmt.Println("  list              print the pre-order tree listing")
	fmt.Println("  count             print the tracked node count")
	fmt.Println("  check             run the consistency checker")
	fmt.Println("  snapshot <file>   write the tree to a snapshot file")
	fmt.Println("  restore <file>    replace the tree from a snapshot file")
	fmt.Println()
	fmt.Println("options:")
	fmt.Println("  -v, --verbose <level>    set verbose level (0-3)")
	fmt.Println("  -d, --debug <flags>      set debug flags (e.g. checker,tree)")
	fmt.Println("  -C, --config-dir <dir>   config base directory (default: .)")
	fmt.Println("      --no-config          skip config loading")
	fmt.Println("      --no-validate        skip checks after mutations")
	fmt.Println("      --version            print version")
	fmt.Println("  -h, --help               this help")
}
