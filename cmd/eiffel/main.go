package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mgomes/eiffel/eiffel"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "parse":
		return parseCommand(args[2:])
	case "dump":
		return dumpCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "repl":
		return runREPL()
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	configPath := fs.String("config", "", "path to an eiffel.toml file (default: search upward from the program)")
	fromAST := fs.Bool("ast", false, "treat the input as an AST document instead of source")
	formatName := fs.String("format", "", "AST document format: yaml, json or cbor (default: from extension)")
	entryClass := fs.String("entry-class", "", "class whose entry feature starts the program")
	entryFeature := fs.String("entry-feature", "", "feature invoked on the entry class")
	strict := fs.Bool("strict", false, "treat missing classes and features as errors")
	stepQuota := fs.Int("step-quota", 0, "maximum evaluation steps (0: unlimited)")
	recursionLimit := fs.Int("recursion-limit", 0, "maximum routine call depth (0: built-in guard)")
	verbose := fs.Bool("v", false, "log evaluation details to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("eiffel run: program path required")
	}

	programPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve program path: %w", err)
	}
	input, err := os.ReadFile(programPath)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	cfg, err := resolveConfig(*configPath, filepath.Dir(programPath))
	if err != nil {
		return err
	}
	if *entryClass != "" {
		cfg.EntryClass = *entryClass
	}
	if *entryFeature != "" {
		cfg.EntryFeature = *entryFeature
	}
	if *strict {
		cfg.StrictMembers = true
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "step-quota":
			cfg.StepQuota = *stepQuota
		case "recursion-limit":
			cfg.RecursionLimit = *recursionLimit
		}
	})
	if *verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	engine, err := eiffel.NewEngine(cfg)
	if err != nil {
		return err
	}

	var script *eiffel.Script
	if *fromAST {
		format, err := astFormat(*formatName, programPath)
		if err != nil {
			return err
		}
		program, err := eiffel.UnmarshalProgram(input, format)
		if err != nil {
			return fmt.Errorf("load AST: %w", err)
		}
		script = engine.Load(program)
	} else {
		script, err = engine.Compile(string(input))
		if err != nil {
			return fmt.Errorf("compile failed: %w", err)
		}
	}

	if err := script.Run(context.Background(), os.Stdout); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

// resolveConfig loads the explicit config file, or the nearest eiffel.toml above dir.
func resolveConfig(explicit, dir string) (eiffel.Config, error) {
	path := explicit
	if path == "" {
		found, err := eiffel.FindConfig(dir)
		if err != nil {
			return eiffel.Config{}, fmt.Errorf("find config: %w", err)
		}
		path = found
	}
	if path == "" {
		return eiffel.Config{}, nil
	}
	return eiffel.LoadConfig(path)
}

func astFormat(name, path string) (eiffel.Format, error) {
	if name != "" {
		return eiffel.ParseFormat(name)
	}
	if format, ok := eiffel.FormatForPath(path); ok {
		return format, nil
	}
	return "", fmt.Errorf("cannot infer AST format from %s; pass -format", filepath.Base(path))
}

func parseCommand(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	formatName := fs.String("format", "", "output format: yaml, json or cbor (default: from -o, else yaml)")
	outPath := fs.String("o", "", "write the document to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	program, err := readProgram("parse", fs.Args())
	if err != nil {
		return err
	}

	format := eiffel.FormatYAML
	switch {
	case *formatName != "":
		format, err = eiffel.ParseFormat(*formatName)
		if err != nil {
			return err
		}
	case *outPath != "":
		if inferred, ok := eiffel.FormatForPath(*outPath); ok {
			format = inferred
		}
	}

	data, err := eiffel.MarshalProgram(program, format)
	if err != nil {
		return fmt.Errorf("encode AST: %w", err)
	}
	if *outPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *outPath, err)
	}
	return nil
}

func dumpCommand(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	tokens := fs.Bool("tokens", false, "list tokens instead of the syntax tree")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tokens {
		source, err := readSource("dump", fs.Args())
		if err != nil {
			return err
		}
		return eiffel.FprintTokens(os.Stdout, eiffel.Tokenize(source))
	}
	program, err := readProgram("dump", fs.Args())
	if err != nil {
		return err
	}
	return eiffel.FprintAST(os.Stdout, program)
}

func readSource(command string, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("eiffel %s: program path required", command)
	}
	input, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read program: %w", err)
	}
	return string(input), nil
}

func readProgram(command string, args []string) (*eiffel.Program, error) {
	source, err := readSource(command, args)
	if err != nil {
		return nil, err
	}
	program, err := eiffel.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return program, nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	writeUsage(os.Stderr, filepath.Base(os.Args[0]))
}

func writeUsage(w io.Writer, prog string) {
	fmt.Fprintf(w, "Usage: %s <command> [flags] <file>\n", prog)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run      execute a program (MAIN.make when present, else top-level statements)")
	fmt.Fprintln(w, "  parse    write the program's AST document (yaml, json or cbor)")
	fmt.Fprintln(w, "  dump     print the syntax tree, or the token list with -tokens")
	fmt.Fprintln(w, "  analyze  report suspicious constructs without running the program")
	fmt.Fprintln(w, "  fmt      normalize whitespace in .e files")
	fmt.Fprintln(w, "  repl     start an interactive session")
	fmt.Fprintln(w, "  lsp      serve diagnostics, completion and hover over stdio")
	fmt.Fprintln(w, "Run flags:")
	fmt.Fprintln(w, "  -config <file>          engine settings (default: nearest eiffel.toml)")
	fmt.Fprintln(w, "  -ast [-format <fmt>]    read an AST document instead of source")
	fmt.Fprintln(w, "  -entry-class <name>     entry class (default \"MAIN\")")
	fmt.Fprintln(w, "  -entry-feature <name>   entry feature (default \"make\")")
	fmt.Fprintln(w, "  -strict                 missing classes and features are errors")
	fmt.Fprintln(w, "  -step-quota <n>         stop after n evaluation steps (default unlimited)")
	fmt.Fprintln(w, "  -recursion-limit <n>    maximum routine call depth")
	fmt.Fprintln(w, "  -v                      log evaluation details to stderr")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
