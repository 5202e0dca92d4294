/*
Llgen generates a lexer, a recursive-descent LL(1) parser, and an AST/visitor
scaffold from a grammar description.

Usage:

	llgen [flags]

The flags are:

	-g, --grammar FILE
		The grammar description file to read. Required.

	-o, --out DIR
		The directory to write generated source into. Required unless
		--dump-sets or --inspect is given.

	-c, --config FILE
		Optional llgen.toml configuration file. Defaults to "llgen.toml" in
		the current directory; silently ignored if absent.

	-p, --package NAME
		Overrides the package name written into generated source.

	--import-path PATH
		Overrides the import path a freshly generated main.go uses to reach
		the generated package.

	--dump-sets
		Print a table of FIRST, FOLLOW, and director sets for every
		non-terminal and exit without emitting anything.

	--inspect
		Start an interactive grammar-inspection shell instead of emitting.

Exit codes: 0 on success; non-zero with a diagnostic on any failure.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/llgen/internal/config"
	"github.com/dekarrin/llgen/internal/emit"
	"github.com/dekarrin/llgen/internal/grammar"
	"github.com/dekarrin/llgen/internal/lgerrors"
	"github.com/dekarrin/llgen/internal/repl"
	"github.com/dekarrin/llgen/internal/version"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful run.
	ExitSuccess = iota
	// ExitUsageError indicates missing or contradictory flags.
	ExitUsageError
	// ExitParseError indicates the grammar description could not be parsed.
	ExitParseError
	// ExitAnalysisError indicates a missing start symbol or a non-LL(1)
	// grammar.
	ExitAnalysisError
	// ExitIOError indicates a failure reading input or writing output.
	ExitIOError
)

var (
	returnCode = ExitSuccess

	flagVersion    = pflag.BoolP("version", "v", false, "Gives the current version of llgen")
	grammarFile    = pflag.StringP("grammar", "g", "", "The grammar description file to read")
	outDir         = pflag.StringP("out", "o", "", "The directory to write generated source into")
	configFile     = pflag.StringP("config", "c", "llgen.toml", "Optional TOML file of generator settings")
	pkgOverride    = pflag.StringP("package", "p", "", "Overrides the package name written into generated source")
	importOverride = pflag.String("import-path", "", "Overrides the import path used by a freshly generated main.go")
	dumpSets       = pflag.Bool("dump-sets", false, "Print FIRST/FOLLOW/director sets and exit")
	inspect        = pflag.Bool("inspect", false, "Start an interactive grammar-inspection shell")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if *grammarFile == "" {
		fmt.Fprintln(os.Stderr, "ERROR: --grammar is required")
		returnCode = ExitUsageError
		return
	}
	if *outDir == "" && !*dumpSets && !*inspect {
		fmt.Fprintln(os.Stderr, "ERROR: --out is required unless --dump-sets or --inspect is given")
		returnCode = ExitUsageError
		return
	}

	src, err := os.ReadFile(*grammarFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitIOError
		return
	}

	g, err := grammar.Parse(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitParseError
		return
	}

	if err := g.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = classifyAnalysisOrParseError(err)
		return
	}

	if *dumpSets {
		dump, err := g.DumpSets()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitAnalysisError
			return
		}
		fmt.Println(dump)
		return
	}

	if *inspect {
		if err := repl.Run(g, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
		}
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitIOError
		return
	}
	cfg = config.Merge(config.Default(), cfg)
	if *pkgOverride != "" {
		cfg.Package = *pkgOverride
	}
	if *importOverride != "" {
		cfg.ImportPath = *importOverride
	}

	ok, err := g.IsLL1()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitAnalysisError
		return
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "ERROR: grammar is not LL(1)")
		returnCode = ExitAnalysisError
		return
	}

	opts := emit.Options{Package: cfg.Package, ImportPath: cfg.ImportPath}
	artifacts, err := emit.Generate(g, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitAnalysisError
		return
	}

	if err := emit.WriteArtifacts(*outDir, artifacts, g, opts); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitIOError
		return
	}

	for _, a := range artifacts {
		fmt.Printf("wrote %s (%s)\n", a.Filename, humanize.Bytes(uint64(len(a.Source))))
	}
}

func classifyAnalysisOrParseError(err error) int {
	kind, ok := lgerrors.KindOf(err)
	if !ok {
		return ExitParseError
	}
	switch kind {
	case lgerrors.KindMissingStart, lgerrors.KindNotLL1:
		return ExitAnalysisError
	case lgerrors.KindIO:
		return ExitIOError
	default:
		return ExitParseError
	}
}
