package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/typelayout/layout"
	"github.com/wippyai/typelayout/region"
	"github.com/wippyai/typelayout/witlayout"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("layoutdump", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		witFile     = flags.String("wit", "", "Path to a WIT JSON document (wasm-tools component wit --json)")
		typeName    = flags.String("type", "", "Only show the named type")
		tupleTypes  = flags.String("tuple", "", "Lay out a tuple of primitive types (u8,u64,string,...)")
		interactive = flags.Bool("i", false, "Interactive mode with TUI")
		verbose     = flags.Bool("v", false, "Log layout declarations to stderr")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *witFile == "" && *tupleTypes == "" {
		usage(stderr)
		return 1
	}
	if *tupleTypes != "" && (*witFile != "" || *typeName != "") {
		fmt.Fprintln(stderr, "Error: -tuple cannot be combined with -wit or -type")
		usage(stderr)
		return 1
	}

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer l.Sync()
		layout.SetLogger(l)
		region.SetLogger(l)
	}

	entries, source, err := load(*witFile, *tupleTypes, *typeName)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *interactive {
		if err := runInteractive(source, entries); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	color := false
	if f, ok := stdout.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	render(stdout, entries, newStyles(color))
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: layoutdump -wit <file.json> [-type name]")
	fmt.Fprintln(w, "       layoutdump -wit <file.json> -i  (interactive mode)")
	fmt.Fprintln(w, "       layoutdump -tuple u8,u64,u16")
}

// load collects the layouts requested on the command line and names their
// source for display.
func load(witFile, tupleTypes, typeName string) ([]entry, string, error) {
	calc := witlayout.NewCalculator()

	if tupleTypes != "" {
		td, err := parseTuple(tupleTypes)
		if err != nil {
			return nil, "", err
		}
		return []entry{newEntry(calc, td)}, "tuple<" + tupleTypes + ">", nil
	}

	defs, err := loadDocument(witFile)
	if err != nil {
		return nil, "", err
	}
	entries, err := collect(calc, defs, typeName)
	if err != nil {
		return nil, "", err
	}
	return entries, witFile, nil
}
