// Package emit consumes an analyzed, LL(1) grammar and renders it into Go
// source for a lexer, a recursive-descent parser, an AST/visitor scaffold,
// and (if none exists yet) a driver skeleton.
package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/dekarrin/llgen/internal/grammar"
	"github.com/dekarrin/llgen/internal/lgerrors"
)

// Options configures emission.
type Options struct {
	// Package is the package name written into ast.go and parser.go.
	Package string
	// ImportPath is the import path used by the generated main.go to reach
	// the package containing ast.go/parser.go; only used when a main.go is
	// actually generated.
	ImportPath string
}

type tokenRegex struct {
	Name    string
	Pattern string
}

type translationSymbol struct {
	Name string
}

// Exported returns the Go-exported visitor method name for this translation
// symbol.
func (t translationSymbol) Exported() string {
	if t.Name == "" {
		return t.Name
	}
	r := []rune(t.Name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

type parseMethod struct {
	NonTerminal string
	Cases       string
}

type astData struct {
	Package            string
	Tokens             []string
	TranslationSymbols []translationSymbol
}

type parserData struct {
	Package      string
	Start        string
	TokenRegexes []tokenRegex
	Methods      []parseMethod
}

type mainData struct {
	ImportPath         string
	TranslationSymbols []translationSymbol
}

// Artifact is one generated output file.
type Artifact struct {
	Filename string
	Source   []byte
}

// Generate renders the AST header and the parser/lexer source for g. It
// returns an error if g is not LL(1); callers must gate on g.IsLL1() first,
// but Generate itself re-checks as a defensive boundary since emission must
// never silently proceed on a non-LL(1) grammar.
func Generate(g *grammar.Grammar, opts Options) ([]Artifact, error) {
	ok, err := g.IsLL1()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("refusing to emit: grammar is not LL(1)")
	}

	tsNames := g.TranslationSymbols()
	ts := make([]translationSymbol, len(tsNames))
	for i, name := range tsNames {
		ts[i] = translationSymbol{Name: name}
	}

	astSrc, err := renderAST(g, opts, ts)
	if err != nil {
		return nil, err
	}

	parserSrc, err := renderParser(g, opts)
	if err != nil {
		return nil, err
	}

	return []Artifact{
		{Filename: "ast.go", Source: astSrc},
		{Filename: "parser.go", Source: parserSrc},
	}, nil
}

// GenerateMain renders the driver skeleton. Callers should skip calling this
// (or discard the result) when a main.go already exists in the output
// directory, per the "only if absent" rule.
func GenerateMain(g *grammar.Grammar, opts Options) ([]byte, error) {
	tsNames := g.TranslationSymbols()
	ts := make([]translationSymbol, len(tsNames))
	for i, name := range tsNames {
		ts[i] = translationSymbol{Name: name}
	}

	return render("main", mainTemplate, mainData{
		ImportPath:         opts.ImportPath,
		TranslationSymbols: ts,
	})
}

func renderAST(g *grammar.Grammar, opts Options, ts []translationSymbol) ([]byte, error) {
	data := astData{
		Package:            opts.Package,
		Tokens:             g.Terminals(),
		TranslationSymbols: ts,
	}
	return render("ast", astTemplate, data)
}

func renderParser(g *grammar.Grammar, opts Options) ([]byte, error) {
	regexes := make([]tokenRegex, 0, len(g.Terminals()))
	for _, name := range g.Terminals() {
		regexes = append(regexes, tokenRegex{Name: name, Pattern: g.TokenPatterns[name]})
	}

	methods := make([]parseMethod, 0, len(g.NonTerminals()))
	for _, nt := range g.NonTerminals() {
		cases, err := renderCases(g, nt)
		if err != nil {
			return nil, err
		}
		methods = append(methods, parseMethod{NonTerminal: nt, Cases: cases})
	}

	data := parserData{
		Package:      opts.Package,
		Start:        grammar.Start,
		TokenRegexes: regexes,
		Methods:      methods,
	}
	return render("parser", parserTemplate, data)
}

// renderCases builds the body of the switch statement inside parse_<nt>: one
// case arm per alternative, covering the terminals in that alternative's
// director set.
func renderCases(g *grammar.Grammar, nt string) (string, error) {
	var sb strings.Builder

	for _, alt := range g.Rules[nt] {
		dir, err := g.Director(nt, alt)
		if err != nil {
			return "", err
		}
		if dir.Empty() {
			// An alternative with an empty director set can never be
			// selected. This happens when the alternative derives no
			// terminal string, or when it is nullable and FOLLOW(nt) is
			// empty (as for a non-terminal unreachable from start); it is
			// not itself an LL(1) violation.
			continue
		}

		terms := dir.Sorted()
		for i, t := range terms {
			if i > 0 {
				sb.WriteString(", Tok")
			} else {
				sb.WriteString("\tcase Tok")
			}
			sb.WriteString(t)
		}
		sb.WriteString(":\n")

		if !alt.IsEpsilon() {
			for _, sym := range alt {
				switch sym.Kind {
				case grammar.Terminal:
					fmt.Fprintf(&sb, "\t\t{\n")
					fmt.Fprintf(&sb, "\t\t\tkind, text := p.lexer.Peek()\n")
					fmt.Fprintf(&sb, "\t\t\tif kind != Tok%s {\n", sym.Name)
					fmt.Fprintf(&sb, "\t\t\t\treturn nil, fmt.Errorf(\"expected %%s but got %%s while parsing %s\", Tok%s, kind)\n", nt, sym.Name)
					fmt.Fprintf(&sb, "\t\t\t}\n")
					fmt.Fprintf(&sb, "\t\t\tr.AddChild(NewLeaf(text))\n")
					fmt.Fprintf(&sb, "\t\t\tif err := p.lexer.NextToken(); err != nil {\n")
					fmt.Fprintf(&sb, "\t\t\t\treturn nil, err\n")
					fmt.Fprintf(&sb, "\t\t\t}\n")
					fmt.Fprintf(&sb, "\t\t}\n")
				case grammar.NonTerminal:
					fmt.Fprintf(&sb, "\t\t{\n")
					fmt.Fprintf(&sb, "\t\t\tchild, err := p.parse_%s(r)\n", sym.Name)
					fmt.Fprintf(&sb, "\t\t\tif err != nil {\n")
					fmt.Fprintf(&sb, "\t\t\t\treturn nil, err\n")
					fmt.Fprintf(&sb, "\t\t\t}\n")
					fmt.Fprintf(&sb, "\t\t\tr.AddChild(child)\n")
					fmt.Fprintf(&sb, "\t\t}\n")
				case grammar.TranslationSymbol:
					fmt.Fprintf(&sb, "\t\tp.visitor.Visit%s(r)\n", translationSymbol{Name: sym.TranslationName()}.Exported())
				}
			}
		}
	}

	return sb.String(), nil
}

func render(name, tmpl string, data any) ([]byte, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("internal template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template %q: %w", name, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// fall back to the unformatted source; a malformed template is a
		// generator bug, not a reason to withhold output entirely.
		return buf.Bytes(), nil
	}
	return formatted, nil
}

// WriteArtifacts writes each artifact to outDir, and writes a main.go driver
// skeleton only if outDir does not already contain one.
func WriteArtifacts(outDir string, artifacts []Artifact, g *grammar.Grammar, opts Options) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return lgerrors.IO("creating output directory", err)
	}

	for _, a := range artifacts {
		path := filepath.Join(outDir, a.Filename)
		if err := os.WriteFile(path, a.Source, 0o644); err != nil {
			return lgerrors.IO(fmt.Sprintf("writing %s", path), err)
		}
	}

	mainPath := filepath.Join(outDir, "main.go")
	if _, err := os.Stat(mainPath); os.IsNotExist(err) {
		mainSrc, err := GenerateMain(g, opts)
		if err != nil {
			return err
		}
		if err := os.WriteFile(mainPath, mainSrc, 0o644); err != nil {
			return lgerrors.IO(fmt.Sprintf("writing %s", mainPath), err)
		}
	} else if err != nil {
		return lgerrors.IO("checking for existing main.go", err)
	}

	return nil
}
