// Package repl implements an interactive grammar-inspection session: a
// small command loop over an analyzed Grammar for querying FIRST, FOLLOW,
// and director sets without regenerating output files.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/llgen/internal/grammar"
)

// Run starts the inspection loop, reading commands from an interactive
// readline instance and writing results to out. It returns when the user
// types "quit" or sends EOF.
func Run(g *grammar.Grammar, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "llgen> ",
		HistoryFile: "",
	})
	if err != nil {
		return fmt.Errorf("starting inspection shell: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(out, "grammar inspection shell. type \"help\" for commands, \"quit\" to exit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := dispatch(g, out, line); err != nil {
			if err == errQuit {
				return nil
			}
			fmt.Fprintln(out, "error:", err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func dispatch(g *grammar.Grammar, out io.Writer, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(out, "commands: first <non-terminal>, follow <non-terminal>, table, ll1, quit")
		return nil
	case "first":
		if len(fields) != 2 {
			return fmt.Errorf("usage: first <non-terminal>")
		}
		sym, ok := grammar.ParseSymbol(fields[1])
		if !ok {
			return fmt.Errorf("not a valid symbol: %s", fields[1])
		}
		fmt.Fprintln(out, g.FIRST(sym).String())
		return nil
	case "follow":
		if len(fields) != 2 {
			return fmt.Errorf("usage: follow <non-terminal>")
		}
		set, err := g.FOLLOW(fields[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, set.String())
		return nil
	case "table":
		dump, err := g.DumpSets()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, dump)
		return nil
	case "ll1":
		ok, err := g.IsLL1()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)
		return nil
	default:
		return fmt.Errorf("unknown command %q; type \"help\"", fields[0])
	}
}
