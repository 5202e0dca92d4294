package grammar

import (
	"github.com/dekarrin/rosed"
)

// DumpSets renders a human-readable table of FIRST, FOLLOW, and director
// sets for every non-terminal, for use by the --dump-sets diagnostic flag
// and the inspection REPL.
func (g *Grammar) DumpSets() (string, error) {
	header := []string{"non-terminal", "FIRST", "FOLLOW", "director sets"}
	rows := [][]string{header}

	for _, nt := range g.RuleOrder {
		first := g.FIRST(Symbol{Name: nt, Kind: NonTerminal})
		follow, err := g.FOLLOW(nt)
		if err != nil {
			return "", err
		}

		var dirCol string
		for i, alt := range g.Rules[nt] {
			dir, err := g.Director(nt, alt)
			if err != nil {
				return "", err
			}
			if i > 0 {
				dirCol += "\n"
			}
			dirCol += alt.String() + ": " + dir.String()
		}

		rows = append(rows, []string{nt, first.String(), follow.String(), dirCol})
	}

	return rosed.Edit("").
		InsertTableOpts(0, rows, 100, rosed.Options{
			TableBorders: true,
		}).
		String(), nil
}
