package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/llgen/internal/lgerrors"
	"github.com/dekarrin/llgen/internal/strset"
)

// key returns the canonical cache key for a symbol sequence: a space-joined
// list of symbol names. The empty sequence keys to "".
func key(alpha []Symbol) string {
	names := make([]string, len(alpha))
	for i, s := range alpha {
		names[i] = s.Name
	}
	return strings.Join(names, " ")
}

// FIRST computes FIRST(alpha) for an arbitrary symbol sequence, including the
// empty sequence (FIRST(epsilon) = {EPS}). It runs the full fixed-point
// computation over the grammar's rules on first use and thereafter answers
// from cache; a sequence not yet in the cache is derived from the completed
// single-symbol FIRST sets and then memoized.
func (g *Grammar) FIRST(alpha ...Symbol) strset.Set {
	g.ensureFirstComputed()
	return g.firstOfSequence(alpha)
}

// firstOfSequence looks up or (for sequences not already memoized, such as
// ad-hoc alternatives) derives FIRST(alpha) from the completed single-symbol
// FIRST sets. Safe to call only after ensureFirstComputed.
func (g *Grammar) firstOfSequence(alpha []Symbol) strset.Set {
	k := key(alpha)
	if cached, ok := g.first[k]; ok {
		return cached
	}

	result := g.computeFirstOfSequence(alpha, g.first)
	g.first[k] = result
	return result
}

// ensureFirstComputed runs the FIRST fixed-point iteration once. Subsequent
// calls are no-ops, satisfying the idempotence property: running FIRST twice
// must yield identical sets.
func (g *Grammar) ensureFirstComputed() {
	if g.first == nil {
		g.first = map[string]strset.Set{}
	}
	if len(g.first) > 0 {
		return
	}

	// seed every terminal's single-symbol FIRST set
	for _, t := range g.TokenOrder {
		g.first[t] = strset.New(t)
	}
	g.first[EPS] = strset.New(EPS)

	for _, nt := range g.RuleOrder {
		if _, ok := g.first[nt]; !ok {
			g.first[nt] = strset.New()
		}
	}

	// iterate every production's right-hand side to quiescence: a full
	// sweep that adds nothing to any FIRST set means the least fixed point
	// has been reached.
	for {
		grew := false
		for _, lhs := range g.RuleOrder {
			for _, alt := range g.Rules[lhs] {
				altFirst := g.computeFirstOfSequence(alt, g.first)
				if g.first[lhs].AddAll(altFirst) {
					grew = true
				}
			}
		}
		if !grew {
			break
		}
	}
}

// computeFirstOfSequence applies the recursive FIRST definition to alpha
// using the partially- or fully-computed single-symbol table. It does not
// itself iterate to a fixed point; callers driving the outer sweep rely on
// repeated calls across sweeps to converge.
func (g *Grammar) computeFirstOfSequence(alpha []Symbol, table map[string]strset.Set) strset.Set {
	if len(alpha) == 0 {
		return strset.New(EPS)
	}

	head, tail := alpha[0], alpha[1:]

	switch head.Kind {
	case TranslationSymbol:
		return g.computeFirstOfSequence(tail, table)
	case Eps:
		return g.computeFirstOfSequence(tail, table)
	case Terminal:
		return strset.New(head.Name)
	case NonTerminal:
		result := strset.New()
		headFirst := table[head.Name]
		for t := range headFirst {
			if t != EPS {
				result.Add(t)
			}
		}
		if headFirst.Has(EPS) {
			result.AddAll(g.computeFirstOfSequence(tail, table))
		}
		return result
	default:
		// EOF and anything else cannot legally appear mid-sequence; treat
		// as contributing nothing rather than panicking, since this is
		// reached only from already-validated grammars.
		return strset.New()
	}
}

// FOLLOW computes FOLLOW(nonTerm). It returns a MissingStart error if the
// start non-terminal does not exist, and runs the FIRST fixed point to
// completion itself if that has not happened yet; FOLLOW is computed for
// every non-terminal the first time any one of them is requested.
func (g *Grammar) FOLLOW(nonTerm string) (strset.Set, error) {
	if _, ok := g.Rules[Start]; !ok {
		return nil, lgerrors.MissingStart()
	}
	g.ensureFirstComputed()
	g.ensureFollowComputed()

	f, ok := g.follow[nonTerm]
	if !ok {
		return strset.New(), nil
	}
	return f, nil
}

func (g *Grammar) ensureFollowComputed() {
	if g.followComputed {
		return
	}

	for _, nt := range g.RuleOrder {
		g.follow[nt] = strset.New()
	}
	g.follow[Start].Add(EOF)

	for {
		grew := false
		for _, lhs := range g.RuleOrder {
			for _, alt := range g.Rules[lhs] {
				for i, sym := range alt {
					if sym.Kind != NonTerminal {
						continue
					}
					gamma := alt[i+1:]
					gammaFirst := g.computeFirstOfSequence(gamma, g.first)

					added := strset.New()
					for t := range gammaFirst {
						if t != EPS {
							added.Add(t)
						}
					}
					if g.follow[sym.Name].AddAll(added) {
						grew = true
					}

					if gammaFirst.Has(EPS) {
						if g.follow[sym.Name].AddAll(g.follow[lhs]) {
							grew = true
						}
					}
				}
			}
		}
		if !grew {
			break
		}
	}

	g.followComputed = true
}

// Director returns Dir(A, alpha) = FIRST(alpha) \ {EPS}, extended with
// FOLLOW(A) when EPS is in FIRST(alpha).
func (g *Grammar) Director(nonTerm string, alpha Production) (strset.Set, error) {
	first := g.FIRST(alpha...)
	dir := strset.New()
	for t := range first {
		if t != EPS {
			dir.Add(t)
		}
	}
	if first.Has(EPS) {
		follow, err := g.FOLLOW(nonTerm)
		if err != nil {
			return nil, err
		}
		dir.AddAll(follow)
	}
	return dir, nil
}

// IsLL1 reports whether every pair of distinct alternatives of every
// non-terminal has disjoint director sets.
func (g *Grammar) IsLL1() (bool, error) {
	err := g.checkLL1()
	if err == nil {
		return true, nil
	}
	if kind, ok := lgerrors.KindOf(err); ok && kind == lgerrors.KindNotLL1 {
		return false, nil
	}
	return false, err
}

// checkLL1 returns nil if the grammar is LL(1), a lgerrors NotLL1 error
// naming the first conflict found otherwise, or a non-nil non-NotLL1 error
// on a precondition failure (e.g. missing start).
func (g *Grammar) checkLL1() error {
	for _, lhs := range g.RuleOrder {
		alts := g.Rules[lhs]
		dirs := make([]strset.Set, len(alts))
		for i, alt := range alts {
			d, err := g.Director(lhs, alt)
			if err != nil {
				return err
			}
			dirs[i] = d
		}
		for i := 0; i < len(alts); i++ {
			for j := i + 1; j < len(alts); j++ {
				if !dirs[i].DisjointWith(dirs[j]) {
					overlap := dirs[i].Intersection(dirs[j])
					return lgerrors.NotLL1(lhs, alts[i].String(), alts[j].String(), fmt.Sprintf("%v", overlap.Sorted()))
				}
			}
		}
	}
	return nil
}
