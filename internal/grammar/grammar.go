package grammar

import (
	"fmt"

	"github.com/dekarrin/llgen/internal/lgerrors"
	"github.com/dekarrin/llgen/internal/strset"
)

// Grammar is the in-memory form of a parsed grammar description. It is built
// once by Parse, mutated in place by FIRST/FOLLOW/IsLL1 during analysis, and
// read-only afterward during emission.
type Grammar struct {
	// TokenPatterns maps terminal name to its regex source. The map is
	// unordered; TokenOrder holds the declaration order, which is the
	// tie-break rule for longest-match lexing in generated lexers.
	TokenPatterns map[string]string
	// TokenOrder preserves the declaration order of TokenPatterns' keys.
	TokenOrder []string

	// Rules maps non-terminal name to its alternatives, in declaration
	// order.
	Rules map[string][]Production
	// RuleOrder preserves the declaration order of Rules' keys.
	RuleOrder []string

	// first caches FIRST(alpha) keyed by the canonical space-joined
	// representation of alpha. Populated by FIRST.
	first map[string]strset.Set
	// follow maps non-terminal name to its FOLLOW set. Populated by FOLLOW.
	follow map[string]strset.Set

	followComputed bool
}

// New returns an empty Grammar ready to be populated by AddToken/AddRule.
func New() *Grammar {
	return &Grammar{
		TokenPatterns: map[string]string{},
		Rules:         map[string][]Production{},
		first:         map[string]strset.Set{},
		follow:        map[string]strset.Set{},
	}
}

// AddToken declares a terminal with the given regex pattern. Returns a
// MalformedInput error on a duplicate name or a reserved name.
func (g *Grammar) AddToken(name, pattern string) error {
	if name == EPS || name == EOF {
		return lgerrors.MalformedInput(name, "reserved name cannot be used as a terminal")
	}
	if _, exists := g.TokenPatterns[name]; exists {
		return lgerrors.MalformedInput(name, "duplicate terminal declaration")
	}
	g.TokenPatterns[name] = pattern
	g.TokenOrder = append(g.TokenOrder, name)
	return nil
}

// AddRule adds one alternative to the right-hand side of lhs, preserving
// declaration order both of non-terminals and of their alternatives. Rejects
// an empty alternative and a direct self-production "A : A".
func (g *Grammar) AddRule(lhs string, alt Production) error {
	if len(alt) == 0 {
		return lgerrors.MalformedInput(lhs, "empty alternative")
	}
	if len(alt) == 1 && alt[0].Kind == NonTerminal && alt[0].Name == lhs {
		return lgerrors.MalformedInput(fmt.Sprintf("%s : %s", lhs, lhs), "direct self-production is not allowed")
	}
	for _, sym := range alt {
		if sym.Kind == EndOfInput {
			return lgerrors.MalformedInput(lhs, "EOF may not appear on a right-hand side")
		}
	}

	if _, exists := g.Rules[lhs]; !exists {
		g.RuleOrder = append(g.RuleOrder, lhs)
	}
	g.Rules[lhs] = append(g.Rules[lhs], alt)
	return nil
}

// NonTerminals returns the declared non-terminals in declaration order.
func (g *Grammar) NonTerminals() []string {
	return g.RuleOrder
}

// Terminals returns the declared terminals in declaration order.
func (g *Grammar) Terminals() []string {
	return g.TokenOrder
}

// Validate checks the invariants that AddToken/AddRule alone cannot enforce:
// that every non-terminal referenced on a right-hand side is itself declared,
// and that the start non-terminal exists.
func (g *Grammar) Validate() error {
	if _, ok := g.Rules[Start]; !ok {
		return lgerrors.MissingStart()
	}

	for _, lhs := range g.RuleOrder {
		for _, alt := range g.Rules[lhs] {
			for _, sym := range alt {
				if sym.Kind == NonTerminal {
					if _, ok := g.Rules[sym.Name]; !ok {
						return lgerrors.MalformedInput(sym.Name, "non-terminal is used but never declared")
					}
				}
			}
		}
	}
	return nil
}

// TranslationSymbols returns, in a stable order, the distinct translation
// symbol callback names (with the leading "$" stripped) found anywhere in
// the grammar's rules.
func (g *Grammar) TranslationSymbols() []string {
	seen := strset.New()
	var names []string
	for _, lhs := range g.RuleOrder {
		for _, alt := range g.Rules[lhs] {
			for _, sym := range alt {
				if sym.Kind == TranslationSymbol {
					name := sym.TranslationName()
					if !seen.Has(name) {
						seen.Add(name)
						names = append(names, name)
					}
				}
			}
		}
	}
	return names
}
