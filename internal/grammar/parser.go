package grammar

import (
	"strings"

	"github.com/dekarrin/llgen/internal/lgerrors"
)

// sectionSep is the line that divides the token section from the rules
// section of a grammar description.
const sectionSep = "%%"

// tokenLineSep is the literal separator between a terminal name and its
// regex source on a token line.
const tokenLineSep = "    "

// Parse lexes and parses a full grammar description and returns the
// resulting Grammar. It does not run FIRST/FOLLOW analysis, check that the
// start non-terminal exists, or check that every referenced non-terminal is
// declared; call Validate for the latter two once the Grammar is built.
func Parse(src string) (*Grammar, error) {
	tokenSrc, ruleSrc, err := splitSections(src)
	if err != nil {
		return nil, err
	}

	g := New()

	if err := parseTokenSection(g, tokenSrc); err != nil {
		return nil, err
	}
	if err := parseRuleSection(g, ruleSrc); err != nil {
		return nil, err
	}

	return g, nil
}

// splitSections finds the line containing exactly "%%" and splits src into
// the text before it and the text after it.
func splitSections(src string) (tokenSrc, ruleSrc string, err error) {
	lines := strings.Split(src, "\n")
	sepIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == sectionSep {
			sepIdx = i
			break
		}
	}
	if sepIdx == -1 {
		return "", "", lgerrors.MalformedInput(sectionSep, "no section separator line found in grammar description")
	}

	tokenSrc = strings.Join(lines[:sepIdx], "\n")
	ruleSrc = strings.Join(lines[sepIdx+1:], "\n")
	return tokenSrc, ruleSrc, nil
}

// parseTokenSection handles the token section: zero or more lines of the
// form "NAME    REGEX".
func parseTokenSection(g *Grammar, src string) error {
	for _, rawLine := range strings.Split(src, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		idx := strings.Index(line, tokenLineSep)
		if idx < 0 {
			return lgerrors.MalformedInput(line, "token line must separate NAME and regex with four spaces")
		}

		name := strings.TrimSpace(line[:idx])
		pattern := strings.TrimSpace(line[idx+len(tokenLineSep):])

		if !terminalNameRe.MatchString(name) {
			return lgerrors.MalformedInput(name, "terminal name must match [A-Z][A-Z0-9_]*")
		}
		if pattern == "" {
			return lgerrors.MalformedInput(line, "token line is missing a regex")
		}

		if err := g.AddToken(name, pattern); err != nil {
			return err
		}
	}
	return nil
}

// parseRuleSection handles the rules section: rule groups of the form
// "lhs : alt1 | alt2 | ... ;" separated by ";".
func parseRuleSection(g *Grammar, src string) error {
	for _, group := range strings.Split(src, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}

		colonIdx := strings.Index(group, ":")
		if colonIdx < 0 {
			return lgerrors.MalformedInput(group, "rule group missing ':'")
		}

		lhs := strings.TrimSpace(group[:colonIdx])
		if !nonTermNameRe.MatchString(lhs) {
			return lgerrors.MalformedInput(lhs, "non-terminal name must match [a-z][a-z0-9_]*")
		}

		altsSrc := group[colonIdx+1:]
		for _, altSrc := range strings.Split(altsSrc, "|") {
			fields := strings.Fields(altSrc)
			if len(fields) == 0 {
				return lgerrors.MalformedInput(group, "empty alternative")
			}

			alt := make(Production, 0, len(fields))
			for _, raw := range fields {
				sym, ok := ParseSymbol(raw)
				if !ok {
					return lgerrors.MalformedInput(raw, "not a valid terminal, non-terminal, or translation symbol")
				}
				alt = append(alt, sym)
			}

			if err := g.AddRule(lhs, alt); err != nil {
				return err
			}
		}
	}
	return nil
}
