package text

import "regexp"

// AbbreviationRule replaces Abbrev followed by a literal period with
// Expansion. Matching is case-insensitive and anchored at a word boundary.
type AbbreviationRule struct {
	Abbrev    string
	Expansion string
}

// DefaultAbbreviations returns a fresh copy of the English abbreviation
// table. "mrs" precedes "mr" and "drs" follows "dr"; the trailing period in
// each pattern keeps the shorter forms from matching the longer ones.
func DefaultAbbreviations() []AbbreviationRule {
	return []AbbreviationRule{
		{"mrs", "misess"},
		{"mr", "mister"},
		{"dr", "doctor"},
		{"st", "saint"},
		{"co", "company"},
		{"jr", "junior"},
		{"maj", "major"},
		{"gen", "general"},
		{"drs", "doctors"},
		{"rev", "reverend"},
		{"lt", "lieutenant"},
		{"hon", "honorable"},
		{"sgt", "sergeant"},
		{"capt", "captain"},
		{"esq", "esquire"},
		{"ltd", "limited"},
		{"col", "colonel"},
		{"ft", "fort"},
	}
}

type compiledRule struct {
	re          *regexp.Regexp
	replacement string
}

func compileAbbreviations(rules []AbbreviationRule) []compiledRule {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Abbrev == "" {
			continue
		}
		out = append(out, compiledRule{
			re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r.Abbrev) + `\.`),
			// Literal replacement: expansions never reference groups.
			replacement: r.Expansion,
		})
	}

	return out
}

// ExpandAbbreviations applies rules to s in table order, one pass per rule.
func ExpandAbbreviations(s string, rules []AbbreviationRule) string {
	return expandCompiled(s, compileAbbreviations(rules))
}

func expandCompiled(s string, rules []compiledRule) string {
	for _, r := range rules {
		s = r.re.ReplaceAllLiteralString(s, r.replacement)
	}

	return s
}
