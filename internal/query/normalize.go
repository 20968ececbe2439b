package query

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// cleanup applies each pattern once per pass, trimming after every removal,
// until a pass leaves the text unchanged.
func cleanup(text string, patterns []*regexp2.Regexp) string {
	current := text
	for current != "" {
		before := current
		for _, re := range patterns {
			current = strings.Trim(replaceFirst(re, current), stripAll)
			if current == "" {
				return ""
			}
		}
		current = strings.Trim(current, stripAll)
		if current == before {
			break
		}
	}
	return current
}

// normalizeTerm cleans a captured fragment into a search term. The strict
// form only trims quotes and punctuation, and is used for rubric names.
// Otherwise connector phrasing is stripped and fragments made only of
// junk words are rejected, unless the original was capitalized.
func (p *Parser) normalizeTerm(s string, strict bool) (string, bool) {
	if s == "" {
		return "", false
	}
	original := s
	current := guillemets.Replace(apostrophes.Replace(s))
	current = strings.Trim(current, ` "'`)
	current = strings.Trim(current, stripPunctuation)
	if !strict {
		current = strings.Trim(cleanup(current, p.re.cleanup), stripAll)
	}
	if current == "" {
		return "", false
	}
	if strict {
		return current, true
	}
	lower := strings.ToLower(current)
	words := strings.Fields(lower)
	if len(words) > 0 && allJunk(words) {
		long := utf8.RuneCountInString(original) > 1
		titled := isTitle(original) && long && strings.ToLower(original) == lower
		upper := isUpper(original) && long
		if !titled && !upper {
			return "", false
		}
	}
	return current, true
}

// NormalizeTerm exposes term normalization, which keeps capitalized
// fragments that would otherwise be dropped as connector words.
func (p *Parser) NormalizeTerm(s string) (string, bool) {
	return p.normalizeTerm(s, false)
}

// splitTerms cuts a fragment on "ou", then "et", and normalizes each part.
// "ou" binds looser: in "a ou b et c" the "b et c" part is split again, and
// the whole is OR. The operator is OpNone unless two terms survive.
func (p *Parser) splitTerms(fragment string) ([]string, Operator) {
	lower := strings.ToLower(fragment)
	op := OpNone
	parts := []string{fragment}
	switch {
	case strings.Contains(lower, " ou "):
		op = OpOr
		parts = split(p.re.or, fragment, false)
	case strings.Contains(lower, " et "):
		op = OpAnd
		parts = split(p.re.and, fragment, false)
	}
	var terms []string
	add := func(part string) {
		if t, ok := p.normalizeTerm(strings.TrimSpace(part), false); ok {
			terms = append(terms, t)
		}
	}
	for _, part := range parts {
		if op == OpOr && strings.Contains(strings.ToLower(part), " et ") {
			for _, sub := range split(p.re.and, part, false) {
				add(sub)
			}
			continue
		}
		add(part)
	}
	if len(terms) <= 1 {
		op = OpNone
	}
	return terms, op
}

// removeMatch cuts m out of text and drops the connectors it leaves
// dangling at either end.
func (p *Parser) removeMatch(text string, m *regexp2.Match) string {
	out := cut(text, m)
	out = replaceFirst(p.re.leadConnector, out)
	out = replaceFirst(p.re.trailConnector, out)
	return strings.Trim(out, stripPunctuation)
}

// rule pairs a pattern with the handler that accepts its matches.
type rule struct {
	re     *regexp2.Regexp
	accept func(m *regexp2.Match) bool
}

// applyRules runs rules in order against text. The first accepted match is
// removed and the scan restarts from the first rule; it ends once a full
// pass accepts nothing.
func (p *Parser) applyRules(text string, rules []rule) string {
	for {
		found := false
		for _, r := range rules {
			m := find(r.re, text)
			if m != nil && r.accept(m) {
				text = p.removeMatch(text, m)
				found = true
				break
			}
		}
		if !found {
			return text
		}
	}
}

func allJunk(words []string) bool {
	for _, w := range words {
		if _, ok := junkWords[w]; !ok {
			return false
		}
	}
	return true
}

// isTitle reports whether every word starts upper case and continues lower
// case, with at least one cased letter.
func isTitle(s string) bool {
	cased, prevCased := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}

func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func isQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

func distinct(terms []string) int {
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		seen[t] = struct{}{}
	}
	return len(seen)
}
