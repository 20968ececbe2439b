package query

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// The question grammar relies on lookahead and lookbehind, which the
// standard regexp package lacks. All patterns are case-insensitive, and
// match offsets are rune offsets.

func compile(pattern string) *regexp2.Regexp {
	return regexp2.MustCompile(pattern, regexp2.IgnoreCase)
}

func compileAll(patterns []string) []*regexp2.Regexp {
	out := make([]*regexp2.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = compile(p)
	}
	return out
}

// find returns the first match of re in s, or nil. Matching errors only
// come from timeouts, which are not configured, and count as no match.
func find(re *regexp2.Regexp, s string) *regexp2.Match {
	m, err := re.FindStringMatch(s)
	if err != nil {
		return nil
	}
	return m
}

func findAll(re *regexp2.Regexp, s string) []*regexp2.Match {
	var out []*regexp2.Match
	for m := find(re, s); m != nil; {
		out = append(out, m)
		next, err := re.FindNextMatch(m)
		if err != nil {
			break
		}
		m = next
	}
	return out
}

// group returns capture i and whether it participated in the match.
func group(m *regexp2.Match, i int) (string, bool) {
	g := m.GroupByNumber(i)
	if g == nil || len(g.Captures) == 0 {
		return "", false
	}
	return g.String(), true
}

// cut removes the span of m from s.
func cut(s string, m *regexp2.Match) string {
	r := []rune(s)
	return string(r[:m.Index]) + string(r[m.Index+m.Length:])
}

// replaceFirst removes the first match of re from s.
func replaceFirst(re *regexp2.Regexp, s string) string {
	if m := find(re, s); m != nil {
		return cut(s, m)
	}
	return s
}

// replaceAll replaces every match of re in s with repl(m).
func replaceAll(re *regexp2.Regexp, s string, repl func(*regexp2.Match) string) string {
	matches := findAll(re, s)
	if len(matches) == 0 {
		return s
	}
	r := []rune(s)
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(string(r[last:m.Index]))
		sb.WriteString(repl(m))
		last = m.Index + m.Length
	}
	sb.WriteString(string(r[last:]))
	return sb.String()
}

// split cuts s around the matches of re. With keep set, each separator is
// kept between the pieces it separated.
func split(re *regexp2.Regexp, s string, keep bool) []string {
	r := []rune(s)
	var out []string
	last := 0
	for _, m := range findAll(re, s) {
		out = append(out, string(r[last:m.Index]))
		if keep {
			out = append(out, m.String())
		}
		last = m.Index + m.Length
	}
	return append(out, string(r[last:]))
}
