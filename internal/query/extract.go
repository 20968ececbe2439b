package query

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// preprocess lowercases the question, unifies quotes and drops one
// generic opening such as "je cherche les articles".
func (p *Parser) preprocess(raw string) string {
	text := guillemets.Replace(strings.ToLower(apostrophes.Replace(raw)))
	for _, re := range p.re.intros {
		if m := find(re, text); m != nil {
			return strings.Trim(string([]rune(text)[m.Index+m.Length:]), stripAll)
		}
	}
	return text
}

func (p *Parser) extractTarget(text string, d Draft) (string, Draft) {
	for _, phrase := range rubricPhrases {
		if strings.Contains(text, phrase) {
			d.Target = TargetRubrics
			text = strings.Trim(strings.Replace(text, phrase, "", 1), stripPunctuation)
			break
		}
	}
	return text, d
}

func (p *Parser) extractImage(text string, d Draft) (string, Draft) {
	for _, re := range p.re.images {
		if m := find(re, text); m != nil {
			d.HasImage = true
			return p.removeMatch(text, m), d
		}
	}
	return text, d
}

// extractNegations handles excluded rubrics first, then excluded dates,
// then excluded content terms, so that "mais pas en juin 2012" is not
// read as the term "en juin 2012".
func (p *Parser) extractNegations(text string, d Draft) (string, Draft) {
	text = replaceAll(p.re.negatedRubric, text, func(m *regexp2.Match) string {
		raw := strings.Trim(groupText(m, 1), `"'`)
		if r, ok := p.normalizeTerm(raw, true); ok {
			d.NegatedRubric = append(d.NegatedRubric, p.CanonicalRubric(r))
		}
		return ""
	})
	text = strings.Trim(text, stripPunctuation)

	text = p.applyRules(text, []rule{
		{p.re.negatedPeriod, func(m *regexp2.Match) bool {
			from, ok1 := textDate(groups(m, 1, 2, 3))
			to, ok2 := textDate(groups(m, 4, 5, 6))
			if !ok1 || !ok2 {
				return false
			}
			d.Conditions = append(d.Conditions, ExcludePeriod{From: from, To: to})
			return true
		}},
		{p.re.negatedMonthYr, func(m *regexp2.Match) bool {
			month, ok1 := monthByName(apostrophes.Replace(groupText(m, 1)))
			year, ok2 := parseYear(groupText(m, 2))
			if !ok1 || !ok2 {
				return false
			}
			d.Conditions = append(d.Conditions, ExcludeMonth{Month: month, Year: year})
			return true
		}},
		{p.re.negatedMonth, func(m *regexp2.Match) bool {
			month, ok := monthByName(apostrophes.Replace(groupText(m, 1)))
			if ok {
				d.Conditions = append(d.Conditions, ExcludeMonth{Month: month})
			}
			return ok
		}},
	})

	for _, re := range p.re.negations {
		text = replaceAll(re, text, func(m *regexp2.Match) string {
			if t, ok := p.normalizeTerm(groupText(m, 1), false); ok {
				d.NegatedContent = append(d.NegatedContent, t)
			}
			return ""
		})
	}
	return strings.Trim(text, stripPunctuation), d
}

func (p *Parser) extractDates(text string, d Draft) (string, Draft) {
	rules := make([]rule, len(p.re.dates))
	for i, dr := range p.re.dates {
		rules[i] = rule{re: dr.re, accept: func(m *regexp2.Match) bool {
			c, ok := dr.build(m)
			if ok {
				d.Conditions = append(d.Conditions, c)
			}
			return ok
		}}
	}
	return p.applyRules(text, rules), d
}

// extractYears picks up bare years. A year already covered by a date
// condition is left alone, and so is one right after a month name since
// the date stage already declined it.
func (p *Parser) extractYears(text string, d Draft) (string, Draft) {
	seen := make(map[int]bool)
	for _, c := range d.Conditions {
		for _, y := range c.years() {
			seen[y] = true
		}
	}
	reach := longestMonthName() + 3
	for i, re := range []*regexp2.Regexp{p.re.yearPrefixed, p.re.yearBare} {
		runes := []rune(text)
		var sb strings.Builder
		last := 0
		for _, m := range findAll(re, text) {
			end := m.Index + m.Length
			y, ok := parseYear(groupText(m, 1))
			if ok && !seen[y] {
				afterMonth := false
				if i == 1 {
					before := string(runes[max(0, m.Index-reach):m.Index])
					afterMonth = find(p.re.monthSuffix, before) != nil
				}
				if !afterMonth {
					d.Conditions = append(d.Conditions, InYear{Year: y})
					seen[y] = true
					sb.WriteString(string(runes[last:m.Index]))
					last = end
					continue
				}
			}
			sb.WriteString(string(runes[last:end]))
			last = end
		}
		sb.WriteString(string(runes[last:]))
		text = sb.String()
	}
	return strings.Trim(text, stripPunctuation), d
}

func (p *Parser) extractTitle(text string, d Draft) (string, Draft) {
	accept := func(m *regexp2.Match) bool {
		raw := strings.Trim(groupText(m, 1), `"'`)
		raw = strings.TrimSpace(replaceFirst(p.re.trailConj, raw))
		terms, op := p.splitTerms(raw)
		if len(terms) == 0 {
			return false
		}
		d.Title.merge(terms, op)
		return true
	}
	rules := make([]rule, len(p.re.titles))
	for i, re := range p.re.titles {
		rules[i] = rule{re: re, accept: accept}
	}
	return p.applyRules(text, rules), d
}

// extractRubrics tries an explicit pair ("rubrique X ou Y"), then every
// explicit "rubrique X", and only when neither matched looks for known
// rubric names standing alone between "et"/"ou".
func (p *Parser) extractRubrics(text string, d Draft) (string, Draft) {
	if out, ok := p.rubricPair(text, &d); ok {
		return out, d
	}
	if out, ok := p.explicitRubrics(text, &d); ok {
		return out, d
	}
	return p.implicitRubrics(text, &d), d
}

func (p *Parser) rubricPair(text string, d *Draft) (string, bool) {
	m := find(p.re.rubricCombo, text)
	if m == nil {
		return text, false
	}
	raw1, raw2 := groupText(m, 1), groupText(m, 3)
	r1, ok1 := p.normalizeTerm(strings.Trim(raw1, `"'`), true)
	r2, ok2 := p.normalizeTerm(strings.Trim(raw2, `"'`), true)
	if !ok1 || !ok2 {
		return text, false
	}
	valid := func(raw, norm string) bool {
		return isQuoted(strings.TrimSpace(raw)) || p.IsKnownRubric(norm)
	}
	if !valid(raw1, r1) || !valid(raw2, r2) {
		return text, false
	}
	d.Rubric.Terms = append(d.Rubric.Terms, p.CanonicalRubric(r1), p.CanonicalRubric(r2))
	if distinct(d.Rubric.Terms) > 1 {
		d.Rubric.Op = OpAnd
		if strings.EqualFold(strings.TrimSpace(groupText(m, 2)), "ou") {
			d.Rubric.Op = OpOr
		}
	}
	return p.removeMatch(text, m), true
}

func (p *Parser) explicitRubrics(text string, d *Draft) (string, bool) {
	runes := []rune(text)
	var sb strings.Builder
	last, found := 0, false
	for _, m := range findAll(p.re.rubricSingle, text) {
		end := m.Index + m.Length
		raw := strings.Trim(groupText(m, 1), `"'`)
		raw = strings.TrimSpace(replaceFirst(p.re.trailConj, raw))
		if r, ok := p.normalizeTerm(raw, true); ok {
			d.Rubric.Terms = append(d.Rubric.Terms, p.CanonicalRubric(r))
			found = true
			sb.WriteString(string(runes[last:m.Index]))
		} else {
			sb.WriteString(string(runes[last:end]))
		}
		last = end
	}
	sb.WriteString(string(runes[last:]))
	out := strings.Trim(sb.String(), stripPunctuation)
	if !found {
		return out, false
	}
	if distinct(d.Rubric.Terms) > 1 && d.Rubric.Op == OpNone {
		d.Rubric.Op = OpAnd
	}
	return strings.Trim(replaceFirst(p.re.leadConnector, out), stripPunctuation), true
}

// implicitRubrics consumes segments that are exactly a known rubric name.
// The connector after a consumed rubric goes with it; "ou" between two
// rubrics makes the rubric operator OR.
func (p *Parser) implicitRubrics(text string, d *Draft) string {
	if text == "" || len(p.rubrics) == 0 {
		return text
	}
	parts := split(p.re.rubricSplit, text, true)
	var found []string
	var rest strings.Builder
	op := OpAnd
	orPending := false
	for i := 0; i < len(parts); i++ {
		isRubric := false
		if seg := strings.TrimSpace(parts[i]); seg != "" {
			if r, ok := p.normalizeTerm(seg, true); ok && p.IsKnownRubric(r) {
				found = append(found, p.CanonicalRubric(r))
				isRubric = true
			}
		}
		if isRubric && orPending {
			op = OpOr
		}
		orPending = false
		if !isRubric {
			rest.WriteString(parts[i])
		}
		if i+1 < len(parts) {
			i++
			if isRubric {
				orPending = strings.EqualFold(strings.TrimSpace(parts[i]), "ou")
			} else {
				rest.WriteString(parts[i])
			}
		}
	}
	if len(found) == 0 {
		return text
	}
	d.Rubric.Terms = append(d.Rubric.Terms, found...)
	if distinct(d.Rubric.Terms) > 1 && (d.Rubric.Op == OpNone || op == OpOr) {
		d.Rubric.Op = op
	}
	return strings.Trim(rest.String(), stripPunctuation)
}

// extractContent turns the leftover text into content terms. "soit X soit
// Y" is always OR.
func (p *Parser) extractContent(text string, d Draft) Draft {
	text = strings.Trim(replaceFirst(p.re.contentLead, text), stripPunctuation)
	text = strings.Trim(replaceFirst(p.re.contentTrail, text), stripPunctuation)
	if text == "" {
		return d
	}
	text = strings.Trim(cleanup(text, p.re.contentIntro), stripAll)
	if text == "" {
		return d
	}
	var terms []string
	op := OpAnd
	if m := find(p.re.soit, text); m != nil {
		op = OpOr
		for _, i := range []int{1, 2} {
			sub, _ := p.splitTerms(strings.TrimSpace(groupText(m, i)))
			terms = append(terms, sub...)
		}
	} else {
		var found Operator
		if terms, found = p.splitTerms(text); found != OpNone {
			op = found
		}
	}
	if len(terms) > 0 {
		d.Content.merge(terms, op)
	}
	return d
}

// fallback reads the question as plain content terms when no stage
// recognized anything, using the leftover text or else the whole question
// cleaned as a single term.
func (p *Parser) fallback(remaining, raw string, d Draft) Draft {
	if d.hasCriteria() || d.Target != TargetArticles {
		return d
	}
	text := remaining
	if text == "" {
		text, _ = p.normalizeTerm(raw, false)
	}
	text = strings.Trim(cleanup(text, p.re.contentIntro), stripAll)
	if text == "" {
		return d
	}
	if terms, op := p.splitTerms(text); len(terms) > 0 {
		d.Content = TermGroup{Terms: terms, Op: op}
	}
	return d
}
