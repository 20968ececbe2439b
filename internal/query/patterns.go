package query

import (
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

const (
	// Rubric names: a quoted string or up to four words.
	rubricCapture   = `("(?:[^"]+)"|(?:[\w'-]+(?:[\s][\w'-]+){0,3}?))`
	rubricLookahead = `(?=\s+et\s+(?:la\s+|de\s+la\s+|dans\s+la\s+)?rubrique|\s+ou\s+(?:la\s+|de\s+la\s+|dans\s+la\s+)?rubrique|\s+et|\s+ou|\s+qui|\s+parlant|\s+mentionnant|\s+contenant|publiés\s+en|écrit\s+en|paru\s+en|$|,|\.|\?|!|\(|\s+dans\s+le\s+domaine)`

	// Negated terms: a quoted string or up to three words.
	negationCapture   = `("(?:[^"]+)"|[^\s,.;\?!\(\)]+(?:\s+[^\s,.;\?!\(\)]+){0,2})`
	negationLookahead = `(?=\s+et|\s+ou|\s+dans|\s+pour|\s+qui|,|\.|\?|!|\(|\s+rubrique|$)`

	titleLookahead = `(?=\s+dans\s+la\s+rubrique|\s+provenant\s+de\s+la\s+rubrique|\s+de\s+la\s+rubrique|publiés\s+en|écrit\s+en|paru\s+en|$|,|\.|\?|!|\(|\s+et\s+rubrique|\s+ou\s+rubrique)`

	soitPrefix = `soit\s+(?:(?:du|des|de\s+la|de\s+l'|de)\s+)?`

	afterPattern = `(?:après|[aà]\s+partir\s+de|daté(?:s)?\s*(?:[aà]\s+partir\s+de|après)|(?:qui\s+date|datant)\s+d'après|publiés\s+après)`
	dmyPattern   = `(\d{1,2})\s+({M})\s+(\d{4})`
	slashPattern = `(\d{1,2}/\d{1,2}/\d{4})`
)

// patterns holds every compiled expression of the grammar. They do not
// depend on the rubric list and are shared by all parsers.
type patterns struct {
	cleanup      []*regexp2.Regexp
	contentIntro []*regexp2.Regexp
	intros       []*regexp2.Regexp

	or, and        *regexp2.Regexp
	leadConnector  *regexp2.Regexp
	trailConnector *regexp2.Regexp
	trailConj      *regexp2.Regexp

	images []*regexp2.Regexp

	negatedRubric  *regexp2.Regexp
	negatedMonthYr *regexp2.Regexp
	negatedPeriod  *regexp2.Regexp
	negatedMonth   *regexp2.Regexp
	negations      []*regexp2.Regexp

	dates        []dateRule
	yearPrefixed *regexp2.Regexp
	yearBare     *regexp2.Regexp
	monthSuffix  *regexp2.Regexp

	titles []*regexp2.Regexp

	rubricCombo  *regexp2.Regexp
	rubricSingle *regexp2.Regexp
	rubricSplit  *regexp2.Regexp

	contentLead  *regexp2.Regexp
	contentTrail *regexp2.Regexp
	soit         *regexp2.Regexp
}

var sharedPatterns = sync.OnceValue(newPatterns)

func newPatterns() *patterns {
	expand := strings.NewReplacer(
		"{M}", monthAlternation(),
		"{DMY}", dmyPattern,
		"{SLASH}", slashPattern,
		"{AFTER}", afterPattern,
		"{RCAP}", rubricCapture,
		"{RLA}", rubricLookahead,
		"{NCAP}", negationCapture,
		"{NLA}", negationLookahead,
		"{TLA}", titleLookahead,
		"{SOIT}", soitPrefix,
	)
	c := func(p string) *regexp2.Regexp {
		// {DMY} itself carries {M}.
		return compile(expand.Replace(expand.Replace(p)))
	}

	ps := &patterns{
		cleanup:      compileAll(byLengthDesc(generalCleanup)),
		contentIntro: compileAll(byLengthDesc(contentIntros)),

		or:             c(`\s+ou\s+`),
		and:            c(`\s+et\s+`),
		leadConnector:  c(`^\s*(?:et|ou|puis|donc|qui|[aà]|de|des|du)\s+`),
		trailConnector: c(`\s+(?:et|ou)\s*$`),
		trailConj:      c(`\s+(?:et|ou)$`),

		images: []*regexp2.Regexp{
			c(`\bavec\s+(?:une|des)\s+images?\b`),
			c(`\b(?:articles\s+)?(?:contenant|contiennent|contain(?:s)?)\s+(?:une|des)\s+images?\b`),
			c(`\b(?:qui\s+)?(?:a|ont)\s+(?:une|des)\s+images?\b`),
		},

		negatedRubric:  c(`(?:mais\s+pas|sauf|hormis|excepté)\s+(?:dans\s+|de\s+)?(?:la\s+)?rubrique\s+(?:est\s+)?{RCAP}{RLA}`),
		negatedMonthYr: c(`mais\s+pas\s+(?:en\s+|au\s+mois\s+de\s+)?({M})\s+(\d{4})\b`),
		negatedPeriod:  c(`mais\s+pas\s+(?:entre\s+(?:le\s+)?|du\s+){DMY}\s+(?:et|au)\s+(?:le\s+)?{DMY}\b`),
		negatedMonth:   c(`mais\s+pas\s+(?:au\s+mois\s+de|en)\s+({M})\b`),
		negations: []*regexp2.Regexp{
			c(`(?:mais\s+pas\s+de|mais\s+pas|non\s+pas\s+de|non\s+pas|et\s+non\s+pas\s+(?:la\s+|le\s+)?|\bsauf)\s*{NCAP}{NLA}`),
			c(`(?:mais\s+qui\s+ne\s+parle(?:nt)?\s+pas\s+(?:de|d'))\s*{NCAP}{NLA}`),
			c(`mais\s+(?:ne\s+contient\s+pas|pas\s+d['e])\s*{NCAP}{NLA}`),
		},

		dates: []dateRule{
			{c(`\bentre\s+(?:le\s+)?{DMY}\s+et\s+(?:le\s+)?{DMY}\b`), rangeOfTextDates},
			{c(`\bentre\s+(?:le\s+)?{SLASH}\s+et\s+(?:le\s+)?{SLASH}\b`), rangeOfSlashDates},
			{c(`\b{AFTER}\s+(?:le\s+)?{DMY}\b`), afterTextDate},
			{c(`\b(?:après|[aà]\s+partir\s+de|publiés\s+après)\s+(?:le\s+)?{SLASH}\b`), afterSlashDate},
			{c(`\b{AFTER}\s+(?:le\s+)?(?:({M})\s+)?(\d{4})\b`), afterMonthOrYear},
			{c(`\b(?:avant|antérieurs?\s+au)\s+(?:le\s+)?{DMY}\b`), beforeTextDate},
			{c(`\bavant\s+(?:le\s+)?{SLASH}\b`), beforeSlashDate},
			{c(`\b(?:avant|antérieurs?\s+[aà])\s+(?:({M})\s+)?(\d{4})\b`), beforeMonthOrYear},
			{c(`\b(?:du|datent\s+du|daté(?:s)?\s+au|le)\s+{DMY}\b`), exactTextDate},
			{c(`\bentre\s+(\d{4})\s+et\s+(\d{4})\b`), yearRange},
			{c(`\b(?:(?:publiés|écrits|parus)\s+)?(?:au\s+mois\s+de\s+|en\s+|datés\s+)?({M})\s+(\d{4})\b`), monthOfYear},
		},
		yearPrefixed: c(`\b(?:de\s+l'année|l'année|en|de)\s+(\d{4})\b`),
		yearBare:     c(`(?<!\d)\b(\d{4})\b(?!\d)`),
		monthSuffix:  c(`(?:{M})\s*$`),

		titles: []*regexp2.Regexp{
			c(`(?:(?:dont\s+le|du)\s+)?titre\s+(?:contient|évoque|traite\s+(?:de|du)|parle\s+de)\s+(?:(?:le|les)\s+(?:mot|terme)s?\s+)?(.+?){TLA}`),
			c(`(?:contenant|mentionnant|parlant\s+de)\s+(?:(?:le|les)\s+(?:mot|terme)s?\s+)?(.+?)\s+dans\s+le\s+titre{TLA}`),
		},

		rubricCombo: c(`(?:la\s+|de\s+la\s+|dans\s+la\s+)?rubrique\s+(?:est\s+)?{RCAP}\s+(ou|et)\s+(?!rubrique\b)` +
			`(?:(?:la\s+|de\s+la\s+|dans\s+la\s+)?rubrique\s+(?:est\s+)?)?{RCAP}{RLA}`),
		rubricSingle: c(`(?:(?:dont|de|dans|pour|provenant\s+de)\s+(?:la\s+)?)?rubrique\s+(?:est\s+)?{RCAP}{RLA}`),
		rubricSplit:  c(`(\s+(?:et|ou)\s+)`),

		contentLead:  c(`^\s*(?:et|ou|puis|donc|qui|de|des|du|sur|pour)\s+`),
		contentTrail: c(`\s+(?:et|ou|puis|donc|qui|de|des|du|sur|pour)\s*$`),
		soit:         c(`^\s*{SOIT}(.+?)\s*(?:\s*,\s*{SOIT}|\s+(?:ou|et)\s+{SOIT}|\s+ou(?:\s+(?:du|des|de\s+la|de\s+l'|de))?\s*|\s+et(?:\s+(?:du|des|de\s+la|de\s+l'|de))?\s*)\s*(.+)$`),
	}
	for _, phrase := range byLengthDesc(introPhrases) {
		ps.intros = append(ps.intros, compile(`^\s*`+regexp2.Escape(phrase)+`(?:\s+|[?.,!:](?:\s+|$)|$)`))
	}
	return ps
}
