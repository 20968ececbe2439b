package query

import (
	"log/slog"
	"strings"

	"harshagw/bulletins/internal/logger"
	"harshagw/bulletins/internal/metrics"
)

// Parser turns French questions about the bulletins into StructuredQuery
// values. A Parser is safe for concurrent use.
type Parser struct {
	re      *patterns
	rubrics map[string]string // lookup key -> canonical name
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Parser.
type Option func(*Parser)

// WithRubrics replaces the known rubric names. An empty list keeps the
// defaults.
func WithRubrics(names []string) Option {
	return func(p *Parser) {
		if len(names) > 0 {
			p.setRubrics(names)
		}
	}
}

// WithMetrics counts parsed queries on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Parser) { p.metrics = m }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.log = l }
}

// NewParser returns a parser that knows the default rubrics.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		re:  sharedPatterns(),
		log: logger.WithComponent("parser"),
	}
	p.setRubrics(DefaultRubrics())
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) setRubrics(names []string) {
	p.rubrics = make(map[string]string, len(names))
	for _, name := range names {
		canonical := strings.ToLower(strings.TrimSpace(name))
		if canonical != "" {
			p.rubrics[rubricKey(canonical)] = canonical
		}
	}
}

// rubricKey folds case, apostrophes and accented e's so that "Evénement"
// and "événement" name the same rubric.
func rubricKey(name string) string {
	return eAccents.Replace(apostrophes.Replace(strings.ToLower(name)))
}

// CanonicalRubric returns the configured spelling of a known rubric, or
// name unchanged.
func (p *Parser) CanonicalRubric(name string) string {
	if c, ok := p.rubrics[rubricKey(name)]; ok {
		return c
	}
	return name
}

// IsKnownRubric reports whether name is a configured rubric.
func (p *Parser) IsKnownRubric(name string) bool {
	_, ok := p.rubrics[rubricKey(name)]
	return ok
}

// TermGroup collects the terms of one field and how they combine.
type TermGroup struct {
	Terms []string
	Op    Operator
}

// merge appends terms. OR is sticky; otherwise the group becomes AND once
// it holds two terms.
func (g *TermGroup) merge(terms []string, op Operator) {
	g.Terms = append(g.Terms, terms...)
	switch {
	case len(g.Terms) <= 1:
	case g.Op == OpOr || op == OpOr:
		g.Op = OpOr
	default:
		g.Op = OpAnd
	}
}

// Draft is the raw extraction result, before deduplication and date
// resolution.
type Draft struct {
	Raw            string
	Content        TermGroup
	Title          TermGroup
	Rubric         TermGroup
	NegatedContent []string
	NegatedRubric  []string
	Conditions     []DateCondition
	HasImage       bool
	Target         Target
}

func (d *Draft) hasCriteria() bool {
	return len(d.Content.Terms) > 0 || len(d.Title.Terms) > 0 || len(d.Rubric.Terms) > 0 ||
		len(d.Conditions) > 0 || len(d.NegatedContent) > 0 || len(d.NegatedRubric) > 0 || d.HasImage
}

// Query finalizes the draft: term lists are deduplicated and sorted,
// operators fixed up and date conditions resolved.
func (d Draft) Query() *StructuredQuery {
	q := &StructuredQuery{
		Raw:                 d.Raw,
		ContentTerms:        cleanTerms(d.Content.Terms),
		TitleTerms:          cleanTerms(d.Title.Terms),
		RubricTerms:         cleanTerms(d.Rubric.Terms),
		NegatedContentTerms: cleanTerms(d.NegatedContent),
		NegatedRubricTerms:  cleanTerms(d.NegatedRubric),
		HasImage:            d.HasImage,
		Target:              d.Target,
	}
	q.ContentOperator = fixOperator(d.Content.Op, len(q.ContentTerms))
	q.TitleOperator = fixOperator(d.Title.Op, len(q.TitleTerms))
	q.RubricOperator = fixOperator(d.Rubric.Op, len(q.RubricTerms))
	w := Resolve(d.Conditions)
	q.DateStart, q.DateEnd, q.ExcludedPeriods = w.Start, w.End, w.Excluded
	return q
}

// stage consumes the part of the text it understands and records it in
// the draft.
type stage func(text string, d Draft) (string, Draft)

// Extract runs the extraction pipeline on raw. Each stage removes what it
// recognized, so later stages only see the leftover text. Whatever is left
// at the end becomes content terms.
func (p *Parser) Extract(raw string) Draft {
	d := Draft{Raw: raw}
	text := p.preprocess(raw)
	for _, st := range []stage{
		p.extractTarget,
		p.extractImage,
		p.extractNegations,
		p.extractDates,
		p.extractYears,
		p.extractTitle,
		p.extractRubrics,
	} {
		text, d = st(text, d)
	}
	d = p.extractContent(text, d)
	return p.fallback(text, raw, d)
}

// Parse extracts and finalizes a query. Empty input yields an empty query
// that targets articles.
func (p *Parser) Parse(raw string) *StructuredQuery {
	q := p.Extract(raw).Query()
	p.metrics.ObserveParse(q.Target.String())
	p.log.Debug("query parsed", "raw", raw, "query", q.String())
	return q
}
