// Package search executes structured queries against a document collection
// and its per-field inverted indexes.
package search

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring"

	"harshagw/bulletins/internal/document"
	"harshagw/bulletins/internal/index"
	"harshagw/bulletins/internal/logger"
	"harshagw/bulletins/internal/metrics"
	"harshagw/bulletins/internal/query"
)

// Result holds either the matching documents or, for rubric questions, the
// distinct rubric names among them.
type Result struct {
	Target    query.Target
	Documents []*document.Document
	Rubrics   []string
}

// Len returns the number of returned items.
func (r Result) Len() int {
	if r.Target == query.TargetRubrics {
		return len(r.Rubrics)
	}
	return len(r.Documents)
}

// Searcher evaluates queries. It only reads its inputs once built, so one
// Searcher can serve concurrent searches.
type Searcher struct {
	docs       document.Collection
	table      *index.DocTable
	fields     index.Fields
	byNum      []*document.Document
	universe   *roaring.Bitmap
	normalizer query.Normalizer
	log        *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithNormalizer normalizes the index-backed terms of every query before
// lookup, so that they match the indexed token form.
func WithNormalizer(n query.Normalizer) Option {
	return func(s *Searcher) { s.normalizer = n }
}

// WithMetrics records search latency and result sizes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Searcher) { s.metrics = m }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) { s.log = l }
}

// New creates a searcher over docs. Every document of docs is registered in
// table, so documents missing from all indexes still belong to the search
// universe. Postings of ids absent from docs are ignored.
func New(docs document.Collection, table *index.DocTable, fields index.Fields, opts ...Option) *Searcher {
	if table == nil {
		table = index.NewDocTable()
	}
	s := &Searcher{
		docs:     docs,
		table:    table,
		fields:   fields,
		universe: roaring.New(),
		log:      logger.WithComponent("search"),
	}
	for _, id := range docs.IDs() {
		s.universe.Add(table.Add(id))
	}
	s.byNum = make([]*document.Document, table.Len())
	it := s.universe.Iterator()
	for it.HasNext() {
		num := it.Next()
		s.byNum[num] = docs[table.ID(num)]
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of searchable documents.
func (s *Searcher) Len() int {
	return int(s.universe.GetCardinality())
}

// Search evaluates q. Content and title terms are looked up as AND of their
// words; rubric terms are matched as case-insensitive substrings of the
// document rubric.
func (s *Searcher) Search(q *query.StructuredQuery) Result {
	start := time.Now()
	q = s.prepare(q)
	matched := s.Match(q)

	res := Result{Target: q.Target}
	if q.Target == query.TargetRubrics {
		res.Rubrics = s.rubrics(matched)
	} else {
		res.Documents = s.documents(matched)
	}
	elapsed := time.Since(start)
	s.metrics.ObserveSearch(elapsed, res.Len())
	s.log.Debug("query executed", "query", q.String(), "results", res.Len(), "elapsed", elapsed)
	return res
}

func (s *Searcher) prepare(q *query.StructuredQuery) *query.StructuredQuery {
	if q == nil {
		return &query.StructuredQuery{}
	}
	if s.normalizer == nil {
		return q
	}
	nq := *q
	nq.NormalizeTerms(s.normalizer)
	return &nq
}

// Match returns the document numbers satisfying q, as numbered by the
// searcher's document table. Terms are used as given.
func (s *Searcher) Match(q *query.StructuredQuery) *roaring.Bitmap {
	candidates := s.universe.Clone()

	if len(q.ContentTerms) > 0 {
		candidates.And(s.lookup(index.FieldContent, q.ContentTerms, q.ContentOperator))
	}
	if len(q.NegatedContentTerms) > 0 {
		content := s.fields.Lookup(index.FieldContent)
		for _, term := range q.NegatedContentTerms {
			candidates.AndNot(phrase(content, term))
		}
	}
	if len(q.TitleTerms) > 0 {
		candidates.And(s.lookup(index.FieldTitle, q.TitleTerms, q.TitleOperator))
	}
	s.log.Debug("index candidates", "count", candidates.GetCardinality())

	rubrics := lowerAll(q.RubricTerms)
	negatedRubrics := lowerAll(q.NegatedRubricTerms)
	out := roaring.New()
	it := candidates.Iterator()
	for it.HasNext() {
		num := it.Next()
		doc := s.byNum[num]
		if doc == nil {
			continue
		}
		if q.HasImage && !doc.HasImage() {
			continue
		}
		rubric := strings.ToLower(doc.Rubric)
		if len(rubrics) > 0 && !matchRubric(rubric, rubrics, q.RubricOperator) {
			continue
		}
		if containsAny(rubric, negatedRubrics) {
			continue
		}
		if !inWindow(doc, q) {
			continue
		}
		out.Add(num)
	}
	return out
}

// lookup combines the postings of terms in field. A missing field index
// yields the empty set.
func (s *Searcher) lookup(field string, terms []string, op query.Operator) *roaring.Bitmap {
	ix := s.fields.Lookup(field)
	if ix == nil {
		return roaring.New()
	}
	sets := make([]*roaring.Bitmap, 0, len(terms))
	for _, term := range terms {
		sets = append(sets, phrase(ix, term))
	}
	if op == query.OpOr {
		return roaring.FastOr(sets...)
	}
	result := sets[0]
	for _, bm := range sets[1:] {
		result.And(bm)
	}
	return result
}

// phrase returns the documents containing every word of term.
func phrase(ix *index.InvertedIndex, term string) *roaring.Bitmap {
	if ix == nil {
		return roaring.New()
	}
	return ix.FindDocs(strings.Fields(term))
}

func matchRubric(rubric string, terms []string, op query.Operator) bool {
	if rubric == "" {
		return false
	}
	if op == query.OpOr {
		return containsAny(rubric, terms)
	}
	for _, t := range terms {
		if !strings.Contains(rubric, t) {
			return false
		}
	}
	return true
}

func containsAny(rubric string, terms []string) bool {
	if rubric == "" {
		return false
	}
	for _, t := range terms {
		if strings.Contains(rubric, t) {
			return true
		}
	}
	return false
}

// inWindow applies the inclusive date bounds, then the excluded periods.
// An undated document fails any bound but no exclusion.
func inWindow(doc *document.Document, q *query.StructuredQuery) bool {
	if q.DateStart != nil || q.DateEnd != nil {
		if !doc.HasDate() {
			return false
		}
		if q.DateStart != nil && doc.Date.Before(*q.DateStart) {
			return false
		}
		if q.DateEnd != nil && doc.Date.After(*q.DateEnd) {
			return false
		}
	}
	if !doc.HasDate() {
		return true
	}
	for _, p := range q.ExcludedPeriods {
		if p.Contains(doc.Date) {
			return false
		}
	}
	return true
}

// documents resolves bm newest first. Undated documents come last; ties
// are ordered by id.
func (s *Searcher) documents(bm *roaring.Bitmap) []*document.Document {
	out := make([]*document.Document, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, s.byNum[it.Next()])
	}
	slices.SortFunc(out, compareDocuments)
	return out
}

func compareDocuments(a, b *document.Document) int {
	switch {
	case a.HasDate() && !b.HasDate():
		return -1
	case !a.HasDate() && b.HasDate():
		return 1
	}
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// rubrics returns the distinct non-empty rubrics of bm, sorted.
func (s *Searcher) rubrics(bm *roaring.Bitmap) []string {
	var out []string
	it := bm.Iterator()
	for it.HasNext() {
		if r := s.byNum[it.Next()].Rubric; r != "" {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func lowerAll(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}
