package search

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
	"time"

	"harshagw/bulletins/internal/analysis"
	"harshagw/bulletins/internal/document"
	"harshagw/bulletins/internal/index"
	"harshagw/bulletins/internal/metrics"
	"harshagw/bulletins/internal/query"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func testCorpus() document.Collection {
	docs := document.Collection{}
	for _, d := range []*document.Document{
		{
			ID: "d1", Date: day(2012, time.June, 15), Rubric: "Focus",
			Title:  "Airbus présente Taxibot",
			Body:   "Le projet Taxibot d'Airbus réduit la consommation des avions.",
			Images: []document.Image{{URL: "http://img/1.jpg"}},
		},
		{
			ID: "d2", Date: day(2013, time.March, 10), Rubric: "Actualités Innovations",
			Title: "Les drones civils",
			Body:  "Un drone autonome pour l'agriculture et les chercheurs de Paris.",
		},
		{
			ID: "d3", Date: day(2012, time.December, 1), Rubric: "A lire",
			Title:  "Airbus et les drones",
			Body:   "Airbus teste des drones de livraison.",
			Images: []document.Image{{Caption: "sans lien"}},
		},
		{
			ID:    "d4",
			Title: "Note interne",
			Body:  "Airbus note interne sur le projet.",
		},
		{
			ID: "d5", Date: day(2014, time.January, 20), Rubric: "Focus",
			Title: "Chimie verte",
			Body:  "La chimie verte et les chercheurs.",
		},
	} {
		docs.Add(d)
	}
	return docs
}

func newTestSearcher(t *testing.T, opts ...Option) *Searcher {
	t.Helper()
	docs := testCorpus()
	b := index.NewBuilder(analysis.NewFrench(nil))
	for _, id := range docs.IDs() {
		b.Add(docs[id])
	}
	table, fields := b.Build()
	return New(docs, table, fields, opts...)
}

func docIDs(docs []*document.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

func TestSearchDocuments(t *testing.T) {
	s := newTestSearcher(t)

	tests := []struct {
		name string
		q    query.StructuredQuery
		want []string
	}{
		{
			name: "empty query returns everything newest first",
			q:    query.StructuredQuery{},
			want: []string{"d5", "d2", "d3", "d1", "d4"},
		},
		{
			name: "single content term",
			q:    query.StructuredQuery{ContentTerms: []string{"airbus"}},
			want: []string{"d3", "d1", "d4"},
		},
		{
			name: "content OR",
			q: query.StructuredQuery{
				ContentTerms:    []string{"airbus", "projet taxibot"},
				ContentOperator: query.OpOr,
			},
			want: []string{"d3", "d1", "d4"},
		},
		{
			name: "content AND",
			q: query.StructuredQuery{
				ContentTerms:    []string{"airbus", "projet taxibot"},
				ContentOperator: query.OpAnd,
			},
			want: []string{"d1"},
		},
		{
			name: "multi-word term needs every word",
			q:    query.StructuredQuery{ContentTerms: []string{"projet avions"}},
			want: []string{"d1"},
		},
		{
			name: "unknown term matches nothing",
			q:    query.StructuredQuery{ContentTerms: []string{"zeppelin"}},
			want: nil,
		},
		{
			name: "negated content",
			q: query.StructuredQuery{
				ContentTerms:        []string{"airbus"},
				NegatedContentTerms: []string{"projet taxibot"},
			},
			want: []string{"d3", "d4"},
		},
		{
			name: "negated content alone",
			q:    query.StructuredQuery{NegatedContentTerms: []string{"chercheurs"}},
			want: []string{"d3", "d1", "d4"},
		},
		{
			name: "title",
			q:    query.StructuredQuery{TitleTerms: []string{"drones"}},
			want: []string{"d2", "d3"},
		},
		{
			name: "content and title",
			q: query.StructuredQuery{
				ContentTerms: []string{"airbus"},
				TitleTerms:   []string{"drones"},
			},
			want: []string{"d3"},
		},
		{
			name: "rubric OR",
			q: query.StructuredQuery{
				RubricTerms:    []string{"actualités innovations", "focus"},
				RubricOperator: query.OpOr,
			},
			want: []string{"d5", "d2", "d1"},
		},
		{
			name: "rubric AND needs every substring",
			q: query.StructuredQuery{
				RubricTerms:    []string{"actualités innovations", "focus"},
				RubricOperator: query.OpAnd,
			},
			want: nil,
		},
		{
			name: "rubric substring is case-insensitive",
			q:    query.StructuredQuery{RubricTerms: []string{"INNOV"}},
			want: []string{"d2"},
		},
		{
			name: "negated rubric keeps documents without rubric",
			q:    query.StructuredQuery{NegatedRubricTerms: []string{"focus"}},
			want: []string{"d2", "d3", "d4"},
		},
		{
			name: "image requires a url",
			q:    query.StructuredQuery{HasImage: true},
			want: []string{"d1"},
		},
		{
			name: "closed date window drops undated",
			q: query.StructuredQuery{
				DateStart: ptr(day(2012, time.July, 1)),
				DateEnd:   ptr(day(2013, time.December, 31)),
			},
			want: []string{"d2", "d3"},
		},
		{
			name: "open end",
			q:    query.StructuredQuery{DateStart: ptr(day(2013, time.January, 1))},
			want: []string{"d5", "d2"},
		},
		{
			name: "bounds are inclusive",
			q: query.StructuredQuery{
				DateStart: ptr(day(2012, time.June, 15)),
				DateEnd:   ptr(day(2012, time.June, 15)),
			},
			want: []string{"d1"},
		},
		{
			name: "excluded month keeps undated",
			q:    query.StructuredQuery{ExcludedPeriods: []query.Period{query.MonthPeriod(2012, time.June)}},
			want: []string{"d5", "d2", "d3", "d4"},
		},
		{
			name: "year minus one month",
			q: query.StructuredQuery{
				DateStart:       ptr(day(2012, time.January, 1)),
				DateEnd:         ptr(time.Date(2012, time.December, 31, 23, 59, 59, 999999000, time.UTC)),
				ExcludedPeriods: []query.Period{query.MonthPeriod(2012, time.June)},
			},
			want: []string{"d3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Search(&tt.q)
			if res.Target != query.TargetArticles {
				t.Fatalf("Target = %v, want articles", res.Target)
			}
			if got := docIDs(res.Documents); !slices.Equal(got, tt.want) {
				t.Errorf("Search() = %v, want %v", got, tt.want)
			}
			if res.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", res.Len(), len(tt.want))
			}
		})
	}
}

func TestSearchRubrics(t *testing.T) {
	s := newTestSearcher(t)

	tests := []struct {
		name string
		q    query.StructuredQuery
		want []string
	}{
		{
			name: "distinct sorted rubrics",
			q:    query.StructuredQuery{Target: query.TargetRubrics},
			want: []string{"A lire", "Actualités Innovations", "Focus"},
		},
		{
			name: "documents without rubric are skipped",
			q:    query.StructuredQuery{ContentTerms: []string{"airbus"}, Target: query.TargetRubrics},
			want: []string{"A lire", "Focus"},
		},
		{
			name: "no match",
			q:    query.StructuredQuery{ContentTerms: []string{"zeppelin"}, Target: query.TargetRubrics},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Search(&tt.q)
			if res.Documents != nil {
				t.Errorf("Documents = %v, want none", docIDs(res.Documents))
			}
			if !slices.Equal(res.Rubrics, tt.want) {
				t.Errorf("Rubrics = %v, want %v", res.Rubrics, tt.want)
			}
		})
	}
}

func TestSearchMissingField(t *testing.T) {
	docs := testCorpus()
	s := New(docs, nil, index.Fields{})

	if s.Len() != len(docs) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(docs))
	}
	if got := s.Search(&query.StructuredQuery{}).Len(); got != len(docs) {
		t.Errorf("empty query returned %d documents, want %d", got, len(docs))
	}
	for _, q := range []query.StructuredQuery{
		{ContentTerms: []string{"airbus"}},
		{TitleTerms: []string{"drones"}},
	} {
		if got := s.Search(&q).Len(); got != 0 {
			t.Errorf("Search(%s) returned %d documents, want 0", q.String(), got)
		}
	}
	// negations against a missing index remove nothing
	q := query.StructuredQuery{NegatedContentTerms: []string{"airbus"}}
	if got := s.Search(&q).Len(); got != len(docs) {
		t.Errorf("negated search returned %d documents, want %d", got, len(docs))
	}
}

func TestSearchFrenchFieldNames(t *testing.T) {
	docs := testCorpus()
	b := index.NewBuilder(analysis.NewFrench(nil))
	for _, id := range docs.IDs() {
		b.Add(docs[id])
	}
	table, built := b.Build()
	fields := index.Fields{
		"texte": built[index.FieldContent],
		"titre": built[index.FieldTitle],
	}
	s := New(docs, table, fields)

	tests := []struct {
		name string
		q    query.StructuredQuery
		want []string
	}{
		{"content", query.StructuredQuery{ContentTerms: []string{"airbus"}}, []string{"d3", "d1", "d4"}},
		{"negated content", query.StructuredQuery{NegatedContentTerms: []string{"airbus"}}, []string{"d5", "d2"}},
		{"title", query.StructuredQuery{TitleTerms: []string{"drones"}}, []string{"d2", "d3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := docIDs(s.Search(&tt.q).Documents); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%s) = %v, want %v", tt.q.String(), got, tt.want)
			}
		})
	}
}

func TestSearchUnindexedDocument(t *testing.T) {
	docs := testCorpus()
	b := index.NewBuilder(analysis.NewFrench(nil))
	for _, id := range docs.IDs() {
		b.Add(docs[id])
	}
	table, fields := b.Build()
	docs.Add(&document.Document{ID: "d6", Date: day(2015, time.May, 2), Rubric: "Focus"})

	s := New(docs, table, fields)
	res := s.Search(&query.StructuredQuery{RubricTerms: []string{"focus"}})
	if got, want := docIDs(res.Documents), []string{"d6", "d5", "d1"}; !slices.Equal(got, want) {
		t.Errorf("Search() = %v, want %v", got, want)
	}
}

func TestSearchNormalizer(t *testing.T) {
	s := newTestSearcher(t, WithNormalizer(analysis.PhraseNormalizer{Analyzer: analysis.NewFrench(nil)}))

	q := &query.StructuredQuery{ContentTerms: []string{"Projet de Taxibot"}}
	res := s.Search(q)
	if got, want := docIDs(res.Documents), []string{"d1"}; !slices.Equal(got, want) {
		t.Errorf("Search() = %v, want %v", got, want)
	}
	if want := []string{"Projet de Taxibot"}; !reflect.DeepEqual(q.ContentTerms, want) {
		t.Errorf("caller query modified: %v", q.ContentTerms)
	}
}

func TestSearchParsedQuestions(t *testing.T) {
	p := query.NewParser()
	s := newTestSearcher(t, WithNormalizer(analysis.PhraseNormalizer{Analyzer: analysis.NewFrench(nil)}))

	tests := []struct {
		question string
		docs     []string
		rubrics  []string
	}{
		{
			question: "Je voudrais les articles qui parlent d’airbus ou du projet Taxibot.",
			docs:     []string{"d3", "d1", "d4"},
		},
		{
			question: "Lister tous les articles dont la rubrique est Focus et qui ont des images.",
			docs:     []string{"d1"},
		},
		{
			question: "Dans quelles rubriques trouve-t-on les articles sur les drones ?",
			rubrics:  []string{"A lire"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			res := s.Search(p.Parse(tt.question))
			if got := docIDs(res.Documents); !slices.Equal(got, tt.docs) {
				t.Errorf("documents = %v, want %v", got, tt.docs)
			}
			if !slices.Equal(res.Rubrics, tt.rubrics) {
				t.Errorf("rubrics = %v, want %v", res.Rubrics, tt.rubrics)
			}
		})
	}
}

func TestSearchMetrics(t *testing.T) {
	m := metrics.New()
	s := newTestSearcher(t, WithMetrics(m))
	s.Search(&query.StructuredQuery{ContentTerms: []string{"airbus"}})
	s.Search(&query.StructuredQuery{})

	families, err := m.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "bulletins_search_results_count" {
			continue
		}
		h := f.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 2 || h.GetSampleSum() != 8 {
			t.Errorf("results histogram count=%d sum=%v, want 2 and 8", h.GetSampleCount(), h.GetSampleSum())
		}
		return
	}
	t.Error("bulletins_search_results_count not gathered")
}

func TestBatch(t *testing.T) {
	p := query.NewParser()
	s := newTestSearcher(t)
	questions := []string{
		"Quels sont les articles possédant le mot chercheurs ?",
		"Je voudrais les articles traitant de zeppelin.",
		"Dans quelles rubriques trouve-t-on les articles sur les drones ?",
	}

	out, err := Batch(context.Background(), p, s, questions, 2)
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if len(out) != len(questions) {
		t.Fatalf("got %d outcomes, want %d", len(out), len(questions))
	}
	if got, want := docIDs(out[0].Result.Documents), []string{"d5", "d2"}; !slices.Equal(got, want) {
		t.Errorf("outcome 0 = %v, want %v", got, want)
	}
	if out[1].Result.Len() != 0 {
		t.Errorf("outcome 1 = %v, want none", docIDs(out[1].Result.Documents))
	}
	if got, want := out[2].Result.Rubrics, []string{"A lire"}; !slices.Equal(got, want) {
		t.Errorf("outcome 2 = %v, want %v", got, want)
	}
	if out[2].Query.Target != query.TargetRubrics {
		t.Errorf("outcome 2 target = %v", out[2].Query.Target)
	}
}

func TestBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Batch(ctx, query.NewParser(), newTestSearcher(t), []string{"articles sur airbus"}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Batch() error = %v, want context.Canceled", err)
	}
}
