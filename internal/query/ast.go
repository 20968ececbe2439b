package query

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Operator combines the terms of one field.
type Operator int

const (
	OpNone Operator = iota
	OpAnd
	OpOr
)

func (o Operator) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "NONE"
	}
}

// Target selects what a query returns.
type Target int

const (
	TargetArticles Target = iota
	TargetRubrics
)

func (t Target) String() string {
	if t == TargetRubrics {
		return "rubriques"
	}
	return "articles"
}

// Field names one term list of a StructuredQuery.
type Field int

const (
	FieldContent Field = iota
	FieldTitle
	FieldRubric
	FieldNegatedContent
	FieldNegatedRubric
)

func (f Field) String() string {
	switch f {
	case FieldContent:
		return "content"
	case FieldTitle:
		return "title"
	case FieldRubric:
		return "rubric"
	case FieldNegatedContent:
		return "negated_content"
	case FieldNegatedRubric:
		return "negated_rubric"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Normalizer rewrites a term into its index form. An empty result drops the
// term.
type Normalizer interface {
	Normalize(term string) string
}

// StructuredQuery is the normalized, executable form of a natural-language
// question. Term lists are deduplicated and sorted. An operator is OpNone
// when its list holds at most one term.
type StructuredQuery struct {
	Raw string

	ContentTerms    []string
	ContentOperator Operator
	TitleTerms      []string
	TitleOperator   Operator
	RubricTerms     []string
	RubricOperator  Operator

	NegatedContentTerms []string
	NegatedRubricTerms  []string

	DateStart       *time.Time
	DateEnd         *time.Time
	ExcludedPeriods []Period

	HasImage bool
	Target   Target
}

func (q *StructuredQuery) field(f Field) (*[]string, *Operator) {
	switch f {
	case FieldContent:
		return &q.ContentTerms, &q.ContentOperator
	case FieldTitle:
		return &q.TitleTerms, &q.TitleOperator
	case FieldRubric:
		return &q.RubricTerms, &q.RubricOperator
	case FieldNegatedContent:
		return &q.NegatedContentTerms, nil
	case FieldNegatedRubric:
		return &q.NegatedRubricTerms, nil
	default:
		return nil, nil
	}
}

// Terms returns the term list of f.
func (q *StructuredQuery) Terms(f Field) []string {
	terms, _ := q.field(f)
	if terms == nil {
		return nil
	}
	return *terms
}

// Normalize rewrites the terms of f with n, then restores the list
// invariants. An operator collapses to OpNone once one term is left and
// becomes OpAnd if two distinct terms appear under OpNone.
func (q *StructuredQuery) Normalize(f Field, n Normalizer) {
	terms, op := q.field(f)
	if terms == nil || n == nil {
		return
	}
	out := make([]string, 0, len(*terms))
	for _, t := range *terms {
		out = append(out, n.Normalize(t))
	}
	*terms = cleanTerms(out)
	if op != nil {
		*op = fixOperator(*op, len(*terms))
	}
}

// NormalizeTerms normalizes the fields matched against the index: content,
// title and negated content. Rubrics are matched as substrings of the raw
// document rubric and keep their canonical form.
func (q *StructuredQuery) NormalizeTerms(n Normalizer) {
	for _, f := range []Field{FieldContent, FieldTitle, FieldNegatedContent} {
		q.Normalize(f, n)
	}
}

// IsEmpty reports whether the query carries no constraint at all.
func (q *StructuredQuery) IsEmpty() bool {
	return len(q.ContentTerms) == 0 && len(q.TitleTerms) == 0 && len(q.RubricTerms) == 0 &&
		len(q.NegatedContentTerms) == 0 && len(q.NegatedRubricTerms) == 0 &&
		q.DateStart == nil && q.DateEnd == nil && len(q.ExcludedPeriods) == 0 && !q.HasImage
}

func (q *StructuredQuery) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "target=%s", q.Target)
	writeTerms(&sb, "content", q.ContentTerms, q.ContentOperator)
	writeTerms(&sb, "title", q.TitleTerms, q.TitleOperator)
	writeTerms(&sb, "rubric", q.RubricTerms, q.RubricOperator)
	writeTerms(&sb, "-content", q.NegatedContentTerms, OpNone)
	writeTerms(&sb, "-rubric", q.NegatedRubricTerms, OpNone)
	if q.DateStart != nil {
		fmt.Fprintf(&sb, " from=%s", q.DateStart.Format(time.RFC3339Nano))
	}
	if q.DateEnd != nil {
		fmt.Fprintf(&sb, " to=%s", q.DateEnd.Format(time.RFC3339Nano))
	}
	if len(q.ExcludedPeriods) > 0 {
		labels := make([]string, len(q.ExcludedPeriods))
		for i, p := range q.ExcludedPeriods {
			labels[i] = p.String()
		}
		fmt.Fprintf(&sb, " exclude=[%s]", strings.Join(labels, " "))
	}
	if q.HasImage {
		sb.WriteString(" image")
	}
	return sb.String()
}

func writeTerms(sb *strings.Builder, name string, terms []string, op Operator) {
	if len(terms) == 0 {
		return
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	fmt.Fprintf(sb, " %s=[%s]", name, strings.Join(quoted, " "))
	if op != OpNone {
		fmt.Fprintf(sb, "/%s", op)
	}
}

// cleanTerms drops empty terms, then sorts and deduplicates.
func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func fixOperator(op Operator, n int) Operator {
	switch {
	case n <= 1:
		return OpNone
	case op == OpNone:
		return OpAnd
	default:
		return op
	}
}
