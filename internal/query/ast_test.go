package query

import (
	"reflect"
	"strings"
	"testing"
)

type trimLe struct{}

func (trimLe) Normalize(term string) string {
	return strings.TrimPrefix(strings.ToLower(term), "les ")
}

func TestNormalizeField(t *testing.T) {
	q := &StructuredQuery{
		ContentTerms:    []string{"Les Robots", "robots"},
		ContentOperator: OpAnd,
		TitleTerms:      []string{"Drones"},
		RubricTerms:     []string{"Focus"},
	}
	q.NormalizeTerms(trimLe{})

	if want := []string{"robots"}; !reflect.DeepEqual(q.ContentTerms, want) {
		t.Errorf("ContentTerms = %q, want %q", q.ContentTerms, want)
	}
	if q.ContentOperator != OpNone {
		t.Errorf("ContentOperator = %v, want NONE once one term is left", q.ContentOperator)
	}
	if want := []string{"drones"}; !reflect.DeepEqual(q.TitleTerms, want) {
		t.Errorf("TitleTerms = %q, want %q", q.TitleTerms, want)
	}
	if want := []string{"Focus"}; !reflect.DeepEqual(q.RubricTerms, want) {
		t.Errorf("RubricTerms = %q, want rubric left as is", q.RubricTerms)
	}
}

func TestNormalizeDropsEmpty(t *testing.T) {
	q := &StructuredQuery{NegatedContentTerms: []string{"les ", "chimie"}}
	q.Normalize(FieldNegatedContent, trimLe{})
	if want := []string{"chimie"}; !reflect.DeepEqual(q.Terms(FieldNegatedContent), want) {
		t.Errorf("negated = %q, want %q", q.Terms(FieldNegatedContent), want)
	}
}

func TestQueryString(t *testing.T) {
	q := NewParser().Parse("Je voudrais les articles qui parlent d’airbus ou du projet Taxibot.")
	got := q.String()
	for _, part := range []string{"target=articles", `content=["airbus" "projet taxibot"]/OR`} {
		if !strings.Contains(got, part) {
			t.Errorf("String() = %q, missing %q", got, part)
		}
	}
}
