package index

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"harshagw/bulletins/internal/analysis"
	"harshagw/bulletins/internal/document"
)

func buildTestFields(t *testing.T) (*DocTable, Fields, *Builder) {
	t.Helper()
	b := NewBuilder(analysis.NewFrench(nil))
	docs := []*document.Document{
		{ID: "d1", Title: "Robots et santé", Body: "Les robots aident la santé. Robots partout."},
		{ID: "d2", Title: "Airbus", Body: "Airbus présente le projet Taxibot."},
		{ID: "d3", Title: "Santé publique", Body: "La santé des robots industriels."},
	}
	for _, d := range docs {
		b.Add(d)
	}
	table, fields := b.Build()
	return table, fields, b
}

func TestDocTable(t *testing.T) {
	dt := NewDocTable()
	if dt.Add("a") != 0 || dt.Add("b") != 1 || dt.Add("a") != 0 {
		t.Fatal("Add should assign dense, stable numbers")
	}
	if n, ok := dt.Num("b"); !ok || n != 1 {
		t.Errorf("Num(b) = %d, %v", n, ok)
	}
	if _, ok := dt.Num("z"); ok {
		t.Error("Num(z) found")
	}
	if dt.ID(7) != "" {
		t.Error("ID out of range should be empty")
	}
	if got := dt.IDs(dt.All()); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("IDs(All()) = %v", got)
	}
	if NewDocTable().All().GetCardinality() != 0 {
		t.Error("empty table universe not empty")
	}
}

func TestFindDocs(t *testing.T) {
	_, fields, _ := buildTestFields(t)
	content := fields.Lookup(FieldContent)

	tests := []struct {
		name  string
		terms []string
		want  []string
	}{
		{"single", []string{"robots"}, []string{"d1", "d3"}},
		{"and", []string{"robots", "santé"}, []string{"d1", "d3"}},
		{"narrowing", []string{"santé", "aident"}, []string{"d1"}},
		{"unknown term empties", []string{"robots", "martien"}, []string{}},
		{"no terms", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := content.FindDocIDs(tt.terms)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindDocIDs(%v) = %v, want %v", tt.terms, got, tt.want)
			}
		})
	}
}

func TestGetReturnsCopy(t *testing.T) {
	_, fields, _ := buildTestFields(t)
	content := fields[FieldContent]

	bm := content.Get("airbus")
	bm.Add(99)
	if got := content.GetIDs("airbus"); !reflect.DeepEqual(got, []string{"d2"}) {
		t.Errorf("GetIDs(airbus) = %v after mutating a copy", got)
	}
	if !content.Get("inconnu").IsEmpty() {
		t.Error("unknown term should have empty postings")
	}
}

func TestFieldsLookup(t *testing.T) {
	_, fields, _ := buildTestFields(t)
	content, title := fields[FieldContent], fields[FieldTitle]
	french := Fields{"texte": content, "titre": title}
	body := Fields{"body": content}

	tests := []struct {
		name   string
		fields Fields
		field  string
		want   *InvertedIndex
	}{
		{"texte aliases content", fields, "texte", content},
		{"titre aliases title", fields, "titre", title},
		{"body aliases content", fields, "body", content},
		{"canonical name", fields, FieldTitle, title},
		{"content finds texte key", french, FieldContent, content},
		{"title finds titre key", french, FieldTitle, title},
		{"body finds texte key", french, "body", content},
		{"exact french key", french, "texte", content},
		{"texte finds body key", body, "texte", content},
		{"unknown field", fields, "légende", nil},
		{"missing canonical field", body, FieldTitle, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fields.Lookup(tt.field); got != tt.want {
				t.Errorf("Lookup(%q) = %p, want %p", tt.field, got, tt.want)
			}
		})
	}

	if got := french.Lookup(FieldTitle).GetIDs("santé"); !reflect.DeepEqual(got, []string{"d1", "d3"}) {
		t.Errorf("title santé = %v", got)
	}
}

func TestCanonicalField(t *testing.T) {
	tests := map[string]string{
		"texte":      FieldContent,
		"body":       FieldContent,
		"titre":      FieldTitle,
		FieldContent: FieldContent,
		"rubrique":   "rubrique",
	}
	for name, want := range tests {
		if got := CanonicalField(name); got != want {
			t.Errorf("CanonicalField(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestTokens(t *testing.T) {
	_, fields, _ := buildTestFields(t)
	want := []string{"airbus", "publique", "robots", "santé"}
	if got := fields[FieldTitle].Tokens(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
	if fields[FieldTitle].Len() != len(want) {
		t.Errorf("Len() = %d", fields[FieldTitle].Len())
	}
}

func TestTSVRoundTrip(t *testing.T) {
	table, fields, b := buildTestFields(t)

	var buf bytes.Buffer
	if err := b.WriteTSV(FieldTitle, &buf); err != nil {
		t.Fatalf("WriteTSV error: %v", err)
	}
	wantTSV := "airbus\td2:1\npublique\td3:1\nrobots\td1:1\nsanté\td1:1 d3:1\n"
	if buf.String() != wantTSV {
		t.Errorf("WriteTSV() =\n%q\nwant\n%q", buf.String(), wantTSV)
	}

	path := filepath.Join(t.TempDir(), "titre.tsv")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	loaded, err := OpenTSV(path, table)
	if err != nil {
		t.Fatalf("OpenTSV error: %v", err)
	}
	if !reflect.DeepEqual(loaded.Tokens(), fields[FieldTitle].Tokens()) {
		t.Errorf("tokens differ: %v vs %v", loaded.Tokens(), fields[FieldTitle].Tokens())
	}
	if got := loaded.FindDocIDs([]string{"santé"}); !reflect.DeepEqual(got, []string{"d1", "d3"}) {
		t.Errorf("loaded santé = %v", got)
	}
}

func TestWriteTSVFrequencies(t *testing.T) {
	_, _, b := buildTestFields(t)
	var buf bytes.Buffer
	if err := b.WriteTSV(FieldContent, &buf); err != nil {
		t.Fatalf("WriteTSV error: %v", err)
	}
	if !strings.Contains(buf.String(), "robots\td1:2 d3:1\n") {
		t.Errorf("missing robots row with frequencies:\n%s", buf.String())
	}
}

func TestReadTSV(t *testing.T) {
	input := "focus\t67068:3 67070:1\n\nlune\t67070:2\nvide\t\n"
	ix, err := ReadTSV(strings.NewReader(input), NewDocTable())
	if err != nil {
		t.Fatalf("ReadTSV error: %v", err)
	}
	if got := ix.FindDocIDs([]string{"focus", "lune"}); !reflect.DeepEqual(got, []string{"67070"}) {
		t.Errorf("FindDocIDs = %v", got)
	}
	if ix.Docs().Len() != 2 {
		t.Errorf("doc table len = %d", ix.Docs().Len())
	}

	for _, bad := range []string{"sans tabulation", "x\tdoc", "x\tdoc:abc", "x\t:3"} {
		if _, err := ReadTSV(strings.NewReader(bad), NewDocTable()); !errors.Is(err, ErrMalformedRow) {
			t.Errorf("ReadTSV(%q) error = %v, want ErrMalformedRow", bad, err)
		}
	}
}

func TestOpenTSVEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tsv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	ix, err := OpenTSV(path, NewDocTable())
	if err != nil {
		t.Fatalf("OpenTSV error: %v", err)
	}
	if ix.Len() != 0 {
		t.Errorf("Len() = %d", ix.Len())
	}
}
