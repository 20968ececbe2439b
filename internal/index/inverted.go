// Package index holds per-field inverted indexes: normalized token to the
// set of documents containing it.
package index

import (
	"cmp"
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring"
)

// Field names used as index keys.
const (
	FieldContent = "content"
	FieldTitle   = "title"
)

var fieldAliases = map[string]string{
	"texte": FieldContent,
	"body":  FieldContent,
	"titre": FieldTitle,
}

// InvertedIndex maps tokens to postings. It performs no normalization:
// callers must look up tokens in the form they were indexed. Once built it
// is only read, so concurrent lookups are safe.
type InvertedIndex struct {
	docs     *DocTable
	postings map[string]*roaring.Bitmap
}

// New creates an empty index over docs.
func New(docs *DocTable) *InvertedIndex {
	return &InvertedIndex{
		docs:     docs,
		postings: make(map[string]*roaring.Bitmap),
	}
}

// Add records that docID contains token.
func (ix *InvertedIndex) Add(token, docID string) {
	num := ix.docs.Add(docID)
	bm, ok := ix.postings[token]
	if !ok {
		bm = roaring.New()
		ix.postings[token] = bm
	}
	bm.Add(num)
}

// Docs returns the shared document table.
func (ix *InvertedIndex) Docs() *DocTable {
	return ix.docs
}

// Len returns the number of distinct tokens.
func (ix *InvertedIndex) Len() int {
	return len(ix.postings)
}

// Tokens returns the vocabulary in lexicographic order.
func (ix *InvertedIndex) Tokens() []string {
	out := make([]string, 0, len(ix.postings))
	for tok := range ix.postings {
		out = append(out, tok)
	}
	slices.Sort(out)
	return out
}

// Get returns the postings of term. Unknown terms yield an empty bitmap.
// The result is a copy and may be modified.
func (ix *InvertedIndex) Get(term string) *roaring.Bitmap {
	if bm, ok := ix.postings[term]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// FindDocs returns the documents containing every term. Any unknown term,
// or no terms at all, yields the empty set.
func (ix *InvertedIndex) FindDocs(terms []string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.New()
	}
	lists := make([]*roaring.Bitmap, 0, len(terms))
	for _, term := range terms {
		bm, ok := ix.postings[term]
		if !ok {
			return roaring.New()
		}
		lists = append(lists, bm)
	}
	// smallest first keeps the intermediate sets small
	slices.SortFunc(lists, func(a, b *roaring.Bitmap) int {
		return cmp.Compare(a.GetCardinality(), b.GetCardinality())
	})
	result := lists[0].Clone()
	for _, bm := range lists[1:] {
		result.And(bm)
		if result.IsEmpty() {
			break
		}
	}
	return result
}

// GetIDs is Get resolved to external ids.
func (ix *InvertedIndex) GetIDs(term string) []string {
	return ix.docs.IDs(ix.Get(term))
}

// FindDocIDs is FindDocs resolved to external ids.
func (ix *InvertedIndex) FindDocIDs(terms []string) []string {
	return ix.docs.IDs(ix.FindDocs(terms))
}

// Fields maps field names to their indexes.
type Fields map[string]*InvertedIndex

// CanonicalField maps the French field names "texte" and "titre" (and
// "body") to FieldContent and FieldTitle. Other names are returned as is.
func CanonicalField(name string) string {
	if canonical, ok := fieldAliases[name]; ok {
		return canonical
	}
	return name
}

// Lookup returns the index of a field. Names are matched through their
// canonical form, so an index stored under "texte" answers for "content"
// and the reverse. Missing fields return nil.
func (f Fields) Lookup(name string) *InvertedIndex {
	if ix, ok := f[name]; ok {
		return ix
	}
	canonical := CanonicalField(name)
	if ix, ok := f[canonical]; ok {
		return ix
	}
	for _, alias := range slices.Sorted(maps.Keys(fieldAliases)) {
		if fieldAliases[alias] != canonical {
			continue
		}
		if ix, ok := f[alias]; ok {
			return ix
		}
	}
	return nil
}

// Set replaces the postings of token with bm, as document numbers of the
// shared table. It is used when reloading a persisted index.
func (ix *InvertedIndex) Set(token string, bm *roaring.Bitmap) {
	if bm == nil || bm.IsEmpty() {
		delete(ix.postings, token)
		return
	}
	ix.postings[token] = bm
}
