package index

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"

	"harshagw/bulletins/internal/analysis"
	"harshagw/bulletins/internal/document"
)

// Builder accumulates analyzed documents into per-field postings with term
// frequencies, then freezes them into InvertedIndexes.
type Builder struct {
	fields   map[string]map[string]map[uint32]uint32 // field -> token -> docNum -> freq
	docs     *DocTable
	analyzer analysis.Analyzer
}

// NewBuilder creates a builder using analyzer for every field.
func NewBuilder(analyzer analysis.Analyzer) *Builder {
	return &Builder{
		fields:   make(map[string]map[string]map[uint32]uint32),
		docs:     NewDocTable(),
		analyzer: analyzer,
	}
}

// Add indexes the body as FieldContent and the title as FieldTitle.
func (b *Builder) Add(doc *document.Document) {
	b.docs.Add(doc.ID)
	b.AddField(FieldContent, doc.ID, doc.Body)
	b.AddField(FieldTitle, doc.ID, doc.Title)
}

// AddField indexes text under field for docID.
func (b *Builder) AddField(field, docID, text string) {
	num := b.docs.Add(docID)
	terms := b.fields[field]
	if terms == nil {
		terms = make(map[string]map[uint32]uint32)
		b.fields[field] = terms
	}
	for _, tp := range b.analyzer.Analyze(text) {
		postings := terms[tp.Token]
		if postings == nil {
			postings = make(map[uint32]uint32)
			terms[tp.Token] = postings
		}
		postings[num]++
	}
}

// Build freezes the accumulated postings. Every field shares the returned
// document table.
func (b *Builder) Build() (*DocTable, Fields) {
	fields := make(Fields, len(b.fields))
	for name, terms := range b.fields {
		ix := New(b.docs)
		for token, postings := range terms {
			for num := range postings {
				ix.Add(token, b.docs.ID(num))
			}
		}
		fields[name] = ix
	}
	for _, name := range []string{FieldContent, FieldTitle} {
		if fields[name] == nil {
			fields[name] = New(b.docs)
		}
	}
	return b.docs, fields
}

// WriteTSV writes one field as "token<TAB>doc:freq doc:freq" rows, tokens
// and documents in lexicographic order.
func (b *Builder) WriteTSV(field string, w io.Writer) error {
	terms := b.fields[field]
	tokens := make([]string, 0, len(terms))
	for tok := range terms {
		tokens = append(tokens, tok)
	}
	slices.Sort(tokens)

	bw := bufio.NewWriter(w)
	for _, tok := range tokens {
		postings := terms[tok]
		ids := make([]string, 0, len(postings))
		freqs := make(map[string]uint32, len(postings))
		for num, freq := range postings {
			id := b.docs.ID(num)
			ids = append(ids, id)
			freqs[id] = freq
		}
		slices.Sort(ids)

		bw.WriteString(tok)
		bw.WriteByte('\t')
		for i, id := range ids {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(id)
			bw.WriteByte(':')
			bw.WriteString(strconv.FormatUint(uint64(freqs[id]), 10))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing field %s: %w", field, err)
		}
	}
	return bw.Flush()
}
