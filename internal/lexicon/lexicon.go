// Package lexicon reads word lists and stores them as vellum FST files that
// are memory-mapped for lookups, edit-distance suggestions and pattern scans.
package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/couchbase/vellum"
	"github.com/couchbase/vellum/levenshtein"
	"github.com/couchbase/vellum/regexp"
	"github.com/edsrzf/mmap-go"
)

// ErrEmpty is returned when a lexicon has no words.
var ErrEmpty = errors.New("lexicon: no words")

// ReadWords reads one word per line. Only the first tab-separated column is
// kept, so "form<TAB>lemma" rows are accepted. Blank lines and lines starting
// with '#' are skipped. Words are lowercased; duplicates are kept.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, _, _ := strings.Cut(line, "\t")
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			words = append(words, word)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return words, nil
}

// ReadWordsFile reads a word list from path.
func ReadWordsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer f.Close()
	return ReadWords(f)
}

// Build writes an FST of words to w. Each key maps to the number of times
// the word occurs in words.
func Build(w io.Writer, words []string) error {
	counts := make(map[string]uint64, len(words))
	for _, word := range words {
		word = strings.ToLower(word)
		if word != "" {
			counts[word]++
		}
	}
	if len(counts) == 0 {
		return ErrEmpty
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	builder, err := vellum.New(w, nil)
	if err != nil {
		return fmt.Errorf("failed to create FST builder: %w", err)
	}
	for _, k := range keys {
		if err := builder.Insert([]byte(k), counts[k]); err != nil {
			return fmt.Errorf("failed to insert %q: %w", k, err)
		}
	}
	return builder.Close()
}

// Write builds the FST for words into the file at path.
func Write(path string, words []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create lexicon %s: %w", path, err)
	}
	bw := bufio.NewWriter(file)
	if err := Build(bw, words); err != nil {
		file.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Lexicon is a read-only FST of known word forms.
type Lexicon struct {
	fst  *vellum.FST
	file *os.File
	data mmap.MMap
}

// Open maps an FST file written by Write.
func Open(path string) (*Lexicon, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon %s: %w", path, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if stat.Size() == 0 {
		file.Close()
		return nil, fmt.Errorf("%w: %s is empty", ErrEmpty, path)
	}
	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap lexicon %s: %w", path, err)
	}
	fst, err := vellum.Load(data)
	if err != nil {
		data.Unmap()
		file.Close()
		return nil, fmt.Errorf("failed to load lexicon FST %s: %w", path, err)
	}
	return &Lexicon{fst: fst, file: file, data: data}, nil
}

// Load reads an FST held in memory.
func Load(data []byte) (*Lexicon, error) {
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon FST: %w", err)
	}
	return &Lexicon{fst: fst}, nil
}

// Close releases the FST and its mapping.
func (l *Lexicon) Close() error {
	err := l.fst.Close()
	if l.data != nil {
		if uerr := l.data.Unmap(); err == nil {
			err = uerr
		}
	}
	if l.file != nil {
		if cerr := l.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Len returns the number of distinct words.
func (l *Lexicon) Len() int {
	return l.fst.Len()
}

// Count returns how many source rows carried word, 0 when unknown.
func (l *Lexicon) Count(word string) (uint64, error) {
	v, ok, err := l.fst.Get([]byte(strings.ToLower(word)))
	if err != nil || !ok {
		return 0, err
	}
	return v, nil
}

// Contains reports whether word is in the lexicon.
func (l *Lexicon) Contains(word string) bool {
	ok, err := l.fst.Contains([]byte(strings.ToLower(word)))
	return err == nil && ok
}

// Words returns all words in lexicographic order.
func (l *Lexicon) Words() ([]string, error) {
	iter, err := l.fst.Iterator(nil, nil)
	return collect(iter, err)
}

// Suggest returns the words within fuzziness edits of word.
func (l *Lexicon) Suggest(word string, fuzziness uint8) ([]string, error) {
	builder, err := levenshtein.NewLevenshteinAutomatonBuilder(fuzziness, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create levenshtein builder: %w", err)
	}
	aut, err := builder.BuildDfa(strings.ToLower(word), fuzziness)
	if err != nil {
		return nil, fmt.Errorf("failed to build fuzzy automaton: %w", err)
	}
	iter, err := l.fst.Search(aut, nil, nil)
	return collect(iter, err)
}

// Match returns the words matching a regular expression.
func (l *Lexicon) Match(pattern string) ([]string, error) {
	aut, err := regexp.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	iter, err := l.fst.Search(aut, nil, nil)
	return collect(iter, err)
}

func collect(iter *vellum.FSTIterator, err error) ([]string, error) {
	var words []string
	for err == nil {
		key, _ := iter.Current()
		words = append(words, string(key))
		err = iter.Next()
	}
	if err != vellum.ErrIteratorDone {
		return nil, err
	}
	return words, nil
}
