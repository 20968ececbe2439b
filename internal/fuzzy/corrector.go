// Package fuzzy maps out-of-vocabulary words to the closest lexicon word
// using a prefix tree and Levenshtein distance.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"harshagw/bulletins/internal/metrics"
)

// Options tunes Lemmatize. Start from DefaultOptions: in the zero value
// MaxOverflow is 0, which keeps only words ending at the shared prefix.
type Options struct {
	// MinPrefixLen is the shortest shared prefix that allows candidate collection.
	MinPrefixLen int
	// PrefixSimilarityThreshold scales the maximum candidate length. Values
	// not above zero fall back to the default threshold.
	PrefixSimilarityThreshold float64
	// MaxOverflow bounds the extra characters of a candidate; Unbounded disables it.
	MaxOverflow int
}

// DefaultOptions returns min prefix 3, threshold 0.6 and no overflow bound.
func DefaultOptions() Options {
	return Options{
		MinPrefixLen:              3,
		PrefixSimilarityThreshold: 0.6,
		MaxOverflow:               Unbounded,
	}
}

// Corrector resolves words against a lexicon.
type Corrector struct {
	tree    *PrefixTree
	opts    Options
	metrics *metrics.Metrics
}

// CorrectorOption configures a Corrector.
type CorrectorOption func(*Corrector)

// WithMetrics records lemmatize outcomes on m.
func WithMetrics(m *metrics.Metrics) CorrectorOption {
	return func(c *Corrector) { c.metrics = m }
}

// WithOptions sets the options used by Normalize.
func WithOptions(o Options) CorrectorOption {
	return func(c *Corrector) { c.opts = o }
}

// NewCorrector builds the prefix tree over lexicon.
func NewCorrector(lexicon []string, opts ...CorrectorOption) *Corrector {
	c := &Corrector{tree: NewPrefixTree(lexicon), opts: DefaultOptions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tree returns the underlying prefix tree.
func (c *Corrector) Tree() *PrefixTree {
	return c.tree
}

// Lemmatize returns the lexicon word closest to word. A word present in the
// lexicon is returned unchanged. The boolean is false when no candidate
// survives.
func (c *Corrector) Lemmatize(word string, opts Options) (string, bool) {
	word = strings.ToLower(word)
	if c.tree.Contains(word) {
		c.metrics.ObserveCorrection("exact")
		return word, true
	}

	candidates, prefixLen := c.tree.Search(word, opts.MinPrefixLen, opts.MaxOverflow)
	if len(candidates) == 0 {
		c.metrics.ObserveCorrection("miss")
		return "", false
	}

	wordLen := utf8.RuneCountInString(word)
	threshold := opts.PrefixSimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultOptions().PrefixSimilarityThreshold
	}
	limit := int(float64(prefixLen) / threshold * float64(wordLen))
	kept := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		if utf8.RuneCountInString(cand) <= limit {
			kept = append(kept, cand)
		}
	}

	switch len(kept) {
	case 0:
		c.metrics.ObserveCorrection("miss")
		return "", false
	case 1:
		c.metrics.ObserveCorrection("corrected")
		return kept[0], true
	}

	best, bestDist := "", -1
	for _, cand := range kept {
		d := Levenshtein(word, cand)
		if bestDist < 0 || d < bestDist || (d == bestDist && cand < best) {
			best, bestDist = cand, d
		}
	}
	c.metrics.ObserveCorrection("corrected")
	return best, true
}

// CorrectSentence lemmatizes every whitespace-separated word, keeping words
// that have no candidate.
func (c *Corrector) CorrectSentence(sentence string, opts Options) []string {
	words := strings.Fields(sentence)
	out := make([]string, len(words))
	for i, w := range words {
		if lemma, ok := c.Lemmatize(w, opts); ok {
			out[i] = lemma
		} else {
			out[i] = w
		}
	}
	return out
}

// Normalize maps token to its lexicon word with the corrector's options,
// keeping unknown tokens lowercased.
func (c *Corrector) Normalize(token string) string {
	if lemma, ok := c.Lemmatize(token, c.opts); ok {
		return lemma
	}
	return strings.ToLower(token)
}
