package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kljensen/snowball/french"

	"harshagw/bulletins/internal/fuzzy"
)

// ErrUnknownNormalizer is returned for an unsupported normalizer kind.
var ErrUnknownNormalizer = errors.New("analysis: unknown normalizer")

// Normalizer maps a token to the form stored in the index.
type Normalizer interface {
	Normalize(token string) string
}

// NormalizerFunc adapts a function to Normalizer.
type NormalizerFunc func(string) string

func (f NormalizerFunc) Normalize(token string) string { return f(token) }

// Lowercase only lowercases.
type Lowercase struct{}

func (Lowercase) Normalize(token string) string { return strings.ToLower(token) }

// Stemmer applies the Snowball French stemmer.
type Stemmer struct{}

func (Stemmer) Normalize(token string) string {
	return french.Stem(strings.ToLower(token), false)
}

// NewNormalizer builds the normalizer named by kind: "lowercase", "stem" or
// "lexicon". The lexicon normalizer corrects tokens against lexicon and
// requires a non-empty word list.
func NewNormalizer(kind string, lexicon []string, opts fuzzy.Options) (Normalizer, error) {
	switch kind {
	case "", "lowercase":
		return Lowercase{}, nil
	case "stem":
		return Stemmer{}, nil
	case "lexicon":
		if len(lexicon) == 0 {
			return nil, fmt.Errorf("lexicon normalizer needs a word list")
		}
		return fuzzy.NewCorrector(lexicon, fuzzy.WithOptions(opts)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNormalizer, kind)
	}
}
