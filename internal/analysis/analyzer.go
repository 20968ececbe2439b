package analysis

import (
	"strings"
	"unicode"
)

type TokenPosition struct {
	Token    string
	Position uint64
}

// Analyzer defines the interface for text analysis.
type Analyzer interface {
	Analyze(text string) []TokenPosition
}

// Simple performs basic tokenization: lowercasing and splitting on non-alphanumeric.
type Simple struct{}

func NewSimple() *Simple {
	return &Simple{}
}

// Analyze tokenizes text into tokens with positions.
func (a *Simple) Analyze(text string) []TokenPosition {
	var tokens []TokenPosition
	var currentToken strings.Builder
	var position uint64

	text = strings.ToLower(text)

	flush := func() {
		if currentToken.Len() > 0 {
			tokens = append(tokens, TokenPosition{
				Token:    currentToken.String(),
				Position: position,
			})
			position++
			currentToken.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			currentToken.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// French tokenizes like Simple, drops elided articles and stop words, then
// passes each token through a Normalizer. Positions keep the gaps left by
// dropped tokens.
type French struct {
	tokenizer  Simple
	normalizer Normalizer
}

// NewFrench returns a French analyzer. A nil normalizer keeps tokens lowercased.
func NewFrench(n Normalizer) *French {
	if n == nil {
		n = Lowercase{}
	}
	return &French{normalizer: n}
}

// Analyze implements Analyzer.
func (a *French) Analyze(text string) []TokenPosition {
	raw := a.tokenizer.Analyze(text)
	tokens := raw[:0]
	for _, tp := range raw {
		if IsStopWord(tp.Token) {
			continue
		}
		tp.Token = a.normalizer.Normalize(tp.Token)
		if tp.Token == "" {
			continue
		}
		tokens = append(tokens, tp)
	}
	return tokens
}

// Terms returns the analyzed tokens of text without positions.
func Terms(a Analyzer, text string) []string {
	tps := a.Analyze(text)
	out := make([]string, len(tps))
	for i, tp := range tps {
		out[i] = tp.Token
	}
	return out
}

// Phrase analyzes a query phrase and joins its tokens with single spaces, so
// that it can be split back into index tokens.
func Phrase(a Analyzer, phrase string) string {
	return strings.Join(Terms(a, phrase), " ")
}

// PhraseNormalizer normalizes whole query terms with an Analyzer, so that a
// term like "Projet de loi" becomes the index tokens "projet loi".
type PhraseNormalizer struct {
	Analyzer Analyzer
}

// Normalize implements Normalizer.
func (n PhraseNormalizer) Normalize(term string) string {
	return Phrase(n.Analyzer, term)
}
