package analysis

var frenchStopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "à", "au", "aux", "avec", "c", "ce", "ces", "cet", "cette",
		"d", "dans", "de", "des", "du", "elle", "elles", "en", "est", "et",
		"il", "ils", "j", "je", "l", "la", "le", "les", "leur", "leurs",
		"lui", "m", "ma", "mais", "me", "mes", "n", "ne", "nos", "notre",
		"nous", "on", "ont", "ou", "par", "pas", "pour", "qu", "que", "qui",
		"s", "sa", "se", "ses", "son", "sont", "sur", "t", "ta", "te",
		"tes", "ton", "tu", "un", "une", "vos", "votre", "vous", "y",
	} {
		frenchStopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether the lowercased token is a French stop word or
// an elided article.
func IsStopWord(token string) bool {
	_, ok := frenchStopWords[token]
	return ok
}
