package query

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	stripAll         = " .,;?!:'\""
	stripPunctuation = " .,;?!:"
)

var (
	apostrophes = strings.NewReplacer("’", "'", "‘", "'", "‛", "'")
	guillemets  = strings.NewReplacer("«", `"`, "»", `"`)
	eAccents    = strings.NewReplacer("é", "e", "è", "e", "ê", "e", "ë", "e")
)

// DefaultRubrics are the rubric names of the ADIT bulletins.
func DefaultRubrics() []string {
	return []string{
		"horizons enseignement",
		"en direct des laboratoires",
		"focus",
		"a lire",
		"actualités innovations",
		"actualité innovation",
		"événement",
	}
}

type monthName struct {
	name  string
	month time.Month
}

// monthNames keeps the alternation order of the month pattern.
var monthNames = []monthName{
	{"janvier", time.January},
	{"février", time.February},
	{"fevrier", time.February},
	{"mars", time.March},
	{"avril", time.April},
	{"mai", time.May},
	{"juin", time.June},
	{"juillet", time.July},
	{"août", time.August},
	{"aout", time.August},
	{"septembre", time.September},
	{"octobre", time.October},
	{"novembre", time.November},
	{"décembre", time.December},
	{"decembre", time.December},
}

func monthByName(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	for _, m := range monthNames {
		if m.name == name {
			return m.month, true
		}
	}
	return 0, false
}

func monthAlternation() string {
	names := make([]string, len(monthNames))
	for i, m := range monthNames {
		names[i] = m.name
	}
	return strings.Join(names, "|")
}

func longestMonthName() int {
	n := 0
	for _, m := range monthNames {
		n = max(n, utf8.RuneCountInString(m.name))
	}
	return n
}

// junkWords are words that never make a search term on their own.
var junkWords = toSet(strings.Fields(`
	le la les des du d l et ou qui sont est un une de dans par pour sur dont
	afficher articles article avec mot terme mots termes mois donc ont
	bulletins contenu titre rubrique publiés parus écrits datés provenant
	partir depuis après avant entre pendant année jour donner chercher liste
	lister trouver parlent parlant traitant évoquant contenant mentionnant
	impliquant tous tout lesquels lequel laquelle actu été propos à a`))

// introPhrases open a question and carry no search intent.
var introPhrases = []string{
	"j'aimerais la liste des articles écrits et qui parlent de",
	"j'aimerais la liste des articles écrits",
	"j'aimerais un article qui parle de",
	"j'aimerais la liste des articles qui parlent de",
	"j'aimerais la liste des articles",
	"j'aimerais un article",
	"afficher la liste des articles",
	"quels sont les articles",
	"je voudrais les articles",
	"je voudrais tous les articles",
	"je voudrais tout les articles",
	"je veux les articles",
	"je veux des articles",
	"quels articles",
	"afficher les articles",
	"articles",
	"je cherche les articles",
	"je cherche des articles",
	"donner les articles",
	"chercher les articles",
	"nous souhaitons obtenir les articles",
	"rechercher tous les articles",
	"liste des articles",
	"lister tous les articles",
	"trouver les articles",
	"je veux voir les articles",
	"tous les articles",
	"dans quels articles",
	"je voudrais les bulletins",
	"je voudrais tous les bulletins",
	"je souhaites avoir tout les articles donc",
	"je souhaites avoir tout les articles",
	"je souhaite les",
	"je cherche les recherches sur",
}

// rubricPhrases turn a question into a request for rubric names. Earlier
// phrases win.
var rubricPhrases = []string{
	"rubriques des articles",
	"dans quelles rubriques trouve-t-on des articles",
	"dans quelles rubriques trouve-t-on les articles",
	"dans quelles rubriques",
	"quelles rubriques",
}

// generalCleanup strips connector phrasing around a term.
var generalCleanup = []string{
	`^(?:j'aimerais\s+(?:la\s+liste\s+des\s+articles|des\s+articles|un\s+article)\s+écrits\s+et\s+qui\s+parle(?:nt)?\s+(?:de|d'))\s*`,
	`^(?:j'aimerais\s+(?:la\s+liste\s+des\s+articles|des\s+articles|un\s+article)\s+qui\s+parle(?:nt)?\s+(?:de|d'))\s*`,
	`^(?:j'aimerais\s+(?:la\s+liste\s+des\s+articles|un\s+article)\s+écrits)\s*`,
	`^(?:quels\s+articles\s+|article\s+|articles\s+)?port(?:ent|e)\s+(?:[aà]\s+la\s+fois\s+)?sur\s*`,
	`^(?:article\s+traitant\s+des|articles\s+traitant\s+des|article\s+traitant\s+de|articles\s+traitant\s+de)\s+`,
	`^(?:recherches\s+sur|recherche\s+sur)\s+`,
	`^(?:portant\s+sur\s*(?:de\s*la)?)\s*`,
	`^(?:parle(?:nt)?|parlant|trait(?:e|ant))\s+(?:d'|des|de|du)\s*`,
	`^(?:écrits\s+et\s+qui\s+parle(?:nt)?\s+(?:de|d'))\s*`,
	`^(?:évoquant|évoque|évoquent)\s+`,
	`^(?:contenant|contient|contiennent)\s+(?:les\s+mots|le\s+mot)?\s*`,
	`^(?:possédant|possèdent|possède)\s+le\s+mot\s*`,
	`^(?:mentionnant|mentionnent|mentionne)\s*`,
	`^(?:impliquant|implique|impliquent)\s*`,
	`^(?:liés\s+[aà]|lié\s+[aà])\s*`,
	`^(?:sur|d[u']|des|de\s+la|de\s+l'|de)\s+`,
	`^(?:l'|le\s+|la\s+|les\s+)`,
	`^(?:un\s+|une\s+)`,
	`^(?:aux\s+|au\s+)`,
	`^(?:[aà]\s+propos\s+(?:des|de\s+la|de\s+l'|du|de))\s*`,
	`^(?:le\s+mot|les\s+mots|le\s+terme|les\s+termes)\s*`,
	`^(?:[aà]\s+la\s+fois\s+sur|[aà]\s+la\s+fois)\s*`,
	`^(?:soit\s+du|soit\s+des|soit)\s*`,
	`^(?:dans\s+le\s+domaine\s+(?:de|d'))\s*`,
	`^(?:dans\s+le\s+domaine)\s*`,
	`^(?:publiés\s+en|publié\s+en|publiés|publié|écrits\s+en|écrit\s+en|écrits|écrit|parus\s+en|parus|paru)(?:\s+|$)`,
	`^(?:sont\s+écrits|est\s+écrit|ont\s+été\s+publiés|a\s+été\s+publié)(?:\s+|$)`,
	`^(?:datés\s+[aà]\s+partir\s+de|datés|[aà]\s+partir)\s*`,
	`^(?:afficher\s+la\s+liste\s+des\s+articles|afficher\s+les\s+articles)\s*`,
	`^(?:qui\s+parle(?:nt)?\s*(?:d'|de|des|du))(?!\s*soit)\s*`,
	`^(?:qui\s+(?:contiennent\s+les\s+mots|contient\s+le\s+mot))\s*`,
	`^(?:qui\s+(?:sont\s+écrits\s+en|sont\s+écrits|est\s+écrit\s+en|est\s+écrit))\s*`,
	`^(?:qui\s+ont\s+pour)\s*`,
	`^(?:est-il\s+cité|sont-ils\s+cités|est-elle\s+citée|sont-elles\s+citées|est\s+cité)\s*\??$`,
	`^(?:et|ou|qui|la|dont\s+(?:la|le|les|l'))\s+`,
	`\s+dans\s+le\s+titre\s*$`,
	`\s+du\s+titre\s*$`,
	`\s+dans\s+le\s+contenu\s*$`,
	`\s+[aà]\s+partir\s*$`,
	`\s+(?:est-il\s+cité|sont-ils\s+cités|est-elle\s+citée|sont-elles\s+citées|est\s+cité)\s*\??$`,
	`^[aà]\s+`,
}

// contentIntros strip the verb phrase that introduces content terms.
var contentIntros = []string{
	`^(?:quels\s+articles\s+|article\s+|articles\s+)?port(?:ent|e)\s+(?:[aà]\s+la\s+fois\s+)?sur\s*`,
	`^(?:article\s+traitant\s+des|articles\s+traitant\s+des|article\s+traitant\s+de|articles\s+traitant\s+de)\s+`,
	`^(?:recherches\s+sur|recherche\s+sur)\s*`,
	`^(?:portant\s+sur\s*(?:de\s*la)?)\s*`,
	`^(?:et\s+)?(?:parle(?:nt)?|parlant)\s*(?:d'|des|de|du)\s*`,
	`^(?:trait(?:e|ant))\s*(?:d'|des|de|du)\s*`,
	`^(?:[eé]voquant|[eé]voque|[eé]voquent)\s+`,
	`^(?:contenant|contient|contiennent)\s+(?:les\s+mots|le\s+mot)?\s*`,
	`^(?:poss[eè]dant|poss[eè]dent|poss[eè]de)\s+le\s+mot\s*`,
	`^(?:mentionnant|mentionnent|mentionne)\s*`,
	`^(?:impliquant|implique|impliquent)\s*`,
	`^(?:liés\s+[aà]|lié\s+[aà])\s*`,
	`^(?:[aà]\s+propos\s+(?:des|de\s+la|de\s+l'|du|de))\s*`,
	`^(?:qui\s+)?parle(?:nt)?\s+(?=soit\s)`,
	`^(?:qui\s+parle(?:nt)?\s*(?:d'|de|des|du))\s*`,
	`^(?:qui\s+(?:contiennent\s+les\s+mots|contient\s+le\s+mot))\s*`,
	`^(?:[eé]crits\s+et\s+qui\s+parle(?:nt)?\s+(?:de|d'))\s*`,
	`^(?:dans\s+le\s+domaine\s*(?:de|des|du|d'|de la|de l')?)\s*`,
}

// byLengthDesc normalizes apostrophes and stably orders items longest
// first, so that longer phrasings are tried before their prefixes.
func byLengthDesc(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = apostrophes.Replace(s)
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(utf8.RuneCountInString(b), utf8.RuneCountInString(a))
	})
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
