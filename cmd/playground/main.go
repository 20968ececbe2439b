// Playground for trying French questions against a small bulletin corpus.
//
// Run with: go run ./cmd/playground
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"harshagw/bulletins/internal/analysis"
	"harshagw/bulletins/internal/document"
	"harshagw/bulletins/internal/fuzzy"
	"harshagw/bulletins/internal/index"
	"harshagw/bulletins/internal/query"
	"harshagw/bulletins/internal/search"
	"harshagw/bulletins/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var sample = []*document.Document{
	{ID: "67068", Date: date(2011, time.September, 12), Rubric: "Focus", Title: "Airbus roule au Taxibot",
		Body: "Airbus teste le projet Taxibot, un tracteur qui déplace les avions sans moteur allumé.",
		Images: []document.Image{{URL: "http://www.bulletins-electroniques.com/taxibot.jpg"}}},
	{ID: "68383", Date: date(2012, time.January, 5), Rubric: "Actualités Innovations", Title: "Des drones pour l'agriculture",
		Body: "Les chercheurs de Paris développent des drones autonomes pour surveiller les cultures."},
	{ID: "69810", Date: date(2012, time.June, 18), Rubric: "En direct des laboratoires", Title: "Nanotubes et microsatellites",
		Body: "Les nanotechnologies ouvrent la voie aux microsatellites légers."},
	{ID: "70421", Date: date(2012, time.October, 2), Rubric: "Focus", Title: "La cuisine moléculaire au CNRS",
		Body: "Le CNRS étudie la cuisine moléculaire et la nutrition.",
		Images: []document.Image{{URL: "http://www.bulletins-electroniques.com/cuisine.jpg"}}},
	{ID: "72114", Date: date(2013, time.June, 7), Rubric: "A lire", Title: "Réalité virtuelle et serious game",
		Body: "Un ouvrage sur la réalité virtuelle et les serious game dans les grandes écoles."},
	{ID: "73540", Date: date(2013, time.November, 21), Rubric: "Evénement", Title: "Congrès de chimie verte",
		Body: "Le congrès réunit les chercheurs en chimie verte de Centrale Paris."},
}

func runQuestions(p *query.Parser, s *search.Searcher, questions []string) {
	for _, question := range questions {
		fmt.Printf("Question: %s\n", question)
		fmt.Println(strings.Repeat("-", 60))

		q := p.Parse(question)
		fmt.Printf("  %s\n", q)
		res := s.Search(q)

		switch {
		case res.Len() == 0:
			fmt.Println("  No results found")
		case res.Target == query.TargetRubrics:
			for i, r := range res.Rubrics {
				fmt.Printf("  %d. %s\n", i+1, r)
			}
		default:
			for i, d := range res.Documents {
				fmt.Printf("  %d. %s %s [%s] %s\n", i+1, d.Date.Format("2006-01-02"), d.ID, d.Rubric, d.Title)
			}
		}
		fmt.Println()
	}
}

func main() {
	dir, err := os.MkdirTemp("", "bulletins-playground-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	fmt.Println("=== Bulletins Search Playground ===")
	fmt.Printf("Data directory: %s\n\n", dir)

	st, err := store.Open(dir)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	fmt.Println("Indexing articles...")
	analyzer := analysis.NewFrench(nil)
	b := index.NewBuilder(analyzer)
	for _, d := range sample {
		b.Add(d)
		fmt.Printf("  Indexed: %s - %s\n", d.ID, d.Title)
	}
	if err := st.Put(sample...); err != nil {
		log.Fatal(err)
	}
	if err := st.SaveIndex(b.Build()); err != nil {
		log.Fatal(err)
	}
	fmt.Println()

	// search against what was persisted
	docs, err := st.All()
	if err != nil {
		log.Fatal(err)
	}
	table, fields, err := st.LoadIndex()
	if err != nil {
		log.Fatal(err)
	}
	parser := query.NewParser()
	searcher := search.New(docs, table, fields, search.WithNormalizer(analysis.PhraseNormalizer{Analyzer: analyzer}))

	fmt.Println("--- Terms and operators ---")
	runQuestions(parser, searcher, []string{
		"Je voudrais les articles qui parlent d’airbus ou du projet Taxibot.",
		"quels articles portent à la fois sur les nanotechnologies et les microsatellites.",
		"Article traitant des Serious Game et de la réalité virtuelle.",
		"Liste des articles qui parlent soit du CNRS, soit des grandes écoles, mais pas de Centrale Paris.",
		"Je voudrais les articles dont le titre contient le mot chimie.",
	})

	fmt.Println("--- Rubrics and images ---")
	runQuestions(parser, searcher, []string{
		"Lister tous les articles dont la rubrique est Focus et qui ont des images.",
		"Je veux les articles sur les chercheurs mais pas dans la rubrique Focus.",
		"Dans quelles rubriques trouve-t-on les articles sur les drones ?",
	})

	fmt.Println("--- Dates ---")
	runQuestions(parser, searcher, []string{
		"Je voudrais les articles publiés entre le 1 janvier 2012 et le 31 décembre 2012.",
		"Quels sont les articles parus en 2012 mais pas en juin ?",
		"Je cherche les articles publiés après 2013.",
		"Je voudrais les articles publiés avant le 01/01/2012.",
	})

	fmt.Println("=== Word correction ===")
	fmt.Println()
	corrector := fuzzy.NewCorrector(fields.Lookup(index.FieldContent).Tokens())
	for _, word := range []string{"chercheur", "nanotechnologie", "microsatelite", "zzz"} {
		if lemma, ok := corrector.Lemmatize(word, fuzzy.DefaultOptions()); ok {
			fmt.Printf("  %-16s -> %s\n", word, lemma)
		} else {
			fmt.Printf("  %-16s -> (no candidate)\n", word)
		}
	}
}
