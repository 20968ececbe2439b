// Command bench measures indexing, parsing and search latency over a
// JSON-lines bulletin corpus.
//
// Run with: go run ./cmd/bench <corpus.jsonl> [questions.txt]
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"harshagw/bulletins/internal/analysis"
	"harshagw/bulletins/internal/document"
	"harshagw/bulletins/internal/index"
	"harshagw/bulletins/internal/query"
	"harshagw/bulletins/internal/search"
)

const iterations = 200

var defaultQuestions = []string{
	"Je voudrais les articles qui parlent de cuisine moléculaire.",
	"Je voudrais les articles qui parlent d’airbus ou du projet Taxibot.",
	"quels articles portent à la fois sur les nanotechnologies et les microsatellites.",
	"Je veux les articles de la rubrique Focus parlant d’innovation.",
	"Je voudrais les articles dont le titre contient le mot chimie.",
	"Liste des articles qui parlent soit du CNRS, soit des grandes écoles, mais pas de Centrale Paris.",
	"Quels sont les articles parus entre le 3 mars 2013 et le 4 mai 2013 évoquant la Chine ?",
	"Je voudrais les articles de 2011 sur l’enseignement.",
	"Je cherche les recherches sur l’aéronautique parues en 2012 et 2013 mais pas en juin.",
	"Dans quelles rubriques trouve-t-on des articles sur l’alimentation ?",
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: bench <corpus.jsonl> [questions.txt]")
		os.Exit(1)
	}

	fmt.Println("Bulletins Benchmark")
	fmt.Println("===================")
	fmt.Println()
	benchStart := time.Now()

	docs := loadDocs(os.Args[1])
	fmt.Printf("Loaded %d articles\n\n", len(docs))

	questions := defaultQuestions
	if len(os.Args) > 2 {
		questions = loadQuestions(os.Args[2])
	}
	if len(questions) == 0 {
		fmt.Println("Error: no questions")
		os.Exit(1)
	}

	analyzer := analysis.NewFrench(nil)
	table, fields := runIndexingBenchmark(docs, analyzer)
	searcher := search.New(docs, table, fields, search.WithNormalizer(analysis.PhraseNormalizer{Analyzer: analyzer}))
	parser := query.NewParser()

	runQuestionBenchmarks(parser, searcher, questions)
	runBatchBenchmark(parser, searcher, questions)

	fmt.Printf("Total time: %.2f seconds\n", time.Since(benchStart).Seconds())
}

func loadDocs(path string) document.Collection {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	docs, err := document.ReadJSONL(f)
	if err != nil {
		fmt.Printf("Error parsing corpus: %v\n", err)
		os.Exit(1)
	}
	return docs
}

func loadQuestions(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func runIndexingBenchmark(docs document.Collection, analyzer analysis.Analyzer) (*index.DocTable, index.Fields) {
	fmt.Println("INDEXING")
	fmt.Println("--------")

	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	b := index.NewBuilder(analyzer)
	for _, id := range docs.IDs() {
		b.Add(docs[id])
	}
	table, fields := b.Build()

	elapsed := time.Since(start)
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	fmt.Printf("  Documents:      %d\n", table.Len())
	fmt.Printf("  Time:           %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Throughput:     %.0f docs/sec\n", float64(table.Len())/elapsed.Seconds())
	fmt.Printf("  Allocated:      %s\n", formatBytes(int64(after.TotalAlloc-before.TotalAlloc)))
	for _, name := range []string{index.FieldContent, index.FieldTitle} {
		fmt.Printf("  %-15s %d tokens\n", name+":", fields.Lookup(name).Len())
	}
	fmt.Println()
	return table, fields
}

func runQuestionBenchmarks(p *query.Parser, s *search.Searcher, questions []string) {
	fmt.Println("QUESTIONS (parse / search per call)")
	fmt.Println("-----------------------------------")
	for _, question := range questions {
		parse, q := benchmarkParse(p, question)
		exec, hits := benchmarkSearch(s, q)
		fmt.Printf("  %-70.70s %s %s  (%d hits)\n", question, formatLatency(parse), formatLatency(exec), hits)
	}
	fmt.Println()
}

func benchmarkParse(p *query.Parser, question string) (time.Duration, *query.StructuredQuery) {
	q := p.Parse(question)
	start := time.Now()
	for range iterations {
		p.Parse(question)
	}
	return time.Since(start) / iterations, q
}

func benchmarkSearch(s *search.Searcher, q *query.StructuredQuery) (time.Duration, int) {
	hits := s.Search(q).Len()
	start := time.Now()
	for range iterations {
		s.Search(q)
	}
	return time.Since(start) / iterations, hits
}

func runBatchBenchmark(p *query.Parser, s *search.Searcher, questions []string) {
	fmt.Println("BATCH")
	fmt.Println("-----")
	for _, workers := range []int{1, 2, 4, runtime.NumCPU()} {
		start := time.Now()
		for range iterations / 10 {
			if _, err := search.Batch(context.Background(), p, s, questions, workers); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
		}
		perQuestion := time.Since(start) / time.Duration(iterations/10*len(questions))
		fmt.Printf("  workers=%-3d %s per question\n", workers, formatLatency(perQuestion))
	}
	fmt.Println()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatLatency(d time.Duration) string {
	return fmt.Sprintf("%8.2f µs", float64(d.Nanoseconds())/1000)
}
