package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"harshagw/bulletins/internal/analysis"
	"harshagw/bulletins/internal/config"
	"harshagw/bulletins/internal/document"
	"harshagw/bulletins/internal/fuzzy"
	"harshagw/bulletins/internal/index"
	"harshagw/bulletins/internal/lexicon"
	"harshagw/bulletins/internal/logger"
	"harshagw/bulletins/internal/metrics"
	"harshagw/bulletins/internal/query"
	"harshagw/bulletins/internal/search"
	"harshagw/bulletins/internal/store"
)

// REPL holds the corpus, its indexes and the query pipeline.
type REPL struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	log      *slog.Logger
	store    *store.Store
	analyzer analysis.Analyzer
	parser   *query.Parser
	lexicon  *lexicon.Lexicon
	fuzzy    *fuzzy.Corrector

	docs     document.Collection
	table    *index.DocTable
	fields   index.Fields
	searcher *search.Searcher
}

func newREPL(cfg *config.Config, m *metrics.Metrics) (*REPL, error) {
	r := &REPL{
		cfg:     cfg,
		metrics: m,
		log:     logger.WithComponent("repl"),
		parser:  query.NewParser(query.WithRubrics(cfg.Parser.KnownRubrics), query.WithMetrics(m)),
	}

	opts := fuzzy.Options{
		MinPrefixLen:              cfg.Fuzzy.MinPrefixLen,
		PrefixSimilarityThreshold: cfg.Fuzzy.PrefixSimilarityThreshold,
		MaxOverflow:               cfg.Fuzzy.MaxOverflow,
	}
	var words []string
	if cfg.Analysis.LexiconPath != "" {
		lex, err := openLexicon(cfg.Analysis.LexiconPath)
		if err != nil {
			return nil, err
		}
		if words, err = lex.Words(); err != nil {
			lex.Close()
			return nil, fmt.Errorf("reading lexicon: %w", err)
		}
		r.lexicon = lex
		r.fuzzy = fuzzy.NewCorrector(words, fuzzy.WithOptions(opts), fuzzy.WithMetrics(m))
		r.log.Info("lexicon loaded", "path", cfg.Analysis.LexiconPath, "words", lex.Len())
	}
	normalizer, err := analysis.NewNormalizer(cfg.Analysis.Normalizer, words, opts)
	if err != nil {
		return nil, err
	}
	r.analyzer = analysis.NewFrench(normalizer)

	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	r.store = st
	if r.docs, err = st.All(); err != nil {
		return nil, err
	}
	if r.table, r.fields, err = st.LoadIndex(); err != nil {
		return nil, err
	}
	if len(r.docs) > 0 && len(r.fields) == 0 {
		if err := r.reindex(); err != nil {
			return nil, err
		}
	}
	r.refresh()
	return r, nil
}

// openLexicon maps an FST file, or compiles a plain word list in memory.
func openLexicon(path string) (*lexicon.Lexicon, error) {
	if strings.HasSuffix(path, ".fst") {
		return lexicon.Open(path)
	}
	words, err := lexicon.ReadWordsFile(path)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := lexicon.Build(&buf, words); err != nil {
		return nil, err
	}
	return lexicon.Load(buf.Bytes())
}

func (r *REPL) builder() *index.Builder {
	b := index.NewBuilder(r.analyzer)
	for _, id := range r.docs.IDs() {
		b.Add(r.docs[id])
	}
	return b
}

// reindex rebuilds every field from the documents and persists the result.
func (r *REPL) reindex() error {
	r.table, r.fields = r.builder().Build()
	if err := r.store.SaveIndex(r.table, r.fields); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	r.log.Info("index rebuilt", "documents", r.table.Len(), "content_tokens", r.fields.Lookup(index.FieldContent).Len())
	return nil
}

func (r *REPL) refresh() {
	r.searcher = search.New(r.docs, r.table, r.fields,
		search.WithNormalizer(analysis.PhraseNormalizer{Analyzer: r.analyzer}),
		search.WithMetrics(r.metrics),
	)
}

func (r *REPL) close() {
	if r.lexicon != nil {
		r.lexicon.Close()
	}
	r.store.Close()
}

func (r *REPL) executor(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch cmd {
	case "load":
		r.cmdLoad(args)
	case "delete":
		r.cmdDelete(args)
	case "doc":
		r.cmdDoc(args)
	case "search":
		r.cmdSearch(rest)
	case "explain":
		r.cmdExplain(rest)
	case "batch":
		r.cmdBatch(args)
	case "correct":
		r.cmdCorrect(rest)
	case "suggest":
		r.cmdSuggest(args)
	case "match":
		r.cmdMatch(args)
	case "export":
		r.cmdExport(args)
	case "import":
		r.cmdImport(args)
	case "stats":
		r.cmdStats()
	case "help":
		printHelp()
	case "quit", "exit":
		fmt.Println("Au revoir !")
		r.close()
		os.Exit(0)
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
}

func (r *REPL) cmdLoad(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: load <file.jsonl>")
		return
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer f.Close()

	loaded, err := document.ReadJSONL(f)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", args[0], err)
		return
	}
	batch := make([]*document.Document, 0, len(loaded))
	for _, id := range loaded.IDs() {
		batch = append(batch, loaded[id])
	}
	if err := r.store.Put(batch...); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, d := range batch {
		r.docs.Add(d)
	}
	if err := r.reindex(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	r.refresh()
	r.log.Info("corpus loaded", "file", args[0], "documents", len(batch))
	fmt.Printf("Loaded %d articles (%d total)\n", len(batch), len(r.docs))
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: delete <id>")
		return
	}
	if err := r.store.Delete(args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	delete(r.docs, args[0])
	if err := r.reindex(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	r.refresh()
	fmt.Printf("Deleted '%s'\n", args[0])
}

func (r *REPL) cmdDoc(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: doc <id>")
		return
	}
	doc, err := r.store.Get(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	data, _ := json.MarshalIndent(doc, "", "  ")
	fmt.Println(string(data))
}

func (r *REPL) cmdSearch(question string) {
	if question == "" {
		fmt.Println("Usage: search <question>")
		return
	}
	q := r.parser.Parse(question)
	printResult(q, r.searcher.Search(q))
}

func printResult(q *query.StructuredQuery, res search.Result) {
	fmt.Printf("Query: %s\n", q)
	if res.Len() == 0 {
		fmt.Println("No results")
		return
	}
	if res.Target == query.TargetRubrics {
		fmt.Printf("Found %d rubrics:\n", len(res.Rubrics))
		for _, rubric := range res.Rubrics {
			fmt.Printf("  %s\n", rubric)
		}
		return
	}
	fmt.Printf("Found %d articles:\n", len(res.Documents))
	for _, d := range res.Documents {
		date := "----------"
		if d.HasDate() {
			date = d.Date.Format("2006-01-02")
		}
		fmt.Printf("  %s  %-8s [%s] %s\n", date, d.ID, d.Rubric, d.Title)
	}
}

func (r *REPL) cmdExplain(question string) {
	if question == "" {
		fmt.Println("Usage: explain <question>")
		return
	}
	draft := r.parser.Extract(question)
	fmt.Printf("Content:   %v (%s)\n", draft.Content.Terms, draft.Content.Op)
	fmt.Printf("Title:     %v (%s)\n", draft.Title.Terms, draft.Title.Op)
	fmt.Printf("Rubric:    %v (%s)\n", draft.Rubric.Terms, draft.Rubric.Op)
	fmt.Printf("Not text:  %v\n", draft.NegatedContent)
	fmt.Printf("Not rubric:%v\n", draft.NegatedRubric)
	for _, c := range draft.Conditions {
		fmt.Printf("Date:      %s\n", c)
	}
	fmt.Printf("Image:     %v\n", draft.HasImage)
	fmt.Printf("Target:    %s\n", draft.Target)
	fmt.Printf("Query:     %s\n", draft.Query())
}

func (r *REPL) cmdBatch(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: batch <file>")
		return
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer f.Close()

	var questions []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			questions = append(questions, line)
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	out, err := search.Batch(context.Background(), r.parser, r.searcher, questions, r.cfg.Search.Workers)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for i, o := range out {
		fmt.Printf("%d. %s\n", i+1, questions[i])
		printResult(o.Query, o.Result)
		fmt.Println()
	}
}

func (r *REPL) cmdCorrect(sentence string) {
	if r.fuzzy == nil {
		fmt.Println("No lexicon configured (analysis.lexiconPath)")
		return
	}
	if sentence == "" {
		fmt.Println("Usage: correct <sentence>")
		return
	}
	opts := fuzzy.Options{
		MinPrefixLen:              r.cfg.Fuzzy.MinPrefixLen,
		PrefixSimilarityThreshold: r.cfg.Fuzzy.PrefixSimilarityThreshold,
		MaxOverflow:               r.cfg.Fuzzy.MaxOverflow,
	}
	fmt.Println(strings.Join(r.fuzzy.CorrectSentence(sentence, opts), " "))
}

func (r *REPL) cmdSuggest(args []string) {
	if r.lexicon == nil {
		fmt.Println("No lexicon configured (analysis.lexiconPath)")
		return
	}
	if len(args) < 1 {
		fmt.Println("Usage: suggest <word> [distance]")
		return
	}
	distance := uint64(1)
	if len(args) > 1 {
		d, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			fmt.Printf("Invalid distance: %v\n", err)
			return
		}
		distance = d
	}
	words, err := r.lexicon.Suggest(args[0], uint8(distance))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printWords(words)
}

func (r *REPL) cmdMatch(args []string) {
	if r.lexicon == nil {
		fmt.Println("No lexicon configured (analysis.lexiconPath)")
		return
	}
	if len(args) < 1 {
		fmt.Println("Usage: match <regex>")
		return
	}
	words, err := r.lexicon.Match(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printWords(words)
}

func printWords(words []string) {
	if len(words) == 0 {
		fmt.Println("No words")
		return
	}
	fmt.Printf("%d words: %s\n", len(words), strings.Join(words, ", "))
}

func (r *REPL) cmdExport(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: export <field> <file.tsv>")
		return
	}
	f, err := os.Create(args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer f.Close()
	if err := r.builder().WriteTSV(args[0], f); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Wrote field %s to %s\n", args[0], args[1])
}

func (r *REPL) cmdImport(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: import <field> <file.tsv>")
		return
	}
	ix, err := index.OpenTSV(args[1], r.table)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	field := index.CanonicalField(args[0])
	r.fields[field] = ix
	if err := r.store.SaveIndex(r.table, r.fields); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	r.refresh()
	fmt.Printf("Imported field %s: %d tokens\n", field, ix.Len())
}

func (r *REPL) cmdStats() {
	epoch, err := r.store.Epoch()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Articles: %d (store epoch %d)\n", len(r.docs), epoch)
	for name, ix := range r.fields {
		fmt.Printf("  field %-8s %d tokens\n", name, ix.Len())
	}
	if r.lexicon != nil {
		fmt.Printf("Lexicon: %d words\n", r.lexicon.Len())
	}
}
