// Command bulletins is an interactive shell over a French news bulletin
// corpus: load articles, ask questions in French, inspect how they were
// understood and correct words against a lexicon.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/c-bata/go-prompt"

	"harshagw/bulletins/internal/config"
	"harshagw/bulletins/internal/logger"
	"harshagw/bulletins/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, m)
	}

	r, err := newREPL(cfg, m)
	if err != nil {
		slog.Error("failed to open corpus", "data_dir", cfg.Storage.DataDir, "error", err)
		os.Exit(1)
	}

	fmt.Println("Bulletins Search REPL")
	fmt.Println()
	printHelp()
	fmt.Println()
	fmt.Printf("Corpus loaded from %s (%d articles)\n\n", cfg.Storage.DataDir, len(r.docs))

	p := prompt.New(
		r.executor,
		completer,
		prompt.OptionPrefix("bulletins >> "),
		prompt.OptionTitle("bulletins"),
	)
	p.Run()
}

func serveMetrics(addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	slog.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server error", "error", err)
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  load <file.jsonl>              - Add articles from a JSON-lines file")
	fmt.Println("  delete <id>                    - Remove an article")
	fmt.Println("  doc <id>                       - Show a stored article")
	fmt.Println("  search <question>              - Answer a French question")
	fmt.Println("  explain <question>             - Show the structured query and date conditions")
	fmt.Println("  batch <file>                   - Answer one question per line concurrently")
	fmt.Println("  correct <sentence>             - Correct words against the lexicon")
	fmt.Println("  suggest <word> [distance]      - Lexicon words within an edit distance")
	fmt.Println("  match <regex>                  - Lexicon words matching a pattern")
	fmt.Println("  export <field> <file.tsv>      - Write a field index as TSV")
	fmt.Println("  import <field> <file.tsv>      - Replace a field index from TSV")
	fmt.Println("  stats                          - Corpus and index sizes")
	fmt.Println("  help                           - Show this help")
	fmt.Println("  quit                           - Exit")
}

var commands = []prompt.Suggest{
	{Text: "load", Description: "Add articles from a JSON-lines file"},
	{Text: "delete", Description: "Remove an article"},
	{Text: "doc", Description: "Show a stored article"},
	{Text: "search", Description: "Answer a French question"},
	{Text: "explain", Description: "Show the structured query"},
	{Text: "batch", Description: "Answer questions from a file"},
	{Text: "correct", Description: "Correct words against the lexicon"},
	{Text: "suggest", Description: "Lexicon words within an edit distance"},
	{Text: "match", Description: "Lexicon words matching a pattern"},
	{Text: "export", Description: "Write a field index as TSV"},
	{Text: "import", Description: "Replace a field index from TSV"},
	{Text: "stats", Description: "Corpus and index sizes"},
	{Text: "help", Description: "Show help"},
	{Text: "quit", Description: "Exit"},
}

func completer(d prompt.Document) []prompt.Suggest {
	if d.TextBeforeCursor() == "" || len(d.GetWordBeforeCursor()) != len(d.TextBeforeCursor()) {
		return nil
	}
	return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
}
