package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/api"
	"github.com/japaniel/sentbreak/pkg/config"
	"github.com/japaniel/sentbreak/pkg/db"
	"github.com/japaniel/sentbreak/pkg/document"
	"github.com/japaniel/sentbreak/pkg/ingest"
	"github.com/japaniel/sentbreak/pkg/lexicon"
	"github.com/japaniel/sentbreak/pkg/reader"
	"github.com/japaniel/sentbreak/pkg/sentbreak"
)

// languages served by -serve
var serveLanguages = []string{"en", "zh", "ko", "ja", "default"}

func main() {
	urlFlag := flag.String("url", "", "URL to segment")
	fileFlag := flag.String("file", "", "File to segment (.html, .md, .pdf or text); more files may follow as arguments")
	dbFlag := flag.String("db", "", "Path to SQLite database (overrides db_path)")
	langFlag := flag.String("lang", "", "Language (overrides language)")
	configFlag := flag.String("config", "", "Path to config file (default ./sentbreak.yaml)")
	serveFlag := flag.Bool("serve", false, "Serve POST /v1/segment on http_addr")
	printFlag := flag.Bool("print", false, "Print stored sentences after processing")
	flag.Parse()

	_ = godotenv.Load()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(tempLogger, *configFlag)
	if err != nil {
		tempLogger.Fatal("Failed to load config", zap.Error(err))
	}
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lists, err := loadWordLists(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load word lists", zap.Error(err))
	}

	if *serveFlag {
		segs := make(map[string]api.Segmenter)
		for _, lang := range serveLanguages {
			seg, _, err := newSegmenter(cfg, lang, lists, logger)
			if err != nil {
				logger.Fatal("Failed to create segmenter", zap.String("language", lang), zap.Error(err))
			}
			segs[lang] = seg
		}
		server := api.NewServer(segs, cfg.Language, cfg.MaxSentences, logger)
		if err := server.Start(ctx, cfg.HTTPAddr); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
		return
	}

	var files []string
	if *fileFlag != "" {
		files = append(files, *fileFlag)
	}
	files = append(files, flag.Args()...)
	if *urlFlag == "" && len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Please provide a -url, a -file or -serve")
		flag.Usage()
		os.Exit(2)
	}

	seg, language, err := newSegmenter(cfg, cfg.Language, lists, logger)
	if err != nil {
		logger.Fatal("Failed to create segmenter", zap.Error(err))
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer conn.Close()
	fmt.Printf("Database initialized at %s\n", cfg.DBPath)

	var docs []*document.Document
	if *urlFlag != "" {
		fmt.Printf("Fetching %s...\n", *urlFlag)
		doc, err := reader.NewFetcher(logger).Fetch(ctx, *urlFlag)
		if err != nil {
			logger.Fatal("Failed to fetch URL", zap.String("url", *urlFlag), zap.Error(err))
		}
		docs = append(docs, doc)
	}
	for _, path := range files {
		doc, err := reader.Load(path, logger)
		if err != nil {
			logger.Fatal("Failed to load file", zap.String("path", path), zap.Error(err))
		}
		if abs, err := filepath.Abs(path); err == nil {
			doc.URL = "file://" + filepath.ToSlash(abs)
		}
		docs = append(docs, doc)
	}
	for _, doc := range docs {
		fmt.Printf("Title: %s (%d regions)\n", doc.Title, len(doc.Regions))
	}

	ig := ingest.NewIngester(conn, seg, logger)
	ig.Language = language
	ig.MaxSentences = cfg.MaxSentences
	ig.BatchSize = cfg.BatchSize
	ig.Workers = cfg.Workers
	ig.OnProgress = func(current, total int) {
		fmt.Printf("Stored document %d/%d\n", current, total)
	}

	res, err := ig.Ingest(ctx, docs)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	if *printFlag {
		for _, id := range res.DocumentIDs {
			sents, err := db.GetSentences(conn, id)
			if err != nil {
				logger.Fatal("Failed to read sentences", zap.String("document_id", id), zap.Error(err))
			}
			for _, s := range sents {
				fmt.Printf("%d\t%s\t%s\n", s.No, s.RegionTag, s.Text)
			}
		}
	}

	fmt.Printf("Processing complete. Stored %d sentences from %d documents (%d already complete).\n",
		res.Sentences, res.Documents, res.Skipped)
}

// loadWordLists starts from the bundled lists, layers a downloaded or local
// list directory over them, then applies per-list file overrides.
func loadWordLists(ctx context.Context, cfg *config.Config, logger *zap.Logger) (sentbreak.WordLists, error) {
	lists, err := lexicon.Defaults(logger)
	if err != nil {
		return lists, err
	}

	dir := cfg.WordlistDir
	if cfg.WordlistBundleURL != "" {
		if dir == "" {
			dir = "wordlists"
		}
		n, err := lexicon.EnsureBundle(ctx, cfg.WordlistBundleURL, dir, logger)
		if err != nil {
			logger.Warn("Failed to fetch word-list bundle, using bundled lists", zap.Error(err))
			dir = ""
		} else if n > 0 {
			logger.Info("Downloaded word lists", zap.Int("files", n), zap.String("dir", dir))
		}
	}
	if dir != "" {
		local, err := lexicon.LoadDir(dir, logger)
		if err != nil {
			return lists, err
		}
		for _, name := range sentbreak.ListNames() {
			if ws := local.Get(name); ws != nil {
				lists.Set(name, ws)
			}
		}
	}
	return lexicon.Override(lists, cfg.ListPaths(), logger)
}

// newSegmenter builds a cached breaker for lang and returns the policy's
// canonical language name.
func newSegmenter(cfg *config.Config, lang string, lists sentbreak.WordLists, logger *zap.Logger) (*sentbreak.CachedBreaker, string, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, "", err
	}
	langCfg := *cfg
	langCfg.Language = lang

	probe, err := sentbreak.PolicyFor(lang)
	if err != nil {
		return nil, "", err
	}
	var counter sentbreak.TokenCounter
	if probe.Language == "ja" {
		kc, err := reader.NewKagomeCounter()
		if err != nil {
			return nil, "", fmt.Errorf("create tokenizer: %w", err)
		}
		counter = kc
	}
	policy, err := langCfg.Policy(counter)
	if err != nil {
		return nil, "", err
	}

	b, err := sentbreak.New(policy, opts, lists, logger.With(zap.String("language", policy.Language)))
	if err != nil {
		return nil, "", err
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1
	}
	cached, err := sentbreak.NewCached(b, size)
	if err != nil {
		return nil, "", err
	}
	return cached, policy.Language, nil
}
