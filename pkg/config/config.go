// Package config loads sentbreak settings from sentbreak.yaml and
// SENTBREAK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/sentbreak"
)

// Config holds the application's configuration
type Config struct {
	Language                string `mapstructure:"language"`
	MaxSentences            int    `mapstructure:"max_sentences"`
	MaxSentenceChars        int    `mapstructure:"max_sentence_chars"`
	MaxTokenBreaks          int    `mapstructure:"max_token_breaks"`
	MaxDesirableSentenceLen int    `mapstructure:"max_desirable_sentence_len"`

	DatelineMode      string `mapstructure:"dateline_mode"`
	WholeDocDateline  bool   `mapstructure:"use_whole_doc_dateline_mode"`
	SkipHeadlines     bool   `mapstructure:"skip_headlines"`
	DowncaseHeadlines bool   `mapstructure:"downcase_headlines"`

	BreakListSentences bool   `mapstructure:"break_long_list_sentences"`
	ListSeparators     string `mapstructure:"list_separators"`
	MinListSeparators  int    `mapstructure:"min_list_separators"`

	BreakTableSentences bool `mapstructure:"break_table_sentences"`
	SkipTableSentences  bool `mapstructure:"skip_table_sentences"`
	MinTableRows        int  `mapstructure:"min_table_rows"`

	BreakOnDoubleCarriageReturns    bool `mapstructure:"break_on_double_carriage_returns"`
	AggressiveDoubleCarriageReturns bool `mapstructure:"aggressive_double_carriage_returns"`
	ShortLineLength                 int  `mapstructure:"short_line_length"`

	IgnorePageBreaks      bool `mapstructure:"ignore_page_breaks"`
	IgnoreParentheticals  bool `mapstructure:"ignore_parentheticals"`
	UseITEAHeuristics     bool `mapstructure:"use_itea_heuristics"`
	UseGALEHeuristics     bool `mapstructure:"use_gale_heuristics"`
	BreakOnPortionMarks   bool `mapstructure:"break_on_portion_marks"`
	FootnoteNumbers       bool `mapstructure:"footnote_numbers"`
	AlwaysBreakOnColons   bool `mapstructure:"always_use_breakable_colons"`
	UseRegionContentFlags bool `mapstructure:"use_region_content_flags"`
	UnknownIsWebText      bool `mapstructure:"treat_unknown_docs_as_web_text"`

	// Word-list file overrides; empty keeps the bundled list.
	NonFinalAbbrevs        string `mapstructure:"non_final_abbrevs"`
	NoSplitAbbrevs         string `mapstructure:"no_split_abbrevs"`
	KnownWords             string `mapstructure:"known_words"`
	LowercaseHeadlineWords string `mapstructure:"lowercase_headline_words"`
	DatelineParentheticals string `mapstructure:"dateline_parentheticals"`
	RarelyCapitalizedWords string `mapstructure:"rarely_capitalized_words"`

	WordlistBundleURL string `mapstructure:"wordlist_bundle_url"`
	WordlistDir       string `mapstructure:"wordlist_dir"`

	DBPath    string `mapstructure:"db_path"`
	Workers   int    `mapstructure:"workers"`
	BatchSize int    `mapstructure:"batch_size"`
	CacheSize int    `mapstructure:"cache_size"`
	HTTPAddr  string `mapstructure:"http_addr"`
	LogLevel  string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	defaults := sentbreak.DefaultOptions()

	v.SetDefault("language", "en")
	v.SetDefault("max_sentences", 0)
	v.SetDefault("max_sentence_chars", 0)
	v.SetDefault("max_token_breaks", defaults.MaxTokenBreaks)
	v.SetDefault("max_desirable_sentence_len", 108)
	v.SetDefault("dateline_mode", sentbreak.DatelineNone.String())
	v.SetDefault("use_whole_doc_dateline_mode", false)
	v.SetDefault("skip_headlines", false)
	v.SetDefault("downcase_headlines", false)
	v.SetDefault("break_long_list_sentences", false)
	v.SetDefault("list_separators", "")
	v.SetDefault("min_list_separators", defaults.MinListSeparators)
	v.SetDefault("break_table_sentences", false)
	v.SetDefault("skip_table_sentences", false)
	v.SetDefault("min_table_rows", defaults.MinTableRows)
	v.SetDefault("break_on_double_carriage_returns", false)
	v.SetDefault("aggressive_double_carriage_returns", false)
	v.SetDefault("short_line_length", defaults.ShortLineLength)
	v.SetDefault("ignore_page_breaks", false)
	v.SetDefault("ignore_parentheticals", false)
	v.SetDefault("use_itea_heuristics", false)
	v.SetDefault("use_gale_heuristics", false)
	v.SetDefault("break_on_portion_marks", false)
	v.SetDefault("footnote_numbers", false)
	v.SetDefault("always_use_breakable_colons", false)
	v.SetDefault("use_region_content_flags", false)
	v.SetDefault("treat_unknown_docs_as_web_text", false)

	for _, name := range sentbreak.ListNames() {
		v.SetDefault(name, "")
	}
	v.SetDefault("wordlist_bundle_url", "")
	v.SetDefault("wordlist_dir", "")

	v.SetDefault("db_path", "sentbreak.db")
	v.SetDefault("workers", 4)
	v.SetDefault("batch_size", 50)
	v.SetDefault("cache_size", 128)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
}

// Load reads configuration from file, or from sentbreak.yaml in the
// working directory or ./config when file is empty. Environment variables
// prefixed SENTBREAK_ override both. A missing default config file is not
// an error; a missing explicit file is.
func Load(logger *zap.Logger, file string) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("sentbreak")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")        // For running locally
		v.AddConfigPath("./config") // Common config folder
	}
	v.SetEnvPrefix("SENTBREAK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
	} else {
		logger.Info("Loaded config file", zap.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}

// Options converts the segmentation switches into breaker options.
func (c *Config) Options() (sentbreak.Options, error) {
	mode, err := sentbreak.ParseDatelineMode(c.DatelineMode)
	if err != nil {
		return sentbreak.Options{}, err
	}
	opts := sentbreak.Options{
		MaxSentenceChars:                c.MaxSentenceChars,
		MaxTokenBreaks:                  c.MaxTokenBreaks,
		DatelineMode:                    mode,
		WholeDocDateline:                c.WholeDocDateline,
		SkipHeadlines:                   c.SkipHeadlines,
		DowncaseHeadlines:               c.DowncaseHeadlines,
		BreakListSentences:              c.BreakListSentences,
		ListSeparators:                  c.ListSeparators,
		MinListSeparators:               c.MinListSeparators,
		BreakTableSentences:             c.BreakTableSentences,
		SkipTableSentences:              c.SkipTableSentences,
		MinTableRows:                    c.MinTableRows,
		BreakOnDoubleCarriageReturns:    c.BreakOnDoubleCarriageReturns,
		AggressiveDoubleCarriageReturns: c.AggressiveDoubleCarriageReturns,
		ShortLineLength:                 c.ShortLineLength,
		IgnorePageBreaks:                c.IgnorePageBreaks,
		IgnoreParentheticals:            c.IgnoreParentheticals,
		UseITEAHeuristics:               c.UseITEAHeuristics,
		UseGALEHeuristics:               c.UseGALEHeuristics,
		BreakOnPortionMarks:             c.BreakOnPortionMarks,
		BreakOnFootnotes:                c.FootnoteNumbers,
		AlwaysBreakOnColons:             c.AlwaysBreakOnColons,
		UseRegionContentFlags:           c.UseRegionContentFlags,
		UnknownIsWebText:                c.UnknownIsWebText,
	}
	if err := opts.Validate(); err != nil {
		return sentbreak.Options{}, err
	}
	return opts, nil
}

// Policy resolves the configured language. counter is attached to the
// Japanese policy and ignored otherwise; Chinese takes its length cap from
// max_desirable_sentence_len.
func (c *Config) Policy(counter sentbreak.TokenCounter) (sentbreak.Policy, error) {
	p, err := sentbreak.PolicyFor(c.Language)
	if err != nil {
		return sentbreak.Policy{}, err
	}
	switch p.Language {
	case "ja":
		p = sentbreak.Japanese(counter)
	case "zh":
		if c.MaxDesirableSentenceLen > 0 {
			p.MaxSentenceChars = c.MaxDesirableSentenceLen
		}
	}
	return p, nil
}

// ListPaths returns the configured word-list overrides keyed by list name.
func (c *Config) ListPaths() map[string]string {
	paths := make(map[string]string)
	for name, path := range map[string]string{
		sentbreak.ListNonFinalAbbrevs:        c.NonFinalAbbrevs,
		sentbreak.ListNoSplitAbbrevs:         c.NoSplitAbbrevs,
		sentbreak.ListKnownWords:             c.KnownWords,
		sentbreak.ListLowercaseHeadlineWords: c.LowercaseHeadlineWords,
		sentbreak.ListDatelineParentheticals: c.DatelineParentheticals,
		sentbreak.ListRarelyCapitalizedWords: c.RarelyCapitalizedWords,
	} {
		if path != "" {
			paths[name] = path
		}
	}
	return paths
}
