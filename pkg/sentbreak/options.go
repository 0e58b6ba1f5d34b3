package sentbreak

import "strings"

// DatelineMode controls how eagerly leading dateline and byline material is
// split off. Modes are ordered.
type DatelineMode int

const (
	DatelineNone DatelineMode = iota
	DatelineConservative
	DatelineAggressive
	DatelineVeryAggressive
)

func (m DatelineMode) String() string {
	switch m {
	case DatelineNone:
		return "NONE"
	case DatelineConservative:
		return "conservative"
	case DatelineAggressive:
		return "aggressive"
	case DatelineVeryAggressive:
		return "very_aggressive"
	}
	return "unknown"
}

// ParseDatelineMode accepts the configuration spellings "NONE",
// "conservative", "aggressive" and "very_aggressive". An empty string
// means NONE.
func ParseDatelineMode(s string) (DatelineMode, error) {
	if s == "" {
		return DatelineNone, nil
	}
	for m := DatelineNone; m <= DatelineVeryAggressive; m++ {
		if s == m.String() {
			return m, nil
		}
	}
	return DatelineNone, configErrorf("unknown dateline mode %q", s)
}

// Options are the run-level switches of a Breaker. The zero value is not
// useful; start from DefaultOptions.
type Options struct {
	// MaxSentenceChars caps sentence length in runes. Zero uses the
	// language policy's default.
	MaxSentenceChars int
	// MaxTokenBreaks is the token budget above which a sentence is split.
	MaxTokenBreaks int

	DatelineMode      DatelineMode
	WholeDocDateline  bool
	SkipHeadlines     bool
	DowncaseHeadlines bool

	BreakListSentences bool
	// ListSeparators restricts list detection to these runes. Empty means
	// any punctuation.
	ListSeparators    string
	MinListSeparators int

	BreakTableSentences bool
	SkipTableSentences  bool
	MinTableRows        int

	BreakOnDoubleCarriageReturns    bool
	AggressiveDoubleCarriageReturns bool
	ShortLineLength                 int

	IgnorePageBreaks      bool
	IgnoreParentheticals  bool
	UseITEAHeuristics     bool
	UseGALEHeuristics     bool
	BreakOnPortionMarks   bool
	BreakOnFootnotes      bool
	AlwaysBreakOnColons   bool
	UseRegionContentFlags bool
	UnknownIsWebText      bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxTokenBreaks:    100,
		MinListSeparators: 10,
		MinTableRows:      20,
		ShortLineLength:   40,
	}
}

// Validate checks option consistency.
func (o Options) Validate() error {
	if o.SkipHeadlines && o.DowncaseHeadlines {
		return configErrorf("skip_headlines and downcase_headlines cannot both be set")
	}
	if o.DatelineMode < DatelineNone || o.DatelineMode > DatelineVeryAggressive {
		return configErrorf("dateline mode %d out of range", int(o.DatelineMode))
	}
	if o.MaxSentenceChars < 0 {
		return configErrorf("max_sentence_chars must not be negative")
	}
	if o.MaxTokenBreaks <= 0 {
		return configErrorf("max_token_breaks must be positive")
	}
	if o.MinListSeparators <= 0 {
		return configErrorf("min_list_separators must be positive")
	}
	if o.MinTableRows <= 0 {
		return configErrorf("min_table_rows must be positive")
	}
	if o.ShortLineLength <= 0 {
		return configErrorf("short_line_length must be positive")
	}
	return nil
}

func (o Options) breakTables() bool { return o.BreakTableSentences || o.SkipTableSentences }

func (o Options) isListSeparator(r rune) bool {
	if o.ListSeparators == "" {
		return isPunct(r)
	}
	return strings.ContainsRune(o.ListSeparators, r)
}
