package sentbreak

import (
	"sort"
	"strings"

	"github.com/japaniel/sentbreak/pkg/wordset"
)

// Word list names, matching the configuration keys.
const (
	ListNonFinalAbbrevs        = "non_final_abbrevs"
	ListNoSplitAbbrevs         = "no_split_abbrevs"
	ListKnownWords             = "known_words"
	ListLowercaseHeadlineWords = "lowercase_headline_words"
	ListDatelineParentheticals = "dateline_parentheticals"
	ListRarelyCapitalizedWords = "rarely_capitalized_words"
)

// WordLists bundles the word sets consulted by the heuristics. A nil set
// contains nothing.
type WordLists struct {
	NonFinalAbbrevs        *wordset.WordSet
	NoSplitAbbrevs         *wordset.WordSet
	KnownWords             *wordset.WordSet
	LowercaseHeadlineWords *wordset.WordSet
	DatelineParentheticals *wordset.WordSet
	RarelyCapitalizedWords *wordset.WordSet
}

// Get returns the set registered under a list name.
func (l WordLists) Get(name string) *wordset.WordSet {
	switch name {
	case ListNonFinalAbbrevs:
		return l.NonFinalAbbrevs
	case ListNoSplitAbbrevs:
		return l.NoSplitAbbrevs
	case ListKnownWords:
		return l.KnownWords
	case ListLowercaseHeadlineWords:
		return l.LowercaseHeadlineWords
	case ListDatelineParentheticals:
		return l.DatelineParentheticals
	case ListRarelyCapitalizedWords:
		return l.RarelyCapitalizedWords
	}
	return nil
}

// Set stores ws under a list name. Unknown names are ignored and reported
// as false.
func (l *WordLists) Set(name string, ws *wordset.WordSet) bool {
	switch name {
	case ListNonFinalAbbrevs:
		l.NonFinalAbbrevs = ws
	case ListNoSplitAbbrevs:
		l.NoSplitAbbrevs = ws
	case ListKnownWords:
		l.KnownWords = ws
	case ListLowercaseHeadlineWords:
		l.LowercaseHeadlineWords = ws
	case ListDatelineParentheticals:
		l.DatelineParentheticals = ws
	case ListRarelyCapitalizedWords:
		l.RarelyCapitalizedWords = ws
	default:
		return false
	}
	return true
}

// ListNames returns every list name in a stable order.
func ListNames() []string {
	return []string{
		ListNonFinalAbbrevs,
		ListNoSplitAbbrevs,
		ListKnownWords,
		ListLowercaseHeadlineWords,
		ListDatelineParentheticals,
		ListRarelyCapitalizedWords,
	}
}

// rarelyCapitalizedPatterns expands each word to " w " and an all-caps
// " W " variant, sorted so lookups are deterministic.
func rarelyCapitalizedPatterns(ws *wordset.WordSet) []string {
	seen := make(map[string]struct{})
	for _, w := range ws.Words() {
		seen[" "+w+" "] = struct{}{}
		seen[" "+strings.ToUpper(w)+" "] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
