package sentbreak

import "strings"

// TokenCounter estimates the number of tokens in a sentence. Policies use
// it for the long sentence budget.
type TokenCounter interface {
	CountTokens(text string) int
}

type longStrategy int

const (
	// token budget, generic window split
	longByTokens longStrategy = iota
	// rune budget, generic window split
	longByChars
	// rune budget, cut every 200 spaces
	longBySpaces
)

// Policy bundles everything language specific: punctuation tables, the
// region scanner, the long sentence strategy and the word lists it needs.
// Policies are plain values selected when a Breaker is built.
type Policy struct {
	Language         string
	Chars            CharTable
	MaxSentenceChars int
	RequiredLists    []string
	// Tokens replaces the whitespace and punctuation run estimate when set.
	Tokens TokenCounter

	scan func(*scanner, int) error
	long longStrategy
}

// English is the full rule-based policy with datelines, quotes, lists and
// tables.
func English() Policy {
	return Policy{
		Language:         "en",
		Chars:            englishChars(),
		MaxSentenceChars: 1000,
		RequiredLists: []string{
			ListNonFinalAbbrevs,
			ListNoSplitAbbrevs,
			ListKnownWords,
			ListLowercaseHeadlineWords,
			ListDatelineParentheticals,
			ListRarelyCapitalizedWords,
		},
		scan: (*scanner).scanEnglishRegion,
		long: longByTokens,
	}
}

// Default is the fallback policy for languages without a dedicated table.
func Default() Policy {
	return Policy{
		Language:         "default",
		Chars:            defaultChars(),
		MaxSentenceChars: 1000,
		scan:             (*scanner).scanDefaultRegion,
		long:             longBySpaces,
	}
}

// Chinese breaks on full-width and ASCII terminators and keeps sentences
// under 108 runes.
func Chinese() Policy {
	return Policy{
		Language:         "zh",
		Chars:            chineseChars(),
		MaxSentenceChars: 108,
		scan:             (*scanner).scanCJKRegion,
		long:             longByChars,
	}
}

// Korean breaks on terminators and checked ASCII periods.
func Korean() Policy {
	return Policy{
		Language:         "ko",
		Chars:            koreanChars(),
		MaxSentenceChars: 1000,
		scan:             (*scanner).scanCJKRegion,
		long:             longByChars,
	}
}

// Japanese uses the CJK scanner with a token budget. counter may be nil, in
// which case the rune budget applies.
func Japanese(counter TokenCounter) Policy {
	p := Policy{
		Language:         "ja",
		Chars:            japaneseChars(),
		MaxSentenceChars: 1000,
		Tokens:           counter,
		scan:             (*scanner).scanCJKRegion,
		long:             longByChars,
	}
	if counter != nil {
		p.long = longByTokens
	}
	return p
}

// PolicyFor resolves a language name or code. Japanese is returned without
// a token counter.
func PolicyFor(lang string) (Policy, error) {
	switch strings.ToLower(lang) {
	case "en", "eng", "english":
		return English(), nil
	case "zh", "chi", "zho", "chinese":
		return Chinese(), nil
	case "ko", "kor", "korean":
		return Korean(), nil
	case "ja", "jpn", "japanese":
		return Japanese(nil), nil
	case "", "default":
		return Default(), nil
	}
	return Policy{}, configErrorf("unsupported language %q", lang)
}
