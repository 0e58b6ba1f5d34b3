package sentbreak

import (
	"context"
	"regexp"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/japaniel/sentbreak/pkg/document"
)

// patterns are the compiled expressions shared by every scan of a Breaker.
type patterns struct {
	portionUpper *regexp.Regexp
	portionLower *regexp.Regexp
	portionBasic *regexp.Regexp
	citation     *regexp.Regexp
	pageNumber   *regexp.Regexp
}

func compilePatterns() patterns {
	return patterns{
		portionUpper: regexp.MustCompile(`^(//)?[A-Z][-, A-Z]*(/[A-Z][-, A-Z]*)*(//[A-Z][-, A-Z]*(/[A-Z][-, A-Z]*)*)*$`),
		portionLower: regexp.MustCompile(`^(//)?[a-z][-, a-z]*(/[a-z][-, a-z]*)*(//[a-z][-, a-z]*(/[a-z][-, a-z]*)*)*$`),
		portionBasic: regexp.MustCompile(`^(U|C|S|TS|U *N *C *L *A *S *S *I *F *I *E *D|C *L *A *S *S *I *F *I *E *D|S *E *C *R *E *T|T *O *P *S *E *C *R *E *T)$`),
		citation:     regexp.MustCompile(`\.\[\d+\]$`),
		pageNumber:   regexp.MustCompile(`(?i)page\s+\d+`),
	}
}

// Breaker splits documents into sentences under one language policy. It is
// immutable after New and safe for concurrent use.
type Breaker struct {
	policy   Policy
	opts     Options
	lists    WordLists
	logger   *zap.Logger
	maxChars int

	rarelyCap []string
	cascade   []breakRule
	re        patterns
}

// New validates the configuration and builds a Breaker. A nil logger
// discards log output.
func New(policy Policy, opts Options, lists WordLists, logger *zap.Logger) (*Breaker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.scan == nil {
		return nil, configErrorf("language policy is not initialized")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	for _, name := range policy.RequiredLists {
		if lists.Get(name) == nil {
			return nil, configErrorf("missing required word list %q for language %s", name, policy.Language)
		}
	}

	b := &Breaker{
		policy:   policy,
		opts:     opts,
		lists:    lists,
		logger:   logger.With(zap.String("language", policy.Language)),
		maxChars: policy.MaxSentenceChars,
		cascade:  buildCascade(opts),
		re:       compilePatterns(),
	}
	if opts.MaxSentenceChars > 0 {
		b.maxChars = opts.MaxSentenceChars
	}
	if opts.DatelineMode == DatelineVeryAggressive {
		b.rarelyCap = rarelyCapitalizedPatterns(lists.RarelyCapitalizedWords)
	}
	return b, nil
}

// Policy returns the language policy the Breaker was built with.
func (b *Breaker) Policy() Policy { return b.policy }

// Options returns the Breaker's options.
func (b *Breaker) Options() Options { return b.opts }

// Segment breaks doc into sentences. maxSentences caps the output; zero or
// less means no cap. Plain scanning stops at the cap with a warning, while
// the dateline, table, list and long sentence splitters fail with a
// *TooManySentencesError when they would cross it.
func (b *Breaker) Segment(ctx context.Context, doc *document.Document, maxSentences int) ([]document.Sentence, error) {
	if doc == nil || len(doc.Regions) == 0 {
		b.logger.Warn("No readable content in this document")
		return nil, nil
	}

	s := &scanner{
		b:     b,
		chars: &b.policy.Chars,
		doc:   doc,
		st:    newScanState(doc, b.opts),
		max:   maxSentences,
	}
	s.docWebText = s.st.WebText

	for i, region := range doc.Regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.beginRegion(i, region)
		if err := b.policy.scan(s, i); err != nil {
			return nil, WrapErrorf(err, "segment document %s region %d", doc.ID, i)
		}
		if s.truncated {
			break
		}
	}
	return s.out, nil
}

// piece is a candidate sentence in region rune coordinates, end exclusive.
type piece struct {
	start int
	end   int
	tag   string
	lower bool
}

// scanner carries one Segment call.
type scanner struct {
	b      *Breaker
	chars  *CharTable
	doc    *document.Document
	st     *ScanState
	region *document.Region
	out    []document.Sentence
	max    int

	docWebText bool
	truncated  bool
}

func (s *scanner) beginRegion(i int, region *document.Region) {
	s.region = region
	s.st.Region = i
	s.st.Cursor = 0
	s.st.Text = region.Runes()
	s.st.WebText = s.docWebText
	s.st.BreakOnDoubleCR = s.b.opts.BreakOnDoubleCarriageReturns
	if s.b.opts.UseRegionContentFlags {
		s.st.BreakOnDoubleCR = !region.Has(document.DoubleSpaced)
		s.st.WebText = !region.Has(document.Justified)
	}
}

func (s *scanner) restricted(index int) bool {
	return s.doc.Metadata.IsBreakRestricted(s.region, index)
}

func (s *scanner) limitReached() bool {
	return s.max > 0 && s.st.SentNo >= s.max
}

func (s *scanner) truncate() {
	s.truncated = true
	s.b.logger.Warn("Truncating document with more than the maximum sentences",
		zap.String("doc_id", s.doc.ID),
		zap.Int("max_sentences", s.max))
}

// checkOverflow fails when adding extra sentences would cross the cap.
func (s *scanner) checkOverflow(extra int, splitter string) error {
	if s.max > 0 && s.st.SentNo+extra > s.max {
		return &TooManySentencesError{Splitter: splitter, Count: s.st.SentNo + extra, Max: s.max}
	}
	return nil
}

// push appends p as the next sentence of the document.
func (s *scanner) push(p piece) {
	text := string(s.st.Text[p.start:p.end])
	if p.lower {
		text = cases.Lower(language.Und).String(text)
	}
	s.out = append(s.out, document.Sentence{
		DocumentID:  s.doc.ID,
		No:          s.st.SentNo,
		Region:      s.st.Region,
		RegionTag:   s.region.Tag,
		Start:       p.start,
		End:         p.end,
		StartOffset: s.region.DocOffset(p.start),
		EndOffset:   s.region.DocOffset(p.end),
		Text:        text,
		Tag:         p.tag,
	})
	s.st.SentNo++
}

// trimPiece drops surrounding whitespace; ok is false when nothing is left.
func (s *scanner) trimPiece(p piece) (piece, bool) {
	t := s.st.Text
	for p.start < p.end && isSpace(t[p.start]) {
		p.start++
	}
	for p.end > p.start && isSpace(t[p.end-1]) {
		p.end--
	}
	return p, p.start < p.end
}

// countTokens estimates the token count of runes [start, end) with the
// policy's counter, or as the number of maximal whitespace and punctuation
// runs.
func (s *scanner) countTokens(start, end int) int {
	if tc := s.b.policy.Tokens; tc != nil {
		return tc.CountTokens(string(s.st.Text[start:end]))
	}
	return countTokenBreaks(s.st.Text[start:end])
}

func countTokenBreaks(t []rune) int {
	tb := 0
	for i := 0; i < len(t); i++ {
		if isSpace(t[i]) || isPunct(t[i]) {
			tb++
			for i < len(t)-1 && (isSpace(t[i+1]) || isPunct(t[i+1])) {
				i++
			}
		}
	}
	return tb
}

// scanEnglishRegion runs the full English pipeline over the current region:
// normalization, optional page break and GALE removal, datelines, then one
// sentence at a time through the table, list and long splitters.
func (s *scanner) scanEnglishRegion(int) error {
	st := s.st
	opts := s.b.opts
	st.Text = normalizeText(st.Text)
	if opts.IgnorePageBreaks {
		s.blankPageBreaks()
	}
	if opts.UseGALEHeuristics && isRemovableGALERegion(st.Text) {
		s.b.logger.Debug("Removed region", zap.Int("region", st.Region))
		return nil
	}

	if opts.WholeDocDateline || st.SentNo == 0 || st.SentNo-1 == st.LastHeadlineSentNo {
		st.resetListFlags()
		if err := s.datelineSentences(); err != nil {
			return err
		}
	}
	st.resetListFlags()

	isHeadline := s.region.Tag == document.TagHeadline
	for st.Cursor < len(st.Text) {
		if s.limitReached() {
			s.truncate()
			return nil
		}
		if opts.WholeDocDateline || (opts.DatelineMode >= DatelineVeryAggressive && st.SentNo < 3) {
			this, last := st.ThisListItem, st.LastListItem
			before := st.Cursor
			if err := s.datelineSentences(); err != nil {
				return err
			}
			if st.Cursor == before {
				st.ThisListItem, st.LastListItem = this, last
			} else {
				st.resetListFlags()
			}
		}

		p, ok := s.nextSentence()
		if !ok {
			continue
		}
		text := string(st.Text[p.start:p.end])
		if opts.SkipHeadlines && s.isLikelyHeadline(text) {
			continue
		}
		if opts.UseGALEHeuristics && isRemovableGALESentence(text) {
			s.b.logger.Debug("Removed sentence", zap.String("text", text))
			continue
		}
		if opts.DowncaseHeadlines && s.isLikelyHeadline(text) {
			s.b.logger.Warn("Converting headline to lowercase", zap.String("text", text))
			p.lower = true
		}
		if err := s.finishSentence(p); err != nil {
			return err
		}
		if isHeadline {
			st.LastHeadlineSentNo = st.SentNo - 1
		}
	}
	return nil
}

// nextSentence scans one sentence starting at the cursor. The returned
// piece excludes trailing whitespace; the cursor moves past it.
func (s *scanner) nextSentence() (piece, bool) {
	st := s.st
	t := st.Text
	n := len(t)
	opts := s.b.opts

	start := st.Cursor
	for start < n && isSpace(t[start]) {
		start++
	}
	if start >= n {
		st.Cursor = start
		return piece{}, false
	}

	end := start
	if s.chars.IsOpening(t[start]) {
		st.pushQuote(t[start])
		for end < n-1 && t[end] == t[start] {
			end++
		}
	}

	found := false
	for end < n && !found {
		if opts.UseITEAHeuristics && (s.isListItemPeriod(start, end) || s.isListItemParen(start, end)) {
			st.ThisListItem = true
		}

		switch {
		case s.chars.IsSplit(t[end]):
			end, found = s.scanSplitRun(end)
		case s.matchFinalPeriod(end, start):
			if l := s.matchEllipsis(end); l > 0 {
				end += l - 1
			}
			end = s.indexAfterClosingHandlingQuotes(end)
			found = true
		case s.matchSentenceFinalCitation(end, start):
			end = s.indexAfterClosingHandlingQuotes(end)
			found = true
		case s.isCarriageReturnBreak(start, end):
			end++
			found = true
		case s.isClosingQuoteLevel(end):
			end++
			for end < n && isPunct(t[end]) {
				end++
			}
			end++
			st.popQuote()
			found = true
		default:
			if s.matchCascade(start, end) {
				end++
				found = true
			} else {
				end += max(1, s.matchEllipsis(end))
			}
		}

		if found && end < n {
			if s.restricted(end) {
				found = false
				end++
			}
			if opts.IgnoreParentheticals {
				if top, ok := st.topQuote(); ok && top == '(' {
					found = false
				}
			}
		}
	}
	if end > n {
		end = n
	}

	st.Cursor = end
	trimmed := end
	for trimmed > start && isSpace(t[trimmed-1]) {
		trimmed--
	}
	if trimmed == start {
		trimmed = end
	}

	st.LastListItem = st.ThisListItem
	st.ThisListItem = false
	return piece{start: start, end: trimmed}, true
}

func (s *scanner) matchCascade(start, end int) bool {
	for _, rule := range s.b.cascade {
		if rule.match(s, start, end) {
			return true
		}
	}
	return false
}

// scanSplitRun handles a run of '?' or '!' at end. It breaks when the next
// word is capitalized, and otherwise looks at the quotes and line breaks
// between the run and the next word.
func (s *scanner) scanSplitRun(end int) (int, bool) {
	st := s.st
	t := st.Text
	n := len(t)

	for s.chars.IsSplit(t[end]) && end+1 < n {
		end++
	}
	next := end + 1
	for next < n && !unicode.IsLetter(t[next]) {
		next++
	}
	if next >= n || st.isExplicitlyUppercase(t[next]) {
		return s.indexAfterClosingHandlingQuotes(end), true
	}

	i := end
	closing := false
	for ; i < next && s.chars.IsClosing(t[i]); i++ {
		closing = true
	}
	afterClosing := i

	spaces := false
	lines := 0
	for ; i < next && isSpace(t[i]); i++ {
		spaces = true
		if t[i] == '\n' {
			lines++
		}
	}
	beforeOpening := i

	opening := false
	for ; i < next && s.chars.IsOpening(t[i]); i++ {
		opening = true
	}

	if !spaces {
		return end + 1, false
	}
	switch {
	case opening:
		// two adjacent quotes, or a quote after the run
		return afterClosing, true
	case closing:
		// the run belongs to the quote
		return beforeOpening, false
	case st.Downcased:
		return beforeOpening, true
	case st.BreakOnDoubleCR && lines >= 2:
		return beforeOpening, true
	}
	return beforeOpening, false
}
