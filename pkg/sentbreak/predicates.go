package sentbreak

import (
	"strings"
	"unicode"
)

// breakRule is one step of the narrow-heuristic cascade tried after the
// primary checks. A rule that fires breaks right after end.
type breakRule struct {
	name  string
	match func(s *scanner, start, end int) bool
}

// buildCascade selects the rules enabled by o, in priority order.
func buildCascade(o Options) []breakRule {
	rules := []breakRule{
		{"last_in_string_of_dashes", (*scanner).isLastInStringOfDashes},
		{"breakable_semicolon", (*scanner).isBreakableSemicolon},
		{"last_in_punctuation_string", func(s *scanner, start, end int) bool {
			return s.st.WebText && s.isLastInPunctuationString(start, end)
		}},
		{"followed_by_string_of_dashes", (*scanner).isFollowedByStringOfDashes},
	}
	if o.BreakOnFootnotes {
		rules = append(rules, breakRule{"breakable_center_period", (*scanner).isBreakableCenterPeriod})
	}
	if o.BreakOnPortionMarks {
		rules = append(rules, breakRule{"followed_by_portion_mark", (*scanner).isFollowedByPortionMark})
	}
	if o.UseGALEHeuristics {
		rules = append(rules, breakRule{"last_in_string_of_slashes", (*scanner).isLastInStringOfSlashes})
	}
	if o.UseGALEHeuristics || o.DatelineMode >= DatelineAggressive {
		rules = append(rules, breakRule{"buried_dateline", (*scanner).isBuriedDateline})
	}
	if o.UseGALEHeuristics {
		rules = append(rules,
			breakRule{"sentence_ending_web_address", (*scanner).isSentenceEndingWebAddress},
			breakRule{"breakable_xml_glyph", (*scanner).isBreakableXMLGlyph},
		)
	}
	rules = append(rules, breakRule{"followed_by_punctuation_string", func(s *scanner, start, end int) bool {
		return s.st.WebText && s.isFollowedByPunctuationString(start, end)
	}})
	if o.UseITEAHeuristics {
		rules = append(rules,
			breakRule{"followed_by_list_item", func(s *scanner, _, end int) bool { return s.isFollowedByListItem(end) }},
			breakRule{"list_item_period", (*scanner).isListItemPeriod},
			breakRule{"list_item_paren", (*scanner).isListItemParen},
			breakRule{"ends_dash_line", (*scanner).endsDashLine},
			breakRule{"followed_by_dash_line", func(s *scanner, _, end int) bool { return s.isFollowedByDashLine(end) }},
		)
	}
	if o.AlwaysBreakOnColons || o.UseITEAHeuristics {
		always := o.AlwaysBreakOnColons
		rules = append(rules, breakRule{"breakable_colon", func(s *scanner, start, end int) bool {
			return (always || s.st.LastListItem) && s.isBreakableColon(start, end)
		}})
	}
	if o.DatelineMode >= DatelineVeryAggressive {
		rules = append(rules, breakRule{"closing_starting_open_paren", (*scanner).isClosingStartingOpenParen})
	}
	return rules
}

func (s *scanner) indexAfterClosing(index int) int {
	t := s.st.Text
	index++
	for index < len(t) && s.chars.IsClosing(t[index]) {
		index++
	}
	return index
}

// indexAfterClosingHandlingQuotes also pops quote levels closed by the
// consumed punctuation, so the next sentence does not start inside a
// quote that already ended.
func (s *scanner) indexAfterClosingHandlingQuotes(index int) int {
	next := s.indexAfterClosing(index)
	for i := index; i < next; i++ {
		if s.isClosingQuoteLevel(i) {
			s.st.popQuote()
		}
	}
	return next
}

// isClosingQuoteLevel reports whether end closes the innermost open quote
// and ends the sentence there. Closers that continue the sentence (comma,
// semicolon or lowercase around them) pop the level and return false.
func (s *scanner) isClosingQuoteLevel(end int) bool {
	t := s.st.Text
	n := len(t)
	c := t[end]
	if !s.chars.IsClosing(c) {
		return false
	}
	open, ok := s.st.topQuote()
	if !ok {
		return false
	}
	closer, ok := s.chars.MatchingCloser(open)
	if !ok || closer != c {
		return false
	}
	if c == '\'' && end > 0 && unicode.IsLetter(t[end-1]) && end < n-1 && unicode.IsLetter(t[end+1]) {
		// contraction
		return false
	}
	if end < n-1 && t[end+1] == c {
		return false
	}
	prev := end - 1
	for prev >= 0 && (isSpace(t[prev]) || t[prev] == c) {
		prev--
	}
	continueInside := prev >= 0 && (t[prev] == ',' || t[prev] == ';')
	next := end + 1
	for next < n && isSpace(t[next]) {
		next++
	}
	continueOutside := next < n && (t[next] == ',' || t[next] == ';' || s.st.isExplicitlyLowercase(t[next]))
	if continueInside || continueOutside {
		s.st.popQuote()
		return false
	}
	if s.b.opts.IgnoreParentheticals && end > 0 && c == ')' && t[end-1] == ')' {
		s.st.popQuote()
		return false
	}
	return true
}

// isSafeDoubleCarriageReturn: a blank line after end, followed by text
// that does not start lowercase unless splitting aggressively.
func (s *scanner) isSafeDoubleCarriageReturn(end int) bool {
	if !s.st.BreakOnDoubleCR {
		return false
	}
	t := s.st.Text
	n := len(t)
	var i int
	switch {
	case t[end] == '\n':
		i = end + 1
	case t[end] == '\r' && end+1 < n && t[end+1] == '\n':
		i = end + 2
	default:
		return false
	}
	second := false
	for i < n {
		if t[i] == '\n' || (t[i] == '\r' && i+1 < n && t[i+1] == '\n') {
			second = true
			break
		}
		if !isSpace(t[i]) {
			break
		}
		i++
	}
	if !second {
		return false
	}
	for i < n && isSpace(t[i]) {
		i++
	}
	if i >= n {
		return false
	}
	return !s.st.isExplicitlyLowercase(t[i]) || s.b.opts.AggressiveDoubleCarriageReturns
}

// isCarriageReturnBreak covers double newlines and, for web text, short
// lines and repeated bullet leaders.
func (s *scanner) isCarriageReturnBreak(start, end int) bool {
	if s.isSafeDoubleCarriageReturn(end) {
		return true
	}
	if !s.st.WebText {
		return false
	}
	t := s.st.Text
	if t[end] != '\n' {
		return false
	}
	short := s.b.opts.ShortLineLength
	last := end - 1
	for last >= 0 {
		if t[last] == '\n' {
			break
		}
		last--
		if end-last > short {
			break
		}
	}
	if end-last < short {
		return true
	}
	n := len(t)
	if end+2 >= n {
		return false
	}
	if lead := t[start]; lead == '-' || lead == '*' || lead == '=' {
		return t[end+1] == lead
	}
	return false
}

// isLastInStringOfDashes: the fourth or later dash of a run, with a non-dash
// after it.
func (s *scanner) isLastInStringOfDashes(start, end int) bool {
	t := s.st.Text
	if t[end] != '-' || end+1 >= len(t) || t[end+1] == '-' {
		return false
	}
	for i := end - 1; i > end-4; i-- {
		if i < start || t[i] != '-' {
			return false
		}
	}
	return true
}

func (s *scanner) isLastInStringOfSlashes(start, end int) bool {
	t := s.st.Text
	if t[end] != '/' || end+1 >= len(t) || !isSpace(t[end+1]) {
		return false
	}
	for i := end - 1; i > end-3; i-- {
		if i < start || t[i] != '/' {
			return false
		}
	}
	return true
}

func isQuoteOrPeriod(r rune) bool { return r == '\'' || r == '`' || r == '.' || r == '"' }

func (s *scanner) isLastInPunctuationString(start, end int) bool {
	t := s.st.Text
	if isQuoteOrPeriod(t[end]) {
		return false
	}
	if !isPunct(t[end]) || end+1 >= len(t) || !isSpace(t[end+1]) {
		return false
	}
	for i := end - 1; i > end-4; i-- {
		if i < start || !isPunct(t[i]) || isQuoteOrPeriod(t[i]) {
			return false
		}
	}
	return true
}

// isBreakableSemicolon: a free-standing " ; ".
func (s *scanner) isBreakableSemicolon(_, end int) bool {
	t := s.st.Text
	return t[end] == ';' &&
		(end == 0 || t[end-1] == ' ') &&
		(end+2 >= len(t) || t[end+1] == ' ')
}

func (s *scanner) isClosingStartingOpenParen(start, end int) bool {
	t := s.st.Text
	return t[end] == ')' && t[start] == '('
}

func (s *scanner) isFollowedByStringOfDashes(_, end int) bool {
	t := s.st.Text
	if t[end] == '-' {
		return false
	}
	i := end + 1
	for i < len(t) && isSpace(t[i]) {
		i++
	}
	for j := i; j < i+4; j++ {
		if j >= len(t) || t[j] != '-' {
			return false
		}
	}
	return true
}

func (s *scanner) isFollowedByPunctuationString(_, end int) bool {
	t := s.st.Text
	if isPunct(t[end]) {
		return false
	}
	i := end + 1
	for i < len(t) && isSpace(t[i]) {
		i++
	}
	for j := i; j < i+4; j++ {
		if j >= len(t) || !isPunct(t[j]) {
			return false
		}
		c := t[j]
		if s.chars.IsOpening(c) || s.chars.IsClosing(c) || s.chars.IsSplit(c) || s.chars.IsEOS(c) {
			return false
		}
	}
	return true
}

// isBreakableCenterPeriod splits footnote and page numbers glued to a
// word: "thing.2324", "1.5 Next" and "thing.\"2341".
func (s *scanner) isBreakableCenterPeriod(_, end int) bool {
	t := s.st.Text
	n := len(t)
	if end == 0 || end >= n-1 {
		return false
	}
	c := t[end]
	if c == '.' && !isDigit(t[end-1]) && !isSpace(t[end-1]) && isDigit(t[end+1]) {
		return true
	}
	backToNonDigit := func() int {
		i := end - 1
		for i > 1 && isDigit(t[i]) {
			i--
		}
		return i
	}
	if isSpace(c) && isDigit(t[end-1]) {
		i := backToNonDigit()
		if t[i] == '.' && !isDigit(t[i-1]) && !isSpace(t[i-1]) {
			return true
		}
	}
	if c == '.' && isDigit(t[end-1]) && isDigit(t[end+1]) {
		i := end + 2
		for i < n && isDigit(t[i]) {
			i++
		}
		if i == n || !isSpace(t[i]) {
			return false
		}
		for i < n && isSpace(t[i]) {
			i++
		}
		return i < n && unicode.IsUpper(t[i])
	}
	if isSpace(c) && isDigit(t[end-1]) {
		i := end + 1
		for i < n && isSpace(t[i]) {
			i++
		}
		if i == n || !unicode.IsUpper(t[i]) {
			return false
		}
		i = backToNonDigit()
		if t[i] == '.' && isDigit(t[i-1]) {
			return true
		}
	}
	if (c == '"' || c == '\'') && t[end-1] == '.' && isDigit(t[end+1]) {
		return true
	}
	if isSpace(c) && isDigit(t[end-1]) {
		i := backToNonDigit()
		if (t[i] == '"' || t[i] == '\'') && t[i-1] == '.' {
			return true
		}
	}
	return false
}

// isPortionMark reports classification markings such as "U", "TS" or
// "S//NF" in runes [start, end).
func (s *scanner) isPortionMark(start, end int) bool {
	if start < 0 || end > len(s.st.Text) || start >= end {
		return false
	}
	portion := strings.TrimSpace(string(s.st.Text[start:end]))
	if s.b.re.portionBasic.MatchString(portion) {
		return true
	}
	if !strings.Contains(portion, "//") {
		return false
	}
	if s.st.Downcased {
		return s.b.re.portionLower.MatchString(portion)
	}
	return s.b.re.portionUpper.MatchString(portion)
}

// isFollowedByPortionMark breaks before a parenthesized portion mark on
// the same line.
func (s *scanner) isFollowedByPortionMark(_, end int) bool {
	t := s.st.Text
	n := len(t)
	i := end + 1
	for i < n && isSpace(t[i]) && t[i] != '\n' {
		i++
	}
	if i >= n || !s.chars.IsOpening(t[i]) {
		return false
	}
	open := i
	i++
	for i < n && t[i] != '\n' && !s.chars.IsClosing(t[i]) {
		i++
	}
	if i >= n || !s.chars.IsClosing(t[i]) {
		return false
	}
	return s.isPortionMark(open+1, i)
}

// isFollowedByListItem: end is a newline and the next line opens with a
// list marker.
func (s *scanner) isFollowedByListItem(end int) bool {
	t := s.st.Text
	if t[end] != '\n' {
		return false
	}
	if end > 0 && t[end-1] != '\n' && isSpace(t[end-1]) {
		return false
	}
	i := end + 1
	for i < len(t) && isSpace(t[i]) {
		i++
	}
	return IsListMarkerAt(t, i)
}

// isListItemPeriod: "A.", "1.", "1A." or "VI." opening the sentence.
func (s *scanner) isListItemPeriod(start, end int) bool {
	t := s.st.Text
	if t[end] != '.' || len(t) <= end+1 || !isSpace(t[end+1]) {
		return false
	}
	i := end - 1
	if i < 0 {
		return false
	}
	switch {
	case isDigit(t[i]):
		for i >= 0 && isDigit(t[i]) {
			i--
		}
	case IsRoman(t[i]):
		for i >= 0 && IsRoman(t[i]) {
			i--
		}
	case unicode.IsLetter(t[i]):
		i--
		if i >= 0 && isDigit(t[i]) {
			i--
		}
	default:
		return false
	}
	return onlySpaceFrom(t, start, i)
}

// isListItemParen: "(1)", "A)" or "1A)" opening the sentence.
func (s *scanner) isListItemParen(start, end int) bool {
	t := s.st.Text
	if t[end] != ')' {
		return false
	}
	i := end - 1
	if i < 0 {
		return false
	}
	switch {
	case isDigit(t[i]):
		for i >= 0 && isDigit(t[i]) {
			i--
		}
	case unicode.IsLetter(t[i]) && i > 0:
		i--
		if i >= 0 && isDigit(t[i]) {
			i--
		}
	default:
		return false
	}
	if i >= 0 && t[i] == '(' {
		i--
	}
	return onlySpaceFrom(t, start, i)
}

// onlySpaceFrom reports whether runes [start, i] are all whitespace.
func onlySpaceFrom(t []rune, start, i int) bool {
	for ; i >= start; i-- {
		if !isSpace(t[i]) {
			return false
		}
	}
	return true
}

// endsDashLine: end is a newline closing a line of only dashes.
func (s *scanner) endsDashLine(start, end int) bool {
	t := s.st.Text
	if t[end] != '\n' {
		return false
	}
	dash := false
	for i := end - 1; i >= 0; i-- {
		if t[i] != '-' && !isSpace(t[i]) {
			return false
		}
		if t[i] == '-' {
			dash = true
		}
		if i == start || t[i] == '\n' {
			return dash
		}
	}
	return false
}

func (s *scanner) isFollowedByDashLine(end int) bool {
	t := s.st.Text
	if t[end] != '\n' {
		return false
	}
	if end > 0 && t[end-1] != '\n' && isSpace(t[end-1]) {
		return false
	}
	i := end + 1
	for i < len(t) && isSpace(t[i]) {
		i++
	}
	return i < len(t) && t[i] == '-'
}

func (s *scanner) hasPrefixAt(pos int, sub string) bool {
	t := s.st.Text
	for _, r := range sub {
		if pos >= len(t) || t[pos] != r {
			return false
		}
		pos++
	}
	return true
}

// isBuriedDateline: agency tags such as "(AP)" or "(AFP)", GALE
// "ATTENTION -" markers, and in very aggressive mode "--" or ":" before a
// capitalized word.
func (s *scanner) isBuriedDateline(start, end int) bool {
	t := s.st.Text
	n := len(t)
	if t[end] == '-' && (s.hasPrefixAt(start, "(AFP)") || s.hasPrefixAt(start, "(AP)")) {
		return true
	}
	if end+5 < n && (s.hasPrefixAt(end+1, "(AFP)") || s.hasPrefixAt(end+1, "(AP)")) {
		return true
	}
	if end+10 < n && s.hasPrefixAt(end+1, "ATTENTION -") {
		return true
	}
	if s.b.opts.DatelineMode >= DatelineVeryAggressive && end+3 < n {
		i := 0
		switch {
		case s.hasPrefixAt(end+1, "--"):
			i = end + 3
		case s.hasPrefixAt(end+1, ":"):
			i = end + 2
		}
		if i != 0 {
			for i < n && isSpace(t[i]) {
				i++
			}
			if i < n && unicode.IsUpper(t[i]) {
				return true
			}
		}
	}
	return false
}

// isSentenceEndingWebAddress breaks after ".com Xxxx" or ".com. Xxxx".
func (s *scanner) isSentenceEndingWebAddress(start, end int) bool {
	t := s.st.Text
	n := len(t)
	if end-4 < start {
		return false
	}
	if t[end] != '.' && !isSpace(t[end]) {
		return false
	}
	if t[end] == '.' && (end+1 == n || !isSpace(t[end+1])) {
		return false
	}
	matched := false
	for _, tld := range []string{".com", ".org", ".net", ".gov", ".edu"} {
		if indexOf(t, tld, start) == end-4 {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for i := end + 1; i+1 < n; i++ {
		if isSpace(t[i]) {
			continue
		}
		return unicode.IsUpper(t[i]) && unicode.IsLower(t[i+1])
	}
	return false
}

// isBreakableColon: a colon outside quotes, not before an opening quote,
// within 60 runes of the sentence start.
func (s *scanner) isBreakableColon(start, end int) bool {
	t := s.st.Text
	n := len(t)
	if t[end] != ':' {
		return false
	}
	if s.st.QuoteDepth() > 0 {
		return false
	}
	depth := 0
	for i := start; i <= end; i++ {
		if s.chars.IsOpening(t[i]) {
			depth++
		} else if s.chars.IsClosing(t[i]) {
			depth--
		}
	}
	if depth > 0 {
		return false
	}
	i := end + 1
	for i < n && isSpace(t[i]) {
		i++
	}
	if i >= n || s.chars.IsOpening(t[i]) {
		return false
	}
	if n <= end+1 || !isSpace(t[end+1]) {
		return false
	}
	return end-start < 60
}

// isBreakableXMLGlyph: an escaped "&lt;" or "&rt;" with whitespace on at
// least one side.
func (s *scanner) isBreakableXMLGlyph(start, end int) bool {
	t := s.st.Text
	found := end-3 >= start && t[end] == ';' && t[end-1] == 't' &&
		(t[end-2] == 'l' || t[end-2] == 'r') && t[end-3] == '&'
	return found && (end-4 < start || isSpace(t[end-4]) || end+1 >= len(t) || isSpace(t[end+1]))
}

// matchSentenceFinalCitation: a Wikipedia style ".[12]" ending at index.
func (s *scanner) matchSentenceFinalCitation(index, origin int) bool {
	if s.st.Text[index] != ']' {
		return false
	}
	return s.b.re.citation.MatchString(string(s.st.Text[origin : index+1]))
}

// indexOf finds sub in t at or after from, in runes; -1 when absent.
func indexOf(t []rune, sub string, from int) int {
	needle := []rune(sub)
	if len(needle) == 0 {
		return from
	}
	if from < 0 {
		from = 0
	}
outer:
	for i := from; i+len(needle) <= len(t); i++ {
		for j, r := range needle {
			if t[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
