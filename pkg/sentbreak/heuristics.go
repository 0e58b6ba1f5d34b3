package sentbreak

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mingrammer/commonregex"
)

// maxAbbrevWordLen is the longest word (without its period) assumed to be
// an abbreviation.
const maxAbbrevWordLen = 3

// matchEllipsis returns the length of the ellipsis starting at index, or 0.
// Whitespace may separate the periods. An ellipsis glued to an '@' is part
// of an address and does not count.
func (s *scanner) matchEllipsis(index int) int {
	t := s.st.Text
	n := len(t)
	if index >= n || t[index] != '.' {
		return 0
	}
	matched := 0
	end, last := index, index
	for {
		for end < n && isSpace(t[end]) {
			end++
		}
		if end >= n || t[end] != '.' {
			break
		}
		last = end
		end++
		matched++
	}
	if last+1 < n && t[last+1] == '@' {
		return 0
	}
	if matched < 3 {
		return 0
	}
	return last + 1 - index
}

func (s *scanner) matchPossibleFinalPeriod(index, origin int) bool {
	t := s.st.Text
	n := len(t)
	if index <= origin {
		return false
	}
	if index+1 >= n {
		return true
	}
	if t[index] != '.' {
		return false
	}
	prev := t[index-1]
	if !isAlnum(prev) && !s.chars.IsClosing(prev) && !isSpace(prev) {
		return false
	}
	if s.matchEllipsis(index) > 0 {
		return true
	}
	pos := index + 1
	for pos < n && s.chars.IsClosing(t[pos]) {
		pos++
	}
	return pos >= n || isSpace(t[pos])
}

// matchFinalPeriod decides whether the period at index ends the sentence
// that started at origin.
func (s *scanner) matchFinalPeriod(index, origin int) bool {
	if !s.matchPossibleFinalPeriod(index, origin) {
		return false
	}
	t := s.st.Text
	n := len(t)
	if index == n-1 {
		return true
	}
	if l := s.matchEllipsis(index); l > 0 {
		return s.matchLikelySentenceStart(index+l) && !s.matchCenterOfURL(index, l)
	}

	finalWord := s.wordEndingAt(index, origin)
	if s.isNonFinalAbbrev(strings.TrimLeft(finalWord, "([{")) {
		return false
	}

	breakPos := s.indexAfterClosing(index)
	if breakPos >= n {
		return true
	}
	if !isSpace(t[breakPos]) {
		return false
	}
	if s.matchNonSplittableName(index, origin) {
		return false
	}
	if s.matchLikelyAbbreviation(finalWord) && !s.matchLikelySentenceStart(breakPos) {
		return false
	}
	// X.X. Xxxxx is almost always a name.
	if matchLikelyInitials(finalWord) {
		return false
	}
	return true
}

// isNonFinalAbbrev looks a word up with and without its trailing period, so
// lists may spell entries either way.
func (s *scanner) isNonFinalAbbrev(word string) bool {
	if word == "" {
		return false
	}
	ws := s.b.lists.NonFinalAbbrevs
	if ws.Contains(word) {
		return true
	}
	if w := strings.TrimSuffix(word, "."); w != word {
		return ws.Contains(w)
	}
	return false
}

// wordEndingAt returns the word that ends with the period at index,
// period included. Hyphens stop the word; apostrophes inside it do not.
func (s *scanner) wordEndingAt(index, origin int) string {
	t := s.st.Text
	start := index - 1
	for start >= origin {
		c := t[start]
		if !s.chars.IsWordChar(c) || c == '-' {
			if c == '\'' && start-1 >= origin && s.chars.IsWordChar(t[start-1]) {
				start--
				continue
			}
			break
		}
		start--
	}
	return string(t[start+1 : index+1])
}

func (s *scanner) matchNonSplittableName(index, origin int) bool {
	t := s.st.Text
	n := len(t)
	start := index - 1
	for start >= origin && s.chars.IsWordChar(t[start]) {
		start--
	}
	end := index + 1
	for end < n && isSpace(t[end]) {
		end++
	}
	for end < n && unicode.IsLetter(t[end]) {
		end++
	}
	return s.b.lists.NoSplitAbbrevs.Contains(string(t[start+1 : end]))
}

func matchLikelyInitials(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	if !unicode.IsUpper(r) {
		return false
	}
	return strings.Contains(trimLastRune(word), ".")
}

func (s *scanner) matchLikelyAbbreviation(word string) bool {
	n := utf8.RuneCountInString(word)
	if n <= 1 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	if !(s.st.AllLowercase || unicode.IsUpper(first) || (n >= 4 && strings.HasSuffix(word, ".m."))) {
		return false
	}
	without := trimLastRune(word)
	known := s.b.lists.KnownWords
	if known.Contains(without) && !known.Contains(word) {
		return false
	}
	if strings.Contains(without, ".") && !isLikelyWebAddress(without) {
		return true
	}
	return n-1 <= maxAbbrevWordLen
}

func isLikelyWebAddress(word string) bool {
	for _, tld := range []string{".com", ".gov", ".edu", ".org", ".mil", ".net"} {
		if strings.HasSuffix(word, tld) {
			return true
		}
	}
	return false
}

// matchLikelySentenceStart reports a capitalized word followed by an
// uncapitalized one, skipping an "of" in between.
func (s *scanner) matchLikelySentenceStart(pos int) bool {
	if s.st.AllLowercase {
		return false
	}
	t := s.st.Text
	n := len(t)
	for pos < n && !unicode.IsLetter(t[pos]) {
		pos++
	}
	if pos >= n || !unicode.IsUpper(t[pos]) {
		return false
	}
	for pos < n && unicode.IsLetter(t[pos]) {
		pos++
	}
	for pos < n && !unicode.IsLetter(t[pos]) {
		pos++
	}
	if pos+3 < n && t[pos] == 'o' && t[pos+1] == 'f' {
		pos += 2
		for pos < n && !unicode.IsLetter(t[pos]) {
			pos++
		}
	}
	return pos < n && !unicode.IsUpper(t[pos])
}

// matchCenterOfURL reports an ellipsis inside a link, such as
// "example.com...page".
func (s *scanner) matchCenterOfURL(index, ellipsisLen int) bool {
	t := s.st.Text
	if !s.matchURL(index) {
		return false
	}
	next := index + ellipsisLen
	if next >= len(t) {
		return false
	}
	return !isSpace(t[next])
}

// matchURL reports whether a link covers index.
func (s *scanner) matchURL(index int) bool {
	t := s.st.Text
	start, end := index, index
	for start > 0 && !isSpace(t[start-1]) {
		start--
	}
	for end < len(t) && !isSpace(t[end]) {
		end++
	}
	tok := string(t[start:end])
	for _, loc := range commonregex.LinkRegex.FindAllStringIndex(tok, -1) {
		rs := start + utf8.RuneCountInString(tok[:loc[0]])
		re := start + utf8.RuneCountInString(tok[:loc[1]])
		if index >= rs && index < re {
			return true
		}
	}
	return false
}

func isHeadlineSeparator(r rune) bool {
	return strings.ContainsRune("\t\n -,.?!;:()[]{}'`\"", r)
}

// isLikelyHeadline needs six alphabetic words and no lowercase word longer
// than two runes outside the headline word list.
func (s *scanner) isLikelyHeadline(text string) bool {
	if s.st.Downcased {
		return false
	}
	words := 0
	for _, w := range strings.FieldsFunc(text, isHeadlineSeparator) {
		first, _ := utf8.DecodeRuneInString(w)
		if utf8.RuneCountInString(w) > 2 && unicode.IsLower(first) &&
			!s.b.lists.LowercaseHeadlineWords.Contains(w) {
			return false
		}
		if unicode.IsLetter(first) {
			words++
		}
	}
	return words >= 6
}

func trimLastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// isAllUppercaseWord: no explicit lowercase and at least one explicit
// uppercase rune, so "HELLO:" and "HE3LLO" qualify but "3:" does not.
func (s *scanner) isAllUppercaseWord(word string) bool {
	upper := false
	for _, r := range word {
		if s.st.isExplicitlyLowercase(r) {
			return false
		}
		if s.st.isExplicitlyUppercase(r) {
			upper = true
		}
	}
	return upper
}
