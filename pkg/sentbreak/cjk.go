package sentbreak

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mingrammer/commonregex"
)

// scanCJKRegion breaks Chinese, Korean and Japanese text on terminators,
// checked ASCII periods and blank lines. Overlong sentences go to the long
// sentence splitter.
func (s *scanner) scanCJKRegion(int) error {
	st := s.st
	for st.Cursor < len(st.Text) {
		if s.limitReached() {
			s.truncate()
			return nil
		}
		p, ok := s.nextCJKSentence()
		if !ok {
			continue
		}
		done, err := s.splitLong(p)
		if err != nil {
			return err
		}
		if !done {
			s.push(p)
		}
	}
	return nil
}

func (s *scanner) nextCJKSentence() (piece, bool) {
	st := s.st
	t := st.Text
	n := len(t)

	start := st.Cursor
	for start < n && isSpace(t[start]) {
		start++
	}
	if start >= n {
		st.Cursor = start
		return piece{}, false
	}

	inParen, inEmail := false, false
	i := start
	for {
		c := t[i]
		// ASCII periods go through the final period check
		if (c != '.' && s.chars.IsEOS(c)) || s.matchFinalPeriodCJK(i, start) {
			end := i
			if l := s.matchEllipsis(i); l > 0 {
				end += l - 1
			}
			for end+1 < n && s.chars.IsClosing(t[end+1]) {
				end++
			}
			end++
			if !inParen && !inEmail && !s.restricted(end) {
				i = end
				break
			}
		}
		// blank lines, but not a single "\r\n"
		if c == '\n' && i+1 < n && t[i+1] == '\n' && !s.restricted(i+1) {
			i += 2
			break
		}
		if c == '\r' && i+3 < n && t[i+1] == '\n' && t[i+2] == '\r' && t[i+3] == '\n' && !s.restricted(i+3) {
			i += 4
			break
		}

		switch {
		case c == '(' || c == '（':
			inParen = true
		case c == ')' || c == '）':
			inParen = false
		}
		if c == '@' {
			inEmail = s.inEmailAddress(i)
		} else if inEmail && c > unicode.MaxASCII {
			inEmail = false
		}

		if i >= n-1 {
			i++
			break
		}
		i++
	}

	st.Cursor = i
	end := i
	for end > start && isSpace(t[end-1]) {
		end--
	}
	return piece{start: start, end: end}, true
}

// inEmailAddress reports whether the '@' at index belongs to an email
// address.
func (s *scanner) inEmailAddress(index int) bool {
	t := s.st.Text
	start, end := index, index
	for start > 0 && !isSpace(t[start-1]) && t[start-1] <= unicode.MaxASCII {
		start--
	}
	for end < len(t) && !isSpace(t[end]) && t[end] <= unicode.MaxASCII {
		end++
	}
	return commonregex.EmailRegex.MatchString(string(t[start:end]))
}

// matchFinalPeriodCJK is the final period check for text without word
// lists: ellipses, decimal points and short capitalized abbreviations do
// not end a sentence.
func (s *scanner) matchFinalPeriodCJK(index, origin int) bool {
	if !s.matchPossibleFinalPeriod(index, origin) {
		return false
	}
	t := s.st.Text
	n := len(t)
	if index == n-1 {
		return true
	}
	if l := s.matchEllipsis(index); l > 0 && l <= 3 {
		return false
	}
	if s.matchDecimalPoint(index, origin) {
		return false
	}
	start := index - 1
	for start >= origin && !isSpace(t[start]) {
		start--
	}
	word := string(t[start+1 : index+1])

	breakPos := s.indexAfterClosing(index)
	if breakPos >= n {
		return true
	}
	if !isSpace(t[breakPos]) {
		return false
	}
	return !matchCapitalizedAbbreviation(word)
}

func matchCapitalizedAbbreviation(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	if !unicode.IsUpper(r) {
		return false
	}
	without := trimLastRune(word)
	if strings.Contains(without, ".") {
		return true
	}
	return utf8.RuneCountInString(without) <= maxAbbrevWordLen
}

// matchDecimalPoint: digits on both sides of index, whitespace allowed.
func (s *scanner) matchDecimalPoint(index, origin int) bool {
	t := s.st.Text
	start := index - 1
	for start >= origin && isSpace(t[start]) {
		start--
	}
	if start < origin || !isDigit(t[start]) {
		return false
	}
	end := index + 1
	for end < len(t) && isSpace(t[end]) {
		end++
	}
	return end < len(t) && isDigit(t[end])
}
