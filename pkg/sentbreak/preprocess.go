package sentbreak

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// normalizeText rewrites t in place: non-standard whitespace becomes a
// plain space and unknown "????-??-??" dates become "XXXX-XX-XX". Both
// keep the length, so region indices stay valid.
func normalizeText(t []rune) []rune {
	for i, r := range t {
		switch r {
		case ' ', '\t', '\n', '\r':
		case '\u200b', '\ufeff':
			t[i] = ' '
		default:
			if unicode.IsSpace(r) {
				t[i] = ' '
			}
		}
	}
	const mask = "????-??-??"
	for i := indexOf(t, mask, 0); i != -1; i = indexOf(t, mask, i+len(mask)) {
		for j, r := range "XXXX-XX-XX" {
			t[i+j] = r
		}
	}
	return t
}

func lineStart(t []rune, pos int) int {
	for pos > 0 && t[pos-1] != '\n' {
		pos--
	}
	return pos
}

func lineEnd(t []rune, pos int) int {
	for pos < len(t) && t[pos] != '\n' {
		pos++
	}
	return pos
}

// nextNonEmpty skips whitespace, line breaks included.
func nextNonEmpty(t []rune, pos int) int {
	for pos < len(t) && isSpace(t[pos]) {
		pos++
	}
	return pos
}

// prevNonEmptyEnd returns the end of the last non-whitespace rune before pos.
func prevNonEmptyEnd(t []rune, pos int) int {
	for pos > 0 && isSpace(t[pos-1]) {
		pos--
	}
	return pos
}

// blankPageBreaks replaces page break lines with spaces. A page break is a
// short line containing "page N", or a portion mark line, together with
// the header and footer lines around it that repeat part of it.
func (s *scanner) blankPageBreaks() {
	t := s.st.Text
	n := len(t)
	short := s.b.opts.ShortLineLength
	var spans [][2]int

	for index := 0; index < n-1; {
		start, end := lineStart(t, index), lineEnd(t, index)
		if start == end {
			index = max(nextNonEmpty(t, end), index+1)
			continue
		}
		line := string(t[start:end])
		isBreak := (end-start < short && s.b.re.pageNumber.MatchString(line)) || s.isPortionMark(start, end)
		if !isBreak {
			index = max(nextNonEmpty(t, end), index+1)
			continue
		}

		for start > 0 {
			start = prevNonEmptyEnd(t, start)
			prevStart := lineStart(t, start)
			if prevStart == start || !strings.Contains(line, string(t[prevStart:start])) {
				break
			}
			start = prevStart
		}
		for end < n {
			end = nextNonEmpty(t, end)
			nextEnd := lineEnd(t, end)
			if nextEnd == end || !strings.Contains(line, string(t[end:nextEnd])) {
				break
			}
			end = nextEnd
		}
		spans = append(spans, [2]int{start, end})
		index = max(end, index+1)
	}

	for _, sp := range spans {
		s.b.logger.Debug("Removing page break", zap.String("text", string(t[sp[0]:sp[1]])))
		for i := sp[0]; i < sp[1]; i++ {
			t[i] = ' '
		}
	}
}

// isRemovableGALERegion reports a region holding a single token that is
// only a slug, like "str/mm/jvg" or "US-war-Iraq-checkpoint".
func isRemovableGALERegion(t []rune) bool {
	n := len(t)
	first := 0
	for first < n && isSpace(t[first]) {
		first++
	}
	if first == n {
		return false
	}
	var slash, hyphen, colon, nonLower bool
	next := n
	for i := first; i < n; i++ {
		c := t[i]
		if isSpace(c) {
			next = i
			break
		}
		switch {
		case c == '/':
			slash = true
		case c == '-':
			hyphen = true
		case c == ':':
			colon = true
		case unicode.IsLower(c) || isDigit(c):
		default:
			nonLower = true
		}
	}
	for i := next; i < n; i++ {
		if !isSpace(t[i]) {
			return false
		}
	}
	if slash && !hyphen && !nonLower {
		return true
	}
	// dates such as 2005-12-03T07:05:00
	if hyphen && colon {
		return false
	}
	return hyphen && !slash
}

func isRemovableGALESentence(text string) bool {
	return strings.HasPrefix(text, "ATTENTION -")
}
