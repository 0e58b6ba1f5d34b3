package sentbreak

import (
	"strings"
	"unicode"
)

// CharTable lists the punctuation classes of a language. Openers and
// Closers are parallel: the closer for an opener sits at the same rune
// position.
type CharTable struct {
	EOS       string
	Secondary string
	Split     string
	Openers   string
	Closers   string
	Bullets   string
}

func englishChars() CharTable {
	return CharTable{
		EOS:       ".?!",
		Secondary: ";,",
		Split:     "?!",
		Openers:   "(`'[{\"‘“`",
		Closers:   ")'']}\"’”´",
		Bullets:   "-",
	}
}

func defaultChars() CharTable {
	return CharTable{EOS: ".?!", Secondary: ",;"}
}

func chineseChars() CharTable {
	return CharTable{
		EOS:       "。！？.!?",
		Secondary: "，、；,;",
		Split:     "！？!?",
		Openers:   "“‘「『（《〈【(",
		Closers:   "”’」』）》〉】)",
	}
}

// Korean leaves the ASCII period to the final period heuristics.
func koreanChars() CharTable {
	return CharTable{
		EOS:       "!?．！？",
		Secondary: "，；",
		Split:     "!?！？",
	}
}

func japaneseChars() CharTable {
	return CharTable{
		EOS:       "。．！？!?",
		Secondary: "、，；",
		Split:     "！？!?",
		Openers:   "「『（【〈《(",
		Closers:   "」』）】〉》)",
	}
}

func (t *CharTable) IsEOS(r rune) bool       { return strings.ContainsRune(t.EOS, r) }
func (t *CharTable) IsSecondary(r rune) bool { return strings.ContainsRune(t.Secondary, r) }
func (t *CharTable) IsSplit(r rune) bool     { return strings.ContainsRune(t.Split, r) }
func (t *CharTable) IsOpening(r rune) bool   { return strings.ContainsRune(t.Openers, r) }
func (t *CharTable) IsClosing(r rune) bool   { return strings.ContainsRune(t.Closers, r) }
func (t *CharTable) IsBullet(r rune) bool    { return strings.ContainsRune(t.Bullets, r) }

// IsEOL reports a line break rune.
func (t *CharTable) IsEOL(r rune) bool { return r == '\n' || r == '\r' }

// IsWordChar reports runes that can belong to a word ending at a period.
// The period itself is a word char.
func (t *CharTable) IsWordChar(r rune) bool {
	return !unicode.IsSpace(r) && !t.IsSplit(r) && !t.IsClosing(r)
}

// MatchingCloser returns the closer paired with the first occurrence of
// opener in the openers table.
func (t *CharTable) MatchingCloser(opener rune) (rune, bool) {
	pos := -1
	i := 0
	for _, r := range t.Openers {
		if r == opener {
			pos = i
			break
		}
		i++
	}
	if pos < 0 {
		return 0, false
	}
	i = 0
	for _, r := range t.Closers {
		if i == pos {
			return r, true
		}
		i++
	}
	return 0, false
}

// IsRoman reports runes used in list numbering with roman numerals.
func IsRoman(r rune) bool {
	switch r {
	case 'I', 'V', 'X', 'L', 'C', 'D', 'M', 'i', 'v', 'x':
		return true
	}
	return false
}

// isPunct mirrors iswpunct: printable, not alphanumeric, not space.
func isPunct(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }

func isSpace(r rune) bool { return unicode.IsSpace(r) }

func isDigit(r rune) bool { return unicode.IsDigit(r) }

func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// IsListMarkerAt reports whether text at pos starts with a list item
// marker such as "A.", "1.", "1A.", "IV.", "(1)" or "(A)".
func IsListMarkerAt(text []rune, pos int) bool {
	n := len(text)
	if pos >= n {
		return false
	}
	if text[pos] == '(' {
		pos++
		if pos >= n {
			return false
		}
		switch {
		case isDigit(text[pos]):
			for pos < n && isDigit(text[pos]) {
				pos++
			}
		case unicode.IsLetter(text[pos]):
			pos++
		default:
			return false
		}
		return pos < n && text[pos] == ')'
	}
	switch {
	case isDigit(text[pos]):
		for pos < n && isDigit(text[pos]) {
			pos++
		}
		if pos < n && unicode.IsLetter(text[pos]) {
			pos++
		}
	case IsRoman(text[pos]):
		for pos < n && IsRoman(text[pos]) {
			pos++
		}
	case unicode.IsLetter(text[pos]):
		pos++
	default:
		return false
	}
	return pos < n && (text[pos] == '.' || text[pos] == ')')
}
