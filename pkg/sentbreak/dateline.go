package sentbreak

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// punctuatedLeads are markers that end a dateline or slug near the start
// of a sentence.
func punctuatedLeads() []string {
	return []string{":", "--", " / ", "==", "——", " - ", " — ", "•", " * "}
}

// parenPairs delimit parenthetical datelines such as "(AP)" or "/AzerTaC/".
func parenPairs() [][2]string {
	return [][2]string{{"(", ")"}, {"[", "]"}, {" /", "/ "}}
}

func isMonth(word string) bool {
	switch strings.ToLower(word) {
	case "january", "february", "march", "april", "may", "june", "july",
		"august", "september", "october", "november", "december":
		return true
	}
	return false
}

// datelineSentences breaks leading dateline and byline material off the
// text at the cursor, emitting each piece as its own sentence, and leaves
// the cursor after the last piece.
func (s *scanner) datelineSentences() error {
	if s.b.opts.DatelineMode == DatelineNone {
		return nil
	}
	t := s.st.Text
	n := len(t)
	start := s.st.Cursor
	for {
		// never break past where plain scanning would end this sentence
		maxEnd := s.dryRunEnd(start)
		for start < n && isSpace(t[start]) {
			start++
		}
		end, err := s.breakOffDatelines(start, maxEnd)
		if err != nil {
			return err
		}
		if end == start {
			break
		}
		start = end
	}

	if start == 0 {
		for pos := 0; pos < min(n, 50); pos++ {
			if s.matchWireDateline(pos) {
				if err := s.finishDateline(piece{start: 0, end: pos + 1}); err != nil {
					return err
				}
				start = pos + 1
				break
			}
		}
	}
	s.st.Cursor = start
	return nil
}

// dryRunEnd returns where nextSentence would leave the cursor from start,
// without touching the live scan state.
func (s *scanner) dryRunEnd(start int) int {
	saved := s.st
	s.st = saved.clone()
	s.st.Cursor = start
	s.nextSentence()
	end := s.st.Cursor
	s.st = saved
	return end
}

// breakOffDatelines collects the earliest candidate breaks at or after
// start and emits the pieces between them. It returns the new start.
func (s *scanner) breakOffDatelines(start, maxEnd int) (int, error) {
	var breaks []int
	earlier := func(r []int) bool {
		return len(r) > 0 && (len(breaks) == 0 || r[0] < breaks[0])
	}

	for _, punct := range punctuatedLeads() {
		if r := s.findPunctuatedLead(start, maxEnd, punct); earlier(r) {
			breaks = r
		}
	}
	if r := s.findBuriedByline(start, maxEnd); earlier(r) {
		breaks = r
	}
	if r := s.findOtherLead(start, maxEnd); earlier(r) {
		breaks = r
	}
	for _, pair := range parenPairs() {
		r := s.findParentheticalDateline(start, maxEnd, pair[0], pair[1])
		// a pair opening at start only wins if it closes before the others
		if len(r) > 1 && r[0] == start {
			if len(breaks) == 0 || r[1] < breaks[0] {
				breaks = r
			}
		} else if earlier(r) {
			breaks = r
		}
	}
	sort.Ints(breaks)

	t := s.st.Text
	for _, b := range breaks {
		if b > maxEnd || b == start {
			continue
		}
		if onlySpaceFrom(t, b, len(t)-1) {
			break
		}
		if p, ok := s.trimPiece(piece{start: start, end: b}); ok {
			if err := s.finishDateline(p); err != nil {
				return start, err
			}
		}
		start = b
	}
	return start, nil
}

// findPunctuatedLead breaks after punct when it sits within 40 runes of
// start. Very aggressive mode widens the window and also breaks before an
// all-caps run that precedes the marker.
func (s *scanner) findPunctuatedLead(start, maxEnd int, punct string) []int {
	mode := s.b.opts.DatelineMode
	if mode < DatelineAggressive {
		return nil
	}
	t := s.st.Text
	n := len(t)
	punctLen := utf8.RuneCountInString(punct)

	limit := 40
	if punct == " * " {
		limit = maxEnd
	}
	if mode >= DatelineVeryAggressive {
		switch punct {
		case ":":
			limit = maxEnd
		case "--":
			limit = 60
		}
	}

	pos := indexOf(t, punct, start)
	if pos == -1 || pos == start || pos >= maxEnd {
		return nil
	}
	// times like 3:30
	if punct == ":" && pos > 0 && isDigit(t[pos-1]) && pos+1 < n && isDigit(t[pos+1]) {
		return nil
	}
	prev := s.prevToken(pos, false)
	next := s.nextToken(pos+punctLen, false)
	if punct == ":" && strings.Contains(strings.ToLower(prev), "http") {
		return nil
	}

	var breaks []int
	good := pos < limit+start
	if mode >= DatelineVeryAggressive {
		if r, _ := utf8.DecodeRuneInString(next); next != "" && s.st.isExplicitlyUppercase(r) {
			good = true
		}
		if good && s.isAllUppercaseWord(prev) && !strings.ContainsAny(prev, ")]") {
			upper := pos
			for upper > 0 && !isDigit(t[upper]) && !unicode.IsLower(t[upper]) {
				upper--
			}
			if upper > start {
				for upper < pos && !isSpace(t[upper]) {
					upper++
				}
				if upper > start+1 && upper < pos && t[upper-1] != ',' {
					breaks = append(breaks, upper)
				}
			}
		}
	}
	if !good {
		return nil
	}
	if punct == " * " {
		breaks = append(breaks, pos)
	}
	return append(breaks, pos+punctLen)
}

// findOtherLead finds Factiva report headers, "<day> <month>" leads and
// rarely capitalized words that start a new sentence. Very aggressive
// mode only.
func (s *scanner) findOtherLead(start, maxEnd int) []int {
	if s.b.opts.DatelineMode < DatelineVeryAggressive {
		return nil
	}
	t := s.st.Text
	earliest := maxEnd

	const newsAgency, webSite = "news agency", "web site"
	if report := indexOf(t, "Text of report", start); report != -1 && report < earliest {
		agency := indexOf(t, newsAgency, report)
		if agency != -1 && agency-report < 50 && agency < earliest {
			site := indexOf(t, webSite, agency)
			if site != -1 && site-agency < 50 && site < earliest {
				// Text of report by Angolan news agency Angop web site Ecunha, 17 January
				if s.nextToken(site+len(webSite), true) != "on" {
					earliest = site + len(webSite)
				}
			} else if comma := indexOf(t, ",", agency); comma != -1 && comma < earliest && comma-agency < 50 {
				// Text of report by Indian news agency PTI Beijing, 15 January:
				words := strings.Split(strings.TrimSpace(string(t[agency+len(newsAgency):comma])), " ")
				if len(words) == 2 {
					earliest = indexOf(t, words[1], agency)
				}
			}
		}
	}

	for d := 1; d <= 31; d++ {
		day := strconv.Itoa(d)
		idx := indexOf(t, day, start)
		if idx == -1 || idx >= earliest {
			continue
		}
		after := idx + len(day)
		month := s.nextToken(after, true)
		if !isMonth(month) || strings.ContainsAny(s.nextToken(after, false), ")]") {
			continue
		}
		at := indexOf(t, month, idx) + utf8.RuneCountInString(month)
		if at >= maxEnd {
			continue
		}
		if following := s.nextToken(at, true); following != "" {
			r, _ := utf8.DecodeRuneInString(following)
			if unicode.IsUpper(r) || r == ':' || r == '-' {
				earliest = at
			}
		}
	}

	for _, rcw := range s.b.rarelyCap {
		idx := indexOf(t, rcw, start)
		if idx <= 0 || idx >= earliest {
			continue
		}
		prev := s.prevToken(idx, false)
		if prev == "" || strings.Contains(prev, ",") || strings.Contains(prev, "``") || prev == "of" {
			continue
		}
		if (prev == "daily" || prev == "newspaper") && (rcw == " THE " || rcw == " The ") {
			continue
		}
		next := s.nextToken(idx+utf8.RuneCountInString(rcw), false)
		if r, _ := utf8.DecodeRuneInString(next); next == "" || unicode.IsUpper(r) {
			continue
		}
		earliest = idx
	}

	if earliest != maxEnd {
		return []int{earliest}
	}
	return nil
}

func isPossibleNameWord(word string) bool {
	if word == "" {
		return false
	}
	if r, _ := utf8.DecodeRuneInString(word); unicode.IsUpper(r) {
		return true
	}
	if strings.HasPrefix(word, "al") {
		return true
	}
	switch word {
	case "de", "la", "les", "del":
		return true
	}
	return false
}

func isReporterWord(word string) bool {
	lw := strings.ToLower(word)
	for _, prefix := range []string{"writer", "correspondent", "reporter", "editor"} {
		if strings.HasPrefix(lw, prefix) {
			return true
		}
	}
	return false
}

// splitAny splits s at every rune in seps. Adjacent separators yield empty
// fields, so field positions follow the separators one to one.
func splitAny(s, seps string) []string {
	var out []string
	last := 0
	for i, r := range s {
		if strings.ContainsRune(seps, r) {
			out = append(out, s[last:i])
			last = i + utf8.RuneLen(r)
		}
	}
	return append(out, s[last:])
}

// findBuriedByline finds "By First Last" runs inside the lead and breaks
// before and, when the end is determinable, after them. Very aggressive
// mode only.
func (s *scanner) findBuriedByline(start, maxEnd int) []int {
	if s.b.opts.DatelineMode < DatelineVeryAggressive {
		return nil
	}
	t := s.st.Text
	byPos := indexOf(t, "By ", start)
	if byPos == -1 {
		byPos = indexOf(t, "Posted by ", start)
	}
	lowercaseBy := false
	if byPos == -1 {
		byPos = indexOf(t, "by ", start)
		lowercaseBy = true
	}
	if byPos == -1 || byPos >= maxEnd {
		return nil
	}
	byString := string(t[byPos:])

	// a byline alone on its line
	if nl := strings.IndexByte(byString, '\n'); nl >= 0 && (byPos == 0 || t[byPos-1] == '\n') {
		line := splitAny(byString[:nl], " \t")
		if len(line) >= 3 && len(line) < 6 {
			names := true
			for _, w := range line[1:] {
				if !isPossibleNameWord(w) {
					names = false
					break
				}
			}
			if names {
				last := line[len(line)-1]
				return []int{byPos, indexOf(t, last, byPos) + utf8.RuneCountInString(last)}
			}
		}
	}
	if lowercaseBy {
		return nil
	}

	special := "Of DOW JONES NEWSWIRES"
	sp := indexOf(t, special, 0)
	if sp == -1 {
		special = "Of THE WALL STREET JOURNAL"
		sp = indexOf(t, special, 0)
	}
	if sp > byPos {
		return []int{byPos, sp + utf8.RuneCountInString(special)}
	}

	words := splitAny(byString, " \t\n")
	if len(words) < 2 {
		return nil
	}
	nameUpper := s.isAllUppercaseWord(words[1])
	split, reporter, inName := -1, -1, 0
scan:
	for i := 1; i < len(words) && i < 10; i++ {
		w := words[i]
		if w == "A" || w == "The" {
			split = i
			break
		}
		if !nameUpper && s.isAllUppercaseWord(w) {
			// skip initials like "J."
			if r := []rune(w); len(r) > 1 && r[1] != '.' {
				if strings.Contains(w, ",") || inName < 4 || reporter != -1 {
					split = i
				}
				break
			}
		}
		if w == "Of" || w == "In" {
			break
		}
		switch {
		case isReporterWord(w):
			reporter = i
		case w == "and":
			inName = 0
		case !isPossibleNameWord(w):
			break scan
		}
		inName++
	}
	if split == -1 && reporter > 1 {
		split = reporter + 1
	}
	if len(words) < 6 || split >= len(words) {
		return []int{byPos}
	}
	if split != -1 {
		return []int{byPos, indexOf(t, words[split], byPos)}
	}
	return nil
}

// findParentheticalDateline breaks around a bracketed dateline marker such
// as "(AP)", "[ATTN: Adds image]" or " /AzerTaC/ ".
func (s *scanner) findParentheticalDateline(start, maxEnd int, left, right string) []int {
	if s.b.opts.IgnoreParentheticals {
		return nil
	}
	t := s.st.Text
	lp := indexOf(t, left, start)
	if lp == -1 || lp+1 >= len(t) || lp > maxEnd {
		return nil
	}
	rp := indexOf(t, right, lp+1)
	if rp == -1 {
		return nil
	}
	// probably a copyright sign
	if indexOf(t, "(c)", 0) == lp {
		return nil
	}

	good := lp == 0 || lp == 1
	following := s.nextToken(rp+1, false)
	followingWord := s.nextToken(rp+1, true)
	if r, _ := utf8.DecodeRuneInString(following); !good && following != "" && s.st.isExplicitlyLowercase(r) {
		return nil
	}

	markers := s.b.lists.DatelineParentheticals
	if markers.Contains(s.nextToken(lp+1, false)) || markers.Contains(s.nextToken(lp+1, true)) {
		good = true
	}

	if !good && s.b.opts.DatelineMode >= DatelineAggressive {
		if r, _ := utf8.DecodeRuneInString(following); following != "" && (r == '-' || r == '_') {
			good = true
		}
		if followingWord == "The" || followingWord == "A" {
			good = true
		}
		inner := strings.ToLower(string(t[lp+1 : rp]))
		if strings.HasPrefix(inner, "&quot;") && left == "[" {
			good = true
		}
		if strings.HasPrefix(inner, "id:") || inner == "sports" {
			good = true
		}
		for _, kw := range []string{"headline", "translated", "transcribed", "times", "herald",
			"post", "news", "part 1", "part 2", "the universal", "daily", "journal"} {
			if strings.Contains(inner, kw) {
				good = true
				break
			}
		}
	}
	if !good {
		return nil
	}
	return []int{lp, rp + 1}
}

// matchWireDateline matches the old wire format ending a dateline with a
// hyphen followed by three line breaks.
func (s *scanner) matchWireDateline(pos int) bool {
	t := s.st.Text
	n := len(t)
	if pos >= n || t[pos] != '-' {
		return false
	}
	pos++
	for lines := 0; lines < 3; lines++ {
		for pos < n && t[pos] != '\n' && isSpace(t[pos]) {
			pos++
		}
		if pos >= n || t[pos] != '\n' {
			return false
		}
		pos++
	}
	return true
}

// nextToken returns the whitespace-delimited token at or after pos. With
// lettersOnly it also stops at punctuation.
func (s *scanner) nextToken(pos int, lettersOnly bool) string {
	t := s.st.Text
	for pos < len(t) && isSpace(t[pos]) {
		pos++
	}
	end := pos
	for end < len(t) && !isSpace(t[end]) && !(lettersOnly && isPunct(t[end])) {
		end++
	}
	return string(t[pos:end])
}

// prevToken returns the token ending before pos.
func (s *scanner) prevToken(pos int, lettersOnly bool) string {
	t := s.st.Text
	i := pos - 1
	for i >= 0 && isSpace(t[i]) {
		i--
	}
	end := i + 1
	for i >= 0 && !isSpace(t[i]) && !(lettersOnly && isPunct(t[i])) {
		i--
	}
	return string(t[i+1 : end])
}
