package sentbreak

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// finishSentence runs a scanned English sentence through the table, list
// and long sentence splitters, stopping at the first that applies, and
// appends the result.
func (s *scanner) finishSentence(p piece) error {
	opts := s.b.opts
	done := false
	var err error
	if opts.breakTables() {
		if done, err = s.splitTable(p); err != nil {
			return err
		}
	}
	if !done && opts.BreakListSentences {
		if done, err = s.splitList(p); err != nil {
			return err
		}
	}
	if !done {
		if done, err = s.splitLong(p); err != nil {
			return err
		}
	}
	if !done {
		s.push(p)
	}
	return nil
}

// finishDateline emits a dateline piece, splitting it like a sentence when
// it is itself a list or too long.
func (s *scanner) finishDateline(p piece) error {
	if err := s.checkOverflow(1, "dateline"); err != nil {
		return err
	}
	if s.b.opts.BreakListSentences {
		done, err := s.splitList(p)
		if err != nil || done {
			return err
		}
	}
	done, err := s.splitLong(p)
	if err != nil || done {
		return err
	}
	s.push(p)
	return nil
}

// emitPieces appends the output of a splitter after checking the cap.
func (s *scanner) emitPieces(pieces []piece, splitter string) error {
	if err := s.checkOverflow(len(pieces), splitter); err != nil {
		return err
	}
	for _, q := range pieces {
		s.push(q)
	}
	return nil
}

// splitList splits p at every occurrence of its most frequent list
// separator when that separator occurs at least MinListSeparators times.
// Separators are dropped from the pieces.
func (s *scanner) splitList(p piece) (bool, error) {
	t := s.st.Text
	opts := s.b.opts
	counts := make(map[rune]int)
	for i := p.start; i < p.end; i++ {
		if opts.isListSeparator(t[i]) {
			counts[t[i]]++
		}
	}
	var sep rune
	best := 0
	for r, c := range counts {
		if c > best || (c == best && r < sep) {
			sep, best = r, c
		}
	}
	if best < opts.MinListSeparators {
		return false, nil
	}
	s.b.logger.Debug("Probable list sentence found",
		zap.Int("separators", best),
		zap.String("separator", string(sep)))

	var pieces []piece
	add := func(start, end int) {
		if q, ok := s.trimPiece(piece{start: start, end: end, tag: "list", lower: p.lower}); ok {
			pieces = append(pieces, q)
		}
	}
	start := p.start
	for i := p.start; i < p.end; i++ {
		if t[i] == sep {
			add(start, i)
			start = i + 1
		}
	}
	if start < p.end {
		add(start, p.end)
	}
	if len(pieces) == 0 {
		return false, nil
	}
	return true, s.emitPieces(pieces, "list")
}

// longSplitCount returns how many pieces p should become, or 0 when it is
// within budget.
func (s *scanner) longSplitCount(p piece) int {
	switch s.b.policy.long {
	case longByTokens:
		tb := s.countTokens(p.start, p.end)
		if tb <= s.b.opts.MaxTokenBreaks {
			return 0
		}
		return ceilDiv(tb, s.b.opts.MaxTokenBreaks)
	default:
		l := p.end - p.start
		if l <= s.b.maxChars {
			return 0
		}
		return ceilDiv(l, s.b.maxChars)
	}
}

// acceptable reports whether runes [start, end) need no further cutting.
func (s *scanner) acceptable(start, end int) bool {
	if end-start >= s.b.maxChars {
		return false
	}
	if s.b.policy.long == longByTokens {
		return s.countTokens(start, end) <= s.b.opts.MaxTokenBreaks
	}
	return true
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// splitLong cuts an over-budget sentence into roughly even pieces. Cut
// points prefer secondary terminators near the target, then whitespace,
// then any position a restricted span allows. A sentence within budget is
// left alone.
func (s *scanner) splitLong(p piece) (bool, error) {
	if s.b.policy.long == longBySpaces {
		return s.splitBySpaces(p)
	}
	n := s.longSplitCount(p)
	if n <= 1 {
		return false, nil
	}
	length := p.end - p.start
	avg := max(length/n, 1)
	s.b.logger.Debug("Breaking long sentence",
		zap.Int("chars", length),
		zap.Int("pieces", n))

	var pieces []piece
	add := func(start, end int) {
		if q, ok := s.trimPiece(piece{start: p.start + start, end: p.start + end, tag: p.tag, lower: p.lower}); ok {
			pieces = append(pieces, q)
		}
	}
	sentStart := 0
	cur := avg
	for cur < length {
		bp, ok := s.findBreakPoint(p.start, sentStart, cur, length)
		if !ok {
			return false, WrapErrorf(ErrNoBreakPoint, "within %d runes of offset %d", s.b.maxChars, s.region.DocOffset(p.start+cur))
		}
		add(sentStart, bp+1)
		sentStart = bp + 1
		cur = sentStart + avg
		if sentStart < length && s.acceptable(p.start+sentStart, p.end) {
			add(sentStart, length)
			sentStart = length
			break
		}
	}
	if sentStart < length {
		add(sentStart, length)
	}
	if len(pieces) <= 1 {
		return false, nil
	}
	return true, s.emitPieces(pieces, "long")
}

// findBreakPoint searches outward from cur for a cut point, relative to
// base. The rune at the returned index ends its piece.
func (s *scanner) findBreakPoint(base, sentStart, cur, length int) (int, bool) {
	t := s.st.Text
	maxChars := s.b.maxChars
	passes := []struct {
		name   string
		window int
		accept func(rune) bool
	}{
		{"punctuation", 100, s.chars.IsSecondary},
		{"whitespace", -1, isSpace},
		{"random", -1, func(rune) bool { return true }},
	}
	for _, pass := range passes {
		if pass.name == "random" {
			s.b.logger.Warn("Could not find good break point, breaking at random")
		}
		for w := 0; pass.window < 0 || w < pass.window; w++ {
			left, right := cur-w, cur+w
			if left <= sentStart && (right >= length || right-sentStart+1 > maxChars) {
				break
			}
			if left > sentStart && pass.accept(t[base+left]) && !s.restricted(base+left+1) {
				return left, true
			}
			if right < length && right-sentStart+1 <= maxChars && pass.accept(t[base+right]) && !s.restricted(base+right+1) {
				return right, true
			}
		}
	}
	return 0, false
}

// wordsPerChunk is the number of spaces per piece when the fallback policy
// cuts an overlong sentence.
const wordsPerChunk = 200

// splitBySpaces cuts p every wordsPerChunk spaces when it exceeds the
// character budget.
func (s *scanner) splitBySpaces(p piece) (bool, error) {
	if p.end-p.start <= s.b.maxChars {
		return false, nil
	}
	var pieces []piece
	start := p.start
	for start < p.end {
		stop := s.spacesForward(start, p.end, wordsPerChunk)
		if q, ok := s.trimPiece(piece{start: start, end: stop, tag: p.tag}); ok {
			pieces = append(pieces, q)
		}
		start = stop
	}
	if len(pieces) <= 1 {
		return false, nil
	}
	return true, s.emitPieces(pieces, "long")
}

// spacesForward returns the index of the count-th space after start, or
// limit when there are fewer.
func (s *scanner) spacesForward(start, limit, count int) int {
	t := s.st.Text
	stop := start
	for found := 0; found < count; found++ {
		i := stop + 1
		for i < limit && t[i] != ' ' {
			i++
		}
		if i >= limit {
			return limit
		}
		stop = i
	}
	return stop
}

// splitTable detects tabular text inside an over-budget sentence. Each
// rune is reduced to a class (whitespace, digit, frequent punctuation or
// word), the most common repeating class pattern becomes a row template,
// and the sentence is cut at every row match when there are at least
// MinTableRows rows.
func (s *scanner) splitTable(p piece) (bool, error) {
	opts := s.b.opts
	if s.countTokens(p.start, p.end) <= opts.MaxTokenBreaks {
		return false, nil
	}
	text := s.st.Text[p.start:p.end]

	classes := characterClasses(text)
	pattern := rowTemplate(classes, opts.MinTableRows)
	if pattern == "" {
		return false, nil
	}
	rowRe, err := regexp.Compile(pattern)
	if err != nil {
		s.b.logger.Debug("Unusable table row pattern", zap.String("pattern", pattern), zap.Error(err))
		return false, nil
	}

	str := string(text)
	byteToRune := runeIndex(str)
	var rows [][2]int
	prevEnd := 0
	for _, loc := range rowRe.FindAllStringIndex(str, -1) {
		start, end := byteToRune[loc[0]], byteToRune[loc[1]]
		if start != prevEnd {
			rows = append(rows, [2]int{prevEnd, start})
		}
		rows = append(rows, [2]int{start, end})
		prevEnd = end
	}
	if prevEnd < len(text) {
		rows = append(rows, [2]int{prevEnd, len(text)})
	}
	if len(rows) < opts.MinTableRows {
		return false, nil
	}
	if opts.SkipTableSentences {
		s.b.logger.Debug("Skipping probable table", zap.Int("rows", len(rows)))
		return true, nil
	}
	s.b.logger.Debug("Probable table found", zap.Int("rows", len(rows)), zap.String("pattern", pattern))

	pieces := make([]piece, 0, len(rows))
	for _, r := range rows {
		if q, ok := s.trimPiece(piece{start: p.start + r[0], end: p.start + r[1], tag: "table", lower: p.lower}); ok {
			pieces = append(pieces, q)
		}
	}
	return true, s.emitPieces(pieces, "table")
}

// characterClasses maps text to a run-length compressed class string:
// 's' whitespace, 'd' digit, 'w' word, and frequent punctuation as itself.
func characterClasses(text []rune) []rune {
	counts := make(map[rune]int)
	sum := 0
	for _, r := range text {
		if isPunct(r) {
			counts[r]++
			sum++
		}
	}
	common := make(map[rune]bool)
	if len(counts) > 0 {
		avg := sum / len(counts)
		for r, c := range counts {
			if c > avg {
				common[r] = true
			}
		}
	}

	var out []rune
	for _, r := range text {
		var class rune
		switch {
		case isSpace(r):
			class = 's'
		case isDigit(r):
			class = 'd'
		case common[r]:
			class = r
		default:
			class = 'w'
		}
		if len(out) == 0 || out[len(out)-1] != class {
			out = append(out, class)
		}
	}
	return out
}

// rowTemplate finds the class pattern whose frequency jumps most sharply
// between adjacent lengths and returns it as a regular expression, or ""
// when there is none.
func rowTemplate(classes []rune, minRows int) string {
	const minLen = 4
	maxLen := ceilDiv(len(classes), minRows)
	if maxLen-2 < minLen {
		return ""
	}

	freq := make(map[string]int)
	for i := range classes {
		for l := minLen; l < maxLen && i+l < len(classes); l++ {
			freq[string(classes[i:i+l])]++
		}
	}
	best := make([]string, maxLen)
	bestCount := make([]int, maxLen)
	for k, c := range freq {
		l := utf8.RuneCountInString(k)
		if c > bestCount[l] || (c == bestCount[l] && k < best[l]) {
			best[l], bestCount[l] = k, c
		}
	}

	prefix := ""
	maxDiff := minRows
	for l := maxLen - 2; l >= minLen; l-- {
		diff := bestCount[l] - bestCount[l+1]
		if diff < 0 {
			diff = -diff
		}
		if diff <= maxDiff {
			continue
		}
		contained := strings.Contains(prefix, best[l])
		halfLength := float64(utf8.RuneCountInString(best[l])) > float64(utf8.RuneCountInString(prefix))*0.5
		if !contained || halfLength {
			maxDiff = diff
			prefix = best[l]
		}
	}
	prefix = strings.Trim(prefix, "s")
	if prefix == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range prefix {
		switch r {
		case 'w', 'd':
			b.WriteString(`[\pL\pN_]+`)
		case 's':
			b.WriteString(`\s+`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// runeIndex maps every byte offset of a rune boundary in str, plus
// len(str), to its rune index.
func runeIndex(str string) map[int]int {
	idx := make(map[int]int, len(str)+1)
	n := 0
	for i := range str {
		idx[i] = n
		n++
	}
	idx[len(str)] = n
	return idx
}
