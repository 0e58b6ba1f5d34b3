package sentbreak

// scanDefaultRegion is the fallback scanner: ellipses, periods followed by
// a space or quote, closing quotes, and failing those a cut every 200
// spaces.
func (s *scanner) scanDefaultRegion(int) error {
	st := s.st
	for st.Cursor < len(st.Text) {
		if s.limitReached() {
			s.truncate()
			return nil
		}
		p, ok := s.nextDefaultSentence()
		if !ok {
			continue
		}
		done, err := s.splitBySpaces(p)
		if err != nil {
			return err
		}
		if !done {
			s.push(p)
		}
	}
	return nil
}

func (s *scanner) nextDefaultSentence() (piece, bool) {
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

	stop := s.findEllipsisRun(start)
	if stop == start {
		stop = s.findTerminator(start)
	}
	if stop == start {
		stop = s.findClosingQuote(start)
	}
	if stop == start {
		stop = s.spacesForward(start, n, wordsPerChunk)
	}
	if stop <= start {
		stop = n
	}

	st.Cursor = stop
	end := stop
	for end > start && isSpace(t[end-1]) {
		end--
	}
	return piece{start: start, end: end}, true
}

// findEllipsisRun returns the index after the first run of two or more
// periods when the first period at or after start begins one.
func (s *scanner) findEllipsisRun(start int) int {
	t := s.st.Text
	first := indexOf(t, ".", start)
	if first == -1 || first+1 >= len(t) || t[first+1] != '.' {
		return start
	}
	last := first + 1
	for last+1 < len(t) && t[last+1] == '.' {
		last++
	}
	return last + 1
}

// findTerminator returns the index after a terminator and the rune after
// it, when that rune is a space, newline or quote and the word before a
// period is not a non-final abbreviation.
func (s *scanner) findTerminator(start int) int {
	t := s.st.Text
	for i := start; i+1 < len(t); i++ {
		if !s.chars.IsEOS(t[i]) {
			continue
		}
		if t[i] == '.' && s.isNonFinalAbbrev(s.wordBeforeSpace(i, start)) {
			continue
		}
		switch t[i+1] {
		case ' ', '\n', '"', '\'':
			return i + 2
		}
	}
	return start
}

// wordBeforeSpace returns the whitespace-delimited word ending at index,
// index included.
func (s *scanner) wordBeforeSpace(index, origin int) string {
	t := s.st.Text
	i := index - 1
	for i >= origin && !isSpace(t[i]) {
		i--
	}
	return string(t[i+1 : index+1])
}

func (s *scanner) findClosingQuote(start int) int {
	t := s.st.Text
	for _, q := range []string{`"`, "«"} {
		if i := indexOf(t, q, start); i > start {
			return i + 1
		}
	}
	return start
}
