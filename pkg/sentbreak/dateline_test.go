package sentbreak

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datelineBreaker(t *testing.T, mode DatelineMode) *Breaker {
	t.Helper()
	opts := DefaultOptions()
	opts.DatelineMode = mode
	return newEnglish(t, opts)
}

func TestParentheticalDateline(t *testing.T) {
	b := datelineBreaker(t, DatelineConservative)
	sents, err := b.Segment(context.Background(), textDoc("WASHINGTON (AP) - The president spoke today. He left."), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"WASHINGTON",
		"(AP)",
		"- The president spoke today.",
		"He left.",
	}, texts(sents))
}

func TestDatelineDisabled(t *testing.T) {
	b := datelineBreaker(t, DatelineNone)
	sents, err := b.Segment(context.Background(), textDoc("WASHINGTON (AP) - The president spoke today."), 0)
	require.NoError(t, err)
	assert.Len(t, sents, 1)
}

func TestWireDateline(t *testing.T) {
	b := datelineBreaker(t, DatelineConservative)
	sents, err := b.Segment(context.Background(), textDoc("NEW YORK -\n\n\nStocks fell today."), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW YORK -", "Stocks fell today."}, texts(sents))

	s := scannerFor(b, "NEW YORK -\n\nStocks fell today.")
	assert.False(t, s.matchWireDateline(9), "two line breaks are not a wire dateline")
}

func TestPunctuatedLead(t *testing.T) {
	b := datelineBreaker(t, DatelineAggressive)
	sents, err := b.Segment(context.Background(), textDoc("LONDON: Prices rose sharply today."), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"LONDON:", "Prices rose sharply today."}, texts(sents))

	conservative := datelineBreaker(t, DatelineConservative)
	sents, err = conservative.Segment(context.Background(), textDoc("LONDON: Prices rose sharply today."), 0)
	require.NoError(t, err)
	assert.Len(t, sents, 1)
}

func TestBylineOnItsOwnLine(t *testing.T) {
	b := datelineBreaker(t, DatelineVeryAggressive)
	sents, err := b.Segment(context.Background(), textDoc("By John Smith\nThe mayor spoke today."), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"By John Smith", "The mayor spoke today."}, texts(sents))
}

func TestDatelineOverflowFails(t *testing.T) {
	b := datelineBreaker(t, DatelineConservative)
	_, err := b.Segment(context.Background(), textDoc("WASHINGTON (AP) - The president spoke today."), 1)
	var tooMany *TooManySentencesError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, "dateline", tooMany.Splitter)
}

func TestTokens(t *testing.T) {
	b := datelineBreaker(t, DatelineConservative)
	s := scannerFor(b, "foo  bar (AP) baz")
	assert.Equal(t, "bar", s.nextToken(3, false))
	assert.Equal(t, "(AP)", s.nextToken(8, false))
	assert.Equal(t, "AP", s.nextToken(10, true))
	assert.Equal(t, "bar", s.prevToken(8, false))
	assert.Equal(t, "foo", s.prevToken(3, false))
}

func TestIsMonth(t *testing.T) {
	assert.True(t, isMonth("January"))
	assert.True(t, isMonth("MAY"))
	assert.False(t, isMonth("Monday"))
}

func TestParseDatelineMode(t *testing.T) {
	for _, m := range []DatelineMode{DatelineNone, DatelineConservative, DatelineAggressive, DatelineVeryAggressive} {
		got, err := ParseDatelineMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseDatelineMode("")
	require.NoError(t, err)
	assert.Equal(t, DatelineNone, got)

	_, err = ParseDatelineMode("extreme")
	assert.True(t, IsConfigError(err))
}

func TestSplitAnyKeepsEmptyFields(t *testing.T) {
	assert.Equal(t, []string{"By", "", "John", "Smith"}, splitAny("By  John\tSmith", " \t"))
	assert.Equal(t, []string{"", "By", ""}, splitAny(" By ", " "))
	assert.Equal(t, []string{"a", "b", "", "c"}, splitAny("a b\n\nc", " \t\n"))
	assert.Equal(t, []string{""}, splitAny("", " "))
}
