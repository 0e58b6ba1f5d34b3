package sentbreak

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shoppingList = "We need eggs; milk; bread; butter; jam; tea; rice; beans; salt; sugar; flour; oil; soap; honey; cheese."

func listOptions(minSeparators int) Options {
	opts := DefaultOptions()
	opts.BreakListSentences = true
	opts.ListSeparators = ";"
	opts.MinListSeparators = minSeparators
	return opts
}

func TestListSplitting(t *testing.T) {
	b := newEnglish(t, listOptions(10))
	sents, err := b.Segment(context.Background(), textDoc(shoppingList), 0)
	require.NoError(t, err)
	require.Len(t, sents, 15)
	assert.Equal(t, "We need eggs", sents[0].Text)
	assert.Equal(t, "milk", sents[1].Text)
	assert.Equal(t, "cheese.", sents[14].Text)
	for i, s := range sents {
		assert.Equal(t, "list", s.Tag)
		assert.Equal(t, i, s.No)
		assert.NotContains(t, s.Text, ";")
	}
}

func TestListBelowThresholdIsKept(t *testing.T) {
	b := newEnglish(t, listOptions(20))
	sents, err := b.Segment(context.Background(), textDoc(shoppingList), 0)
	require.NoError(t, err)
	require.Len(t, sents, 1)
	assert.Equal(t, shoppingList, sents[0].Text)
	assert.Empty(t, sents[0].Tag)
}

func TestListOverflowFails(t *testing.T) {
	b := newEnglish(t, listOptions(10))
	_, err := b.Segment(context.Background(), textDoc(shoppingList), 5)
	require.Error(t, err)
	assert.True(t, IsTooManySentences(err))

	var tooMany *TooManySentencesError
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, "list", tooMany.Splitter)
	assert.Equal(t, 15, tooMany.Count)
	assert.Equal(t, 5, tooMany.Max)
}

func longText(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ") + "."
}

func TestLongSentenceSplitByTokens(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTokenBreaks = 10
	b := newEnglish(t, opts)

	text := longText(50)
	sents, err := b.Segment(context.Background(), textDoc(text), 0)
	require.NoError(t, err)
	require.Greater(t, len(sents), 1)

	var words []string
	prevEnd := 0
	for _, s := range sents {
		assert.GreaterOrEqual(t, s.Start, prevEnd)
		prevEnd = s.End
		words = append(words, strings.Fields(s.Text)...)
	}
	assert.Equal(t, strings.Fields(text), words)
}

func TestLongSentenceOverflowFails(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTokenBreaks = 10
	b := newEnglish(t, opts)

	_, err := b.Segment(context.Background(), textDoc(longText(50)), 2)
	var tooMany *TooManySentencesError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, "long", tooMany.Splitter)
}

func TestLongSplitRespectsCharBudgetAndIsStable(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSentenceChars = 40
	b, err := New(Korean(), opts, WordLists{}, nil)
	require.NoError(t, err)

	text := strings.Repeat("alpha beta gamma delta ", 8)
	sents, err := b.Segment(context.Background(), textDoc(text), 0)
	require.NoError(t, err)
	require.Greater(t, len(sents), 1)

	var words []string
	for _, s := range sents {
		assert.LessOrEqual(t, s.Len(), 40)
		words = append(words, strings.Fields(s.Text)...)

		again, err := b.Segment(context.Background(), textDoc(s.Text), 0)
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, s.Text, again[0].Text)
	}
	assert.Equal(t, strings.Fields(text), words)
}

func TestLongSplitFailsWhenFullyRestricted(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSentenceChars = 10
	b, err := New(Korean(), opts, WordLists{}, nil)
	require.NoError(t, err)

	text := strings.Repeat("abcdefghij", 3)
	doc := textDoc(text)
	doc.Metadata.Restrict(0, len(text)-1, "quote")

	_, err = b.Segment(context.Background(), doc, 0)
	require.Error(t, err)
	assert.True(t, IsNoBreakPoint(err))
}

func TestCharacterClasses(t *testing.T) {
	assert.Equal(t, "wsdwsw", string(characterClasses([]rune("ab 12, cd"))))
	assert.Equal(t, "wsw", string(characterClasses([]rune("plain  words"))))
	// a frequent separator keeps its own class
	assert.Equal(t, "d|d|d|dwd", string(characterClasses([]rune("1|2|3|4,5"))))
}

func TestRowTemplateNeedsEnoughClasses(t *testing.T) {
	assert.Empty(t, rowTemplate([]rune("wsdsw"), 20))
}

func TestTableSkipLeavesShortSentences(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipTableSentences = true
	b := newEnglish(t, opts)

	sents, err := b.Segment(context.Background(), textDoc("First one here. Second one here."), 0)
	require.NoError(t, err)
	assert.Len(t, sents, 2)
}
