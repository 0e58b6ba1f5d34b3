package sentbreak

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/sentbreak/pkg/document"
	"github.com/japaniel/sentbreak/pkg/wordset"
)

func testLists() WordLists {
	return WordLists{
		NonFinalAbbrevs:        wordset.Build([]string{"dr", "mr", "mrs", "st", "gen", "prof"}, false),
		NoSplitAbbrevs:         wordset.Build([]string{"Mass. Ave"}, false),
		KnownWords:             wordset.Build([]string{"and", "the", "arrived", "here"}, false),
		LowercaseHeadlineWords: wordset.Build([]string{"of", "in", "and", "the", "for", "to"}, false),
		DatelineParentheticals: wordset.Build([]string{"ap", "afp", "reuters"}, false),
		RarelyCapitalizedWords: wordset.Build([]string{"the", "a"}, true),
	}
}

func newEnglish(t *testing.T, opts Options) *Breaker {
	t.Helper()
	b, err := New(English(), opts, testLists(), nil)
	require.NoError(t, err)
	return b
}

func textDoc(regions ...string) *document.Document {
	doc := document.New(document.SourceNewswire)
	for _, r := range regions {
		doc.AddRegion(document.TagText, r)
	}
	return doc
}

func texts(sents []document.Sentence) []string {
	out := make([]string, len(sents))
	for i, s := range sents {
		out[i] = s.Text
	}
	return out
}

// scannerFor prepares a scanner positioned at the start of text, for
// predicate tests.
func scannerFor(b *Breaker, text string) *scanner {
	doc := textDoc(text)
	s := &scanner{b: b, chars: &b.policy.Chars, doc: doc, st: newScanState(doc, b.opts)}
	s.docWebText = s.st.WebText
	s.beginRegion(0, doc.Regions[0])
	return s
}

func TestNewRequiresEnglishLists(t *testing.T) {
	_, err := New(English(), DefaultOptions(), WordLists{}, nil)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), ListNonFinalAbbrevs)

	lists := testLists()
	lists.RarelyCapitalizedWords = nil
	_, err = New(English(), DefaultOptions(), lists, nil)
	assert.True(t, IsConfigError(err))
}

func TestNewRejectsZeroPolicy(t *testing.T) {
	_, err := New(Policy{}, DefaultOptions(), WordLists{}, nil)
	assert.True(t, IsConfigError(err))
}

func TestNewValidatesOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipHeadlines = true
	opts.DowncaseHeadlines = true
	_, err := New(English(), opts, testLists(), nil)
	assert.True(t, IsConfigError(err))
}

func TestSegmentAbbreviation(t *testing.T) {
	b := newEnglish(t, DefaultOptions())
	sents, err := b.Segment(context.Background(), textDoc("Dr. Smith arrived. He sat down."), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dr. Smith arrived.", "He sat down."}, texts(sents))
}

func TestSegmentEllipsis(t *testing.T) {
	b := newEnglish(t, DefaultOptions())

	sents, err := b.Segment(context.Background(), textDoc("Wait... what?"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wait... what?"}, texts(sents))

	sents, err = b.Segment(context.Background(), textDoc("Wait... What now?"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wait...", "What now?"}, texts(sents))
}

func TestSegmentQuotedExclamation(t *testing.T) {
	b := newEnglish(t, DefaultOptions())

	sents, err := b.Segment(context.Background(), textDoc(`He said "Stop!" and left.`), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{`He said "Stop!" and left.`}, texts(sents))

	sents, err = b.Segment(context.Background(), textDoc(`He said "Stop!" Then he left.`), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{`He said "Stop!"`, "Then he left."}, texts(sents))
}

func TestSegmentRestrictedSpan(t *testing.T) {
	b := newEnglish(t, DefaultOptions())
	text := "The cat arrived. He sat."
	doc := textDoc(text)
	doc.Metadata.Restrict(strings.Index(text, "arrived"), strings.Index(text, "He")+1, "quote")

	sents, err := b.Segment(context.Background(), doc, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{text}, texts(sents))
}

func TestSegmentCoversRegionsInOrder(t *testing.T) {
	b := newEnglish(t, DefaultOptions())
	doc := textDoc(
		"First one here. Second one here.",
		"  Third one here.   Fourth one here.  ",
	)
	sents, err := b.Segment(context.Background(), doc, 0)
	require.NoError(t, err)
	require.Len(t, sents, 4)

	prevRegion, prevEnd := -1, 0
	for i, s := range sents {
		assert.Equal(t, i, s.No)
		assert.Equal(t, doc.ID, s.DocumentID)
		region := doc.Regions[s.Region]
		assert.Equal(t, region.Substring(s.Start, s.End), s.Text)
		assert.Equal(t, region.DocOffset(s.Start), s.StartOffset)
		assert.Equal(t, region.DocOffset(s.End), s.EndOffset)
		assert.Less(t, s.Start, s.End)
		if s.Region == prevRegion {
			assert.GreaterOrEqual(t, s.Start, prevEnd, "sentences overlap")
		}
		prevRegion, prevEnd = s.Region, s.End
	}
	assert.Equal(t, "Third one here.", sents[2].Text)
	assert.Equal(t, 1, sents[2].Region)
}

func TestSegmentTruncatesPlainScanning(t *testing.T) {
	b := newEnglish(t, DefaultOptions())
	sents, err := b.Segment(context.Background(), textDoc("First one here. Second one here. Third one here."), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"First one here.", "Second one here."}, texts(sents))
}

func TestSegmentEmptyDocument(t *testing.T) {
	b := newEnglish(t, DefaultOptions())
	sents, err := b.Segment(context.Background(), document.New(document.SourceNewswire), 0)
	require.NoError(t, err)
	assert.Empty(t, sents)

	sents, err = b.Segment(context.Background(), textDoc("   \n  "), 0)
	require.NoError(t, err)
	assert.Empty(t, sents)
}

func TestSegmentHonorsCancellation(t *testing.T) {
	b := newEnglish(t, DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Segment(ctx, textDoc("One more here."), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSegmentSkipsHeadlines(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipHeadlines = true
	b := newEnglish(t, opts)

	doc := document.New(document.SourceNewswire)
	doc.AddRegion(document.TagHeadline, "Big News Today")
	doc.AddRegion(document.TagText, "Body text here.")

	sents, err := b.Segment(context.Background(), doc, 0)
	require.NoError(t, err)
	require.Len(t, sents, 1)
	assert.Equal(t, "Body text here.", sents[0].Text)
	assert.Equal(t, 0, sents[0].No)
	assert.Equal(t, 1, sents[0].Region)
}

func TestSegmentDowncasesHeadlines(t *testing.T) {
	opts := DefaultOptions()
	opts.DowncaseHeadlines = true
	b := newEnglish(t, opts)

	sents, err := b.Segment(context.Background(), textDoc("THE PRESIDENT MEETS WITH LEADERS TODAY"), 0)
	require.NoError(t, err)
	require.Len(t, sents, 1)
	assert.Equal(t, "the president meets with leaders today", sents[0].Text)
}

func TestSegmentDoubleCarriageReturn(t *testing.T) {
	opts := DefaultOptions()
	opts.BreakOnDoubleCarriageReturns = true
	b := newEnglish(t, opts)

	sents, err := b.Segment(context.Background(), textDoc("A title without a period\n\nThe body starts here."), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A title without a period", "The body starts here."}, texts(sents))

	opts.BreakOnDoubleCarriageReturns = false
	b = newEnglish(t, opts)
	sents, err = b.Segment(context.Background(), textDoc("A title without a period\n\nThe body starts here."), 0)
	require.NoError(t, err)
	assert.Len(t, sents, 1)
}

func TestRegionFlagsControlDoubleCarriageReturn(t *testing.T) {
	opts := DefaultOptions()
	opts.UseRegionContentFlags = true
	b := newEnglish(t, opts)

	doc := textDoc("A title without a period\n\nThe body starts here.")
	doc.Regions[0].Flags = document.DoubleSpaced
	sents, err := b.Segment(context.Background(), doc, 0)
	require.NoError(t, err)
	assert.Len(t, sents, 1)
}

func TestCountTokenBreaks(t *testing.T) {
	assert.Equal(t, 0, countTokenBreaks([]rune("word")))
	assert.Equal(t, 2, countTokenBreaks([]rune("one, two three")))
	assert.Equal(t, 2, countTokenBreaks([]rune("a -- b . c")))
	assert.Equal(t, 1, countTokenBreaks([]rune("end.")))
}

type regionSpec struct {
	tag   string
	text  string
	flags document.ContentFlags
}

func regionDoc(source document.SourceType, regions ...regionSpec) *document.Document {
	doc := document.New(source)
	for _, r := range regions {
		doc.AddRegion(r.tag, r.text).Flags = r.flags
	}
	return doc
}

func TestRegionHandlingOptions(t *testing.T) {
	const shortLines = "short line one\nshort line two\nshort line three"
	const longHeadline = "Storm Hits The Coast Near Old Harbor"
	threeLines := []string{"short line one", "short line two", "short line three"}

	tests := []struct {
		name    string
		mutate  func(o *Options)
		source  document.SourceType
		regions []regionSpec
		want    []string
	}{
		{
			name:    "newswire keeps short lines together",
			source:  document.SourceNewswire,
			regions: []regionSpec{{tag: document.TagText, text: shortLines}},
			want:    []string{shortLines},
		},
		{
			name:    "blog breaks short lines",
			source:  document.SourceBlog,
			regions: []regionSpec{{tag: document.TagText, text: shortLines}},
			want:    threeLines,
		},
		{
			name:    "region flags make ragged newswire regions web text",
			mutate:  func(o *Options) { o.UseRegionContentFlags = true },
			source:  document.SourceNewswire,
			regions: []regionSpec{{tag: document.TagText, text: shortLines}},
			want:    threeLines,
		},
		{
			name:    "region flags keep justified regions out of web text",
			mutate:  func(o *Options) { o.UseRegionContentFlags = true },
			source:  document.SourceBlog,
			regions: []regionSpec{{tag: document.TagText, text: shortLines, flags: document.Justified}},
			want:    []string{shortLines},
		},
		{
			name:   "region flags decide per region",
			mutate: func(o *Options) { o.UseRegionContentFlags = true },
			source: document.SourceNewswire,
			regions: []regionSpec{
				{tag: document.TagText, text: shortLines, flags: document.Justified},
				{tag: document.TagText, text: shortLines},
			},
			want: append([]string{shortLines}, threeLines...),
		},
		{
			name:   "skip headlines keeps a short headline region",
			mutate: func(o *Options) { o.SkipHeadlines = true },
			source: document.SourceNewswire,
			regions: []regionSpec{
				{tag: document.TagHeadline, text: "Storm hits the coast"},
				{tag: document.TagText, text: "The storm arrived today."},
			},
			want: []string{"Storm hits the coast", "The storm arrived today."},
		},
		{
			name:   "skip headlines drops a likely headline",
			mutate: func(o *Options) { o.SkipHeadlines = true },
			source: document.SourceNewswire,
			regions: []regionSpec{
				{tag: document.TagHeadline, text: longHeadline},
				{tag: document.TagText, text: "The storm arrived today."},
			},
			want: []string{"The storm arrived today."},
		},
		{
			name:   "skip headlines drops a likely headline outside headline regions",
			mutate: func(o *Options) { o.SkipHeadlines = true },
			source: document.SourceNewswire,
			regions: []regionSpec{
				{tag: document.TagText, text: longHeadline},
			},
			want: nil,
		},
		{
			name:   "downcase headlines lowers only likely headlines",
			mutate: func(o *Options) { o.DowncaseHeadlines = true },
			source: document.SourceNewswire,
			regions: []regionSpec{
				{tag: document.TagHeadline, text: longHeadline},
				{tag: document.TagHeadline, text: "Storm hits the coast"},
				{tag: document.TagText, text: "The storm arrived today."},
			},
			want: []string{strings.ToLower(longHeadline), "Storm hits the coast", "The storm arrived today."},
		},
		{
			name: "downcase headlines with region flags",
			mutate: func(o *Options) {
				o.DowncaseHeadlines = true
				o.UseRegionContentFlags = true
			},
			source: document.SourceNewswire,
			regions: []regionSpec{
				{tag: document.TagHeadline, text: longHeadline, flags: document.Justified},
				{tag: document.TagText, text: shortLines},
			},
			want: append([]string{strings.ToLower(longHeadline)}, threeLines...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.mutate != nil {
				tt.mutate(&opts)
			}
			b := newEnglish(t, opts)
			sents, err := b.Segment(context.Background(), regionDoc(tt.source, tt.regions...), 0)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, sents)
				return
			}
			assert.Equal(t, tt.want, texts(sents))
		})
	}
}

func TestTableSplitKeepsLowercasing(t *testing.T) {
	opts := DefaultOptions()
	opts.BreakTableSentences = true
	opts.MinTableRows = 4
	opts.MaxTokenBreaks = 5
	b := newEnglish(t, opts)

	text := "Item 1: Gold Red; Item 2: Gray Gold; Item 3: Green Gold; Item 4: Gray Blue; " +
		"Item 5: Blue Green Blue; Item 6: Gray; Item 7: Gray Gray; Item 8: Green; Item 9: Red; " +
		"Item 10: Green Gold Gray; Item 11: Green; Item 12: Green Gray;"
	s := scannerFor(b, text)

	done, err := s.splitTable(piece{start: 0, end: len([]rune(text)), lower: true})
	require.NoError(t, err)
	require.True(t, done)
	require.Greater(t, len(s.out), 4)
	assert.Equal(t, "item 1", s.out[0].Text)
	for _, sent := range s.out {
		assert.Equal(t, "table", sent.Tag)
		assert.Equal(t, strings.ToLower(sent.Text), sent.Text)
	}
}
