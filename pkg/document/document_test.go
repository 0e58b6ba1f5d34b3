package document

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRegionOffsets(t *testing.T) {
	doc := New(SourceNewswire)
	_, err := uuid.Parse(doc.ID)
	require.NoError(t, err)

	h := doc.AddRegion(TagHeadline, "Markets rally")
	b := doc.AddRegion(TagText, "Stocks rose.")
	assert.Equal(t, 0, h.Offset)
	assert.Equal(t, 14, b.Offset)
	assert.Equal(t, "Markets rally\nStocks rose.", doc.Text())
	assert.Equal(t, 'S', []rune(doc.Text())[b.DocOffset(0)])
}

func TestEmptySourceTypeIsUnknown(t *testing.T) {
	assert.Equal(t, SourceUnknown, New("").SourceType)
}

func TestIsBreakRestricted(t *testing.T) {
	doc := New(SourceUnknown)
	r := doc.AddRegion(TagText, "See <a.b. c> now. Done.")
	// protect "<a.b. c>"
	doc.Metadata.Restrict(4, 11, "markup")
	doc.Metadata.AddSpan(Span{Start: 13, End: 16, Type: "plain"})

	assert.False(t, doc.Metadata.IsBreakRestricted(r, 0), "index before start")
	assert.False(t, doc.Metadata.IsBreakRestricted(r, r.Len()), "index at end")
	assert.True(t, doc.Metadata.IsBreakRestricted(r, 9), "inside restricting span")
	assert.False(t, doc.Metadata.IsBreakRestricted(r, 4), "break before span start")
	assert.False(t, doc.Metadata.IsBreakRestricted(r, 12), "break after span end")
	assert.False(t, doc.Metadata.IsBreakRestricted(r, 15), "non-restricting span")
}

func TestCoveringSpansOrdered(t *testing.T) {
	m := NewMetadata()
	m.Restrict(10, 20, "b")
	m.Restrict(0, 15, "a")
	spans := m.CoveringSpans(12)
	require.Len(t, spans, 2)
	assert.Equal(t, "a", spans[0].Type)
	assert.Equal(t, "b", spans[1].Type)
	assert.Empty(t, m.CoveringSpans(21))
}

func TestNilMetadata(t *testing.T) {
	var m *Metadata
	r := NewRegion(TagText, "abc", 0)
	assert.False(t, m.IsBreakRestricted(r, 1))
	assert.Nil(t, m.Spans())
}
