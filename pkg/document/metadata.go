package document

import "sort"

// Span is a range of document offsets, inclusive on both ends.
type Span struct {
	Start int
	End   int
	Type  string
	// RestrictSentenceBreak forbids a sentence boundary anywhere strictly
	// inside the span.
	RestrictSentenceBreak bool
}

// Covers reports whether offset lies inside the span.
func (s Span) Covers(offset int) bool { return offset >= s.Start && offset <= s.End }

// Metadata holds the externally defined spans of a document.
type Metadata struct {
	spans []Span
}

// NewMetadata returns empty metadata.
func NewMetadata() *Metadata { return &Metadata{} }

// AddSpan records a span, keeping spans ordered by start offset.
func (m *Metadata) AddSpan(s Span) {
	i := sort.Search(len(m.spans), func(i int) bool { return m.spans[i].Start > s.Start })
	m.spans = append(m.spans, Span{})
	copy(m.spans[i+1:], m.spans[i:])
	m.spans[i] = s
}

// Restrict adds a break-restricting span over [start, end].
func (m *Metadata) Restrict(start, end int, typ string) {
	m.AddSpan(Span{Start: start, End: end, Type: typ, RestrictSentenceBreak: true})
}

// Spans returns the recorded spans in start order.
func (m *Metadata) Spans() []Span {
	if m == nil {
		return nil
	}
	return append([]Span(nil), m.spans...)
}

// CoveringSpans returns every span that covers offset.
func (m *Metadata) CoveringSpans(offset int) []Span {
	if m == nil {
		return nil
	}
	var out []Span
	for _, s := range m.spans {
		if s.Start > offset {
			break
		}
		if s.Covers(offset) {
			out = append(out, s)
		}
	}
	return out
}

// IsBreakRestricted reports whether a sentence break placed just before rune
// index of r would cut through a restricting span: true when a span covering
// the rune before the break also covers the rune after it.
func (m *Metadata) IsBreakRestricted(r *Region, index int) bool {
	if m == nil || len(m.spans) == 0 {
		return false
	}
	if index < 1 || index >= r.Len() {
		return false
	}
	before := r.DocOffset(index - 1)
	after := r.DocOffset(index)
	for _, s := range m.CoveringSpans(before) {
		if s.RestrictSentenceBreak && s.Covers(after) {
			return true
		}
	}
	return false
}
