package document

import (
	"strings"

	"github.com/google/uuid"
)

// SourceType describes where a document came from. Some break heuristics
// only apply to informal web text.
type SourceType string

const (
	SourceNewswire  SourceType = "newswire"
	SourceBroadcast SourceType = "broadcast"
	SourceArticle   SourceType = "website_article"
	SourceBlog      SourceType = "blog"
	SourceWeblog    SourceType = "weblog"
	SourceUsenet    SourceType = "usenet"
	SourceUnknown   SourceType = "unknown"
)

// Region tags used by the loaders and the breaker.
const (
	TagHeadline = "HEADLINE"
	TagText     = "TEXT"
	TagDateline = "DATELINE"
)

// ContentFlags carry layout hints about a region's text.
type ContentFlags uint8

const (
	// DoubleSpaced regions separate every line with a blank line, so a
	// blank line is not a paragraph boundary.
	DoubleSpaced ContentFlags = 1 << iota
	// Justified regions are hard-wrapped prose.
	Justified
)

// Region is a tagged, contiguous span of document text. Sentences never
// cross region boundaries.
type Region struct {
	Tag   string
	Flags ContentFlags
	// Offset is the document offset of the first rune.
	Offset int

	text []rune
}

// NewRegion creates a region whose first rune sits at document offset offset.
func NewRegion(tag, text string, offset int) *Region {
	return &Region{Tag: tag, Offset: offset, text: []rune(text)}
}

// Len returns the region length in runes.
func (r *Region) Len() int { return len(r.text) }

// At returns the rune at index i.
func (r *Region) At(i int) rune { return r.text[i] }

// Runes returns a copy of the region text.
func (r *Region) Runes() []rune {
	out := make([]rune, len(r.text))
	copy(out, r.text)
	return out
}

// String returns the region text.
func (r *Region) String() string { return string(r.text) }

// Substring returns runes [start, end).
func (r *Region) Substring(start, end int) string { return string(r.text[start:end]) }

// DocOffset maps a rune index to its document offset.
func (r *Region) DocOffset(i int) int { return r.Offset + i }

// Has reports whether the region carries flag f.
func (r *Region) Has(f ContentFlags) bool { return r.Flags&f != 0 }

// Document is an ordered sequence of regions plus the metadata needed to
// decide where sentence breaks are allowed.
type Document struct {
	ID         string
	SourceType SourceType
	Title      string
	URL        string
	// Downcased marks documents whose text was lowercased upstream, which
	// disables capitalization cues.
	Downcased bool
	Regions   []*Region
	Metadata  *Metadata
}

// New creates an empty document with a fresh ID.
func New(sourceType SourceType) *Document {
	if sourceType == "" {
		sourceType = SourceUnknown
	}
	return &Document{
		ID:         uuid.NewString(),
		SourceType: sourceType,
		Metadata:   NewMetadata(),
	}
}

// AddRegion appends a region. Its document offset continues after the
// previous region plus one separator rune.
func (d *Document) AddRegion(tag, text string) *Region {
	offset := 0
	if n := len(d.Regions); n > 0 {
		last := d.Regions[n-1]
		offset = last.Offset + last.Len() + 1
	}
	r := NewRegion(tag, text, offset)
	d.Regions = append(d.Regions, r)
	return r
}

// Text joins all regions with newlines, matching the document offsets.
func (d *Document) Text() string {
	var b strings.Builder
	for i, r := range d.Regions {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.String())
	}
	return b.String()
}

// Sentence is one output unit of the breaker.
type Sentence struct {
	DocumentID string `json:"document_id"`
	// No is the zero-based sequence number within the document.
	No        int    `json:"no"`
	Region    int    `json:"region"`
	RegionTag string `json:"region_tag"`
	// Start and End are rune indices into the region, End exclusive.
	Start int `json:"start"`
	End   int `json:"end"`
	// StartOffset and EndOffset are document offsets, EndOffset exclusive.
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Text        string `json:"text"`
	// Tag is "list" or "table" for sentences produced by those splitters.
	Tag string `json:"tag,omitempty"`
}

// Len returns the sentence length in runes.
func (s Sentence) Len() int { return s.End - s.Start }
