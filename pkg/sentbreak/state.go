package sentbreak

import (
	"slices"
	"unicode"

	"github.com/japaniel/sentbreak/pkg/document"
)

// ScanState is everything a scan mutates while walking one document. A
// Breaker creates a fresh ScanState per Segment call, so a Breaker itself
// stays read-only.
type ScanState struct {
	// Text is the normalized copy of the current region.
	Text []rune
	// Region is the index of the current region.
	Region int
	// Cursor is the offset where the next sentence search starts.
	Cursor int
	// SentNo counts sentences emitted so far in the document.
	SentNo int
	// LastHeadlineSentNo is the number of the last sentence emitted from a
	// HEADLINE region, or -2 before any.
	LastHeadlineSentNo int

	ThisListItem bool
	LastListItem bool

	// Document facts.
	AllLowercase    bool
	Downcased       bool
	WebText         bool
	BreakOnDoubleCR bool

	quotes []rune
}

func newScanState(doc *document.Document, opts Options) *ScanState {
	st := &ScanState{
		LastHeadlineSentNo: -2,
		AllLowercase:       true,
		Downcased:          doc.Downcased,
		BreakOnDoubleCR:    opts.BreakOnDoubleCarriageReturns,
	}
	for _, r := range doc.Regions {
		if slices.ContainsFunc(r.Runes(), unicode.IsUpper) {
			st.AllLowercase = false
			break
		}
	}
	switch doc.SourceType {
	case document.SourceBlog, document.SourceWeblog, document.SourceUsenet:
		st.WebText = true
	case document.SourceUnknown:
		st.WebText = opts.UnknownIsWebText
	}
	return st
}

// clone copies the state for a dry-run scan. Text is shared since scans
// never write to it.
func (st *ScanState) clone() *ScanState {
	c := *st
	c.quotes = slices.Clone(st.quotes)
	return &c
}

func (st *ScanState) pushQuote(r rune) { st.quotes = append(st.quotes, r) }

func (st *ScanState) popQuote() {
	if len(st.quotes) > 0 {
		st.quotes = st.quotes[:len(st.quotes)-1]
	}
}

func (st *ScanState) topQuote() (rune, bool) {
	if len(st.quotes) == 0 {
		return 0, false
	}
	return st.quotes[len(st.quotes)-1], true
}

// QuoteDepth returns the number of open quote levels.
func (st *ScanState) QuoteDepth() int { return len(st.quotes) }

func (st *ScanState) resetListFlags() {
	st.ThisListItem = false
	st.LastListItem = false
}

func (st *ScanState) isExplicitlyLowercase(r rune) bool {
	return unicode.IsLower(r) && !st.Downcased
}

func (st *ScanState) isExplicitlyUppercase(r rune) bool {
	return unicode.IsUpper(r) && !st.Downcased
}
