package db

import "time"

// Document is the stored provenance record of a segmented document.
type Document struct {
	ID          string
	SourceType  string
	Language    string
	Title       string
	URL         string
	Meta        string
	RegionCount int
	// LastProcessedSentence is the highest sentence number persisted, or -1.
	LastProcessedSentence int
	// Completed is set once every sentence of the document is stored.
	Completed bool
	AddedAt               time.Time
}
