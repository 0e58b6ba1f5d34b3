package db

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/japaniel/sentbreak/pkg/document"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testDocument(url string) Document {
	return Document{
		ID:          uuid.NewString(),
		SourceType:  "website_article",
		Language:    "en",
		Title:       "Title",
		URL:         url,
		RegionCount: 2,
	}
}

func TestCreateOrGetDocument(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	first := testDocument("https://example.com/a")
	id1, err := CreateOrGetDocument(db, first)
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if id1 != first.ID {
		t.Fatalf("expected new id %s, got %s", first.ID, id1)
	}
	id2, err := CreateOrGetDocument(db, testDocument("https://example.com/a"))
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same document id, got %s and %s", id1, id2)
	}

	other := testDocument("https://example.com/a")
	other.Language = "ja"
	id3, err := CreateOrGetDocument(db, other)
	if err != nil {
		t.Fatalf("create other language: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("expected a separate record per language")
	}

	got, err := GetDocument(db, id1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LastProcessedSentence != -1 || got.RegionCount != 2 || got.Title != "Title" {
		t.Fatalf("unexpected stored document: %+v", got)
	}
}

func TestCreateOrGetDocumentValidates(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	d := testDocument("https://example.com/v")
	d.SourceType = " "
	if _, err := CreateOrGetDocument(db, d); err == nil {
		t.Fatalf("expected error for empty source type")
	}
	d = testDocument("https://example.com/v")
	d.ID = ""
	if _, err := CreateOrGetDocument(db, d); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestSentencesRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	docID, err := CreateOrGetDocument(db, testDocument("https://example.com/b"))
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	in := []document.Sentence{
		{DocumentID: docID, No: 0, Region: 0, RegionTag: "HEADLINE", Start: 0, End: 5, StartOffset: 0, EndOffset: 5, Text: "Title"},
		{DocumentID: docID, No: 1, Region: 1, RegionTag: "TEXT", Start: 0, End: 9, StartOffset: 6, EndOffset: 15, Text: "It rains.", Tag: "list"},
	}
	for _, s := range in {
		if err := InsertSentence(db, s); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	// replaying a sentence replaces it
	replay := in[1]
	replay.Text = "It pours."
	if err := InsertSentence(db, replay); err != nil {
		t.Fatalf("replay: %v", err)
	}

	out, err := GetSentences(db, docID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(out))
	}
	if out[0] != in[0] {
		t.Fatalf("round trip mismatch: %+v vs %+v", out[0], in[0])
	}
	if out[1].Text != "It pours." || out[1].Tag != "list" {
		t.Fatalf("expected replayed sentence, got %+v", out[1])
	}
	n, err := CountSentences(db, docID)
	if err != nil || n != 2 {
		t.Fatalf("count: %d, %v", n, err)
	}
}

func TestInsertSentenceRejectsOrphans(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if err := InsertSentence(db, document.Sentence{No: 0, Text: "x"}); err == nil {
		t.Fatalf("expected error for missing document id")
	}
	if err := InsertSentence(db, document.Sentence{DocumentID: "missing", No: 0, Text: "x"}); err == nil {
		t.Fatalf("expected foreign key error")
	}
}

func TestDocumentProgress(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	docID, err := CreateOrGetDocument(db, testDocument("https://example.com/p"))
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	p, err := GetDocumentProgress(db, docID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p != -1 {
		t.Fatalf("expected -1 for a fresh document, got %d", p)
	}
	if err := UpdateDocumentProgress(db, docID, 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	p, err = GetDocumentProgress(db, docID)
	if err != nil || p != 7 {
		t.Fatalf("expected 7, got %d (%v)", p, err)
	}
	if err := MarkDocumentComplete(db, docID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	d, err := GetDocument(db, docID)
	if err != nil || !d.Completed || d.LastProcessedSentence != 7 {
		t.Fatalf("expected completed document at 7, got %+v (%v)", d, err)
	}
	if _, err := GetDocumentProgress(db, "missing"); err != sql.ErrNoRows {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestCreateOrGetDocumentConcurrency(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	const n = 8
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			id, err := CreateOrGetDocument(db, testDocument("https://example.com/c"))
			if err != nil {
				t.Errorf("create or get document: %v", err)
				ids <- ""
				return
			}
			ids <- id
		}()
	}
	var first string
	for i := 0; i < n; i++ {
		id := <-ids
		if id == "" {
			t.Fatalf("error in goroutine")
		}
		if i == 0 {
			first = id
		}
		if id != first {
			t.Fatalf("expected same id, got %s and %s", first, id)
		}
	}
	var cnt int
	err := db.QueryRow(`SELECT COUNT(*) FROM documents WHERE url = ?`, "https://example.com/c").Scan(&cnt)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 document row, got %d", cnt)
	}
}
