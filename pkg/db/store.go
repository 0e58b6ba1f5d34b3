package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/japaniel/sentbreak/pkg/document"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetDocument returns the id of the stored document with the same
// url, title and language, or inserts doc and returns doc.ID. Re-running a
// URL therefore resumes the earlier record.
func CreateOrGetDocument(db DBExecutor, doc Document) (string, error) {
	sourceType := strings.TrimSpace(doc.SourceType)
	if sourceType == "" {
		return "", fmt.Errorf("sourceType must be non-empty")
	}
	if doc.ID == "" {
		return "", fmt.Errorf("document id must be non-empty")
	}

	const maxRetries = 3

	var id string
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM documents WHERE IFNULL(url, '') = ? AND IFNULL(title, '') = ? AND language = ?`,
			doc.URL, doc.Title, doc.Language,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return "", fmt.Errorf("lookup document: %w", err)
		}

		_, err = db.Exec(
			`INSERT INTO documents (id, source_type, language, title, url, meta, region_count) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			doc.ID, sourceType, doc.Language, doc.Title, doc.URL, doc.Meta, doc.RegionCount,
		)
		if err != nil {
			// A concurrent writer inserted the same document; select it.
			if isUniqueConstraintErr(err) {
				continue
			}
			return "", fmt.Errorf("insert document: %w", err)
		}
		return doc.ID, nil
	}

	return "", fmt.Errorf("could not create or get document after %d retries", maxRetries)
}

// GetDocument loads a stored document record.
func GetDocument(db DBExecutor, id string) (Document, error) {
	var d Document
	var title, url, meta sql.NullString
	err := db.QueryRow(
		`SELECT id, source_type, language, title, url, meta, region_count, last_processed_sentence, completed, added_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.SourceType, &d.Language, &title, &url, &meta, &d.RegionCount, &d.LastProcessedSentence, &d.Completed, &d.AddedAt)
	if err != nil {
		return Document{}, err
	}
	d.Title = title.String
	d.URL = url.String
	d.Meta = meta.String
	return d, nil
}

// InsertSentence stores one sentence. Writing the same document and
// sequence number again replaces the earlier row, so replays after a crash
// are harmless.
func InsertSentence(db DBExecutor, s document.Sentence) error {
	if s.DocumentID == "" {
		return fmt.Errorf("sentence has no document id")
	}
	if s.No < 0 {
		return fmt.Errorf("sentence number must not be negative, got %d", s.No)
	}
	_, err := db.Exec(`INSERT INTO sentences
	(document_id, seq, region, region_tag, start_index, end_index, start_offset, end_offset, text, tag)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(document_id, seq) DO UPDATE SET
	  region = excluded.region,
	  region_tag = excluded.region_tag,
	  start_index = excluded.start_index,
	  end_index = excluded.end_index,
	  start_offset = excluded.start_offset,
	  end_offset = excluded.end_offset,
	  text = excluded.text,
	  tag = excluded.tag`,
		s.DocumentID, s.No, s.Region, s.RegionTag, s.Start, s.End, s.StartOffset, s.EndOffset, s.Text, s.Tag)
	if err != nil {
		return fmt.Errorf("insert sentence %d: %w", s.No, err)
	}
	return nil
}

// GetSentences returns the stored sentences of a document in order.
func GetSentences(db DBExecutor, documentID string) ([]document.Sentence, error) {
	rows, err := db.Query(`SELECT document_id, seq, region, region_tag, start_index, end_index, start_offset, end_offset, text, tag
	FROM sentences WHERE document_id = ? ORDER BY seq`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []document.Sentence
	for rows.Next() {
		var s document.Sentence
		if err := rows.Scan(&s.DocumentID, &s.No, &s.Region, &s.RegionTag, &s.Start, &s.End, &s.StartOffset, &s.EndOffset, &s.Text, &s.Tag); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountSentences returns how many sentences are stored for a document.
func CountSentences(db DBExecutor, documentID string) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sentences WHERE document_id = ?`, documentID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetDocumentProgress returns the last processed sentence number for a document.
func GetDocumentProgress(db DBExecutor, documentID string) (int, error) {
	var index int
	err := db.QueryRow("SELECT last_processed_sentence FROM documents WHERE id = ?", documentID).Scan(&index)
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateDocumentProgress updates the last processed sentence number.
func UpdateDocumentProgress(db DBExecutor, documentID string, index int) error {
	_, err := db.Exec("UPDATE documents SET last_processed_sentence = ? WHERE id = ?", index, documentID)
	return err
}

// MarkDocumentComplete records that all sentences of a document are stored.
func MarkDocumentComplete(db DBExecutor, documentID string) error {
	_, err := db.Exec("UPDATE documents SET completed = 1 WHERE id = ?", documentID)
	return err
}
