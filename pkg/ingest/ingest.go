package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/db"
	"github.com/japaniel/sentbreak/pkg/document"
)

// Segmenter splits a document into sentences. *sentbreak.Breaker and
// *sentbreak.CachedBreaker implement it.
type Segmenter interface {
	Segment(ctx context.Context, doc *document.Document, maxSentences int) ([]document.Sentence, error)
}

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Ingester segments documents concurrently and stores their sentences.
type Ingester struct {
	DB        *sql.DB
	Segmenter Segmenter
	// Language is recorded with every document and is part of its identity.
	Language     string
	MaxSentences int
	// BatchSize is the number of sentences per write and checkpoint.
	BatchSize int
	Workers   int
	Logger    *zap.Logger
	// OnProgress is called with the number of documents handed to the
	// writer and the total.
	OnProgress func(current, total int)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates an Ingester with the default batch size and worker count.
func NewIngester(conn *sql.DB, seg Segmenter, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		DB:        conn,
		Segmenter: seg,
		BatchSize: 50,
		Workers:   4,
		Logger:    logger,
	}
}

// Result summarises one Ingest call.
type Result struct {
	// Documents is the number of documents fully stored by this call.
	Documents int
	// Skipped counts documents that were already complete.
	Skipped int
	// Sentences is the number of sentences written by this call.
	Sentences int
	// DocumentIDs holds the stored id of every input document, in order.
	DocumentIDs []string
}

// job input: a document and its stored identity
type pendingDoc struct {
	index  int
	id     string
	resume int
	doc    *document.Document
}

type segmentedDoc struct {
	pendingDoc
	sentences []document.Sentence
	err       error
}

// Ingest segments docs on the worker pool and writes their sentences in
// input order. Each batch of sentences is committed together with the
// document's progress, so a later run over the same documents resumes after
// the last stored sentence and skips completed documents.
func (ig *Ingester) Ingest(ctx context.Context, docs []*document.Document) (Result, error) {
	var res Result
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if ig.Segmenter == nil {
		return res, errors.New("ingest: no segmenter configured")
	}
	if ig.DB == nil {
		return res, errors.New("ingest: no database configured")
	}
	logger := ig.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := ig.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	workers := ig.Workers
	if workers <= 0 {
		workers = 1
	}

	res.DocumentIDs = make([]string, len(docs))
	var todo []pendingDoc
	for i, doc := range docs {
		p, done, err := ig.prepare(i, doc)
		if err != nil {
			return res, err
		}
		res.DocumentIDs[i] = p.id
		if done {
			res.Skipped++
			continue
		}
		if p.resume >= 0 {
			logger.Info("Resuming document",
				zap.String("document_id", p.id),
				zap.Int("from_sentence", p.resume+1))
		}
		todo = append(todo, p)
	}
	if len(todo) == 0 {
		return res, nil
	}

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	resultCh := make(chan segmentedDoc, workers*2)
	doneCh := make(chan error, 1)

	var written, completed int64

	bw := NewBatchWriter(ig.DB, 4, 100*time.Millisecond, logger)

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wp.Start(ctx)

	go func() {
		defer close(doneCh)
		buffer := make(map[int]segmentedDoc)
		next := 0
		for item := range resultCh {
			if item.err != nil {
				cancel()
				doneCh <- fmt.Errorf("segment document %s: %w", item.id, item.err)
				return
			}
			buffer[item.index] = item
			for {
				ready, ok := buffer[next]
				if !ok {
					break
				}
				delete(buffer, next)
				if err := ig.write(bw, ready, batchSize, &written, &completed); err != nil {
					cancel()
					doneCh <- err
					return
				}
				next++
				if ig.OnProgress != nil {
					ig.OnProgress(next, len(todo))
				}
			}
		}
		if next < len(todo) {
			// producers stopped early; ctx is canceled
			doneCh <- ctx.Err()
			return
		}
		doneCh <- nil
	}()

	var submitErr error
Loop:
	for i, p := range todo {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		p.index = i
		job := func(ctx context.Context) error {
			sents, err := ig.Segmenter.Segment(ctx, p.doc, ig.MaxSentences)
			select {
			case resultCh <- segmentedDoc{pendingDoc: p, sentences: sents, err: err}:
			case <-ctx.Done():
			}
			return err
		}

		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrPoolClosed) {
				break Loop
			}
			submitErr = fmt.Errorf("submit document %s: %w", p.id, err)
			cancel()
			break Loop
		}
	}

	// All workers are gone after Close, so nothing sends on resultCh.
	wp.Close()
	close(resultCh)
	consumerErr := <-doneCh

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}

	res.Sentences = int(atomic.LoadInt64(&written))
	res.Documents = int(atomic.LoadInt64(&completed))

	if submitErr != nil {
		return res, submitErr
	}
	if consumerErr != nil {
		return res, consumerErr
	}
	return res, parent.Err()
}

// prepare records doc and reports whether it was already completed.
func (ig *Ingester) prepare(i int, doc *document.Document) (pendingDoc, bool, error) {
	if doc == nil {
		return pendingDoc{}, false, fmt.Errorf("document %d is nil", i)
	}
	id, err := db.CreateOrGetDocument(ig.DB, db.Document{
		ID:          doc.ID,
		SourceType:  string(doc.SourceType),
		Language:    ig.Language,
		Title:       doc.Title,
		URL:         doc.URL,
		RegionCount: len(doc.Regions),
	})
	if err != nil {
		return pendingDoc{}, false, fmt.Errorf("record document %d: %w", i, err)
	}
	stored, err := db.GetDocument(ig.DB, id)
	if err != nil {
		return pendingDoc{}, false, fmt.Errorf("load document %s: %w", id, err)
	}
	return pendingDoc{id: id, resume: stored.LastProcessedSentence, doc: doc}, stored.Completed, nil
}

// write queues the unsaved sentences of one document in batches, each with
// its checkpoint, followed by the completion mark.
func (ig *Ingester) write(bw *BatchWriter, item segmentedDoc, batchSize int, written, completed *int64) error {
	var fresh []document.Sentence
	for _, s := range item.sentences {
		if s.No > item.resume {
			s.DocumentID = item.id
			fresh = append(fresh, s)
		}
	}
	for start := 0; start < len(fresh); start += batchSize {
		end := start + batchSize
		if end > len(fresh) {
			end = len(fresh)
		}
		chunk := fresh[start:end]
		err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			for _, s := range chunk {
				if err := db.InsertSentence(tx, s); err != nil {
					return err
				}
			}
			if err := db.UpdateDocumentProgress(tx, item.id, chunk[len(chunk)-1].No); err != nil {
				return fmt.Errorf("failed to save progress: %w", err)
			}
			atomic.AddInt64(written, int64(len(chunk)))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		if err := db.MarkDocumentComplete(tx, item.id); err != nil {
			return fmt.Errorf("failed to mark document %s complete: %w", item.id, err)
		}
		atomic.AddInt64(completed, 1)
		return nil
	})
}
