package sentbreak

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/japaniel/sentbreak/pkg/document"
)

// CachedBreaker memoizes Segment results by document content, so
// re-submitted documents are not scanned again. Cached sentences are
// copied out with the caller's document ID.
type CachedBreaker struct {
	breaker *Breaker
	cache   *lru.Cache[string, []document.Sentence]
}

// NewCached wraps b with an LRU cache holding up to size documents.
func NewCached(b *Breaker, size int) (*CachedBreaker, error) {
	cache, err := lru.New[string, []document.Sentence](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentence cache: %w", err)
	}
	return &CachedBreaker{breaker: b, cache: cache}, nil
}

// Breaker returns the wrapped breaker.
func (c *CachedBreaker) Breaker() *Breaker { return c.breaker }

// Len returns the number of cached documents.
func (c *CachedBreaker) Len() int { return c.cache.Len() }

// Segment returns the cached result for an identical document, or segments
// doc and caches the result. Errors are not cached.
func (c *CachedBreaker) Segment(ctx context.Context, doc *document.Document, maxSentences int) ([]document.Sentence, error) {
	if doc == nil {
		return c.breaker.Segment(ctx, doc, maxSentences)
	}
	key := contentKey(doc, maxSentences)
	if cached, ok := c.cache.Get(key); ok {
		return withDocumentID(cached, doc.ID), nil
	}
	sents, err := c.breaker.Segment(ctx, doc, maxSentences)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, withDocumentID(sents, ""))
	return sents, nil
}

func withDocumentID(sents []document.Sentence, id string) []document.Sentence {
	out := make([]document.Sentence, len(sents))
	copy(out, sents)
	for i := range out {
		out[i].DocumentID = id
	}
	return out
}

// contentKey hashes everything Segment reads from a document, apart from
// its ID.
func contentKey(doc *document.Document, maxSentences int) string {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeString := func(v string) {
		writeInt(len(v))
		h.Write([]byte(v))
	}

	writeInt(maxSentences)
	writeString(string(doc.SourceType))
	if doc.Downcased {
		writeInt(1)
	} else {
		writeInt(0)
	}
	writeInt(len(doc.Regions))
	for _, r := range doc.Regions {
		writeString(r.Tag)
		writeInt(int(r.Flags))
		writeInt(r.Offset)
		writeString(r.String())
	}
	for _, sp := range doc.Metadata.Spans() {
		writeInt(sp.Start)
		writeInt(sp.End)
		if sp.RestrictSentenceBreak {
			writeInt(1)
		} else {
			writeInt(0)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
