package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/sentbreak/pkg/document"
	"github.com/japaniel/sentbreak/pkg/lexicon"
	"github.com/japaniel/sentbreak/pkg/sentbreak"
)

type errSegmenter struct{ err error }

func (e errSegmenter) Segment(context.Context, *document.Document, int) ([]document.Sentence, error) {
	return nil, e.err
}

func newTestServer(t *testing.T, extra map[string]Segmenter) *Server {
	t.Helper()
	lists, err := lexicon.Defaults(nil)
	require.NoError(t, err)
	en, err := sentbreak.New(sentbreak.English(), sentbreak.DefaultOptions(), lists, nil)
	require.NoError(t, err)
	zh, err := sentbreak.New(sentbreak.Chinese(), sentbreak.DefaultOptions(), lists, nil)
	require.NoError(t, err)

	segs := map[string]Segmenter{"en": en, "zh": zh}
	for k, v := range extra {
		segs[k] = v
	}
	return NewServer(segs, "en", 0, nil)
}

func post(t *testing.T, s *Server, body any) (*httptest.ResponseRecorder, SegmentResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/segment", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp SegmentResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestSegmentText(t *testing.T) {
	s := newTestServer(t, nil)
	rec, resp := post(t, s, SegmentRequest{Text: "Dr. Smith arrived. He sat down."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Sentences, 2)
	assert.Equal(t, "Dr. Smith arrived.", resp.Sentences[0].Text)
	assert.Equal(t, "He sat down.", resp.Sentences[1].Text)
	assert.Equal(t, resp.DocumentID, resp.Sentences[0].DocumentID)
}

func TestSegmentLanguageAndLimit(t *testing.T) {
	s := newTestServer(t, nil)
	rec, resp := post(t, s, SegmentRequest{Text: "今天天气很好。我们去公园吧！", Language: "chinese"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "zh", resp.Language)
	assert.Equal(t, 2, resp.Count)

	rec, resp = post(t, s, SegmentRequest{Text: "One here. Two here. Three here.", MaxSentences: 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, resp.Count)
}

func TestSegmentMarkdown(t *testing.T) {
	s := newTestServer(t, nil)
	rec, resp := post(t, s, SegmentRequest{Markdown: "# Harbor Bridge\n\nThe bridge opened today. Traffic was light.\n"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, resp.Sentences, 3)
	assert.Equal(t, document.TagHeadline, resp.Sentences[0].RegionTag)
	assert.Equal(t, "Traffic was light.", resp.Sentences[2].Text)
}

func TestSegmentRejectsBadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := post(t, s, SegmentRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, s, SegmentRequest{Text: "a", Markdown: "b"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, s, SegmentRequest{Text: "Hello.", Language: "klingon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, s, SegmentRequest{Text: "안녕하세요.", Language: "ko"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/segment", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	s.Handler().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestSegmentErrorStatus(t *testing.T) {
	s := newTestServer(t, map[string]Segmenter{
		"ko":      errSegmenter{err: &sentbreak.TooManySentencesError{Splitter: "list", Count: 30, Max: 5}},
		"default": errSegmenter{err: assert.AnError},
	})

	rec, _ := post(t, s, SegmentRequest{Text: "x", Language: "ko"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds maximum")

	rec, _ = post(t, s, SegmentRequest{Text: "x", Language: "default"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestStatusFor(t *testing.T) {
	_, err := sentbreak.ParseDatelineMode("bogus")
	assert.Equal(t, http.StatusBadRequest, statusFor(err))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.Canceled))
}

func TestStartStopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
