package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/document"
	"github.com/japaniel/sentbreak/pkg/reader"
	"github.com/japaniel/sentbreak/pkg/sentbreak"
)

// SegmentRequest carries exactly one of Text, HTML or Markdown.
type SegmentRequest struct {
	Text         string `json:"text"`
	HTML         string `json:"html"`
	Markdown     string `json:"markdown"`
	Title        string `json:"title"`
	Language     string `json:"language"`
	SourceType   string `json:"source_type"`
	Downcased    bool   `json:"downcased"`
	MaxSentences int    `json:"max_sentences"`
}

type SegmentResponse struct {
	DocumentID string              `json:"document_id"`
	Language   string              `json:"language"`
	Count      int                 `json:"count"`
	Sentences  []document.Sentence `json:"sentences"`
}

func (s *Server) segment(c *gin.Context) {
	var req SegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	lang := req.Language
	if lang == "" {
		lang = s.defaultLang
	}
	policy, err := sentbreak.PolicyFor(lang)
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, err.Error())
		return
	}
	seg, ok := s.segmenters[policy.Language]
	if !ok {
		respondWithClientError(c, http.StatusBadRequest, "language not served: "+policy.Language)
		return
	}

	doc, err := buildDocument(req)
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, err.Error())
		return
	}

	limit := req.MaxSentences
	if s.maxSentences > 0 && (limit <= 0 || limit > s.maxSentences) {
		limit = s.maxSentences
	}

	sents, err := seg.Segment(c.Request.Context(), doc, limit)
	if err != nil {
		status := statusFor(err)
		msg := "segmentation failed"
		if status < http.StatusInternalServerError {
			msg = err.Error()
		}
		respondWithError(c, status, err, msg, s.logger,
			zap.String("document_id", doc.ID), zap.String("language", policy.Language))
		return
	}
	if sents == nil {
		sents = []document.Sentence{}
	}
	c.JSON(http.StatusOK, SegmentResponse{
		DocumentID: doc.ID,
		Language:   policy.Language,
		Count:      len(sents),
		Sentences:  sents,
	})
}

type requestError string

func (e requestError) Error() string { return string(e) }

func buildDocument(req SegmentRequest) (*document.Document, error) {
	given := 0
	for _, v := range []string{req.Text, req.HTML, req.Markdown} {
		if v != "" {
			given++
		}
	}
	if given != 1 {
		return nil, requestError("exactly one of text, html or markdown is required")
	}

	var doc *document.Document
	switch {
	case req.HTML != "":
		var err error
		doc, err = reader.FromHTML(strings.NewReader(req.HTML), nil)
		if err != nil {
			return nil, err
		}
	case req.Markdown != "":
		doc = reader.FromMarkdown([]byte(req.Markdown))
	default:
		doc = reader.FromText(req.Text, document.SourceType(req.SourceType))
	}
	if req.SourceType != "" {
		doc.SourceType = document.SourceType(req.SourceType)
	}
	if req.Title != "" {
		doc.Title = req.Title
	}
	doc.Downcased = req.Downcased
	return doc, nil
}
