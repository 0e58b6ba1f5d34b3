package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/document"
)

// PageTag is the region tag of a PDF page.
const PageTag = "PAGE"

// FromPDFFile extracts text from the PDF at path, one region per page.
func FromPDFFile(path string, logger *zap.Logger) (*document.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()
	doc, err := fromPDFReader(r, logger)
	if err != nil {
		return nil, err
	}
	doc.URL = path
	return doc, nil
}

// FromPDF extracts text from an in-memory PDF, one region per page.
func FromPDF(r io.ReaderAt, size int64, logger *zap.Logger) (*document.Document, error) {
	pr, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return fromPDFReader(pr, logger)
}

func fromPDFReader(r *pdf.Reader, logger *zap.Logger) (*document.Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc := document.New(document.SourceUnknown)
	totalPages := r.NumPage()

	logger.Debug("Extracting text from PDF", zap.Int("pages", totalPages))

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			logger.Warn("Skipping null page", zap.Int("page", pageNum))
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Failed to extract text from page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		text = strings.TrimSpace(Normalize(text))
		if text == "" {
			continue
		}
		// hard-wrapped page text
		region := doc.AddRegion(PageTag, text)
		region.Flags |= document.Justified
	}

	if len(doc.Regions) == 0 && totalPages > 0 {
		return nil, fmt.Errorf("no extractable text in %d pages", totalPages)
	}
	logger.Info("PDF text extraction completed",
		zap.Int("pages", totalPages),
		zap.Int("regions", len(doc.Regions)))
	return doc, nil
}
