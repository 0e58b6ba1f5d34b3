// Package reader turns HTML, Markdown, PDF and plain text into documents
// ready for sentence breaking.
package reader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/japaniel/sentbreak/pkg/document"
)

// Format names accepted by FromBytes.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
	FormatText     = "text"
)

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>) from HTML. Readability keeps furigana otherwise, so
// "漢字" would read "漢字かんじ". Only ASCII bytes are matched, which keeps
// the function safe for Shift_JIS input.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	cleaned = reRP.ReplaceAll(cleaned, nil)
	return cleaned
}

// Normalize applies Unicode NFC so composed and decomposed input break the
// same way.
func Normalize(s string) string { return norm.NFC.String(s) }

// FormatFor picks a format from a MIME type, falling back to the file
// extension of name.
func FormatFor(contentType, name string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "text/html", "application/xhtml+xml":
			return FormatHTML
		case "text/markdown", "text/x-markdown":
			return FormatMarkdown
		case "application/pdf":
			return FormatPDF
		case "text/plain":
			return FormatText
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".pdf":
		return FormatPDF
	}
	return FormatText
}

// FromBytes builds a document from data in the given format. pageURL may be
// nil.
func FromBytes(data []byte, format string, pageURL *url.URL, logger *zap.Logger) (*document.Document, error) {
	switch format {
	case FormatHTML:
		return FromHTML(bytes.NewReader(data), pageURL)
	case FormatMarkdown:
		return FromMarkdown(data), nil
	case FormatPDF:
		return FromPDF(bytes.NewReader(data), int64(len(data)), logger)
	case FormatText, "":
		return FromText(string(data), document.SourceUnknown), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Load reads a file and picks the format from its extension.
func Load(path string, logger *zap.Logger) (*document.Document, error) {
	format := FormatFor("", path)
	if format == FormatPDF {
		return FromPDFFile(path, logger)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := FromBytes(data, format, nil, logger)
	if err != nil {
		return nil, err
	}
	if doc.Title == "" {
		doc.Title = filepath.Base(path)
	}
	return doc, nil
}

// FromText wraps plain text in a single TEXT region.
func FromText(text string, sourceType document.SourceType) *document.Document {
	doc := document.New(sourceType)
	text = Normalize(strings.ReplaceAll(text, "\r\n", "\n"))
	if strings.TrimSpace(text) != "" {
		doc.AddRegion(document.TagText, text)
	}
	return doc
}

// FromHTML extracts the main article with readability. The title becomes a
// HEADLINE region and every paragraph of the article text a TEXT region.
func FromHTML(r io.Reader, pageURL *url.URL) (*document.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	if pageURL == nil {
		pageURL = &url.URL{Scheme: "http", Host: "localhost"}
	}
	article, err := readability.FromReader(bytes.NewReader(SanitizeRuby(raw)), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	doc := document.New(document.SourceArticle)
	doc.Title = strings.TrimSpace(article.Title)
	doc.URL = pageURL.String()
	if doc.Title != "" {
		doc.AddRegion(document.TagHeadline, Normalize(doc.Title))
	}
	for _, p := range paragraphs(article.TextContent) {
		doc.AddRegion(document.TagText, Normalize(p))
	}
	return doc, nil
}

// paragraphs splits extracted text on line breaks, dropping blank lines.
func paragraphs(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// FromMarkdown maps headings to HEADLINE regions and paragraphs, including
// those inside lists and quotes, to TEXT regions. Code blocks are dropped.
func FromMarkdown(src []byte) *document.Document {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	root := markdown.Parse(src, p)

	doc := document.New(document.SourceUnknown)
	var buf strings.Builder
	flush := func(tag string) {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		if tag == document.TagHeadline && doc.Title == "" {
			doc.Title = text
		}
		doc.AddRegion(tag, Normalize(text))
	}

	ast.WalkFunc(root, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.CodeBlock, *ast.HTMLBlock:
			return ast.SkipChildren
		case *ast.Heading:
			if !entering {
				flush(document.TagHeadline)
			}
		case *ast.Paragraph, *ast.ListItem, *ast.TableRow:
			if !entering {
				flush(document.TagText)
			}
		case *ast.Text:
			buf.Write(n.Literal)
		case *ast.Code:
			buf.Write(n.Literal)
		case *ast.Softbreak:
			buf.WriteByte(' ')
		case *ast.Hardbreak:
			buf.WriteByte('\n')
		}
		return ast.GoToNext
	})
	return doc
}
