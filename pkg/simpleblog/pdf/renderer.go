// Package pdf renders blog posts as PDF documents with go-pdf/fpdf and
// fetches remote cover images for them.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// ContentType of the documents produced by Renderer.
const ContentType = "application/pdf"

const (
	coverImageName = "cover"
	maxCoverHeight = 110.0 // mm
)

// Renderer implements simpleblog.DocumentRenderer.
type Renderer struct {
	pageSize   string
	fontFamily string
	comments   bool
	logger     *slog.Logger
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithPageSize sets the page size ("A4", "Letter", ...). Default A4.
func WithPageSize(size string) RendererOption {
	return func(r *Renderer) {
		if size != "" {
			r.pageSize = size
		}
	}
}

// WithComments appends the post's comments after its content.
func WithComments(enabled bool) RendererOption {
	return func(r *Renderer) {
		r.comments = enabled
	}
}

// WithLogger sets the logger used for non-fatal rendering problems.
func WithLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a PDF renderer
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		pageSize:   "A4",
		fontFamily: "Helvetica",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) ContentType() string {
	return ContentType
}

// RenderBlogPost writes title, a meta line, the optional cover and the plain
// text content. A cover that cannot be decoded is skipped.
func (r *Renderer) RenderBlogPost(ctx context.Context, post *simpleblog.BlogPost, cover []byte, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := fpdf.New("P", "mm", r.pageSize, "")
	doc.SetTitle(post.Title, true)
	doc.SetAuthor(post.Author.Name, true)
	doc.SetCreator("simple-blog", true)
	doc.SetAutoPageBreak(true, 15)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()

	doc.SetFont(r.fontFamily, "B", 20)
	doc.MultiCell(0, 9, tr(post.Title), "", "L", false)
	doc.Ln(2)

	doc.SetFont(r.fontFamily, "I", 10)
	doc.SetTextColor(90, 90, 90)
	doc.MultiCell(0, 5, tr(MetaLine(post)), "", "L", false)
	doc.SetTextColor(0, 0, 0)
	doc.Ln(4)

	if len(cover) > 0 {
		r.drawCover(doc, post.ID, cover)
	}

	doc.SetFont(r.fontFamily, "", 12)
	doc.MultiCell(0, 6, tr(PlainText(post.Content)), "", "L", false)

	if r.comments && len(post.Comments) > 0 {
		doc.Ln(6)
		doc.SetFont(r.fontFamily, "B", 14)
		doc.MultiCell(0, 7, tr(fmt.Sprintf("Comments (%d)", len(post.Comments))), "", "L", false)
		doc.Ln(1)
		for _, c := range post.Comments {
			doc.SetFont(r.fontFamily, "B", 11)
			doc.MultiCell(0, 5, tr(c.Name), "", "L", false)
			doc.SetFont(r.fontFamily, "", 11)
			doc.MultiCell(0, 5, tr(c.Message), "", "L", false)
			doc.Ln(2)
		}
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return doc.Output(w)
}

func (r *Renderer) drawCover(doc *fpdf.Fpdf, postID string, cover []byte) {
	imageType := imageTypeOf(cover)
	if imageType == "" {
		r.logger.Warn("Unsupported cover image format, omitting", "post_id", postID, "content_type", http.DetectContentType(cover))
		return
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	info := doc.RegisterImageOptionsReader(coverImageName, opts, bytes.NewReader(cover))
	if !doc.Ok() || info == nil || info.Width() <= 0 || info.Height() <= 0 {
		r.logger.Warn("Failed to decode cover image, omitting", "post_id", postID, "error", doc.Error())
		doc.ClearError()
		return
	}

	pageW, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	width := pageW - left - right
	height := width * info.Height() / info.Width()
	if height > maxCoverHeight {
		width = width * maxCoverHeight / height
		height = maxCoverHeight
	}

	doc.ImageOptions(coverImageName, left, doc.GetY(), width, height, true, opts, 0, "")
	doc.Ln(4)
}

// imageTypeOf returns the fpdf image type of data, or "" when unsupported.
func imageTypeOf(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "JPG"
	case "image/png":
		return "PNG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}

// MetaLine summarises category, author, read time and date of a post.
func MetaLine(post *simpleblog.BlogPost) string {
	parts := make([]string, 0, 4)
	if post.Category != "" {
		parts = append(parts, post.Category)
	}
	if post.Author.Name != "" {
		parts = append(parts, "by "+post.Author.Name)
	}
	if post.ReadTime.Unit != "" {
		parts = append(parts, fmt.Sprintf("%d %s read", post.ReadTime.Value, post.ReadTime.Unit))
	}
	if !post.CreatedAt.IsZero() {
		parts = append(parts, post.CreatedAt.Format("January 2, 2006"))
	}
	return strings.Join(parts, " · ")
}
