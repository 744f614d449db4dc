// Package book renders a preview set into a printable coloring book proof.
package book

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jung-kurt/gofpdf"

	"github.com/colormuse/colormuse-books/internal/domain/preview"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

const (
	// PageMargin keeps artwork one inch (36pt per side) away from the trim.
	PageMargin = 36.0
	pageSize   = "Letter"
	unit       = "pt"
)

// ErrEmptyPreview is returned when there is nothing to print yet.
var ErrEmptyPreview = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
	platformerrors.ErrorTypeNotFound, "no preview has been generated", nil, "book-empty-preview")

var imageTypes = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPG",
	"image/gif":  "GIF",
}

// Builder lays out one image per page, preceded by a cover page.
type Builder struct {
	assets fs.FS
	title  string
}

// NewBuilder reads page references from assets.
func NewBuilder(assets fs.FS, title string) *Builder {
	if strings.TrimSpace(title) == "" {
		title = "ColorMuse Books"
	}
	return &Builder{assets: assets, title: title}
}

// Build returns the proof as PDF bytes.
func (b *Builder) Build(ctx context.Context, set *preview.PreviewSet) ([]byte, error) {
	pdf, err := b.render(ctx, set)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) render(ctx context.Context, set *preview.PreviewSet) (*gofpdf.Fpdf, error) {
	if set.Len() == 0 {
		return nil, ErrEmptyPreview
	}

	pdf := gofpdf.New("P", unit, pageSize, "")
	pdf.SetMargins(PageMargin, PageMargin, PageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(b.title, true)
	pdf.SetCreator("colormuse-books", true)
	if !set.GeneratedAt.IsZero() {
		pdf.SetCreationDate(set.GeneratedAt)
	}

	b.cover(pdf, set)

	pageW, pageH := pdf.GetPageSize()
	registered := make(map[string]registeredImage)

	for i, ref := range set.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, ok := registered[ref]
		if !ok {
			var err error
			img, err = b.register(pdf, ref)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", i+1, err)
			}
			registered[ref] = img
		}

		x, y, w, h := Fit(img.width, img.height, pageW, pageH, PageMargin)
		pdf.AddPage()
		pdf.ImageOptions(ref, x, y, w, h, false, img.opts, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

func (b *Builder) cover(pdf *gofpdf.Fpdf, set *preview.PreviewSet) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	width := pageW - 2*PageMargin

	pdf.AddPage()
	pdf.SetY(pageH / 3)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(width, 40, tr(b.title), "", 1, "C", false, 0, "")

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 18)
	pdf.MultiCell(width, 24, tr(set.Prompt), "", "C", false)

	pdf.Ln(24)
	pdf.SetFont("Helvetica", "I", 12)
	pdf.SetTextColor(90, 90, 90)
	generated := set.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	pdf.CellFormat(width, 16, fmt.Sprintf("%d pages - %s", set.Len(), generated.Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

type registeredImage struct {
	opts          gofpdf.ImageOptions
	width, height float64
}

// register embeds an asset once; later pages reuse it by name.
func (b *Builder) register(pdf *gofpdf.Fpdf, ref string) (registeredImage, error) {
	data, err := fs.ReadFile(b.assets, path.Clean(strings.TrimPrefix(ref, "/")))
	if err != nil {
		return registeredImage{}, fmt.Errorf("read asset %s: %w", ref, err)
	}

	mime := mimetype.Detect(data)
	imageType, ok := imageTypes[mime.String()]
	if !ok {
		return registeredImage{}, fmt.Errorf("asset %s has unsupported type %s", ref, mime.String())
	}

	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader(ref, opts, bytes.NewReader(data))
	if err := pdf.Error(); err != nil {
		return registeredImage{}, fmt.Errorf("decode asset %s: %w", ref, err)
	}
	return registeredImage{opts: opts, width: info.Width(), height: info.Height()}, nil
}

// Fit scales an image to the page minus margin on every side, keeping its
// aspect ratio, and centers it. It returns position and size in page units.
func Fit(imgW, imgH, pageW, pageH, margin float64) (x, y, w, h float64) {
	maxW := pageW - 2*margin
	maxH := pageH - 2*margin
	if imgW <= 0 || imgH <= 0 {
		return margin, margin, maxW, maxH
	}

	aspect := imgH / imgW
	w = maxW
	h = w * aspect
	if h > maxH {
		h = maxH
		w = h / aspect
	}
	return (pageW - w) / 2, (pageH - h) / 2, w, h
}
