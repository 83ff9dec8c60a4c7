package convert

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdf2docx/internal/config"
	"pdf2docx/internal/domain"
)

// Converter turns PDF bytes into DOCX bytes.
type Converter interface {
	Convert(ctx context.Context, pdf []byte) ([]byte, error)
}

// Options tune the library-backed converter.
type Options struct {
	// LineTolerance is the baseline distance in points below which glyphs
	// are considered to be on the same line.
	LineTolerance float64
	// PageHeadings prefixes every page of a multi-page document with a "Page N" heading.
	PageHeadings bool
	// ValidationMode is one of "relaxed", "strict" or "none".
	ValidationMode string
}

// OptionsFromConfig extracts converter options from the service config.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		LineTolerance:  cfg.Convert.LineTolerance,
		PageHeadings:   cfg.Convert.PageHeadings,
		ValidationMode: cfg.Convert.ValidationMode,
	}
}

// Library converts documents with pdfcpu (validation), ledongthuc/pdf (text
// extraction) and go-docx (output).
type Library struct {
	opts Options
}

var disableConfigDir sync.Once

// New returns a Library converter.
func New(opts Options) *Library {
	// pdfcpu would otherwise create a config dir in the user's home.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Library{opts: opts}
}

// Convert validates the PDF, extracts its text page by page and writes a DOCX.
// Every failure is wrapped in domain.ErrConversion, including panics raised by
// the PDF libraries on damaged input.
func (l *Library) Convert(ctx context.Context, data []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrConversion, r)
		}
	}()

	if err := l.validate(data); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
	}

	pages, err := extractPages(ctx, data, l.opts.LineTolerance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
	}

	out, err = writeDocx(pages, l.opts.PageHeadings)
	if err != nil {
		return nil, fmt.Errorf("%w: write docx: %w", domain.ErrConversion, err)
	}
	return out, nil
}

func (l *Library) validate(data []byte) error {
	if l.opts.ValidationMode == "none" {
		return nil
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if l.opts.ValidationMode == "strict" {
		conf.ValidationMode = model.ValidationStrict
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return fmt.Errorf("validate pdf: %w", err)
	}
	return nil
}

// extractPages reads the text layer of every page.
func extractPages(ctx context.Context, data []byte, tolerance float64) ([]Page, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	pages := make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pages = append(pages, Page{
			Number: i,
			Lines:  groupLines(p.Content().Text, tolerance),
		})
	}
	return pages, nil
}
