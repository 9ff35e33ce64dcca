package document

import (
	"context"
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// WKHTMLToPDF 使用 wkhtmltopdf 產生 PDF
type WKHTMLToPDF struct{}

var _ PDFRenderer = (*WKHTMLToPDF)(nil)

// NewWKHTMLToPDF binPath 為空時從 PATH 尋找 wkhtmltopdf
func NewWKHTMLToPDF(binPath string) *WKHTMLToPDF {
	if binPath != "" {
		wkhtmltopdf.SetPath(binPath)
	}
	return &WKHTMLToPDF{}
}

// Available 檢查 wkhtmltopdf 是否可執行
func (w *WKHTMLToPDF) Available() error {
	if _, err := wkhtmltopdf.NewPDFGenerator(); err != nil {
		return fmt.Errorf("wkhtmltopdf not available: %w", err)
	}
	return nil
}

// Render 將 HTML 轉為 PDF 並寫入 outputPath
func (w *WKHTMLToPDF) Render(ctx context.Context, html, outputPath string) error {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return fmt.Errorf("wkhtmltopdf not available: %w", err)
	}
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.CreateContext(ctx); err != nil {
		return fmt.Errorf("wkhtmltopdf failed: %w", err)
	}
	return pdfg.WriteFile(outputPath)
}
