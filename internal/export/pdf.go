package export

import (
	"fmt"
	"io"
	"os"

	"github.com/AndrewAllenDS/prayer-request-app/internal/model"

	"github.com/go-pdf/fpdf"
)

const (
	// Filename is suggested to clients downloading the export.
	Filename = "prayer_requests.pdf"
	// ContentType of the rendered document.
	ContentType = "application/pdf"

	Title = "Prayer Requests"

	titleSize = 18
	bodySize  = 12
	lineH     = 6
	entryGap  = 4

	coreFamily = "Helvetica"
	utf8Family = "Body"
)

// Renderer lays submissions out as a paginated PDF.
type Renderer struct {
	// Compress deflates page streams. Tests turn it off to inspect the text.
	Compress bool
	// FontPath names a TrueType font used for all text. Empty means the
	// core Helvetica font.
	FontPath string
}

func NewRenderer() *Renderer {
	return &Renderer{Compress: true}
}

// EntryLine is the numbered heading written for the submission at 1-based
// position pos.
func EntryLine(pos int, s model.Submission) string {
	return fmt.Sprintf("%d. %s - %s", pos, s.Date, s.Name)
}

// Render writes subs, in the given order, to w. The document is finished in
// memory first, so a RenderError means nothing was written to w.
//
// Without FontPath the text is set in core Helvetica, which only covers
// cp1252: accented Latin survives, while any other character (Cyrillic, CJK,
// emoji) is printed as ".". Configure a UTF-8 TrueType font to keep them.
func (r *Renderer) Render(w io.Writer, subs []model.Submission) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCompression(r.Compress)
	pdf.SetTitle(Title, true)
	pdf.SetAutoPageBreak(true, 15)

	family := coreFamily
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if r.FontPath != "" {
		font, err := os.ReadFile(r.FontPath)
		if err != nil {
			return &RenderError{Err: fmt.Errorf("load font: %w", err)}
		}
		pdf.AddUTF8FontFromBytes(utf8Family, "", font)
		family = utf8Family
		tr = func(s string) string { return s }
	}

	pdf.AddPage()

	pdf.SetFont(family, "", titleSize)
	pdf.CellFormat(0, 10, tr(Title), "", 1, "C", false, 0, "")
	pdf.Ln(entryGap)

	pdf.SetFont(family, "", bodySize)
	for i, s := range subs {
		pdf.MultiCell(0, lineH, tr(EntryLine(i+1, s)), "", "L", false)
		pdf.MultiCell(0, lineH, tr("   "+s.Request), "", "L", false)
		pdf.Ln(entryGap)
	}

	pdf.Close()
	if err := pdf.Error(); err != nil {
		return &RenderError{Err: err}
	}
	if err := pdf.Output(w); err != nil {
		return &StreamError{Err: err}
	}
	return nil
}
