package export

import (
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/spec-kit/employee-service/internal/domain"
)

// Page geometry in points, origin at the top-left corner.
const (
	pdfMarginX    = 50.0
	pdfTitleY     = 50.0
	pdfGeneratedY = 80.0
	pdfTotalY     = 100.0
	pdfHeaderY    = 130.0
	pdfSeparatorY = 150.0
	pdfFirstRowY  = 160.0
	pdfRowHeight  = 15.0
	pdfPageBottom = 750.0
	pdfPageTopY   = 50.0
	pdfLineEndX   = 550.0
	pdfTitleSize  = 20.0
	pdfBodySize   = 12.0
	pdfTableSize  = 10.0
	// Helvetica ascender as a fraction of the font size. Coordinates name the top of the
	// text line while fpdf draws at the baseline.
	pdfAscent      = 0.718
	pdfDefaultFont = "Helvetica"
)

var pdfColumns = []struct {
	title string
	x     float64
}{
	{"ID", 50},
	{"Name", 100},
	{"Email", 200},
	{"Salary", 300},
	{"Department", 400},
}

// rowPlacement is where one employee row lands.
type rowPlacement struct {
	Page int
	Y    float64
}

// layoutRows places n rows. A new page starts before any row whose y would exceed the page bottom.
func layoutRows(n int) []rowPlacement {
	out := make([]rowPlacement, 0, n)
	page, y := 1, pdfFirstRowY
	for i := 0; i < n; i++ {
		if y > pdfPageBottom {
			page++
			y = pdfPageTopY
		}
		out = append(out, rowPlacement{Page: page, Y: y})
		y += pdfRowHeight
	}
	return out
}

// textAt draws text whose top edge sits at y.
func textAt(doc *fpdf.Fpdf, x, y, size float64, text string) {
	doc.Text(x, y+size*pdfAscent, text)
}

func writePDF(path string, employees []domain.Employee, generatedAt time.Time) error {
	return renderPDF(employees, generatedAt).OutputFileAndClose(path)
}

func renderPDF(employees []domain.Employee, generatedAt time.Time) *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetAutoPageBreak(false, 0)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont(pdfDefaultFont, "", pdfTitleSize)
	textAt(doc, pdfMarginX, pdfTitleY, pdfTitleSize, "Employee Report")
	doc.SetFont(pdfDefaultFont, "", pdfBodySize)
	textAt(doc, pdfMarginX, pdfGeneratedY, pdfBodySize, "Generated on: "+generatedAt.Format("1/2/2006"))
	textAt(doc, pdfMarginX, pdfTotalY, pdfBodySize, "Total Employees: "+strconv.Itoa(len(employees)))

	doc.SetFont(pdfDefaultFont, "", pdfTableSize)
	for _, col := range pdfColumns {
		textAt(doc, col.x, pdfHeaderY, pdfTableSize, col.title)
	}
	doc.Line(pdfMarginX, pdfSeparatorY, pdfLineEndX, pdfSeparatorY)

	page := 1
	for i, row := range layoutRows(len(employees)) {
		if row.Page != page {
			doc.AddPage()
			doc.SetFont(pdfDefaultFont, "", pdfTableSize)
			page = row.Page
		}
		e := employees[i]
		cells := []string{
			strconv.FormatInt(e.ID, 10),
			tr(e.Name),
			tr(e.Email),
			formatSalary(e.Salary),
			tr(departmentName(e)),
		}
		for c, text := range cells {
			textAt(doc, pdfColumns[c].x, row.Y, pdfTableSize, text)
		}
	}

	return doc
}
