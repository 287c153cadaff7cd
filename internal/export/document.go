package export

import (
	"bytes"
	_ "embed"
	"fmt"

	"finance/internal/report"

	"github.com/jung-kurt/gofpdf"
)

const DocumentMIME = "application/pdf"

const fontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

var (
	headerColor     = []int{31, 41, 55}
	headerTextColor = []int{255, 255, 255}
	sectionColor    = []int{17, 94, 89}
	bodyTextColor   = []int{33, 33, 33}
	lineColor       = []int{200, 200, 200}
	negativeColor   = []int{192, 0, 0}
	positiveColor   = []int{0, 128, 0}
)

// Document renders the monthly report as an A4 PDF: a summary table, the
// expense breakdown and the budget analysis. Empty sections are omitted.
func Document(r report.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	pdf.SetTitle(fmt.Sprintf("Relatório Financeiro - %02d/%d", r.Month, r.Year), true)
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 14, fmt.Sprintf("  Relatório Financeiro - %02d/%d", r.Month, r.Year), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	section := func(title string) {
		pdf.SetFont(fontFamily, "B", 12)
		pdf.SetTextColor(sectionColor[0], sectionColor[1], sectionColor[2])
		pdf.Cell(0, 8, title)
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}

	row := func(widths []float64, cells []string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, 10)
		for i, c := range cells {
			align := "L"
			if i > 0 {
				align = "R"
			}
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(widths[i], 7, c, "1", ln, align, false, 0, "")
		}
	}

	section("Resumo Financeiro")
	state := status(r)
	summary := [][]string{
		{"Total de Receitas", r.TotalIncome.BRL()},
		{"Total de Despesas", r.TotalExpenses.BRL()},
		{"Saldo", r.Balance.BRL()},
	}
	for _, s := range summary {
		row([]float64{95, 95}, s, false)
	}
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(95, 7, "Status", "1", 0, "L", false, 0, "")
	if r.Balance.IsNegative() {
		pdf.SetTextColor(negativeColor[0], negativeColor[1], negativeColor[2])
	} else {
		pdf.SetTextColor(positiveColor[0], positiveColor[1], positiveColor[2])
	}
	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(95, 7, state, "1", 1, "R", false, 0, "")
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.Ln(8)

	if expenses := r.SortedExpenses(); len(expenses) > 0 {
		section("Gastos por Categoria")
		row([]float64{95, 95}, []string{"Categoria", "Valor"}, true)
		for _, e := range expenses {
			row([]float64{95, 95}, []string{e.Category, e.Amount.BRL()}, false)
		}
		pdf.Ln(8)
	}

	if len(r.BudgetAnalysis) > 0 {
		section("Análise de Orçamentos")
		widths := []float64{70, 40, 40, 40}
		row(widths, []string{"Categoria", "Orçado", "Gasto", "Restante"}, true)
		for _, b := range r.BudgetAnalysis {
			row(widths, []string{b.Category, b.Budgeted.BRL(), b.Spent.BRL(), b.Remaining.BRL()}, false)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
