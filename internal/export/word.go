package export

import (
	"bytes"
	"fmt"

	"finance/internal/report"

	"github.com/fumiama/go-docx"
)

const WordMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Run sizes are half-points.
const (
	wordTitleSize   = "32"
	wordHeadingSize = "26"
)

// WordDocument renders the monthly report as a .docx with the same sections
// as Document: a four-row summary table, the expense breakdown and the
// budget analysis. Empty sections are omitted.
func WordDocument(r report.Report) ([]byte, error) {
	doc := docx.New().WithDefaultTheme().WithA4Page()

	doc.AddParagraph().Justification("center").
		AddText(fmt.Sprintf("Relatório Financeiro - %02d/%d", r.Month, r.Year)).Size(wordTitleSize).Bold()

	heading := func(title string) {
		doc.AddParagraph()
		doc.AddParagraph().AddText(title).Size(wordHeadingSize).Bold().Color("115E59")
	}
	table := func(rows [][]string, headerRow bool) {
		t := doc.AddTable(len(rows), len(rows[0]), 0, nil)
		for i, cells := range rows {
			for j, text := range cells {
				run := t.TableRows[i].TableCells[j].AddParagraph().AddText(text)
				if headerRow && i == 0 {
					run.Bold()
				}
			}
		}
	}

	heading("Resumo Financeiro")
	table([][]string{
		{"Total de Receitas", r.TotalIncome.BRL()},
		{"Total de Despesas", r.TotalExpenses.BRL()},
		{"Saldo", r.Balance.BRL()},
		{"Status", status(r)},
	}, false)

	if expenses := r.SortedExpenses(); len(expenses) > 0 {
		heading("Gastos por Categoria")
		rows := [][]string{{"Categoria", "Valor"}}
		for _, e := range expenses {
			rows = append(rows, []string{e.Category, e.Amount.BRL()})
		}
		table(rows, true)
	}

	if len(r.BudgetAnalysis) > 0 {
		heading("Análise de Orçamentos")
		rows := [][]string{{"Categoria", "Orçado", "Gasto", "Restante"}}
		for _, b := range r.BudgetAnalysis {
			rows = append(rows, []string{b.Category, b.Budgeted.BRL(), b.Spent.BRL(), b.Remaining.BRL()})
		}
		table(rows, true)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}

func status(r report.Report) string {
	if r.Balance.IsNegative() {
		return "Negativo"
	}
	return "Positivo"
}
