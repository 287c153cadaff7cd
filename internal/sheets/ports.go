package sheets

import (
	"context"

	"finance/internal/report"
)

// Ports for outbound adapters.
type (
	// SummaryWriter mirrors a monthly report into an external spreadsheet.
	// Writing the same month twice overwrites the earlier row.
	SummaryWriter interface {
		WriteMonthSummary(ctx context.Context, r report.Report) (rowRef string, err error)
	}
)

// SummaryHeader is the first row of every summary sheet.
var SummaryHeader = []string{"Mês", "Receitas", "Despesas", "Saldo", "Maior gasto", "Atualizado em"}
