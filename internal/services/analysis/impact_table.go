package analysis

import (
	"fmt"
	"math"

	"StockScribe/internal/domain/models"
)

const tableHeader = "| Date | Close Price | Price Change | Change % | Day Range | Impact |\n" +
	"|------|-------------|--------------|----------|-----------|--------|\n"

const tableError = "Error: Unable to format impact table"

// FormatImpactTable renders the classification as a Markdown-style table with
// a single data row. A nil analysis renders as the empty string; unusable
// numbers degrade to a literal error line, never an error return.
func FormatImpactTable(a *models.PriceAnalysis) string {
	if a == nil {
		return ""
	}
	for _, v := range []float64{a.CurrentPrice, a.PriceChange, a.PercentChange, a.DayLow, a.DayHigh} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return tableError
		}
	}
	row := fmt.Sprintf("| %s | $%.2f | $%.2f | %.2f%% | $%.2f - $%.2f | %s |\n",
		a.Date, a.CurrentPrice, a.PriceChange, a.PercentChange, a.DayLow, a.DayHigh, a.Description)
	return tableHeader + row
}
