// Package export serialises ledger listings for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/printloom/printloom/internal/ledger"
)

var amountPrinter = message.NewPrinter(language.English)

// WriteSalesCSV serialises sales to CSV, amounts rendered as grouped
// decimal currency (e.g. 1,234.50).
func WriteSalesCSV(w io.Writer, sales []ledger.Sale) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"ID", "User", "Item ID", "Item Type", "Item Name", "Quantity", "Unit Price", "Total Amount", "Payment Type", "Sale Date"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, sale := range sales {
		record := []string{
			strconv.FormatInt(sale.ID, 10),
			strconv.FormatInt(sale.UserID, 10),
			strconv.FormatInt(sale.ItemID, 10),
			string(sale.ItemType),
			sale.ItemName,
			strconv.FormatInt(sale.Quantity, 10),
			formatAmount(sale.UnitPrice),
			formatAmount(sale.TotalAmount),
			sale.PaymentType,
			sale.SaleDate,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// formatAmount renders minor currency units as a grouped decimal string.
func formatAmount(minor int64) string {
	return amountPrinter.Sprintf("%.2f", float64(minor)/100)
}
