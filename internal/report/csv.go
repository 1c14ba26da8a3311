package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/types/report"
)

var csvHeader = []string{
	"code", "created_at", "customer_name", "phone", "kind", "service_type", "weight_kg",
	"item_kind", "unit_price", "quantity", "price", "status", "note",
}

func csvRow(o order.Order, loc *time.Location) []string {
	row := []string{
		o.Code,
		o.CreatedAt.In(loc).Format(time.RFC3339),
		o.CustomerName,
		o.Phone,
		string(o.Category.Kind),
		"", "", "", "", "",
		strconv.FormatInt(o.Price, 10),
		string(o.Status),
		o.Note,
	}
	if bw := o.Category.ByWeight; bw != nil {
		row[5] = string(bw.ServiceType)
		row[6] = strconv.FormatFloat(bw.WeightKg, 'f', -1, 64)
	}
	if bu := o.Category.ByUnit; bu != nil {
		row[7] = bu.ItemKind
		if bu.UnitPrice != nil {
			row[8] = strconv.FormatInt(*bu.UnitPrice, 10)
		}
		row[9] = strconv.FormatFloat(bu.Quantity, 'f', -1, 64)
	}
	return row
}

// WriteCSV renders one line per order followed by a totals line.
func WriteCSV(w io.Writer, exp report.Export, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range exp.Orders {
		if err := cw.Write(csvRow(o, loc)); err != nil {
			return err
		}
	}
	totals := make([]string, len(csvHeader))
	totals[0] = "TOTAL"
	totals[1] = strconv.FormatInt(exp.TotalOrders, 10)
	totals[10] = strconv.FormatInt(exp.TotalRevenue, 10)
	if err := cw.Write(totals); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
