package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var statusLabels = map[order.Status]string{
	order.StatusPending:        "Menunggu",
	order.StatusInProgress:     "Diproses",
	order.StatusReadyForPickup: "Siap Diambil",
	order.StatusCompleted:      "Selesai",
}

var serviceLabels = map[order.ServiceType]string{
	order.ServiceWashIron: "Cuci + Setrika",
	order.ServiceIronOnly: "Hanya Setrika",
}

func StatusLabel(s order.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func serviceLabel(st order.ServiceType) string {
	if l, ok := serviceLabels[st]; ok {
		return l
	}
	return string(st)
}

var idPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats n with Indonesian digit grouping, e.g. 1500000 -> "1.500.000".
func Rupiah(n int64) string {
	return idPrinter.Sprintf("%d", n)
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func describe(c order.Category) string {
	switch {
	case c.ByWeight != nil:
		return fmt.Sprintf("Layanan: %s\nBerat: %s kg", serviceLabel(c.ByWeight.ServiceType), number(c.ByWeight.WeightKg))
	case c.ByUnit != nil:
		unitPrice := "-"
		if c.ByUnit.UnitPrice != nil {
			unitPrice = "Rp " + Rupiah(*c.ByUnit.UnitPrice)
		}
		return fmt.Sprintf("Jenis: %s\nJumlah: %s\nHarga Satuan: %s", c.ByUnit.ItemKind, number(c.ByUnit.Quantity), unitPrice)
	}
	return ""
}

func amountLine(c order.Category) string {
	switch {
	case c.ByWeight != nil:
		return "Berat: " + number(c.ByWeight.WeightKg) + " kg"
	case c.ByUnit != nil:
		return "Jumlah: " + number(c.ByUnit.Quantity)
	}
	return ""
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func customerCreatedMessage(o order.Order, queueURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo %s,\n\nOrder laundry Anda telah kami terima:\n\n", o.CustomerName)
	fmt.Fprintf(&b, "Kode: %s\n%s\nTotal: Rp %s\n\nStatus: %s\n", o.Code, describe(o.Category), Rupiah(o.Price), StatusLabel(o.Status))
	if queueURL != "" {
		fmt.Fprintf(&b, "\nCek antrian: %s\n", queueURL)
	}
	b.WriteString("\nTerima kasih!")
	return b.String()
}

func adminCreatedMessage(o order.Order, phoneValid bool) string {
	phoneLine := orDash(o.Phone)
	if !phoneValid && strings.TrimSpace(o.Phone) != "" {
		phoneLine += " (nomor tidak valid)"
	}
	return fmt.Sprintf("ORDER BARU\n\nKode: %s\nNama: %s\nHP: %s\n\n%s\n\nTotal: Rp %s\n\nCatatan: %s",
		o.Code, o.CustomerName, phoneLine, describe(o.Category), Rupiah(o.Price), orDash(o.Note))
}

func statusMessage(o order.Order, s order.Status) string {
	switch s {
	case order.StatusReadyForPickup:
		return fmt.Sprintf("Halo %s,\n\nOrder %s sudah selesai dan siap diambil.\n\n%s\nTotal: Rp %s\n\nTerima kasih!",
			o.CustomerName, o.Code, amountLine(o.Category), Rupiah(o.Price))
	case order.StatusCompleted:
		return fmt.Sprintf("Halo %s,\n\nOrder %s telah selesai. Terima kasih telah menggunakan layanan kami!",
			o.CustomerName, o.Code)
	default:
		return fmt.Sprintf("Halo %s,\n\nStatus order Anda (%s) telah diperbarui:\n\nStatus: %s\n\nTerima kasih!",
			o.CustomerName, o.Code, StatusLabel(s))
	}
}
