package payment

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/carrent/rental-backend/internal/booking"
)

const statementDateFormat = "2006-01-02 15:04"

// renderStatement lays out the statement of account for one booking.
func renderStatement(b *booking.Booking, s Summary, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Statement of Account", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "STATEMENT OF ACCOUNT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		"Booking     : " + b.ID,
		"Customer    : " + b.CustomerName,
		"Car         : " + b.CarName,
		"Rental      : " + b.StartDate.Format(statementDateFormat) + " to " + b.EndDate.Format(statementDateFormat),
		"Status      : " + string(b.Status),
		"Generated   : " + generatedAt.Format(statementDateFormat),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payments")
	pdf.Ln(8)
	ledgerHeader(pdf, "Date", "Method", "Reference", "Status", "Amount")
	pdf.SetFont("Helvetica", "", 10)
	if len(s.Payments) == 0 {
		pdf.Cell(0, 6, "No payments recorded.")
		pdf.Ln(6)
	}
	for _, p := range s.Payments {
		ref := "-"
		if p.ReferenceNo != nil {
			ref = *p.ReferenceNo
		}
		ledgerRow(pdf, p.PaidAt.Format(statementDateFormat), string(p.Method), ref, string(p.Status), formatAmount(p.Amount))
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Refunds")
	pdf.Ln(8)
	ledgerHeader(pdf, "Date", "Method", "Type", "", "Amount")
	pdf.SetFont("Helvetica", "", 10)
	if len(s.Refunds) == 0 {
		pdf.Cell(0, 6, "No refunds recorded.")
		pdf.Ln(6)
	}
	for _, r := range s.Refunds {
		ledgerRow(pdf, r.RefundedAt.Format(statementDateFormat), string(r.Method), string(r.Kind), "", formatAmount(r.Amount))
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	totalLine(pdf, "Total amount", s.TotalAmount)
	totalLine(pdf, "Payments", s.Paid)
	if s.Pending > 0 {
		totalLine(pdf, "Awaiting verification", s.Pending)
	}
	totalLine(pdf, "Refunds", s.Refunded)
	pdf.SetFont("Helvetica", "B", 12)
	totalLine(pdf, "Balance", s.Balance)
	pdf.Cell(0, 8, "Payment status: "+string(s.PaymentStatus))
	pdf.Ln(8)

	if s.Pending > 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, fmt.Sprintf("The balance already deducts %s awaiting verification.", formatAmount(s.Pending)), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render statement failed: %w", err)
	}
	return buf.Bytes(), nil
}

var ledgerWidths = []float64{40, 25, 55, 30, 35}

func ledgerHeader(pdf *gofpdf.Fpdf, cols ...string) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, c := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(ledgerWidths[i], 7, c, "B", 0, align, false, 0, "")
	}
	pdf.Ln(7)
}

func ledgerRow(pdf *gofpdf.Fpdf, cols ...string) {
	for i, c := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(ledgerWidths[i], 6, c, "", 0, align, false, 0, "")
	}
	pdf.Ln(6)
}

func totalLine(pdf *gofpdf.Fpdf, label string, amount int64) {
	pdf.CellFormat(150, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, formatAmount(amount), "", 1, "R", false, 0, "")
}

// formatAmount groups thousands: 12500 -> "12,500".
func formatAmount(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	return sb.String()
}
