package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"payments-dashboard/models"
)

// BuildReceiptPDF renders a payment receipt for an order and its status
func BuildReceiptPDF(order *models.Order, status *models.OrderStatus) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "Payment Receipt")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Receipt generated: %s", time.Now().Format("02 Jan 2006 15:04")))
	pdf.Ln(12)

	row := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(55, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 8, value, "", "L", false)
	}

	row("Collect ID", order.ID)
	row("School ID", order.SchoolID)
	row("Student", fmt.Sprintf("%s (%s)", order.StudentInfo.Name, order.StudentInfo.ID))
	row("Email", order.StudentInfo.Email)
	row("Gateway", order.GatewayName)
	pdf.Ln(4)

	row("Status", status.Status)
	row("Order amount", fmt.Sprintf("%.2f", status.OrderAmount))
	if status.TransactionAmount != nil {
		row("Transaction amount", fmt.Sprintf("%.2f", *status.TransactionAmount))
	}
	if status.PaymentMode != nil {
		row("Payment mode", *status.PaymentMode)
	}
	if status.BankReference != nil {
		row("Bank reference", *status.BankReference)
	}
	if status.PaymentTime != nil {
		row("Payment time", status.PaymentTime.Format("02 Jan 2006 15:04:05"))
	}
	if status.PaymentMessage != nil {
		pdf.Ln(4)
		row("Message", *status.PaymentMessage)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
