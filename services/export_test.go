package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"payments-dashboard/models"
)

func TestExportTransactionsXLSX(t *testing.T) {
	paidAt := time.Date(2026, 8, 1, 10, 15, 0, 0, time.UTC)
	transactions := []models.Transaction{
		{
			CollectID:         "collect-1",
			CustomOrderID:     "collect-1",
			SchoolID:          "school-1",
			StudentName:       "Asha Verma",
			StudentID:         "STU-100",
			StudentEmail:      "asha@example.com",
			GatewayName:       "UPI",
			OrderAmount:       floatPtr(2500),
			TransactionAmount: floatPtr(2500),
			PaymentMode:       strPtr(models.ModeUPI),
			BankReference:     strPtr("HDFC000123"),
			Status:            models.StatusSuccess,
			PaymentTime:       &paidAt,
			OrderCreatedAt:    paidAt.Add(-time.Hour),
		},
		{
			CollectID:      "collect-2",
			CustomOrderID:  "collect-2",
			SchoolID:       "school-1",
			StudentName:    "Ravi Kumar",
			StudentID:      "STU-200",
			StudentEmail:   "ravi@example.com",
			GatewayName:    models.DefaultGatewayName,
			Status:         models.StatusPending,
			OrderCreatedAt: paidAt,
		},
	}

	data, err := ExportTransactionsXLSX(transactions)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2 data rows", len(rows))
	}

	if rows[0][0] != "Collect ID" || rows[0][10] != "Status" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "collect-1" || rows[1][10] != models.StatusSuccess {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
	if rows[2][0] != "collect-2" || rows[2][10] != models.StatusPending {
		t.Errorf("unexpected second data row: %v", rows[2])
	}
}

func TestExportTransactionsXLSXEmpty(t *testing.T) {
	data, err := ExportTransactionsXLSX(nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}

func TestBuildReceiptPDF(t *testing.T) {
	order := &models.Order{
		ID:          "collect-1",
		SchoolID:    "school-1",
		GatewayName: "UPI",
		StudentInfo: models.StudentInfo{Name: "Asha Verma", ID: "STU-100", Email: "asha@example.com"},
	}
	paidAt := time.Date(2026, 8, 1, 10, 15, 0, 0, time.UTC)
	status := &models.OrderStatus{
		CollectID:         "collect-1",
		OrderAmount:       2500,
		TransactionAmount: floatPtr(2500),
		PaymentMode:       strPtr(models.ModeUPI),
		Status:            models.StatusSuccess,
		PaymentTime:       &paidAt,
	}

	data, err := BuildReceiptPDF(order, status)
	if err != nil {
		t.Fatalf("build receipt: %v", err)
	}
	if len(data) == 0 || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF (%d bytes)", len(data))
	}
}
