package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"payments-dashboard/models"
)

var exportHeaders = []string{
	"Collect ID", "School ID", "Student Name", "Student ID", "Student Email",
	"Gateway", "Order Amount", "Transaction Amount", "Payment Mode",
	"Bank Reference", "Status", "Payment Time", "Order Created",
}

// ExportTransactionsXLSX renders transactions into an Excel workbook for
// download
func ExportTransactionsXLSX(transactions []models.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transactions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("set header: %w", err)
		}
	}

	for rowIdx, tx := range transactions {
		values := []interface{}{
			tx.CollectID, tx.SchoolID, tx.StudentName, tx.StudentID, tx.StudentEmail,
			tx.GatewayName, floatOrBlank(tx.OrderAmount), floatOrBlank(tx.TransactionAmount),
			stringOrBlank(tx.PaymentMode), stringOrBlank(tx.BankReference),
			tx.Status, timeOrBlank(tx.PaymentTime), tx.OrderCreatedAt.Format(time.RFC3339),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func floatOrBlank(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func stringOrBlank(v *string) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func timeOrBlank(v *time.Time) interface{} {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}
