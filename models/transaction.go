package models

import "time"

// Transaction is a read-side row: the left-outer join of an Order with its
// OrderStatus. Orders without a status row surface as pending.
type Transaction struct {
	CollectID         string     `json:"collect_id"`
	CustomOrderID     string     `json:"custom_order_id"`
	SchoolID          string     `json:"school_id"`
	StudentName       string     `json:"student_name"`
	StudentID         string     `json:"student_id"`
	StudentEmail      string     `json:"student_email"`
	GatewayName       string     `json:"gateway_name"`
	OrderAmount       *float64   `json:"order_amount"`
	TransactionAmount *float64   `json:"transaction_amount"`
	PaymentMode       *string    `json:"payment_mode"`
	PaymentDetails    *string    `json:"payment_details"`
	BankReference     *string    `json:"bank_reference"`
	PaymentMessage    *string    `json:"payment_message"`
	Status            string     `json:"status"`
	ErrorMessage      *string    `json:"error_message"`
	PaymentTime       *time.Time `json:"payment_time"`
	OrderCreatedAt    time.Time  `json:"order_created_at"`
	StatusUpdatedAt   *time.Time `json:"status_updated_at"`
}

// Pagination describes the page slice of a listing response
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
	Limit       int `json:"limit"`
}

// TransactionStats are the aggregates over a filtered transaction join
type TransactionStats struct {
	TotalTransactions      int     `json:"totalTransactions"`
	SuccessfulTransactions int     `json:"successfulTransactions"`
	FailedTransactions     int     `json:"failedTransactions"`
	PendingTransactions    int     `json:"pendingTransactions"`
	TotalAmount            float64 `json:"totalAmount"`
	SuccessfulAmount       float64 `json:"successfulAmount"`
	SuccessRate            float64 `json:"successRate"`
}
