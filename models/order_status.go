package models

import (
	"fmt"
	"strings"
	"time"
)

// Transaction status values. The lifecycle is deliberately permissive: any
// state may move to any other via a webhook or a status check, matching the
// gateway's behavior. Terminal-state enforcement would be a contract change.
const (
	StatusPending   = "pending"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

// Payment modes reported by the gateway
const (
	ModeUPI        = "upi"
	ModeCard       = "card"
	ModeNetBanking = "netbanking"
	ModeWallet     = "wallet"
	ModeOther      = "other"
)

// ValidateStatus checks a gateway-reported transaction status against the
// closed enum
func ValidateStatus(status string) error {
	switch status {
	case StatusPending, StatusSuccess, StatusFailed, StatusCancelled, StatusRefunded:
		return nil
	}
	return fmt.Errorf("invalid transaction status: %q", status)
}

// ValidatePaymentMode checks a gateway-reported payment mode against the
// closed enum
func ValidatePaymentMode(mode string) error {
	switch mode {
	case ModeUPI, ModeCard, ModeNetBanking, ModeWallet, ModeOther:
		return nil
	}
	return fmt.Errorf("invalid payment mode: %q", mode)
}

// OrderStatus is the one-to-one status record for an Order, keyed by the
// order id (collect id). Optional fields are pointers so that absence is
// distinguishable from zero values.
type OrderStatus struct {
	CollectID         string     `json:"collect_id"`
	OrderAmount       float64    `json:"order_amount"`
	TransactionAmount *float64   `json:"transaction_amount,omitempty"`
	PaymentMode       *string    `json:"payment_mode,omitempty"`
	PaymentDetails    *string    `json:"payment_details,omitempty"`
	BankReference     *string    `json:"bank_reference,omitempty"`
	PaymentMessage    *string    `json:"payment_message,omitempty"`
	Status            string     `json:"status"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
	PaymentTime       *time.Time `json:"payment_time,omitempty"`
	Version           int        `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PendingStatus synthesizes the implicit pending record for an order whose
// status row has not been written yet. Readers must never treat a missing
// row as an error.
func PendingStatus(collectID string) *OrderStatus {
	return &OrderStatus{
		CollectID: collectID,
		Status:    StatusPending,
	}
}

// StatusUpdate is a partial update against an OrderStatus. Only non-nil
// fields are applied; a field omitted from a webhook or status check retains
// its previously stored value and can never be cleared by omission.
type StatusUpdate struct {
	OrderAmount       *float64
	TransactionAmount *float64
	PaymentMode       *string
	PaymentDetails    *string
	BankReference     *string
	PaymentMessage    *string
	Status            *string
	ErrorMessage      *string
	PaymentTime       *time.Time
}

// IsEmpty reports whether the update carries no fields at all
func (u *StatusUpdate) IsEmpty() bool {
	return u.OrderAmount == nil &&
		u.TransactionAmount == nil &&
		u.PaymentMode == nil &&
		u.PaymentDetails == nil &&
		u.BankReference == nil &&
		u.PaymentMessage == nil &&
		u.Status == nil &&
		u.ErrorMessage == nil &&
		u.PaymentTime == nil
}

// Validate checks the enum-typed fields of the update
func (u *StatusUpdate) Validate() error {
	if u.Status != nil {
		if err := ValidateStatus(*u.Status); err != nil {
			return err
		}
	}
	if u.PaymentMode != nil {
		if err := ValidatePaymentMode(*u.PaymentMode); err != nil {
			return err
		}
	}
	if u.OrderAmount != nil && *u.OrderAmount < 0 {
		return fmt.Errorf("order amount cannot be negative")
	}
	if u.TransactionAmount != nil && *u.TransactionAmount < 0 {
		return fmt.Errorf("transaction amount cannot be negative")
	}
	return nil
}

// Apply merges the update into s, field by field. Storage-independent so the
// same semantics back both the SQL upsert and the tests.
func (u *StatusUpdate) Apply(s *OrderStatus) {
	if u.OrderAmount != nil {
		s.OrderAmount = *u.OrderAmount
	}
	if u.TransactionAmount != nil {
		s.TransactionAmount = u.TransactionAmount
	}
	if u.PaymentMode != nil {
		s.PaymentMode = u.PaymentMode
	}
	if u.PaymentDetails != nil {
		s.PaymentDetails = u.PaymentDetails
	}
	if u.BankReference != nil {
		s.BankReference = u.BankReference
	}
	if u.PaymentMessage != nil {
		s.PaymentMessage = u.PaymentMessage
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.ErrorMessage != nil {
		s.ErrorMessage = u.ErrorMessage
	}
	if u.PaymentTime != nil {
		s.PaymentTime = u.PaymentTime
	}
}

// NormalizeErrorMessage maps the gateway's "NA" sentinel to absent. Applied
// on every write and read path so the sentinel never leaks into stored or
// returned state.
func NormalizeErrorMessage(msg *string) *string {
	if msg == nil {
		return nil
	}
	if v := strings.TrimSpace(*msg); v == "" || v == "NA" {
		return nil
	}
	return msg
}
