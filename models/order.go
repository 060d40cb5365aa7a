package models

import "time"

// DefaultGatewayName is the placeholder used until a webhook or status check
// reports the processor that actually handled the payment.
const DefaultGatewayName = "PhonePe"

// StudentInfo identifies the student a payment is collected for
type StudentInfo struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Order represents a single payment request. Immutable after creation except
// for GatewayName, which is overwritten whenever ingestion or reconciliation
// learns the real processor.
type Order struct {
	ID          string      `json:"id"`
	SchoolID    string      `json:"school_id"`
	TrusteeID   *string     `json:"trustee_id,omitempty"`
	StudentInfo StudentInfo `json:"student_info"`
	GatewayName string      `json:"gateway_name"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
