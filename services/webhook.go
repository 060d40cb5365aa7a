package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "payments-dashboard/errors"
	"payments-dashboard/logger"
	"payments-dashboard/models"
)

// WebhookPayload is the gateway's asynchronous notification of a payment
// outcome. Deliveries may be duplicated or arrive out of order.
type WebhookPayload struct {
	Status    int               `json:"status"`
	OrderInfo *WebhookOrderInfo `json:"order_info"`
}

// WebhookOrderInfo carries the payment fields of a webhook delivery. The
// "payemnt_details" and "Payment_message" keys reproduce the gateway's exact
// spelling; renaming them breaks ingestion.
type WebhookOrderInfo struct {
	OrderID           string   `json:"order_id"`
	OrderAmount       *float64 `json:"order_amount,omitempty"`
	TransactionAmount *float64 `json:"transaction_amount,omitempty"`
	Gateway           *string  `json:"gateway,omitempty"`
	BankReference     *string  `json:"bank_reference,omitempty"`
	Status            *string  `json:"status,omitempty"`
	PaymentMode       *string  `json:"payment_mode,omitempty"`
	PaymentDetails    *string  `json:"payemnt_details,omitempty"`
	PaymentMessage    *string  `json:"Payment_message,omitempty"`
	PaymentTime       *string  `json:"payment_time,omitempty"`
	ErrorMessage      *string  `json:"error_message,omitempty"`
}

// Notifier delivers a receipt after a successful payment. Best-effort;
// ingestion never waits on it.
type Notifier interface {
	SendPaymentReceipt(order *models.Order, status *models.OrderStatus)
}

// WebhookService ingests gateway webhooks: every delivery is audit-logged,
// payload problems are recovered into a failed log entry plus an embedded
// error (HTTP 200), and valid deliveries are partial-merged into OrderStatus.
// Replaying the same payload is safe: the merge converges, only the audit
// log grows.
type WebhookService struct {
	orders   OrderRepository
	statuses StatusRepository
	logs     WebhookAuditLog
	notifier Notifier
}

// WebhookAuditLog is the append-only record of webhook deliveries
type WebhookAuditLog interface {
	Append(ctx context.Context, entry *models.WebhookLog) error
}

func NewWebhookService(orders OrderRepository, statuses StatusRepository, logs WebhookAuditLog, notifier Notifier) *WebhookService {
	return &WebhookService{
		orders:   orders,
		statuses: statuses,
		logs:     logs,
		notifier: notifier,
	}
}

// IngestResult reports the outcome of one delivery. A non-empty Err means
// the payload could not be processed; the HTTP layer still answers 200 so
// the gateway does not retry a payload it cannot fix.
type IngestResult struct {
	Message   string `json:"message"`
	CollectID string `json:"collect_id,omitempty"`
	Err       string `json:"error,omitempty"`
}

// Ingest processes one webhook delivery. The returned error is reserved for
// infrastructure faults (the audit log itself cannot be written); everything
// else is recovered into the result.
func (s *WebhookService) Ingest(ctx context.Context, raw []byte) (*IngestResult, error) {
	entry := &models.WebhookLog{
		Payload: json.RawMessage(raw),
		Status:  models.WebhookProcessed,
	}

	collectID, processErr := s.process(ctx, raw, entry)

	if processErr != nil {
		logger.Error("Webhook processing error: %v", processErr)
		entry.Status = models.WebhookFailed
		msg := processErr.Error()
		entry.ProcessingError = &msg
	}

	if err := s.logs.Append(ctx, entry); err != nil {
		// Without an audit row the delivery is unaccounted for; surface a
		// real failure so the gateway retries.
		return nil, apperrors.E(apperrors.Internal, "could not record webhook delivery", err)
	}

	if processErr != nil {
		return &IngestResult{
			Message: "Webhook received but processing failed",
			Err:     processErr.Error(),
		}, nil
	}

	return &IngestResult{
		Message:   "Webhook processed successfully",
		CollectID: collectID,
	}, nil
}

// process does the actual extraction and merge, annotating the audit entry
// as it learns more about the delivery
func (s *WebhookService) process(ctx context.Context, raw []byte, entry *models.WebhookLog) (string, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("invalid webhook payload: %w", err)
	}

	if payload.OrderInfo == nil || payload.OrderInfo.OrderID == "" {
		return "", fmt.Errorf("invalid webhook payload: missing order_id")
	}

	info := payload.OrderInfo
	collectID := info.OrderID
	entry.OrderID = &collectID

	logger.Info("Webhook received for order %s (gateway status %d)", collectID, payload.Status)

	order, err := s.orders.GetByID(ctx, collectID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.NotFound {
			return collectID, fmt.Errorf("order with collect_id %s not found", collectID)
		}
		return collectID, fmt.Errorf("could not load order %s: %w", collectID, err)
	}

	update := updateFromWebhook(info)
	if err := update.Validate(); err != nil {
		return collectID, fmt.Errorf("invalid webhook payload: %w", err)
	}

	if name, ok := ResolveGatewayName(info.Gateway, info.PaymentMode); ok {
		if err := s.orders.UpdateGatewayName(ctx, collectID, name); err != nil {
			return collectID, fmt.Errorf("could not update gateway name: %w", err)
		}
	}

	status, err := s.statuses.ApplyUpdate(ctx, collectID, update)
	if err != nil {
		return collectID, fmt.Errorf("could not update order status: %w", err)
	}

	logger.Info("Order status updated for collect_id %s: %s", collectID, status.Status)
	PublishPaymentUpdated(collectID, status.Status, "webhook")

	if status.Status == models.StatusSuccess && s.notifier != nil {
		s.notifier.SendPaymentReceipt(order, status)
	}

	return collectID, nil
}

// updateFromWebhook builds the partial merge for the ingestion path: only
// fields present in this delivery are carried; a later webhook can never
// clear a field by omitting it. On success with no payment_time the receipt
// time stands in for it (ingestion-path behavior only).
func updateFromWebhook(info *WebhookOrderInfo) *models.StatusUpdate {
	update := &models.StatusUpdate{
		OrderAmount:       info.OrderAmount,
		TransactionAmount: info.TransactionAmount,
		PaymentMode:       info.PaymentMode,
		PaymentDetails:    info.PaymentDetails,
		BankReference:     info.BankReference,
		PaymentMessage:    info.PaymentMessage,
		Status:            info.Status,
		ErrorMessage:      models.NormalizeErrorMessage(info.ErrorMessage),
	}

	if info.PaymentTime != nil {
		if t, err := time.Parse(time.RFC3339, *info.PaymentTime); err == nil {
			update.PaymentTime = &t
		}
	}
	if update.PaymentTime == nil && info.Status != nil && *info.Status == models.StatusSuccess {
		now := time.Now().UTC()
		update.PaymentTime = &now
	}

	return update
}

// paymentModeNames maps gateway payment modes to the display name recorded
// on the order
var paymentModeNames = map[string]string{
	models.ModeCard:       "Card Payment",
	models.ModeUPI:        "UPI",
	models.ModeNetBanking: "Net Banking",
	models.ModeWallet:     "Wallet",
}

// ResolveGatewayName picks the processor name for an order: a non-empty
// gateway field wins verbatim (trimmed), else the payment mode maps through
// the fixed table, else the name stays unchanged (ok=false).
func ResolveGatewayName(gateway, paymentMode *string) (string, bool) {
	if gateway != nil {
		if name := strings.TrimSpace(*gateway); name != "" {
			return name, true
		}
	}
	if paymentMode != nil && *paymentMode != "" {
		mode := strings.ToLower(*paymentMode)
		if name, ok := paymentModeNames[mode]; ok {
			return name, true
		}
		return strings.ToUpper(*paymentMode), true
	}
	return "", false
}
