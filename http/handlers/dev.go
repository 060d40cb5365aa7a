package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"payments-dashboard/http/response"
	"payments-dashboard/services"
)

// DevHandler hosts local-development helpers. Never mounted outside dev
// mode; nothing here is part of the reconciliation contract.
type DevHandler struct {
	webhooks *services.WebhookService
}

func NewDevHandler(webhooks *services.WebhookService) *DevHandler {
	return &DevHandler{webhooks: webhooks}
}

// SimulatePayment fabricates a gateway webhook for an order and pushes it
// through the normal ingestion path
func (h *DevHandler) SimulatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CollectID   string `json:"collect_id"`
		Status      string `json:"status"`
		PaymentMode string `json:"payment_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CollectID == "" {
		response.Message(w, http.StatusBadRequest, "collect_id is required")
		return
	}
	if req.Status == "" {
		req.Status = "success"
	}
	if req.PaymentMode == "" {
		req.PaymentMode = "card"
	}

	errorMessage := "NA"
	message := "Payment successful"
	if req.Status == "failed" {
		errorMessage = "Test failure simulation"
		message = "Payment failed"
	}

	payload := map[string]interface{}{
		"status": 200,
		"order_info": map[string]interface{}{
			"order_id":           req.CollectID,
			"order_amount":       2000,
			"transaction_amount": 2000,
			"bank_reference":     fmt.Sprintf("REF%d", time.Now().UnixNano()),
			"status":             req.Status,
			"payment_mode":       req.PaymentMode,
			"payemnt_details":    fmt.Sprintf("%s payment completed successfully", req.PaymentMode),
			"Payment_message":    message,
			"payment_time":       time.Now().UTC().Format(time.RFC3339),
			"error_message":      errorMessage,
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		response.Error(w, err)
		return
	}

	result, err := h.webhooks.Ingest(r.Context(), raw)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SendJSON(w, http.StatusOK, map[string]interface{}{
		"message":          "Payment status simulated",
		"collect_id":       req.CollectID,
		"simulated_status": req.Status,
		"payment_mode":     req.PaymentMode,
		"webhook_result":   result,
	})
}
