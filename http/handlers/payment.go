package handlers

import (
	"encoding/json"
	"net/http"

	"payments-dashboard/http/response"
	"payments-dashboard/models"
	"payments-dashboard/services"
	"payments-dashboard/utils"
)

// PaymentHandler serves payment creation
type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var input utils.CreatePaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := utils.ValidateCreatePayment(&input); len(errs) > 0 {
		response.SendJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "Validation failed",
			"errors":  errs,
		})
		return
	}

	result, err := h.payments.CreatePayment(r.Context(), services.CreatePaymentRequest{
		OrderAmount: input.OrderAmount,
		CallbackURL: input.CallbackURL,
		StudentInfo: models.StudentInfo{
			Name:  input.StudentInfo.Name,
			ID:    input.StudentInfo.ID,
			Email: input.StudentInfo.Email,
		},
	})
	if err != nil {
		// A gateway failure keeps the order: answer 502 with the failure
		// class and the collect id the client can poll later.
		if gerr, ok := err.(*services.GatewayError); ok && result != nil {
			response.SendJSON(w, http.StatusBadGateway, map[string]interface{}{
				"message":    gerr.UserMessage(),
				"collect_id": result.CollectID,
				"error_code": gerr.Class,
			})
			return
		}
		response.Error(w, err)
		return
	}

	response.SendJSON(w, http.StatusOK, result)
}
