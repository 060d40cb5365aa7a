package handlers

import (
	"io"
	"net/http"

	"payments-dashboard/http/response"
	"payments-dashboard/models"
	"payments-dashboard/services"
	"payments-dashboard/utils"
)

// WebhookHandler receives gateway webhooks and serves the audit log
type WebhookHandler struct {
	webhooks *services.WebhookService
	logs     *services.WebhookLogStore
}

func NewWebhookHandler(webhooks *services.WebhookService, logs *services.WebhookLogStore) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, logs: logs}
}

// HandleWebhook answers 200 for every payload-level outcome, including
// processing failures, so the gateway does not retry payloads it cannot
// fix. Only an infrastructure fault (the audit log cannot be written)
// produces a 500 and invites a retry.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Message(w, http.StatusInternalServerError, "Internal server error processing webhook")
		return
	}
	defer r.Body.Close()

	result, err := h.webhooks.Ingest(r.Context(), body)
	if err != nil {
		response.Message(w, http.StatusInternalServerError, "Internal server error processing webhook")
		return
	}

	response.SendJSON(w, http.StatusOK, result)
}

// GetWebhookLogs lists audit entries, newest first
func (h *WebhookHandler) GetWebhookLogs(w http.ResponseWriter, r *http.Request) {
	startDate, err := utils.ParseDate(r, "startDate")
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	endDate, err := utils.ParseDate(r, "endDate")
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := services.WebhookLogFilter{
		Status:    r.URL.Query().Get("status"),
		OrderID:   r.URL.Query().Get("order_id"),
		StartDate: startDate,
		EndDate:   endDate,
		Page:      utils.ParsePage(r, services.DefaultPage),
		Limit:     utils.ParseLimit(r, services.DefaultLimit),
	}
	if filter.Limit > services.MaxLimit {
		filter.Limit = services.MaxLimit
	}

	logs, total, err := h.logs.List(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SendJSON(w, http.StatusOK, map[string]interface{}{
		"data": logs,
		"pagination": models.Pagination{
			CurrentPage: filter.Page,
			TotalPages:  (total + filter.Limit - 1) / filter.Limit,
			TotalItems:  total,
			Limit:       filter.Limit,
		},
	})
}
