package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payments-dashboard/http/response"
	"payments-dashboard/services"
	"payments-dashboard/utils"
)

// TransactionHandler serves the read side: listings, stats, export, status
// reconciliation and receipts
type TransactionHandler struct {
	transactions *services.TransactionService
	payments     *services.PaymentService
	orders       *services.OrderStore
	statuses     *services.StatusStore
}

func NewTransactionHandler(transactions *services.TransactionService, payments *services.PaymentService,
	orders *services.OrderStore, statuses *services.StatusStore) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		payments:     payments,
		orders:       orders,
		statuses:     statuses,
	}
}

// parseListParams reads the shared listing query surface. schoolID
// overrides the query parameter when the route scopes it.
func parseListParams(r *http.Request, schoolID string) (services.ListParams, error) {
	startDate, err := utils.ParseDate(r, "startDate")
	if err != nil {
		return services.ListParams{}, err
	}
	endDate, err := utils.ParseDate(r, "endDate")
	if err != nil {
		return services.ListParams{}, err
	}

	if schoolID == "" {
		schoolID = r.URL.Query().Get("schoolId")
	}

	params := services.ListParams{
		TransactionFilter: services.TransactionFilter{
			Status:    r.URL.Query().Get("status"),
			SchoolID:  schoolID,
			StartDate: startDate,
			EndDate:   endDate,
		},
		SortBy: r.URL.Query().Get("sortBy"),
		Order:  r.URL.Query().Get("order"),
		Page:   utils.ParsePage(r, services.DefaultPage),
		Limit:  utils.ParseLimit(r, services.DefaultLimit),
	}
	params.Normalize()
	return params, nil
}

// filterEcho reflects the applied filters and sort back to the client
func filterEcho(params services.ListParams) map[string]interface{} {
	echo := map[string]interface{}{
		"status":    params.Status,
		"schoolId":  params.SchoolID,
		"startDate": "",
		"endDate":   "",
		"sortBy":    params.SortBy,
		"order":     params.Order,
	}
	if params.StartDate != nil {
		echo["startDate"] = params.StartDate.Format("2006-01-02T15:04:05Z07:00")
	}
	if params.EndDate != nil {
		echo["endDate"] = params.EndDate.Format("2006-01-02T15:04:05Z07:00")
	}
	return echo
}

func (h *TransactionHandler) list(w http.ResponseWriter, r *http.Request, schoolID string) {
	params, err := parseListParams(r, schoolID)
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, pagination, err := h.transactions.List(r.Context(), params)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SendJSON(w, http.StatusOK, map[string]interface{}{
		"data":       transactions,
		"pagination": pagination,
		"filters":    filterEcho(params),
	})
}

// ListTransactions is GET /transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

// ListBySchool is GET /transactions/school/{schoolId}
func (h *TransactionHandler) ListBySchool(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "schoolId"))
}

// GetStats is GET /transactions/stats
func (h *TransactionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r, "")
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.transactions.Stats(r.Context(), params.TransactionFilter)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SendJSON(w, http.StatusOK, stats)
}

// GetStatus is GET /transactions/status/{collectId}: it reconciles against
// the live gateway (best-effort) and returns the current local state
func (h *TransactionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	collectID := chi.URLParam(r, "collectId")

	status, err := h.payments.ReconcileStatus(r.Context(), collectID)
	if err != nil {
		if response.StatusCode(err) == http.StatusNotFound {
			response.Message(w, http.StatusNotFound, "Transaction not found")
			return
		}
		response.Error(w, err)
		return
	}

	if status.CreatedAt.IsZero() {
		// No status row yet: synthesized pending
		response.SendJSON(w, http.StatusOK, map[string]interface{}{
			"collect_id": collectID,
			"status":     status.Status,
			"message":    "Transaction status not yet available",
		})
		return
	}

	response.SendJSON(w, http.StatusOK, map[string]interface{}{
		"collect_id":         status.CollectID,
		"status":             status.Status,
		"order_amount":       status.OrderAmount,
		"transaction_amount": status.TransactionAmount,
		"payment_mode":       status.PaymentMode,
		"payment_details":    status.PaymentDetails,
		"bank_reference":     status.BankReference,
		"payment_message":    status.PaymentMessage,
		"error_message":      status.ErrorMessage,
		"payment_time":       status.PaymentTime,
		"last_updated":       status.UpdatedAt,
	})
}

// Export is GET /transactions/export: the filtered join as an Excel
// download, unpaginated
func (h *TransactionHandler) Export(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r, "")
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	params.Page = 1
	params.Limit = services.MaxLimit

	transactions, pagination, err := h.transactions.List(r.Context(), params)
	if err != nil {
		response.Error(w, err)
		return
	}
	for params.Page < pagination.TotalPages {
		params.Page++
		next, _, err := h.transactions.List(r.Context(), params)
		if err != nil {
			response.Error(w, err)
			return
		}
		transactions = append(transactions, next...)
	}

	workbook, err := services.ExportTransactionsXLSX(transactions)
	if err != nil {
		response.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(workbook)
}

// GetReceipt is GET /transactions/receipt/{collectId}: the payment receipt
// as a PDF download
func (h *TransactionHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	collectID := chi.URLParam(r, "collectId")

	order, err := h.orders.GetByID(r.Context(), collectID)
	if err != nil {
		if response.StatusCode(err) == http.StatusNotFound {
			response.Message(w, http.StatusNotFound, "Transaction not found")
			return
		}
		response.Error(w, err)
		return
	}

	status, _, err := h.statuses.Get(r.Context(), collectID)
	if err != nil {
		response.Error(w, err)
		return
	}

	receipt, err := services.BuildReceiptPDF(order, status)
	if err != nil {
		response.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%s.pdf"`, collectID))
	w.WriteHeader(http.StatusOK)
	w.Write(receipt)
}
