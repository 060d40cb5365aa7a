package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "payments-dashboard/errors"
	"payments-dashboard/models"
	"payments-dashboard/services"
)

type stubOrders struct{}

func (stubOrders) Insert(context.Context, *models.Order) error { return nil }
func (stubOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	return nil, apperrors.NewNotFoundError("order " + id + " not found")
}
func (stubOrders) UpdateGatewayName(context.Context, string, string) error { return nil }

type stubStatuses struct{}

func (stubStatuses) Insert(context.Context, string, float64) error { return nil }
func (stubStatuses) Get(_ context.Context, collectID string) (*models.OrderStatus, bool, error) {
	return models.PendingStatus(collectID), false, nil
}
func (stubStatuses) ApplyUpdate(_ context.Context, collectID string, update *models.StatusUpdate) (*models.OrderStatus, error) {
	status := models.PendingStatus(collectID)
	update.Apply(status)
	return status, nil
}
func (stubStatuses) MarkFailed(context.Context, string, string) error { return nil }

type stubAuditLog struct {
	err     error
	entries int
}

func (l *stubAuditLog) Append(context.Context, *models.WebhookLog) error {
	if l.err != nil {
		return l.err
	}
	l.entries++
	return nil
}

func TestHandleWebhookAlwaysAccepts(t *testing.T) {
	// Payload-level problems must still answer 200 so the gateway does not
	// retry payloads it cannot fix.
	for _, tc := range []struct {
		name    string
		payload string
	}{
		{"unknown order", `{"status": 200, "order_info": {"order_id": "nope", "status": "success"}}`},
		{"invalid json", `{"broken`},
		{"missing order id", `{"status": 200, "order_info": {}}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			audit := &stubAuditLog{}
			svc := services.NewWebhookService(stubOrders{}, stubStatuses{}, audit, nil)
			handler := NewWebhookHandler(svc, nil)

			r := httptest.NewRequest("POST", "/webhook", strings.NewReader(tc.payload))
			w := httptest.NewRecorder()
			handler.HandleWebhook(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
			}
			if audit.entries != 1 {
				t.Errorf("audit entries = %d, want 1", audit.entries)
			}

			var result services.IngestResult
			if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if result.Err == "" {
				t.Error("response body carries no embedded error")
			}
		})
	}
}

func TestHandleWebhookAuditFailure(t *testing.T) {
	audit := &stubAuditLog{err: errors.New("db down")}
	svc := services.NewWebhookService(stubOrders{}, stubStatuses{}, audit, nil)
	handler := NewWebhookHandler(svc, nil)

	payload := `{"status": 200, "order_info": {"order_id": "c1", "status": "success"}}`
	r := httptest.NewRequest("POST", "/webhook", strings.NewReader(payload))
	w := httptest.NewRecorder()
	handler.HandleWebhook(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 when the audit log cannot be written", w.Code)
	}
}
