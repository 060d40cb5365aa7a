package services

import (
	"context"
	"fmt"
	"time"

	apperrors "payments-dashboard/errors"
	"payments-dashboard/models"
)

// In-memory repository fakes used by the payment and webhook service tests.

type fakeOrders struct {
	orders map[string]*models.Order
	nextID int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]*models.Order{}}
}

func (f *fakeOrders) Insert(_ context.Context, order *models.Order) error {
	f.nextID++
	order.ID = fmt.Sprintf("order-%d", f.nextID)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	if order.GatewayName == "" {
		order.GatewayName = models.DefaultGatewayName
	}
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrders) UpdateGatewayName(_ context.Context, id, gatewayName string) error {
	order, ok := f.orders[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}
	order.GatewayName = gatewayName
	return nil
}

type fakeStatuses struct {
	statuses map[string]*models.OrderStatus
}

func newFakeStatuses() *fakeStatuses {
	return &fakeStatuses{statuses: map[string]*models.OrderStatus{}}
}

func (f *fakeStatuses) Insert(_ context.Context, collectID string, orderAmount float64) error {
	now := time.Now()
	f.statuses[collectID] = &models.OrderStatus{
		CollectID:   collectID,
		OrderAmount: orderAmount,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

func (f *fakeStatuses) Get(_ context.Context, collectID string) (*models.OrderStatus, bool, error) {
	status, ok := f.statuses[collectID]
	if !ok {
		return models.PendingStatus(collectID), false, nil
	}
	copied := *status
	return &copied, true, nil
}

func (f *fakeStatuses) ApplyUpdate(ctx context.Context, collectID string, update *models.StatusUpdate) (*models.OrderStatus, error) {
	update.ErrorMessage = models.NormalizeErrorMessage(update.ErrorMessage)
	status, ok := f.statuses[collectID]
	if !ok {
		now := time.Now()
		status = &models.OrderStatus{
			CollectID: collectID,
			Status:    models.StatusPending,
			CreatedAt: now,
		}
		f.statuses[collectID] = status
	}
	update.Apply(status)
	status.Version++
	status.UpdatedAt = time.Now()
	copied := *status
	return &copied, nil
}

func (f *fakeStatuses) MarkFailed(ctx context.Context, collectID, errorMessage string) error {
	failed := models.StatusFailed
	_, err := f.ApplyUpdate(ctx, collectID, &models.StatusUpdate{
		Status:       &failed,
		ErrorMessage: &errorMessage,
	})
	return err
}

type fakeAuditLog struct {
	entries   []models.WebhookLog
	appendErr error
	nextID    int
}

func (f *fakeAuditLog) Append(_ context.Context, entry *models.WebhookLog) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.nextID++
	entry.ID = f.nextID
	entry.ReceivedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeGateway struct {
	paymentURL  string
	createErr   error
	status      *GatewayStatus
	statusErr   error
	createCalls int
	statusCalls int
}

func (f *fakeGateway) CreateCollectRequest(_ context.Context, amount float64, callbackURL, collectID string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.paymentURL, nil
}

func (f *fakeGateway) CheckStatus(_ context.Context, collectID string) (*GatewayStatus, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }
