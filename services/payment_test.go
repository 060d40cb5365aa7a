package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "payments-dashboard/errors"
	"payments-dashboard/models"
)

func newPaymentFixture(gateway *fakeGateway) (*PaymentService, *fakeOrders, *fakeStatuses) {
	orders := newFakeOrders()
	statuses := newFakeStatuses()
	svc := NewPaymentService(orders, statuses, gateway, "school-1")
	return svc, orders, statuses
}

func TestCreatePayment(t *testing.T) {
	gateway := &fakeGateway{paymentURL: "https://pay.example.com/c/123"}
	svc, orders, statuses := newPaymentFixture(gateway)
	ctx := context.Background()

	result, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		OrderAmount: 2500,
		CallbackURL: "https://school.example.com/callback",
		StudentInfo: models.StudentInfo{Name: "Asha Verma", ID: "STU-100", Email: "asha@example.com"},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	if result.PaymentURL != "https://pay.example.com/c/123" {
		t.Errorf("payment url = %q", result.PaymentURL)
	}
	if result.CollectID == "" {
		t.Fatal("missing collect id")
	}
	if result.OrderAmount != 2500 {
		t.Errorf("order amount = %v, want 2500", result.OrderAmount)
	}
	if gateway.createCalls != 1 {
		t.Errorf("gateway create calls = %d, want 1", gateway.createCalls)
	}

	order, err := orders.GetByID(ctx, result.CollectID)
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if order.SchoolID != "school-1" {
		t.Errorf("school id = %q", order.SchoolID)
	}
	if order.GatewayName != models.DefaultGatewayName {
		t.Errorf("gateway name = %q, want %q", order.GatewayName, models.DefaultGatewayName)
	}

	status, found, err := statuses.Get(ctx, result.CollectID)
	if err != nil || !found {
		t.Fatalf("status not persisted: found=%v err=%v", found, err)
	}
	if status.Status != models.StatusPending {
		t.Errorf("initial status = %q, want pending", status.Status)
	}
	if status.OrderAmount != 2500 {
		t.Errorf("status order amount = %v, want 2500", status.OrderAmount)
	}
}

func TestCreatePaymentGatewayFailure(t *testing.T) {
	gwErr := &GatewayError{Class: GatewayTimeout, Op: "create-collect-request", Err: errors.New("deadline exceeded")}
	gateway := &fakeGateway{createErr: gwErr}
	svc, orders, statuses := newPaymentFixture(gateway)
	ctx := context.Background()

	result, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		OrderAmount: 1000,
		CallbackURL: "https://school.example.com/callback",
		StudentInfo: models.StudentInfo{Name: "Ravi", ID: "STU-200", Email: "ravi@example.com"},
	})

	var returned *GatewayError
	if !errors.As(err, &returned) || returned.Class != GatewayTimeout {
		t.Fatalf("expected the gateway timeout error back, got %v", err)
	}

	// The order survives as the audit record of the attempt.
	if result == nil || result.CollectID == "" {
		t.Fatal("partial result must carry the collect id")
	}
	if result.PaymentURL != "" {
		t.Errorf("partial result must not carry a payment url, got %q", result.PaymentURL)
	}
	if _, err := orders.GetByID(ctx, result.CollectID); err != nil {
		t.Errorf("order was rolled back: %v", err)
	}

	status, _, err := statuses.Get(ctx, result.CollectID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.Status != models.StatusFailed {
		t.Errorf("status = %q, want failed", status.Status)
	}
	if status.ErrorMessage == nil || !strings.Contains(*status.ErrorMessage, "timed out") {
		t.Errorf("error message = %v, want the timeout class message", status.ErrorMessage)
	}
}

func TestReconcileStatusMergesGatewayView(t *testing.T) {
	gateway := &fakeGateway{paymentURL: "https://pay.example.com/c/1"}
	svc, orders, statuses := newPaymentFixture(gateway)
	ctx := context.Background()

	result, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		OrderAmount: 500,
		CallbackURL: "https://school.example.com/cb",
		StudentInfo: models.StudentInfo{Name: "Meena", ID: "STU-300", Email: "meena@example.com"},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	gateway.status = &GatewayStatus{
		Status:            models.StatusSuccess,
		TransactionAmount: floatPtr(500),
		PaymentMode:       strPtr(models.ModeCard),
		BankReference:     strPtr("ICIC000777"),
		PaymentTime:       strPtr("2026-08-03T12:00:00Z"),
	}

	status, err := svc.ReconcileStatus(ctx, result.CollectID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status.Status != models.StatusSuccess {
		t.Errorf("status = %q, want success", status.Status)
	}
	if status.TransactionAmount == nil || *status.TransactionAmount != 500 {
		t.Errorf("transaction amount = %v, want 500", status.TransactionAmount)
	}
	if status.PaymentTime == nil {
		t.Error("payment time from the gateway was not recorded")
	}

	order, err := orders.GetByID(ctx, result.CollectID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.GatewayName != "Card Payment" {
		t.Errorf("gateway name = %q, want Card Payment", order.GatewayName)
	}

	stored, _, err := statuses.Get(ctx, result.CollectID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if stored.Status != models.StatusSuccess {
		t.Errorf("stored status = %q, reconciliation must persist the merge", stored.Status)
	}
}

func TestReconcileStatusDegradesOnGatewayFailure(t *testing.T) {
	gateway := &fakeGateway{paymentURL: "https://pay.example.com/c/1"}
	svc, _, statuses := newPaymentFixture(gateway)
	ctx := context.Background()

	result, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		OrderAmount: 750,
		CallbackURL: "https://school.example.com/cb",
		StudentInfo: models.StudentInfo{Name: "Kiran", ID: "STU-400", Email: "kiran@example.com"},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	// Record a success before the gateway starts failing.
	success := models.StatusSuccess
	if _, err := statuses.ApplyUpdate(ctx, result.CollectID, &models.StatusUpdate{Status: &success}); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	for _, class := range []string{GatewayTimeout, GatewayAuthFailure, GatewayServerError, GatewayMalformedResponse} {
		t.Run(class, func(t *testing.T) {
			gateway.statusErr = &GatewayError{Class: class, Op: "check-status", Err: errors.New("boom")}

			status, err := svc.ReconcileStatus(ctx, result.CollectID)
			if err != nil {
				t.Fatalf("gateway failure must degrade, not fail the request: %v", err)
			}
			if status.Status != models.StatusSuccess {
				t.Errorf("degraded status = %q, want the stored success", status.Status)
			}
		})
	}
}

func TestReconcileStatusIgnoresUnusableGatewayStatus(t *testing.T) {
	gateway := &fakeGateway{paymentURL: "https://pay.example.com/c/1"}
	svc, _, _ := newPaymentFixture(gateway)
	ctx := context.Background()

	result, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		OrderAmount: 300,
		CallbackURL: "https://school.example.com/cb",
		StudentInfo: models.StudentInfo{Name: "Dev", ID: "STU-500", Email: "dev@example.com"},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	gateway.status = &GatewayStatus{Status: "settled"}

	status, err := svc.ReconcileStatus(ctx, result.CollectID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status.Status != models.StatusPending {
		t.Errorf("status = %q, an out-of-enum gateway status must not be applied", status.Status)
	}
}

func TestReconcileStatusUnknownOrder(t *testing.T) {
	svc, _, _ := newPaymentFixture(&fakeGateway{})

	_, err := svc.ReconcileStatus(context.Background(), "no-such-order")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if apperrors.KindOf(err) != apperrors.NotFound {
		t.Errorf("error kind = %v, want NotFound", apperrors.KindOf(err))
	}
}

func TestReconcileStatusSynthesizesPending(t *testing.T) {
	gateway := &fakeGateway{statusErr: &GatewayError{Class: GatewayServerError, Op: "check-status"}}
	orders := newFakeOrders()
	statuses := newFakeStatuses()
	svc := NewPaymentService(orders, statuses, gateway, "school-1")
	ctx := context.Background()

	order := &models.Order{SchoolID: "school-1", StudentInfo: models.StudentInfo{Name: "N", ID: "S", Email: "n@example.com"}}
	if err := orders.Insert(ctx, order); err != nil {
		t.Fatalf("insert order: %v", err)
	}

	// No status row was ever written for this order.
	status, err := svc.ReconcileStatus(ctx, order.ID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if status.Status != models.StatusPending {
		t.Errorf("synthesized status = %q, want pending", status.Status)
	}
	if status.CollectID != order.ID {
		t.Errorf("collect id = %q, want %q", status.CollectID, order.ID)
	}
}
