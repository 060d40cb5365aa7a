package services

import (
	"context"
	"time"

	apperrors "payments-dashboard/errors"
	"payments-dashboard/logger"
	"payments-dashboard/models"
)

// CollectGateway is the outbound boundary to the payment processor
type CollectGateway interface {
	CreateCollectRequest(ctx context.Context, amount float64, callbackURL, collectID string) (string, error)
	CheckStatus(ctx context.Context, collectID string) (*GatewayStatus, error)
}

// OrderRepository persists orders
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	UpdateGatewayName(ctx context.Context, id, gatewayName string) error
}

// StatusRepository persists order status records with partial-merge
// semantics
type StatusRepository interface {
	Insert(ctx context.Context, collectID string, orderAmount float64) error
	Get(ctx context.Context, collectID string) (*models.OrderStatus, bool, error)
	ApplyUpdate(ctx context.Context, collectID string, update *models.StatusUpdate) (*models.OrderStatus, error)
	MarkFailed(ctx context.Context, collectID, errorMessage string) error
}

// PaymentService owns the order lifecycle: creation against the gateway and
// on-demand reconciliation of local state with the gateway's view. It is the
// only writer of OrderStatus besides webhook ingestion.
type PaymentService struct {
	orders   OrderRepository
	statuses StatusRepository
	gateway  CollectGateway
	schoolID string
}

func NewPaymentService(orders OrderRepository, statuses StatusRepository, gateway CollectGateway, schoolID string) *PaymentService {
	return &PaymentService{
		orders:   orders,
		statuses: statuses,
		gateway:  gateway,
		schoolID: schoolID,
	}
}

// CreatePaymentRequest is the validated input for payment creation
type CreatePaymentRequest struct {
	OrderAmount float64            `json:"order_amount"`
	CallbackURL string             `json:"callback_url"`
	StudentInfo models.StudentInfo `json:"student_info"`
}

// CreatePaymentResult is returned on successful creation
type CreatePaymentResult struct {
	PaymentURL  string  `json:"payment_url"`
	CollectID   string  `json:"collect_id"`
	OrderAmount float64 `json:"order_amount"`
}

// CreatePayment persists the order plus its pending status, then registers
// the collect request with the gateway. A gateway failure does not roll the
// order back: the order stays as the audit record of the attempt, the status
// moves to failed, and the returned *GatewayError carries the failure class.
// The partial result always carries the collect id.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	order := &models.Order{
		SchoolID:    s.schoolID,
		StudentInfo: req.StudentInfo,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, apperrors.E(apperrors.Internal, "could not create order", err)
	}

	logger.Info("Order created with ID: %s", order.ID)

	if err := s.statuses.Insert(ctx, order.ID, req.OrderAmount); err != nil {
		// Readers synthesize pending for a missing status row, so the order
		// remains usable; still treat this as a hard fault.
		return nil, apperrors.E(apperrors.Internal, "could not create order status", err)
	}

	logger.Info("Calling payment gateway for order: %s", order.ID)

	paymentURL, err := s.gateway.CreateCollectRequest(ctx, req.OrderAmount, req.CallbackURL, order.ID)
	if err != nil {
		msg := "Gateway error"
		if gerr, ok := err.(*GatewayError); ok {
			msg = "Gateway error: " + gerr.UserMessage()
		}
		logger.Error("Payment gateway error for order %s: %v", order.ID, err)

		if markErr := s.statuses.MarkFailed(ctx, order.ID, msg); markErr != nil {
			logger.Error("Could not mark order %s failed: %v", order.ID, markErr)
		}

		return &CreatePaymentResult{CollectID: order.ID, OrderAmount: req.OrderAmount}, err
	}

	logger.Info("Payment gateway accepted order: %s", order.ID)
	PublishPaymentInitiated(order.ID, s.schoolID, req.OrderAmount)

	return &CreatePaymentResult{
		PaymentURL:  paymentURL,
		CollectID:   order.ID,
		OrderAmount: req.OrderAmount,
	}, nil
}

// ReconcileStatus refreshes an order's local status from the gateway and
// returns the current state. A gateway failure of any class degrades to the
// last locally stored state and never fails the request. Returns NotFound
// when no such order exists.
func (s *PaymentService) ReconcileStatus(ctx context.Context, collectID string) (*models.OrderStatus, error) {
	if _, err := s.orders.GetByID(ctx, collectID); err != nil {
		return nil, err
	}

	gwStatus, err := s.gateway.CheckStatus(ctx, collectID)
	if err != nil {
		logger.Warn("Gateway status check failed for %s: %v", collectID, err)
	} else {
		update := updateFromGatewayStatus(gwStatus)
		if err := update.Validate(); err != nil {
			logger.Warn("Gateway reported unusable status for %s: %v", collectID, err)
		} else if _, err := s.statuses.ApplyUpdate(ctx, collectID, update); err != nil {
			logger.Warn("Could not merge gateway status for %s: %v", collectID, err)
		} else {
			if name, ok := ResolveGatewayName(gwStatus.Gateway, gwStatus.PaymentMode); ok {
				if err := s.orders.UpdateGatewayName(ctx, collectID, name); err != nil {
					logger.Warn("Could not update gateway name for %s: %v", collectID, err)
				}
			}
			PublishPaymentUpdated(collectID, gwStatus.Status, "reconciliation")
		}
	}

	status, _, err := s.statuses.Get(ctx, collectID)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "could not read order status", err)
	}
	return status, nil
}

// updateFromGatewayStatus builds the partial merge for the reconciliation
// path. Unlike webhook ingestion, an absent payment_time is left untouched
// here even on success; only the gateway's own timestamp is trusted.
func updateFromGatewayStatus(gw *GatewayStatus) *models.StatusUpdate {
	update := &models.StatusUpdate{
		TransactionAmount: gw.TransactionAmount,
		PaymentMode:       gw.PaymentMode,
		PaymentDetails:    gw.PaymentDetails,
		BankReference:     gw.BankReference,
		PaymentMessage:    gw.PaymentMessage,
		ErrorMessage:      models.NormalizeErrorMessage(gw.ErrorMessage),
	}

	if gw.Status != "" {
		status := gw.Status
		update.Status = &status
	}
	if update.TransactionAmount == nil && gw.Amount != nil {
		update.TransactionAmount = gw.Amount
	}
	if gw.PaymentTime != nil {
		if t, err := time.Parse(time.RFC3339, *gw.PaymentTime); err == nil {
			update.PaymentTime = &t
		}
	}

	return update
}
