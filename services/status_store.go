package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"payments-dashboard/logger"
	"payments-dashboard/models"
)

// mergeRetries bounds the optimistic-versioning retry loop. Concurrent
// webhook delivery and reconciliation for the same order otherwise race
// under plain last-write-wins.
const mergeRetries = 3

// StatusStore persists OrderStatus records and applies partial merges
type StatusStore struct {
	db *sql.DB
}

func NewStatusStore(database *sql.DB) *StatusStore {
	return &StatusStore{db: database}
}

// Insert writes the initial pending status row for a freshly created order
func (s *StatusStore) Insert(ctx context.Context, collectID string, orderAmount float64) error {
	query := `
		INSERT INTO order_status (collect_id, order_amount, status)
		VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, collectID, orderAmount, models.StatusPending); err != nil {
		return fmt.Errorf("insert order status: %w", err)
	}
	return nil
}

// Get loads the status row for an order. A missing row is not an error: the
// caller receives the synthesized pending status and found=false.
func (s *StatusStore) Get(ctx context.Context, collectID string) (*models.OrderStatus, bool, error) {
	query := `
		SELECT collect_id, order_amount, transaction_amount, payment_mode, payment_details,
		       bank_reference, payment_message, status, error_message, payment_time,
		       version, created_at, updated_at
		FROM order_status WHERE collect_id = $1`

	var st models.OrderStatus
	row := s.db.QueryRowContext(ctx, query, collectID)
	err := row.Scan(&st.CollectID, &st.OrderAmount, &st.TransactionAmount, &st.PaymentMode,
		&st.PaymentDetails, &st.BankReference, &st.PaymentMessage, &st.Status,
		&st.ErrorMessage, &st.PaymentTime, &st.Version, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.PendingStatus(collectID), false, nil
		}
		return nil, false, fmt.Errorf("get order status: %w", err)
	}

	st.ErrorMessage = models.NormalizeErrorMessage(st.ErrorMessage)
	return &st, true, nil
}

// ApplyUpdate merges the non-nil fields of update into the status row for
// collectID, inserting the row if it does not exist yet. The version column
// guards against lost updates from concurrent merges; a failed
// expected-version check re-reads and retries.
func (s *StatusStore) ApplyUpdate(ctx context.Context, collectID string, update *models.StatusUpdate) (*models.OrderStatus, error) {
	if update.IsEmpty() {
		st, _, err := s.Get(ctx, collectID)
		return st, err
	}

	update.ErrorMessage = models.NormalizeErrorMessage(update.ErrorMessage)

	for attempt := 0; attempt < mergeRetries; attempt++ {
		current, found, err := s.Get(ctx, collectID)
		if err != nil {
			return nil, err
		}

		if !found {
			if err := s.insertFromUpdate(ctx, collectID, update); err != nil {
				if isUniqueViolation(err) {
					// Another writer created the row first; merge into it
					continue
				}
				return nil, err
			}
			st, _, err := s.Get(ctx, collectID)
			return st, err
		}

		applied, err := s.updateVersioned(ctx, collectID, current.Version, update)
		if err != nil {
			return nil, err
		}
		if applied {
			st, _, err := s.Get(ctx, collectID)
			return st, err
		}

		logger.Warn("Concurrent status update for %s, retrying merge (attempt %d)", collectID, attempt+1)
	}

	return nil, fmt.Errorf("status merge for %s lost the version race %d times", collectID, mergeRetries)
}

// insertFromUpdate creates the status row when a webhook or status check
// arrives before the creation path wrote it (upsert-if-absent semantics)
func (s *StatusStore) insertFromUpdate(ctx context.Context, collectID string, update *models.StatusUpdate) error {
	orderAmount := 0.0
	if update.OrderAmount != nil {
		orderAmount = *update.OrderAmount
	}
	status := models.StatusPending
	if update.Status != nil {
		status = *update.Status
	}

	query := `
		INSERT INTO order_status (collect_id, order_amount, transaction_amount, payment_mode,
			payment_details, bank_reference, payment_message, status, error_message, payment_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.ExecContext(ctx, query, collectID, orderAmount,
		update.TransactionAmount, update.PaymentMode, update.PaymentDetails,
		update.BankReference, update.PaymentMessage, status,
		update.ErrorMessage, update.PaymentTime)
	if err != nil {
		return fmt.Errorf("insert order status from update: %w", err)
	}
	return nil
}

// updateVersioned applies only the present fields, guarded by the expected
// version. Returns false when the version moved underneath us.
func (s *StatusStore) updateVersioned(ctx context.Context, collectID string, expectedVersion int, update *models.StatusUpdate) (bool, error) {
	setClauses := []string{"version = version + 1", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.OrderAmount != nil {
		setClauses = append(setClauses, "order_amount = "+arg(*update.OrderAmount))
	}
	if update.TransactionAmount != nil {
		setClauses = append(setClauses, "transaction_amount = "+arg(*update.TransactionAmount))
	}
	if update.PaymentMode != nil {
		setClauses = append(setClauses, "payment_mode = "+arg(*update.PaymentMode))
	}
	if update.PaymentDetails != nil {
		setClauses = append(setClauses, "payment_details = "+arg(*update.PaymentDetails))
	}
	if update.BankReference != nil {
		setClauses = append(setClauses, "bank_reference = "+arg(*update.BankReference))
	}
	if update.PaymentMessage != nil {
		setClauses = append(setClauses, "payment_message = "+arg(*update.PaymentMessage))
	}
	if update.Status != nil {
		setClauses = append(setClauses, "status = "+arg(*update.Status))
	}
	if update.ErrorMessage != nil {
		setClauses = append(setClauses, "error_message = "+arg(*update.ErrorMessage))
	}
	if update.PaymentTime != nil {
		setClauses = append(setClauses, "payment_time = "+arg(*update.PaymentTime))
	}

	query := fmt.Sprintf("UPDATE order_status SET %s WHERE collect_id = %s AND version = %s",
		strings.Join(setClauses, ", "), arg(collectID), arg(expectedVersion))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update order status rows: %w", err)
	}
	return rows > 0, nil
}

// MarkFailed records a synchronous gateway failure at creation time
func (s *StatusStore) MarkFailed(ctx context.Context, collectID, errorMessage string) error {
	failed := models.StatusFailed
	_, err := s.ApplyUpdate(ctx, collectID, &models.StatusUpdate{
		Status:       &failed,
		ErrorMessage: &errorMessage,
	})
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
