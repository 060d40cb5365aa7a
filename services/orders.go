package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "payments-dashboard/errors"
	"payments-dashboard/models"
)

// OrderStore persists Order records
type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(database *sql.DB) *OrderStore {
	return &OrderStore{db: database}
}

// Insert writes a new order and returns it with the generated id and
// timestamps filled in
func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	if order.GatewayName == "" {
		order.GatewayName = models.DefaultGatewayName
	}
	order.StudentInfo.Email = strings.ToLower(strings.TrimSpace(order.StudentInfo.Email))
	order.StudentInfo.Name = strings.TrimSpace(order.StudentInfo.Name)
	order.StudentInfo.ID = strings.TrimSpace(order.StudentInfo.ID)

	query := `
		INSERT INTO orders (school_id, trustee_id, student_name, student_id, student_email, gateway_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	row := s.db.QueryRowContext(ctx, query,
		order.SchoolID, order.TrusteeID,
		order.StudentInfo.Name, order.StudentInfo.ID, order.StudentInfo.Email,
		order.GatewayName)

	if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID loads an order by its collect id
func (s *OrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `
		SELECT id, school_id, trustee_id, student_name, student_id, student_email,
		       gateway_name, created_at, updated_at
		FROM orders WHERE id = $1`

	var order models.Order
	row := s.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&order.ID, &order.SchoolID, &order.TrusteeID,
		&order.StudentInfo.Name, &order.StudentInfo.ID, &order.StudentInfo.Email,
		&order.GatewayName, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// UpdateGatewayName overwrites the order's gateway name once the actual
// processor is known
func (s *OrderStore) UpdateGatewayName(ctx context.Context, id, gatewayName string) error {
	query := `UPDATE orders SET gateway_name = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := s.db.ExecContext(ctx, query, gatewayName, id)
	if err != nil {
		return fmt.Errorf("update gateway name: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}
	return nil
}
