package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"payments-dashboard/models"
)

// WebhookLogStore is the append-only audit trail of webhook deliveries
type WebhookLogStore struct {
	db *sql.DB
}

func NewWebhookLogStore(database *sql.DB) *WebhookLogStore {
	return &WebhookLogStore{db: database}
}

// Append writes one audit row for a delivery. Called exactly once per
// delivery; rows are never rewritten afterwards.
func (s *WebhookLogStore) Append(ctx context.Context, entry *models.WebhookLog) error {
	if len(entry.Payload) == 0 {
		entry.Payload = json.RawMessage("{}")
	}
	query := `
		INSERT INTO webhook_logs (payload, status, processing_error, order_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, received_at, created_at, updated_at`
	row := s.db.QueryRowContext(ctx, query,
		string(entry.Payload), entry.Status, entry.ProcessingError, entry.OrderID)
	if err := row.Scan(&entry.ID, &entry.ReceivedAt, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return fmt.Errorf("append webhook log: %w", err)
	}
	return nil
}

// WebhookLogFilter narrows a webhook log listing
type WebhookLogFilter struct {
	Status    string
	OrderID   string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// List returns webhook log entries newest first, with the total count under
// the same filter
func (s *WebhookLogStore) List(ctx context.Context, filter WebhookLogFilter) ([]models.WebhookLog, int, error) {
	where := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.OrderID != "" {
		where = append(where, "order_id = "+arg(filter.OrderID))
	}
	if filter.StartDate != nil {
		where = append(where, "received_at >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "received_at <= "+arg(*filter.EndDate))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhook_logs"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count webhook logs: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT id, received_at, payload, status, processing_error, order_id, created_at, updated_at
		FROM webhook_logs%s
		ORDER BY received_at DESC, id DESC
		LIMIT %s OFFSET %s`, whereClause, arg(filter.Limit), arg(offset))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list webhook logs: %w", err)
	}
	defer rows.Close()

	logs := []models.WebhookLog{}
	for rows.Next() {
		var entry models.WebhookLog
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.ReceivedAt, &payload, &entry.Status,
			&entry.ProcessingError, &entry.OrderID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan webhook log: %w", err)
		}
		entry.Payload = json.RawMessage(payload)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate webhook logs: %w", err)
	}

	return logs, total, nil
}
