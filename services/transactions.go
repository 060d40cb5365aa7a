package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"payments-dashboard/models"
)

// Pagination bounds for transaction listings
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TransactionFilter narrows the Order/OrderStatus join. The payment_time
// range is inclusive on both ends.
type TransactionFilter struct {
	Status    string
	SchoolID  string
	StartDate *time.Time
	EndDate   *time.Time
}

// ListParams is a filter plus sort and pagination
type ListParams struct {
	TransactionFilter
	SortBy string
	Order  string
	Page   int
	Limit  int
}

// Normalize clamps pagination into range and fills defaults
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.SortBy == "" {
		p.SortBy = "payment_time"
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
}

// TransactionService is the read side: it joins orders to their status and
// serves filtered, sorted, paginated listings and aggregate statistics. It
// never mutates state.
type TransactionService struct {
	db *sql.DB
}

func NewTransactionService(database *sql.DB) *TransactionService {
	return &TransactionService{db: database}
}

const transactionJoin = `
	FROM orders o
	LEFT JOIN order_status os ON os.collect_id = o.id`

// sortColumns is the whitelist of listing sort keys. Anything else falls
// back to the order's creation time.
var sortColumns = map[string]string{
	"payment_time":       "os.payment_time",
	"order_amount":       "os.order_amount",
	"transaction_amount": "os.transaction_amount",
	"status":             "COALESCE(os.status, 'pending')",
	"created_at":         "o.created_at",
}

// buildWhere renders the filter into a WHERE clause with positional args.
// Orders without a status row count as pending for the status filter.
func buildWhere(filter TransactionFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		clauses = append(clauses, "COALESCE(os.status, 'pending') = "+arg(filter.Status))
	}
	if filter.SchoolID != "" {
		clauses = append(clauses, "o.school_id = "+arg(filter.SchoolID))
	}
	if filter.StartDate != nil {
		clauses = append(clauses, "os.payment_time >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		clauses = append(clauses, "os.payment_time <= "+arg(*filter.EndDate))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildOrderBy resolves the sort key against the whitelist and appends the
// order-id tie-break that keeps pagination deterministic
func buildOrderBy(sortBy, order string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = sortColumns["created_at"]
	}
	direction := "DESC"
	if order == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, o.id DESC", column, direction)
}

// List returns one page of the filtered join plus pagination metadata. The
// total is a full count under the same filter, independent of the slice.
func (s *TransactionService) List(ctx context.Context, params ListParams) ([]models.Transaction, models.Pagination, error) {
	params.Normalize()

	whereClause, args := buildWhere(params.TransactionFilter)

	var total int
	countQuery := "SELECT COUNT(*)" + transactionJoin + whereClause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count transactions: %w", err)
	}

	offset := (params.Page - 1) * params.Limit
	listArgs := append(args, params.Limit, offset)
	query := fmt.Sprintf(`
		SELECT o.id, o.school_id, o.student_name, o.student_id, o.student_email,
		       o.gateway_name, os.order_amount, os.transaction_amount, os.payment_mode,
		       os.payment_details, os.bank_reference, os.payment_message,
		       COALESCE(os.status, 'pending'), os.error_message, os.payment_time,
		       o.created_at, os.updated_at
		%s%s%s
		LIMIT $%d OFFSET $%d`,
		transactionJoin, whereClause, buildOrderBy(params.SortBy, params.Order),
		len(args)+1, len(args)+2)

	rows, err := s.db.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.CollectID, &tx.SchoolID, &tx.StudentName, &tx.StudentID,
			&tx.StudentEmail, &tx.GatewayName, &tx.OrderAmount, &tx.TransactionAmount,
			&tx.PaymentMode, &tx.PaymentDetails, &tx.BankReference, &tx.PaymentMessage,
			&tx.Status, &tx.ErrorMessage, &tx.PaymentTime,
			&tx.OrderCreatedAt, &tx.StatusUpdatedAt); err != nil {
			return nil, models.Pagination{}, fmt.Errorf("scan transaction: %w", err)
		}
		tx.CustomOrderID = tx.CollectID
		tx.ErrorMessage = models.NormalizeErrorMessage(tx.ErrorMessage)
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("iterate transactions: %w", err)
	}

	pagination := models.Pagination{
		CurrentPage: params.Page,
		TotalPages:  totalPages(total, params.Limit),
		TotalItems:  total,
		Limit:       params.Limit,
	}
	return transactions, pagination, nil
}

// Stats computes the aggregates over the same filtered join the listing
// reads
func (s *TransactionService) Stats(ctx context.Context, filter TransactionFilter) (*models.TransactionStats, error) {
	whereClause, args := buildWhere(filter)

	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE COALESCE(os.status, 'pending') = 'success'),
		       COUNT(*) FILTER (WHERE COALESCE(os.status, 'pending') = 'failed'),
		       COUNT(*) FILTER (WHERE COALESCE(os.status, 'pending') = 'pending'),
		       COALESCE(SUM(os.order_amount), 0),
		       COALESCE(SUM(os.transaction_amount) FILTER (WHERE os.status = 'success'), 0)` +
		transactionJoin + whereClause

	var stats models.TransactionStats
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalTransactions, &stats.SuccessfulTransactions,
		&stats.FailedTransactions, &stats.PendingTransactions,
		&stats.TotalAmount, &stats.SuccessfulAmount)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}

	stats.SuccessRate = successRate(stats.SuccessfulTransactions, stats.TotalTransactions)
	return &stats, nil
}

// successRate is success/total as a percentage rounded to two decimals,
// zero for an empty set
func successRate(successful, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(successful) / float64(total) * 100
	return math.Round(rate*100) / 100
}

func totalPages(total, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}
