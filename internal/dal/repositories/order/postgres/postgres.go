package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/evoshop/storefront/internal/service/models/currency"
	"github.com/evoshop/storefront/internal/service/models/order"
	"github.com/evoshop/storefront/internal/service/models/orderitem"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id              uuid.UUID `db:"id"`
	UserId          uuid.UUID `db:"user_id"`
	TotalCents      int64     `db:"total_cents"`
	TotalCurrency   string    `db:"total_currency"`
	ShippingAddress string    `db:"shipping_address"`
	PaymentMethod   string    `db:"payment_method"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.TotalCurrency)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:              o.Id,
		UserID:          o.UserId,
		TotalCents:      o.TotalCents,
		TotalCurrency:   cur,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Status:          order.Status(o.Status),
		CreatedAt:       o.CreatedAt,
		OrderItems:      []orderitem.OrderItem{}, // Will be populated separately
	}, nil
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert creates a single order row. The id is generated by the caller so a
// retried placement is distinguishable from a new one.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	sql, args, err := r.sb.
		Insert("orders").
		Columns(
			"id",
			"user_id",
			"total_cents",
			"total_currency",
			"shipping_address",
			"payment_method",
			"status",
			"created_at",
		).
		Values(
			o.ID,
			o.UserID,
			o.TotalCents,
			o.TotalCurrency.String(),
			o.ShippingAddress,
			o.PaymentMethod,
			string(o.Status),
			o.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.
		Select(
			"id",
			"user_id",
			"total_cents",
			"total_currency",
			"shipping_address",
			"payment_method",
			"status",
			"created_at",
		).
		From("orders").
		OrderBy("created_at DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.UserIds) > 0 {
		query = query.Where(sq.Eq{"user_id": filter.UserIds})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.UserId,
			&dal.TotalCents,
			&dal.TotalCurrency,
			&dal.ShippingAddress,
			&dal.PaymentMethod,
			&dal.Status,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
