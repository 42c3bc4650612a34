package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/evoshop/storefront/internal/service/models/currency"
	"github.com/evoshop/storefront/internal/service/models/product"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CartItemDal represents a cart line data access layer model joined with its
// product snapshot.
type CartItemDal struct {
	UserId        uuid.UUID `db:"user_id"`
	ProductId     int64     `db:"product_id"`
	Size          string    `db:"size"`
	Quantity      int       `db:"quantity"`
	ProductName   string    `db:"name"`
	PriceCents    int64     `db:"price_cents"`
	PriceCurrency string    `db:"price_currency"`
	Color         string    `db:"color"`
	ImagePath     string    `db:"image_path"`
}

// ToModel converts CartItemDal to the service layer CartLine model.
func (c *CartItemDal) ToModel() (*cartline.CartLine, error) {
	cur, err := currency.ParseCurrency(c.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &cartline.CartLine{
		UserID:    c.UserId,
		ProductID: c.ProductId,
		Size:      c.Size,
		Quantity:  c.Quantity,
		Product: product.Product{
			ID:            c.ProductId,
			Name:          c.ProductName,
			PriceCents:    c.PriceCents,
			PriceCurrency: cur,
			Color:         c.Color,
			ImagePath:     c.ImagePath,
		},
	}, nil
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresCartItemRepository represents a Postgres cart item repository.
type PostgresCartItemRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresCartItemRepository creates a new Postgres cart item repository.
func NewPostgresCartItemRepository(conn GenericConn) *PostgresCartItemRepository {
	return &PostgresCartItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Upsert adds delta to the quantity of the line keyed by (user, product, size),
// creating the line when it does not exist. The conflict target is the
// composite primary key, so concurrent duplicate adds converge on one row.
func (r *PostgresCartItemRepository) Upsert(
	ctx context.Context,
	userID uuid.UUID,
	productID int64,
	size string,
	delta int,
) error {
	sql, args, err := r.sb.
		Insert("cart_items").
		Columns("user_id", "product_id", "size", "quantity").
		Values(userID, productID, size, delta).
		Suffix(`
			ON CONFLICT (user_id, product_id, size)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// UpdateQuantity sets the quantity of exactly one line. The filter always
// carries the full composite key so lines sharing a product but differing by
// size are never touched together.
func (r *PostgresCartItemRepository) UpdateQuantity(
	ctx context.Context,
	userID uuid.UUID,
	productID int64,
	size string,
	quantity int,
) error {
	sql, args, err := r.sb.
		Update("cart_items").
		Set("quantity", quantity).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID, "product_id": productID, "size": size}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	return nil
}

// Delete removes exactly one line by its composite key.
func (r *PostgresCartItemRepository) Delete(
	ctx context.Context,
	userID uuid.UUID,
	productID int64,
	size string,
) error {
	sql, args, err := r.sb.
		Delete("cart_items").
		Where(sq.Eq{"user_id": userID, "product_id": productID, "size": size}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// ListByUser retrieves all cart lines owned by the user joined with their
// product snapshots.
func (r *PostgresCartItemRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]cartline.CartLine, error) {
	sql, args, err := r.sb.
		Select(
			"ci.user_id",
			"ci.product_id",
			"ci.size",
			"ci.quantity",
			"p.name",
			"p.price_cents",
			"p.price_currency",
			"p.color",
			"p.image_path",
		).
		From("cart_items ci").
		Join("products p ON p.id = ci.product_id").
		Where(sq.Eq{"ci.user_id": userID}).
		OrderBy("ci.created_at", "ci.product_id", "ci.size").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var result []cartline.CartLine
	for rows.Next() {
		var dal CartItemDal
		err := rows.Scan(
			&dal.UserId,
			&dal.ProductId,
			&dal.Size,
			&dal.Quantity,
			&dal.ProductName,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.Color,
			&dal.ImagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert cart item dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
