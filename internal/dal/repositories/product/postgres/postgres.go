package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/evoshop/storefront/internal/service/models/currency"
	"github.com/evoshop/storefront/internal/service/models/product"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id            int64  `db:"id"`
	Name          string `db:"name"`
	PriceCents    int64  `db:"price_cents"`
	PriceCurrency string `db:"price_currency"`
	Color         string `db:"color"`
	ImagePath     string `db:"image_path"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	cur, err := currency.ParseCurrency(p.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		ID:            p.Id,
		Name:          p.Name,
		PriceCents:    p.PriceCents,
		PriceCurrency: cur,
		Color:         p.Color,
		ImagePath:     p.ImagePath,
	}, nil
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// List retrieves catalog products, optionally filtered by a name substring
// and a color tag.
func (r *PostgresProductRepository) List(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	query := r.sb.
		Select(
			"id",
			"name",
			"price_cents",
			"price_currency",
			"color",
			"image_path",
		).
		From("products").
		OrderBy("name")

	if filter.Search != "" {
		query = query.Where(sq.ILike{"name": "%" + filter.Search + "%"})
	}

	if filter.Color != "" {
		query = query.Where(sq.Eq{"color": filter.Color})
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
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.Name,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.Color,
			&dal.ImagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
