package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

const orderColumns = `id, owner_id, items, shipping_address, payment_method,
       items_price_cents, shipping_price_cents, tax_price_cents, total_price_cents,
       status, paid_at, delivered_at, gateway_proof, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	q := `
INSERT INTO orders (id, owner_id, items, shipping_address, payment_method,
                    items_price_cents, shipping_price_cents, tax_price_cents, total_price_cents, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + orderColumns
	created, err := scanOrder(r.pool.QueryRow(ctx, q,
		o.ID,
		o.OwnerID,
		o.Items,
		o.ShippingAddress,
		o.PaymentMethod,
		o.ItemsPriceCents,
		o.ShippingPriceCents,
		o.TaxPriceCents,
		o.TotalPriceCents,
		string(domain.OrderStatusCreated),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("order repo: create failed", zap.String("order_id", o.ID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order repo: get failed", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		r.logger.Error("order repo: list failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Transition is a single conditional UPDATE on status, so concurrent callers serialise on the row
// and at most one of them observes the From status.
func (r *postgresRepo) Transition(ctx context.Context, id string, t Transition) (*domain.Order, error) {
	if !domain.CanTransition(t.From, t.To) {
		return nil, domain.ErrInvalidTransition
	}
	var proof any
	if t.Proof != nil {
		proof = t.Proof
	}
	q := `
UPDATE orders
SET status = $3::text,
    paid_at = CASE WHEN $3::text = 'paid' THEN $4::timestamptz ELSE paid_at END,
    delivered_at = CASE WHEN $3::text = 'delivered' THEN $4::timestamptz ELSE delivered_at END,
    gateway_proof = COALESCE($5::jsonb, gateway_proof),
    updated_at = $4::timestamptz
WHERE id = $1 AND status = $2::text
RETURNING ` + orderColumns
	updated, err := scanOrder(r.pool.QueryRow(ctx, q, id, string(t.From), string(t.To), t.At, proof))
	if err == nil {
		r.logger.Info("order repo: transitioned",
			zap.String("order_id", id),
			zap.String("from", t.From.String()),
			zap.String("to", t.To.String()),
		)
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("order repo: transition failed", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return current, ErrStatusConflict
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(
		&o.ID,
		&o.OwnerID,
		&o.Items,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.ItemsPriceCents,
		&o.ShippingPriceCents,
		&o.TaxPriceCents,
		&o.TotalPriceCents,
		&status,
		&o.PaidAt,
		&o.DeliveredAt,
		&o.GatewayProof,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	if o.Items == nil {
		o.Items = []domain.LineItem{}
	}
	return &o, nil
}
