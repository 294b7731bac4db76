package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const orderColumns = `id::text, customer_info, items, order_summary, status, order_date, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, order domain.Order) (string, error) {
	customer, items, summary, err := encodeOrder(order)
	if err != nil {
		return "", err
	}

	id := uuid.New()
	query := `
		INSERT INTO orders (id, customer_email, customer_info, items, order_summary, status, order_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		id,
		order.Customer.Email,
		customer,
		items,
		summary,
		string(order.Status),
		order.OrderDate,
		order.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	return id.String(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrNotFound
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return &order, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_email = $1
		ORDER BY order_date DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("query orders by email: %w", err)
	}

	return collectOrders(rows)
}

// List loads the requested page and the total matching count concurrently.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (ports.ListResult, error) {
	filter = filter.Normalize()

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	var (
		orders []domain.Order
		total  int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := `
			SELECT ` + orderColumns + `
			FROM orders
			WHERE ($1::text IS NULL OR status = $1)
			ORDER BY order_date DESC, id DESC
			LIMIT $2 OFFSET $3
		`
		rows, err := r.pool.Query(gctx, query, statusFilter, filter.PageSize, filter.Offset())
		if err != nil {
			return fmt.Errorf("query orders: %w", err)
		}
		orders, err = collectOrders(rows)
		return err
	})

	g.Go(func() error {
		query := `SELECT COUNT(*) FROM orders WHERE ($1::text IS NULL OR status = $1)`
		if err := r.pool.QueryRow(gctx, query, statusFilter).Scan(&total); err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return ports.ListResult{}, err
	}

	return ports.ListResult{Orders: orders, Total: total}, nil
}

// UpdateStatus is a compare-and-swap on the status column. When no row
// matches, a second lookup tells a missing order apart from a stale one.
func (r *Repository) UpdateStatus(ctx context.Context, update ports.StatusUpdate) (*domain.Order, error) {
	if _, err := uuid.Parse(update.ID); err != nil {
		return nil, ports.ErrNotFound
	}

	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query,
		string(update.Next),
		update.UpdatedAt,
		update.ID,
		string(update.Expected),
	))
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, update.ID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check order exists: %w", err)
	}
	if !exists {
		return nil, ports.ErrNotFound
	}
	return nil, ports.ErrConflict
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var rec orderRow
	if err := row.Scan(
		&rec.ID,
		&rec.CustomerInfo,
		&rec.Items,
		&rec.OrderSummary,
		&rec.Status,
		&rec.OrderDate,
		&rec.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	return rec.toDomain()
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}
