package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the pgx-backed orders.Store. Money columns are NUMERIC and scan
// straight into decimal.Decimal; line items and discounts are JSONB.
type Repo struct{ DB *pgxpool.Pool }

var (
	_ orders.Store            = (*Repo)(nil)
	_ orders.StockDecrementer = (*Repo)(nil)
)

const productCols = `id, name, price, stock, stock_minimum, brand, category, updated_at`

func scanProduct(row pgx.Row) (orders.Product, error) {
	var p orders.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.StockMinimum, &p.Brand, &p.Category, &p.UpdatedAt)
	return p, err
}

func (r *Repo) ReadProduct(ctx context.Context, id string) (orders.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Product{}, orders.ErrProductNotFound
	}
	return p, err
}

func (r *Repo) ListProducts(ctx context.Context) ([]orders.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) WriteProductStock(ctx context.Context, id string, stock int) error {
	ct, err := r.DB.Exec(ctx, `UPDATE products SET stock=$2, updated_at=now() WHERE id=$1`, id, stock)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.ErrProductNotFound
	}
	return nil
}

// DecrementStock locks the row, floors the new level at zero and reports
// both levels in one round trip.
func (r *Repo) DecrementStock(ctx context.Context, id string, qty int) (before, after int, err error) {
	err = r.DB.QueryRow(ctx, `
		WITH prev AS (SELECT stock FROM products WHERE id=$1 FOR UPDATE)
		UPDATE products p
		   SET stock = GREATEST(p.stock - $2, 0), updated_at = now()
		  FROM prev
		 WHERE p.id = $1
		RETURNING prev.stock, p.stock`, id, qty).Scan(&before, &after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, orders.ErrProductNotFound
	}
	return before, after, err
}

const sessionCols = `id, slot, label, status, items, comment, discount, total,
	payment_method, payment_detail, created_at, completed_at, deleted_at`

func scanSession(row pgx.Row) (orders.Session, error) {
	var (
		s                      orders.Session
		items, disc, payDetail []byte
		method                 *string
	)
	err := row.Scan(&s.ID, &s.Slot, &s.Label, &s.Status, &items, &s.Comment, &disc, &s.Total,
		&method, &payDetail, &s.CreatedAt, &s.CompletedAt, &s.DeletedAt)
	if err != nil {
		return orders.Session{}, err
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return orders.Session{}, fmt.Errorf("decode items of %s: %w", s.ID, err)
	}
	if disc != nil {
		s.Discount = &orders.Discount{}
		if err := json.Unmarshal(disc, s.Discount); err != nil {
			return orders.Session{}, fmt.Errorf("decode discount of %s: %w", s.ID, err)
		}
	}
	if method != nil {
		s.PaymentMethod = orders.PaymentMethod(*method)
	}
	if payDetail != nil {
		s.PaymentDetail = &orders.PaymentDetail{}
		if err := json.Unmarshal(payDetail, s.PaymentDetail); err != nil {
			return orders.Session{}, fmt.Errorf("decode payment of %s: %w", s.ID, err)
		}
	}
	return s, nil
}

func (r *Repo) ReadSession(ctx context.Context, id string) (orders.Session, error) {
	s, err := scanSession(r.DB.QueryRow(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Session{}, orders.ErrSessionNotFound
	}
	return s, err
}

func (r *Repo) CreateSession(ctx context.Context, s orders.Session) error {
	items, err := json.Marshal(nonNil(s.Items))
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO sessions(id, slot, label, status, items, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		s.ID, s.Slot, s.Label, string(s.Status), items, s.Comment, s.CreatedAt)
	return err
}

// WriteSessionDraft only touches ACTIVE rows, so a late draft cannot
// overwrite a completed or deleted session; it gets ErrSessionNotActive.
func (r *Repo) WriteSessionDraft(ctx context.Context, id string, d orders.Draft) error {
	items, err := json.Marshal(nonNil(d.Items))
	if err != nil {
		return err
	}
	disc, err := jsonOrNil(d.Discount)
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE sessions
		   SET items=$2, comment=$3, discount=$4, subtotal=$5, total=$5, updated_at=now()
		 WHERE id=$1 AND status='ACTIVE'`,
		id, items, d.Comment, disc, d.Subtotal)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", orders.ErrSessionNotActive, id)
	}
	return nil
}

func (r *Repo) WriteSessionCompletion(ctx context.Context, id string, c orders.Completion) error {
	items, err := json.Marshal(nonNil(c.Items))
	if err != nil {
		return err
	}
	detail, err := jsonOrNil(c.PaymentDetail)
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE sessions
		   SET status='COMPLETED', items=$2, subtotal=$3, discount_amount=$4, total=$5,
		       payment_method=$6, payment_detail=$7, completed_at=$8, updated_at=now()
		 WHERE id=$1 AND status='ACTIVE'`,
		id, items, c.Subtotal, c.DiscountAmount, c.Total, string(c.PaymentMethod), detail, c.CompletedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", orders.ErrSessionNotActive, id)
	}
	return nil
}

func (r *Repo) WriteSessionDeletion(ctx context.Context, id string, at time.Time) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE sessions SET status='DELETED', deleted_at=$2, updated_at=now()
		 WHERE id=$1 AND status='ACTIVE'`, id, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", orders.ErrSessionNotActive, id)
	}
	return nil
}

func (r *Repo) ListActiveSessions(ctx context.Context) ([]orders.Session, error) {
	return r.listSessions(ctx, `SELECT `+sessionCols+` FROM sessions
		WHERE status='ACTIVE' ORDER BY slot, created_at`)
}

func (r *Repo) ListCompletedSessions(ctx context.Context, from, to time.Time) ([]orders.Session, error) {
	return r.listSessions(ctx, `SELECT `+sessionCols+` FROM sessions
		WHERE status='COMPLETED' AND completed_at >= $1 AND completed_at < $2
		ORDER BY completed_at`, from, to)
}

func (r *Repo) listSessions(ctx context.Context, q string, args ...any) ([]orders.Session, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) ReadDiscountByCode(ctx context.Context, code string) (orders.Discount, error) {
	var d orders.Discount
	err := r.DB.QueryRow(ctx, `SELECT code, percentage, product_ids FROM discounts WHERE code=$1`, code).
		Scan(&d.Code, &d.Percentage, &d.ProductIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Discount{}, orders.ErrDiscountNotFound
	}
	return d, err
}

func nonNil(items []orders.LineItem) []orders.LineItem {
	if items == nil {
		return []orders.LineItem{}
	}
	return items
}

func jsonOrNil[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
