// internal/adapters/out/db/order_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	orderdom "cosmetica/internal/domain/order"
)

// OrdersSchema is the table layout OrderRepositoryPG reads.
const OrdersSchema = `
CREATE TABLE IF NOT EXISTS orders (
  id          TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  status      TEXT NOT NULL DEFAULT 'pending',
  total       NUMERIC(12,2),
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS orders_customer_created_idx ON orders (customer_id, created_at DESC);
CREATE TABLE IF NOT EXISTS order_items (
  order_id    TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  position    INT  NOT NULL,
  product_id  TEXT NOT NULL,
  name        TEXT NOT NULL DEFAULT '',
  unit_price  NUMERIC(12,2) NOT NULL DEFAULT 0,
  quantity    INT  NOT NULL,
  image       TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (order_id, position)
);`

// OrderRepositoryPG reads order history from PostgreSQL (ORDERS_BACKEND=postgres).
type OrderRepositoryPG struct {
	DB *sql.DB
}

var _ orderdom.Repository = (*OrderRepositoryPG)(nil)

func NewOrderRepositoryPG(db *sql.DB) *OrderRepositoryPG {
	return &OrderRepositoryPG{DB: db}
}

// EnsureSchema creates the tables when missing (dev databases).
func (r *OrderRepositoryPG) EnsureSchema(ctx context.Context) error {
	if r == nil || r.DB == nil {
		return errors.New("order_repository_pg: db is nil")
	}
	_, err := r.DB.ExecContext(ctx, OrdersSchema)
	return err
}

func (r *OrderRepositoryPG) ListByCustomer(ctx context.Context, customerID string) ([]orderdom.Order, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("order_repository_pg: db is nil")
	}
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return nil, orderdom.ErrInvalidCustomerID
	}

	const q = `
SELECT id, customer_id, status, COALESCE(total, 0), created_at
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, q, cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []orderdom.Order{}
	index := map[string]int{}
	for rows.Next() {
		var (
			o       orderdom.Order
			created time.Time
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.Total, &created); err != nil {
			return nil, err
		}
		o.CreatedAt = created.UTC()
		o.Items = []orderdom.Item{}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	if err := r.attachItems(ctx, out, index, ids); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepositoryPG) attachItems(ctx context.Context, orders []orderdom.Order, index map[string]int, ids []string) error {
	const q = `
SELECT order_id, product_id, name, unit_price, quantity, image
FROM order_items
WHERE order_id = ANY($1)
ORDER BY order_id, position`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      orderdom.Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Image); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}
