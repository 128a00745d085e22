package repository

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// InventoryRow is one active product in a stock snapshot.
type InventoryRow struct {
	ProductID        uuid.UUID `db:"product_id"`
	ProductCode      string    `db:"product_code"`
	ProductName      string    `db:"product_name"`
	Unit             string    `db:"unit"`
	MinimumStock     int64     `db:"minimum_stock"`
	CurrentStock     int64     `db:"current_stock"`
	LastMovementDate NullTime  `db:"last_movement_date"`
}

type ReportRepository interface {
	InventorySnapshot(ctx context.Context, asOf *time.Time) ([]InventoryRow, error)
}

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo takes an sqlx handle over the pool GORM already opened. The
// handle's driver name picks the placeholder style.
func NewReportRepo(db *sqlx.DB) ReportRepository {
	return &reportRepo{db}
}

const snapshotQuery = `
SELECT p.id AS product_id,
       p.code AS product_code,
       p.name AS product_name,
       p.unit AS unit,
       p.minimum_stock AS minimum_stock,
       COALESCE(SUM(CASE WHEN m.transaction_type = 'IN' THEN m.quantity
                         WHEN m.transaction_type = 'OUT' THEN -m.quantity
                         ELSE 0 END), 0) AS current_stock,
       MAX(m.created_at) AS last_movement_date
FROM products p
LEFT JOIN (
    SELECT l.product_id, l.quantity, l.created_at, t.transaction_type
    FROM stock_transaction_lines l
    JOIN stock_transactions t ON t.id = l.transaction_ref
    %s
) m ON m.product_id = p.id
WHERE p.is_active = ?
GROUP BY p.id, p.code, p.name, p.unit, p.minimum_stock
ORDER BY p.code ASC`

// InventorySnapshot computes stock for every active product in one query.
// With asOf set, only headers dated at or before it are counted.
// last_movement_date is the newest line of any type, ADJ included.
func (r *reportRepo) InventorySnapshot(ctx context.Context, asOf *time.Time) ([]InventoryRow, error) {
	where := ""
	args := []interface{}{}
	if asOf != nil {
		where = "WHERE t.transaction_date <= ?"
		args = append(args, asOf.UTC())
	}
	args = append(args, true)

	query := r.db.Rebind(fmt.Sprintf(snapshotQuery, where))
	rows := []InventoryRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("inventory snapshot: %w", err)
	}
	return rows, nil
}

// NullTime scans timestamps from drivers that return them as text for
// aggregate columns (SQLite) as well as native time values.
type NullTime struct {
	Time  time.Time
	Valid bool
}

var textTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (n *NullTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v, true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("NullTime: cannot scan %T", src)
	}
}

func (n *NullTime) parse(s string) error {
	for _, layout := range textTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("NullTime: unrecognised time %q", s)
}

func (n NullTime) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time, nil
}

// Ptr returns nil for NULL.
func (n NullTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
