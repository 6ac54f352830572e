package repository

import (
	"context"
	"database/sql"

	"github.com/kleanly/kleanly-api/internal/model"
)

// OrderRepo manages persistence for orders.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so callers can open a transaction that
// spans the order and driver repositories.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = "id,user_id,status,driver_id,scent,cancel_reason"

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts an order.  A colliding id yields ErrConflict.
func (r *OrderRepo) Create(ctx context.Context, o model.Order) error {
	var scent sql.NullString
	scent.String, scent.Valid = model.JoinScent(o.Scent)
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO orders ("+orderColumns+") VALUES (?,?,?,?,?,?)",
		o.ID, o.UserID, o.Status, o.DriverID, scent, o.CancelReason)
	if err != nil && isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// GetByID retrieves an order.  It returns ErrNotFound if no row matches.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (model.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1", id)
	var o model.Order
	if err := scanOrder(row.Scan, &o); err != nil {
		return model.Order{}, notFound(err)
	}
	return o, nil
}

// ListByUser returns the orders placed by a user, ordered by id.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows.Scan, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status of an existing order.  reason is stored
// alongside when non-nil (cancellations).
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string, reason *string) error {
	var err error
	if reason != nil {
		_, err = r.db.ExecContext(ctx,
			"UPDATE orders SET status=?, cancel_reason=? WHERE id=?", status, *reason, id)
	} else {
		_, err = r.db.ExecContext(ctx, "UPDATE orders SET status=? WHERE id=?", status, id)
	}
	return err
}

// AssignDriver points an order at a driver.
func (r *OrderRepo) AssignDriver(ctx context.Context, orderID, driverID string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE orders SET driver_id=? WHERE id=?", driverID, orderID)
	return err
}

// OrderRecipient is a not yet delivered order together with the contact
// details of the user that placed it.
type OrderRecipient struct {
	OrderID   string
	UserID    string
	Email     string
	PushToken *string
}

// ListRecipientsByDriverTx returns every order served by driverID whose
// status is not delivered, joined with its owner.  Orders whose owner no
// longer resolves to a user are skipped.
func (r *OrderRepo) ListRecipientsByDriverTx(ctx context.Context, tx *sql.Tx, driverID string) ([]OrderRecipient, error) {
	const query = `SELECT o.id, o.user_id, u.email, u.push_token
		FROM orders o JOIN users u ON u.username = o.user_id
		WHERE o.driver_id = ? AND o.status <> ?
		ORDER BY o.id`
	rows, err := tx.QueryContext(ctx, query, driverID, model.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OrderRecipient
	for rows.Next() {
		var (
			rc    OrderRecipient
			token sql.NullString
		)
		if err := rows.Scan(&rc.OrderID, &rc.UserID, &rc.Email, &token); err != nil {
			return nil, err
		}
		if token.Valid {
			rc.PushToken = &token.String
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func scanOrder(scan func(dest ...any) error, o *model.Order) error {
	var driverID, scent, reason sql.NullString
	if err := scan(&o.ID, &o.UserID, &o.Status, &driverID, &scent, &reason); err != nil {
		return err
	}
	if driverID.Valid {
		o.DriverID = &driverID.String
	}
	if scent.Valid {
		o.Scent = model.SplitScent(scent.String)
	}
	if reason.Valid {
		o.CancelReason = &reason.String
	}
	return nil
}
