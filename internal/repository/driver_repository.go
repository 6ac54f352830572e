package repository

import (
	"context"
	"database/sql"

	"github.com/kleanly/kleanly-api/internal/model"
)

// DriverRepo manages persistence for drivers.
type DriverRepo struct{ db *sql.DB }

func NewDriverRepo(db *sql.DB) *DriverRepo { return &DriverRepo{db: db} }

const driverColumns = "id,name,phone,status,lat,lng"

// Create inserts a driver.  A colliding id yields ErrConflict.
func (r *DriverRepo) Create(ctx context.Context, d model.Driver) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO drivers ("+driverColumns+") VALUES (?,?,?,?,?,?)",
		d.ID, d.Name, d.Phone, d.Status, d.Lat, d.Lng)
	if err != nil && isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// GetByID retrieves a driver.  It returns ErrNotFound if no row matches.
func (r *DriverRepo) GetByID(ctx context.Context, id string) (model.Driver, error) {
	return getDriver(ctx, r.db, id)
}

// GetByIDTx is GetByID inside the caller's transaction.
func (r *DriverRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.Driver, error) {
	return getDriver(ctx, tx, id)
}

// UpdateStatus sets a driver's free-form status.
func (r *DriverRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE drivers SET status=? WHERE id=?", status, id)
	return err
}

// UpdateLocationTx stores the driver's last known coordinates within the
// caller's transaction.
func (r *DriverRepo) UpdateLocationTx(ctx context.Context, tx *sql.Tx, id string, lat, lng float64) error {
	_, err := tx.ExecContext(ctx, "UPDATE drivers SET lat=?, lng=? WHERE id=?", lat, lng, id)
	return err
}

func getDriver(ctx context.Context, q queryer, id string) (model.Driver, error) {
	var (
		d        model.Driver
		lat, lng sql.NullFloat64
	)
	err := q.QueryRowContext(ctx, "SELECT "+driverColumns+" FROM drivers WHERE id=? LIMIT 1", id).
		Scan(&d.ID, &d.Name, &d.Phone, &d.Status, &lat, &lng)
	if err != nil {
		return model.Driver{}, notFound(err)
	}
	if lat.Valid {
		d.Lat = &lat.Float64
	}
	if lng.Valid {
		d.Lng = &lng.Float64
	}
	return d, nil
}
