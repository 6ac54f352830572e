package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kleanly/kleanly-api/internal/middleware"
	"github.com/kleanly/kleanly-api/internal/model"
	"github.com/kleanly/kleanly-api/internal/notify"
	"github.com/kleanly/kleanly-api/internal/repository"
)

// DriverHandler serves driver registration, status, assignment and
// location reporting.
type DriverHandler struct {
	Drivers *repository.DriverRepo
	Orders  *repository.OrderRepo
	Notify  *notify.Dispatcher
}

func NewDriverHandler(d *repository.DriverRepo, o *repository.OrderRepo, n *notify.Dispatcher) *DriverHandler {
	if d == nil || o == nil || n == nil {
		panic("nil dependency passed to NewDriverHandler")
	}
	return &DriverHandler{Drivers: d, Orders: o, Notify: n}
}

type createDriverReq struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type driverStatusReq struct {
	Status string `json:"status" validate:"required"`
}

type locationReq struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

// CreateDriver handles POST /drivers/.
func (h *DriverHandler) CreateDriver(c echo.Context) error {
	var req createDriverReq
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	d := model.Driver{ID: req.ID, Name: req.Name, Phone: req.Phone}
	if err := h.Drivers.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return errJSON(c, http.StatusBadRequest, "Driver already exists")
		}
		return storeError(c, err, "Driver not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"driver_id": d.ID})
}

// GetDriver handles GET /drivers/:driver_id.
func (h *DriverHandler) GetDriver(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Drivers.GetByID(ctx, c.Param("driver_id"))
	if err != nil {
		return storeError(c, err, "Driver not found")
	}
	return c.JSON(http.StatusOK, d)
}

// UpdateStatus handles PATCH /drivers/:driver_id/status.
func (h *DriverHandler) UpdateStatus(c echo.Context) error {
	var req driverStatusReq
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Drivers.GetByID(ctx, c.Param("driver_id"))
	if err != nil {
		return storeError(c, err, "Driver not found")
	}
	if err := h.Drivers.UpdateStatus(ctx, d.ID, req.Status); err != nil {
		return storeError(c, err, "Driver not found")
	}
	return success(c)
}

// Assign handles POST /drivers/assign?order_id=&driver_id=.
func (h *DriverHandler) Assign(c echo.Context) error {
	orderID, driverID := c.QueryParam("order_id"), c.QueryParam("driver_id")
	if orderID == "" || driverID == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "order_id and driver_id are required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	_, oErr := h.Orders.GetByID(ctx, orderID)
	_, dErr := h.Drivers.GetByID(ctx, driverID)
	for _, err := range []error{oErr, dErr} {
		if err != nil {
			return storeError(c, err, "Order or driver not found")
		}
	}
	if err := h.Orders.AssignDriver(ctx, orderID, driverID); err != nil {
		return storeError(c, err, "Order or driver not found")
	}
	return success(c)
}

// UpdateLocation handles POST /drivers/:driver_id/location.  The new
// position is stored and the owner of every undelivered order served by
// the driver is notified once.
func (h *DriverHandler) UpdateLocation(c echo.Context) error {
	var req locationReq
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	lat, lng := *req.Lat, *req.Lng

	ctx, cancel := dbCtx(c)
	defer cancel()

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return storeError(c, err, "")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	d, err := h.Drivers.GetByIDTx(ctx, tx, c.Param("driver_id"))
	if err != nil {
		return storeError(c, err, "Driver not found")
	}
	if err := h.Drivers.UpdateLocationTx(ctx, tx, d.ID, lat, lng); err != nil {
		return storeError(c, err, "Driver not found")
	}
	recipients, err := h.Orders.ListRecipientsByDriverTx(ctx, tx, d.ID)
	if err != nil {
		return storeError(c, err, "")
	}
	if err := tx.Commit(); err != nil {
		return storeError(c, err, "")
	}
	committed = true

	for _, rc := range recipients {
		to := notify.Contact{Email: rc.Email}
		if rc.PushToken != nil {
			to.PushToken = *rc.PushToken
		}
		h.Notify.DriverLocation(notify.DriverLocationNotice{
			UserID:   rc.UserID,
			OrderID:  rc.OrderID,
			DriverID: d.ID,
			Lat:      lat,
			Lng:      lng,
			To:       to,
		})
	}
	return success(c)
}
