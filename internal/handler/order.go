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

// OrderHandler serves the order endpoints.  Status changes are announced
// to the order's owner through Notify.
type OrderHandler struct {
	Orders  *repository.OrderRepo
	Drivers *repository.DriverRepo
	Users   *repository.UserRepo
	Notify  *notify.Dispatcher
}

func NewOrderHandler(o *repository.OrderRepo, d *repository.DriverRepo, u *repository.UserRepo, n *notify.Dispatcher) *OrderHandler {
	if o == nil || d == nil || u == nil || n == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: o, Drivers: d, Users: u, Notify: n}
}

type createOrderReq struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id" validate:"required"`
	Status   string   `json:"status" validate:"required"`
	DriverID *string  `json:"driver_id"`
	Scent    []string `json:"scent"`
}

type statusReq struct {
	Status string `json:"status"`
}

type cancelReq struct {
	Reason *string `json:"reason"`
}

// CreateOrder handles POST /orders/.  The id is generated when omitted;
// a driver_id must name an existing driver.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderReq
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.DriverID != nil && *req.DriverID == "" {
		req.DriverID = nil
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if req.DriverID != nil {
		if _, err := h.Drivers.GetByID(ctx, *req.DriverID); err != nil {
			return storeError(c, err, "Driver not found")
		}
	}
	o := model.Order{
		ID:       req.ID,
		UserID:   req.UserID,
		Status:   req.Status,
		DriverID: req.DriverID,
		Scent:    req.Scent,
	}
	if err := h.Orders.Create(ctx, o); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return errJSON(c, http.StatusBadRequest, "Order already exists")
		}
		return storeError(c, err, "Order not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"order_id": o.ID})
}

// GetOrder handles GET /orders/:order_id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, c.Param("order_id"))
	if err != nil {
		return storeError(c, err, "Order not found")
	}
	return c.JSON(http.StatusOK, o)
}

// ListUserOrders handles GET /orders/user/:user_id.
func (h *OrderHandler) ListUserOrders(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, c.Param("user_id"))
	if err != nil {
		return storeError(c, err, "")
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateStatus handles PATCH /orders/:order_id/status.  The new status is
// read from the `status` query parameter, falling back to a JSON body.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		var body statusReq
		_ = c.Bind(&body)
		status = body.Status
	}
	if status == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "status: failed required")
	}
	return h.setStatus(c, status, nil)
}

// CancelOrder handles POST /orders/:order_id/cancel.  The optional reason
// is stored with the order.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	return h.setStatus(c, model.OrderStatusCancelled, req.Reason)
}

// setStatus persists the status change and schedules the owner's
// notification.  A missing order produces 404 and no notification.
func (h *OrderHandler) setStatus(c echo.Context, status string, reason *string) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, c.Param("order_id"))
	if err != nil {
		return storeError(c, err, "Order not found")
	}
	if err := h.Orders.UpdateStatus(ctx, o.ID, status, reason); err != nil {
		return storeError(c, err, "Order not found")
	}

	notice := notify.OrderStatusNotice{UserID: o.UserID, OrderID: o.ID, Status: status}
	if owner, err := h.Users.GetByUsername(ctx, o.UserID); err == nil {
		notice.To = contactOf(owner)
	} else if !errors.Is(err, repository.ErrNotFound) {
		c.Logger().Warnf("order %s: owner lookup failed: %v", o.ID, err)
	}
	h.Notify.OrderStatus(notice)
	return success(c)
}
