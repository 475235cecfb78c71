package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/dto"
	"pharmacy-storefront/internal/middleware"
	"pharmacy-storefront/internal/model"
	"pharmacy-storefront/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func orderIDFromPath(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return uint(id), nil
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Neighborhood) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "neighborhood is required")
	}

	result, err := h.orderService.CreateFromCart(ctx, user.ID, req.Neighborhood)
	if err != nil {
		// Unknown neighborhood surfaces as 400 here, not 404: the
		// neighborhood is request input, not a resource being fetched.
		if apperr.Is(err, apperr.KindNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, apperr.Message(err))
		}
		return err
	}

	// Compounded orders carry no payment URL and are returned bare, the
	// resale shape wraps the order with its checkout redirect.
	if result.PaymentURL == "" {
		return c.JSON(http.StatusCreated, result.OrderDetails)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *OrderHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDFromPath(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}

	orders, err := h.orderService.HistoryForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListAll(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDFromPath(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.orderService.UpdateStatus(ctx, orderID, model.OrderStatus(req.Status)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDFromPath(c)
	if err != nil {
		return err
	}

	if err := h.orderService.Delete(ctx, orderID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) DeleteOwn(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}
	orderID, err := orderIDFromPath(c)
	if err != nil {
		return err
	}

	if err := h.orderService.DeleteCompoundedForUser(ctx, user.ID, orderID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) AttachQuote(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}
	orderID, err := orderIDFromPath(c)
	if err != nil {
		return err
	}

	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.orderService.AttachQuote(ctx, user.ID, orderID, &req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
