package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pharmacy-storefront/internal/dto"
	"pharmacy-storefront/internal/middleware"
	"pharmacy-storefront/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func productIDFromPath(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return uint(id), nil
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}
	productID, err := productIDFromPath(c)
	if err != nil {
		return err
	}

	if err := h.cartService.AddItem(ctx, user.ID, productID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}
	productID, err := productIDFromPath(c)
	if err != nil {
		return err
	}

	if err := h.cartService.RemoveItem(ctx, user.ID, productID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) DecreaseItem(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}
	productID, err := productIDFromPath(c)
	if err != nil {
		return err
	}

	if err := h.cartService.DecreaseItem(ctx, user.ID, productID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}

	items, err := h.cartService.Items(ctx, user.ID)
	if err != nil {
		return err
	}
	total, err := h.cartService.Total(ctx, user.ID)
	if err != nil {
		return err
	}

	resp := dto.CartResponse{
		Items: make([]dto.CartItemResponse, 0, len(items)),
		Total: total,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ProductID:    item.ProductID,
			ProductName:  item.Product.Name,
			ProductPhoto: item.Product.PhotoURL,
			UnitPrice:    item.Product.Price,
			Quantity:     item.Quantity,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
