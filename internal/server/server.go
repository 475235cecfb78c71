package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/handler"
	"pharmacy-storefront/internal/middleware"
	"pharmacy-storefront/internal/service"
)

type Server struct {
	echo           *echo.Echo
	cartHandler    *handler.CartHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
	jwtSecret      string
}

func NewServer(
	cartService service.CartService,
	orderService service.OrderService,
	paymentHandler *handler.PaymentHandler,
	jwtSecret string,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		echo:           e,
		cartHandler:    handler.NewCartHandler(cartService),
		orderHandler:   handler.NewOrderHandler(orderService),
		paymentHandler: paymentHandler,
		jwtSecret:      jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- gateway webhooks (authenticated by signature, not JWT) --------
	api.POST("/payments/notifications", s.paymentHandler.Notifications)

	authed := api.Group("", middleware.JWTAuth(s.jwtSecret))

	// -------- cart --------
	cart := authed.Group("/cart")
	cart.GET("", s.cartHandler.GetCart)
	cart.POST("/items/:productId", s.cartHandler.AddItem)
	cart.DELETE("/items/:productId", s.cartHandler.RemoveItem)
	cart.POST("/items/:productId/decrease", s.cartHandler.DecreaseItem)

	// -------- orders --------
	orders := authed.Group("/orders")
	orders.POST("", s.orderHandler.Create)
	orders.GET("", s.orderHandler.History)
	orders.GET("/:id", s.orderHandler.GetByID)
	orders.POST("/:id/quote", s.orderHandler.AttachQuote)
	orders.DELETE("/:id", s.orderHandler.DeleteOwn)

	// -------- admin --------
	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.GET("/orders", s.orderHandler.ListAll)
	admin.PUT("/orders/:id/status", s.orderHandler.UpdateStatus)
	admin.DELETE("/orders/:id", s.orderHandler.Delete)
}

// errorHandler turns classified service errors into structured client
// responses. Wrapped causes never leak to callers.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal error"

		switch apperr.KindOf(err) {
		case apperr.KindValidation:
			status = http.StatusBadRequest
			message = apperr.Message(err)
		case apperr.KindNotFound:
			status = http.StatusNotFound
			message = apperr.Message(err)
		case apperr.KindSignature:
			status = http.StatusUnauthorized
			message = "invalid signature"
		case apperr.KindGateway:
			status = http.StatusBadGateway
			message = apperr.Message(err)
		case apperr.KindIntegrity:
			logger.Error("data integrity violation", zap.Error(err))
		default:
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
				if msg, ok := httpErr.Message.(string); ok {
					message = msg
				}
			} else {
				logger.Error("unhandled error", zap.Error(err))
			}
		}

		if err := c.JSON(status, map[string]string{"error": message}); err != nil {
			logger.Error("could not write error response", zap.Error(err))
		}
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
