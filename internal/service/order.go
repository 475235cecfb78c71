package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/dto"
	"pharmacy-storefront/internal/model"
	"pharmacy-storefront/internal/repository"
)

// OrderService converts carts into immutable orders and exposes the
// order queries and administrative operations around them.
type OrderService interface {
	// CreateFromCart runs the whole conversion in one transaction: cart
	// validation, line snapshotting, total computation, cart clearing
	// and, for resale orders, the synchronous payment-preference
	// handoff. Any failure rolls everything back.
	CreateFromCart(ctx context.Context, userID uint, neighborhoodName string) (*dto.CreateOrderResponse, error)
	GetByID(ctx context.Context, orderID uint) (*dto.OrderResponse, error)
	HistoryForUser(ctx context.Context, userID uint) ([]*dto.OrderResponse, error)
	ListAll(ctx context.Context) ([]*dto.OrderResponse, error)
	// UpdateStatus is the administrative any-to-any transition; the
	// authorization layer in front of it is an external collaborator.
	UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) error
	Delete(ctx context.Context, orderID uint) error
	// DeleteCompoundedForUser lets an owner delete their own compounded
	// order; resale orders are not owner-deletable.
	DeleteCompoundedForUser(ctx context.Context, userID, orderID uint) error
	AttachQuote(ctx context.Context, userID, orderID uint, req *dto.QuoteRequest) error
}

type orderServiceImpl struct {
	db               *gorm.DB
	cartRepo         repository.CartRepository
	orderRepo        repository.OrderRepository
	neighborhoodRepo repository.NeighborhoodRepository
	paymentService   PaymentService
	logger           *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	neighborhoodRepo repository.NeighborhoodRepository,
	paymentService PaymentService,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		db:               db,
		cartRepo:         cartRepo,
		orderRepo:        orderRepo,
		neighborhoodRepo: neighborhoodRepo,
		paymentService:   paymentService,
		logger:           logger,
	}
}

func (s *orderServiceImpl) CreateFromCart(ctx context.Context, userID uint, neighborhoodName string) (*dto.CreateOrderResponse, error) {
	var (
		order      *model.Order
		paymentURL string
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		neighborhood, err := s.neighborhoodRepo.FindByName(ctx, tx, neighborhoodName)
		if err != nil {
			return err
		}

		// The row lock serializes order creation per user: two
		// concurrent calls cannot both clear the same cart.
		cart, err := s.cartRepo.FindOrCreateLocked(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		items, err := s.cartRepo.ListItems(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}
		if len(items) == 0 {
			return apperr.Validation("cart is empty")
		}

		// Defensive re-check; the cart aggregate already enforces this
		// on insert.
		kind := items[0].Product.Type
		for _, item := range items {
			if item.Product.Type != kind {
				return apperr.Validation("cart mixes compounded and resale products")
			}
		}

		subtotal := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(items))
		for _, item := range items {
			// Snapshot name, price and photo now; later catalog changes
			// must never reach an existing order.
			orderItems = append(orderItems, model.OrderItem{
				ProductID:    item.ProductID,
				ProductName:  item.Product.Name,
				ProductPhoto: item.Product.PhotoURL,
				UnitPrice:    item.Product.Price,
				Quantity:     item.Quantity,
			})
			subtotal = subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		status := model.StatusInProgress
		if kind == model.CatalogResale {
			// AWAITING_PAYMENT is only ever persisted together with a
			// confirmed preference: the preference call below runs in
			// this same transaction and a failure rolls the order back.
			status = model.StatusAwaitingPayment
		}

		order = &model.Order{
			UserID:         userID,
			Kind:           kind,
			Status:         status,
			NeighborhoodID: neighborhood.ID,
			Neighborhood:   *neighborhood,
			Items:          orderItems,
			Subtotal:       subtotal,
			DeliveryTax:    neighborhood.Tax,
			TotalValue:     subtotal.Add(neighborhood.Tax),
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("persist order: %w", err)
		}

		if err := s.cartRepo.ClearItems(ctx, tx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if err := s.cartRepo.UpdateTotal(ctx, tx, cart.ID, decimal.Zero); err != nil {
			return fmt.Errorf("reset cart total: %w", err)
		}

		if kind == model.CatalogResale {
			paymentURL, err = s.paymentService.CreatePreference(ctx, tx, order)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("kind", string(order.Kind)),
		zap.String("total", order.TotalValue.String()))

	return &dto.CreateOrderResponse{
		OrderDetails: toOrderResponse(order),
		PaymentURL:   paymentURL,
	}, nil
}

func (s *orderServiceImpl) GetByID(ctx context.Context, orderID uint) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderServiceImpl) HistoryForUser(ctx context.Context, userID uint) ([]*dto.OrderResponse, error) {
	orders, err := s.orderRepo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("load order history: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *orderServiceImpl) ListAll(ctx context.Context) ([]*dto.OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) error {
	if !status.Valid() {
		return apperr.Validation("unknown order status")
	}
	return s.orderRepo.UpdateStatus(ctx, s.db, orderID, status)
}

func (s *orderServiceImpl) Delete(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		return s.orderRepo.Delete(ctx, tx, order)
	})
}

func (s *orderServiceImpl) DeleteCompoundedForUser(ctx context.Context, userID, orderID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return apperr.NotFound("order not found")
		}
		if order.Kind != model.CatalogCompounded {
			return apperr.Validation("only compounded orders can be deleted by their owner")
		}
		return s.orderRepo.Delete(ctx, tx, order)
	})
}

func (s *orderServiceImpl) AttachQuote(ctx context.Context, userID, orderID uint, req *dto.QuoteRequest) error {
	if req.FullName == "" || req.Phone == "" {
		return apperr.Validation("quote requires a full name and phone")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return apperr.NotFound("order not found")
		}
		if order.Kind != model.CatalogCompounded {
			return apperr.Validation("only compounded orders take a quote")
		}

		quote := order.Quote
		if quote == nil {
			quote = &model.OrderQuote{OrderID: order.ID}
		}
		quote.FullName = req.FullName
		quote.Phone = req.Phone
		quote.Email = req.Email
		quote.Observation = req.Observation
		quote.PrescriptionURL = req.PrescriptionURL

		if err := s.orderRepo.SaveQuote(ctx, tx, quote); err != nil {
			return fmt.Errorf("persist quote: %w", err)
		}
		return s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.StatusAwaitingQuote)
	})
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ProductName:  item.ProductName,
			ProductPhoto: item.ProductPhoto,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
		})
	}

	resp := dto.OrderResponse{
		ID:           order.ID,
		Kind:         string(order.Kind),
		Status:       string(order.Status),
		Neighborhood: order.Neighborhood.Name,
		Items:        items,
		Subtotal:     order.Subtotal,
		DeliveryTax:  order.DeliveryTax,
		Total:        order.TotalValue,
		CreatedAt:    order.CreatedAt,
		PreferenceID: order.PreferenceID,
	}
	if order.Quote != nil {
		resp.Quote = &dto.QuoteResponse{
			ID:              order.Quote.ID,
			FullName:        order.Quote.FullName,
			Phone:           order.Quote.Phone,
			Email:           order.Quote.Email,
			Observation:     order.Quote.Observation,
			PrescriptionURL: order.Quote.PrescriptionURL,
		}
	}
	return resp
}

func toOrderResponses(orders []*model.Order) []*dto.OrderResponse {
	out := make([]*dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp := toOrderResponse(order)
		out = append(out, &resp)
	}
	return out
}
