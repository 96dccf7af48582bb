package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Pricing holds the checkout charges added on top of the item subtotal
type Pricing struct {
	ShippingFee      decimal.Decimal
	FreeShippingOver decimal.Decimal // zero disables free shipping
	TaxRate          decimal.Decimal // fraction of the subtotal, e.g. 0.2
}

func (p Pricing) charges(subtotal decimal.Decimal) (shipping, tax decimal.Decimal) {
	shipping = p.ShippingFee
	if p.FreeShippingOver.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingOver) {
		shipping = decimal.Zero
	}
	tax = subtotal.Mul(p.TaxRate).Round(2)
	return shipping, tax
}

// Customer identifies the storefront customer placing or viewing an order
type Customer struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// OrderService handles order placement and fulfilment
type OrderService struct {
	orderRepo      order.Repository
	txScope        TransactionScope
	invoices       InvoiceRenderer
	pricing        Pricing
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService. invoices and eventPublisher may be nil.
func NewOrderService(
	orderRepo order.Repository,
	txScope TransactionScope,
	invoices InvoiceRenderer,
	pricing Pricing,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:      orderRepo,
		txScope:        txScope,
		invoices:       invoices,
		pricing:        pricing,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Place creates a pending order and reserves stock for every line.
// customer is nil for guest checkout.
func (s *OrderService) Place(ctx context.Context, customer *Customer, req PlaceOrderRequest) (*OrderResponse, error) {
	var customerID *uuid.UUID
	email, name := req.CustomerEmail, req.CustomerName
	if customer != nil {
		id := customer.ID
		customerID = &id
		email, name = customer.Email, customer.Name
		if strings.TrimSpace(req.CustomerName) != "" {
			name = req.CustomerName
		}
	}
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}

	var placed *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, currency, err := s.resolveLines(ctx, repos.Products(), req.Items)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		for _, l := range lines {
			subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		shipping, tax := s.pricing.charges(subtotal)

		o, err := order.NewOrder(customerID, email, name, req.ShippingAddress.toDomain(), lines, shipping, tax, currency)
		if err != nil {
			return err
		}
		if strings.TrimSpace(req.Notes) != "" {
			if err := o.AddNote(req.Notes, o.CustomerEmail); err != nil {
				return err
			}
		}

		for _, it := range o.Items {
			if err := repos.Products().AdjustStock(ctx, it.ProductID, -it.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for "+it.Name)
				}
				return err
			}
		}

		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_number", placed.OrderNumber),
		zap.String("total", placed.Total.StringFixed(2)),
		zap.Int("items", placed.ItemCount()),
	)
	s.publish(ctx, placed)

	response := ToOrderResponse(placed)
	return &response, nil
}

// resolveLines reads current catalog prices and checks availability
func (s *OrderService) resolveLines(ctx context.Context, products catalog.ProductRepository, items []PlaceOrderItem) ([]order.LineInput, string, error) {
	quantities := make(map[uuid.UUID]int, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, "", shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		if _, seen := quantities[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}

	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, "", err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	currency := ""
	lines := make([]order.LineInput, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || !p.IsActive() {
			return nil, "", shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product "+id.String()+" is not available")
		}
		qty := quantities[id]
		if !p.IsPurchasable(qty) {
			return nil, "", shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for "+p.Name)
		}
		if currency == "" {
			currency = p.Currency
		} else if p.Currency != currency {
			return nil, "", shared.NewDomainError("CURRENCY_MISMATCH", "All products of an order must share one currency")
		}
		lines = append(lines, order.LineInput{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  qty,
		})
	}
	return lines, currency, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByNumber retrieves an order by its order number
func (s *OrderService) GetByNumber(ctx context.Context, number string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetForCustomer retrieves an order owned by the customer. Other orders are reported as not found.
func (s *OrderService) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(customerID) {
		return nil, shared.ErrNotFound
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List returns a page of orders for the admin
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (*shared.Paginated[OrderListItemResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	}.Normalize(100)
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
		domainFilter.OrderDir = "desc"
	}

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		domainFilter.Filters["payment_status"] = filter.PaymentStatus
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		// the upper bound is exclusive, include the whole "to" day
		domainFilter.Filters["to"] = filter.To.Add(24 * time.Hour)
	}

	return s.list(ctx, domainFilter)
}

// ListMine returns the customer's own orders, newest first
func (s *OrderService) ListMine(ctx context.Context, customerID uuid.UUID, page, pageSize int) (*shared.Paginated[OrderListItemResponse], error) {
	domainFilter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize(50)
	domainFilter.Filters["customer_id"] = customerID
	return s.list(ctx, domainFilter)
}

func (s *OrderService) list(ctx context.Context, filter shared.Filter) (*shared.Paginated[OrderListItemResponse], error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToOrderListItemResponses(orders), total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateStatus moves an order along the workflow. Entering cancelled or
// refunded returns the reserved stock in the same transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest, actor string) (*OrderResponse, error) {
	to := order.Status(req.Status)
	return s.mutate(ctx, id, func(o *order.Order) error {
		return o.TransitionTo(to, req.Note, actor)
	})
}

// Cancel cancels an order as an admin
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelOrderRequest, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(o *order.Order) error {
		return o.Cancel(req.Reason, actor, false)
	})
}

// CancelByCustomer cancels the customer's own pending order
func (s *OrderService) CancelByCustomer(ctx context.Context, customer Customer, id uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(o *order.Order) error {
		if !o.BelongsTo(customer.ID) {
			return shared.ErrNotFound
		}
		reason := req.Reason
		if strings.TrimSpace(reason) == "" {
			reason = "Cancelled by customer"
		}
		return o.Cancel(reason, customer.Email, true)
	})
}

// MarkPaid records payment of an order
func (s *OrderService) MarkPaid(ctx context.Context, id uuid.UUID, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(o *order.Order) error {
		return o.MarkPaid(actor)
	})
}

// UpdateShipping sets carrier and tracking number
func (s *OrderService) UpdateShipping(ctx context.Context, id uuid.UUID, req UpdateShippingRequest) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(o *order.Order) error {
		return o.UpdateShipping(req.Carrier, req.TrackingNumber)
	})
}

// AddNote appends an internal note
func (s *OrderService) AddNote(ctx context.Context, id uuid.UUID, req AddNoteRequest, actor string) (*OrderResponse, error) {
	return s.mutate(ctx, id, func(o *order.Order) error {
		return o.AddNote(req.Note, actor)
	})
}

// RenderInvoice returns the PDF invoice and its file name
func (s *OrderService) RenderInvoice(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.invoices == nil {
		return nil, "", shared.NewDomainError("PRINTING_DISABLED", "Invoice printing is not enabled")
	}
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.invoices.RenderInvoice(ctx, o)
	if err != nil {
		s.logger.Error("Failed to render invoice", zap.String("order_number", o.OrderNumber), zap.Error(err))
		return nil, "", err
	}
	return pdf, "invoice-" + o.OrderNumber + ".pdf", nil
}

// Stats returns counts per status and paid revenue
func (s *OrderService) Stats(ctx context.Context, q StatsQuery) (*StatsResponse, error) {
	to := q.To
	if to != nil {
		end := to.Add(24 * time.Hour)
		to = &end
	}
	stats, err := s.orderRepo.Stats(ctx, q.From, to)
	if err != nil {
		return nil, err
	}
	response := ToStatsResponse(stats)
	return &response, nil
}

// mutate loads an order inside a transaction, applies change, releases stock
// when the order entered a releasing status and saves it
func (s *OrderService) mutate(ctx context.Context, id uuid.UUID, change func(*order.Order) error) (*OrderResponse, error) {
	var updated *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		before := o.Status
		if err := change(o); err != nil {
			return err
		}
		if o.Status != before && o.Status.ReleasesStock() && !before.ReleasesStock() {
			if err := s.releaseStock(ctx, repos.Products(), o); err != nil {
				return err
			}
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, updated)
	response := ToOrderResponse(updated)
	return &response, nil
}

func (s *OrderService) releaseStock(ctx context.Context, products catalog.ProductRepository, o *order.Order) error {
	for _, it := range o.Items {
		if err := products.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
			if shared.IsNotFound(err) {
				s.logger.Warn("Skipping stock release for deleted product",
					zap.String("order_number", o.OrderNumber),
					zap.String("product_id", it.ProductID.String()),
				)
				continue
			}
			return err
		}
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish order events",
				zap.String("order_number", o.OrderNumber),
				zap.Error(err),
			)
		}
	}
	o.ClearDomainEvents()
}
