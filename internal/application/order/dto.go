package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// PlaceOrderItem is one requested product line
type PlaceOrderItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=1000"`
}

// AddressInput is the shipping address of a new order
type AddressInput struct {
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
	Phone      string `json:"phone" binding:"max=30"`
}

func (a AddressInput) toDomain() order.Address {
	return order.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// PlaceOrderRequest is a storefront checkout. Prices are read from the catalog.
// Email and name are filled from the customer account when signed in.
type PlaceOrderRequest struct {
	Items           []PlaceOrderItem `json:"items" binding:"required,min=1,max=100,dive"`
	CustomerEmail   string           `json:"customer_email" binding:"omitempty,email,max=200"`
	CustomerName    string           `json:"customer_name" binding:"omitempty,max=100"`
	ShippingAddress AddressInput     `json:"shipping_address" binding:"required"`
	Notes           string           `json:"notes" binding:"max=1000"`
}

// UpdateStatusRequest moves an order along the workflow
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	Note   string `json:"note" binding:"max=1000"`
}

// UpdateShippingRequest sets carrier and tracking number
type UpdateShippingRequest struct {
	Carrier        string `json:"carrier" binding:"max=50"`
	TrackingNumber string `json:"tracking_number" binding:"required,max=100"`
}

// AddNoteRequest appends an internal note
type AddNoteRequest struct {
	Note string `json:"note" binding:"required,max=2000"`
}

// CancelOrderRequest cancels an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// OrderListFilter holds the list query parameters
type OrderListFilter struct {
	Search        string     `form:"search"`
	Status        string     `form:"status" binding:"omitempty,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=unpaid paid refunded"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StatsQuery restricts stats to a created_at range
type StatsQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// OrderItemResponse is an order line
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// StatusChangeResponse is an order history entry
type StatusChangeResponse struct {
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID              `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	CustomerID      *uuid.UUID             `json:"customer_id,omitempty"`
	CustomerEmail   string                 `json:"customer_email"`
	CustomerName    string                 `json:"customer_name"`
	ShippingAddress order.Address          `json:"shipping_address"`
	Items           []OrderItemResponse    `json:"items"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	ShippingFee     decimal.Decimal        `json:"shipping_fee"`
	Tax             decimal.Decimal        `json:"tax"`
	Total           decimal.Decimal        `json:"total"`
	Currency        string                 `json:"currency"`
	Status          string                 `json:"status"`
	PaymentStatus   string                 `json:"payment_status"`
	TrackingNumber  string                 `json:"tracking_number,omitempty"`
	Carrier         string                 `json:"carrier,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	History         []StatusChangeResponse `json:"history"`
	PaidAt          *time.Time             `json:"paid_at,omitempty"`
	ShippedAt       *time.Time             `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time             `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Version         int                    `json:"version"`
}

// OrderListItemResponse is the compact form used in lists
type OrderListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerEmail string          `json:"customer_email"`
	CustomerName  string          `json:"customer_name"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StatsResponse aggregates order counts and revenue
type StatsResponse struct {
	CountByStatus map[string]int64 `json:"count_by_status"`
	TotalOrders   int64            `json:"total_orders"`
	PaidRevenue   decimal.Decimal  `json:"paid_revenue"`
	AverageOrder  decimal.Decimal  `json:"average_order"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		}
	}
	history := make([]StatusChangeResponse, len(o.History))
	for i, h := range o.History {
		history[i] = StatusChangeResponse{
			From:      string(h.FromStatus),
			To:        string(h.ToStatus),
			Note:      h.Note,
			Actor:     h.Actor,
			CreatedAt: h.CreatedAt,
		}
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		CustomerName:    o.CustomerName,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Tax:             o.Tax,
		Total:           o.Total,
		Currency:        o.Currency,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		Notes:           o.Notes,
		History:         history,
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// ToOrderListItemResponses converts orders to their list form
func ToOrderListItemResponses(orders []order.Order) []OrderListItemResponse {
	out := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		o := &orders[i]
		out[i] = OrderListItemResponse{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			CustomerEmail: o.CustomerEmail,
			CustomerName:  o.CustomerName,
			ItemCount:     o.ItemCount(),
			Total:         o.Total,
			Currency:      o.Currency,
			Status:        string(o.Status),
			PaymentStatus: string(o.PaymentStatus),
			CreatedAt:     o.CreatedAt,
		}
	}
	return out
}

// ToStatsResponse converts repository stats to a response
func ToStatsResponse(s *order.Stats) StatsResponse {
	counts := make(map[string]int64, len(order.AllStatuses))
	for _, st := range order.AllStatuses {
		counts[string(st)] = s.CountByStatus[st]
	}
	return StatsResponse{
		CountByStatus: counts,
		TotalOrders:   s.TotalOrders,
		PaidRevenue:   s.PaidRevenue,
		AverageOrder:  s.AverageOrder,
	}
}
