package order

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment status of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// AllStatuses lists every status in workflow order
var AllStatuses = []Status{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
	StatusDelivered, StatusCancelled, StatusRefunded,
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok || s == StatusCancelled || s == StatusRefunded
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the workflow allows s -> to
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ReleasesStock reports whether entering s returns reserved stock
func (s Status) ReleasesStock() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// PaymentStatus tracks whether the order was paid
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Address is the shipping destination stored as JSON
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Validate checks required address fields
func (a Address) Validate() error {
	if strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.PostalCode) == "" || strings.TrimSpace(a.Country) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Address requires line1, city, postal code and country")
	}
	return nil
}

// Order is the aggregate root for a customer purchase
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID      *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerEmail   string          `gorm:"type:varchar(200);not null;index"`
	CustomerName    string          `gorm:"type:varchar(100);not null"`
	ShippingAddress Address         `gorm:"type:jsonb;serializer:json"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingFee     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Tax             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency        string          `gorm:"type:char(3);not null;default:'USD'"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'unpaid'"`
	TrackingNumber  string          `gorm:"type:varchar(100)"`
	Carrier         string          `gorm:"type:varchar(50)"`
	Notes           string          `gorm:"type:text"`
	PaidAt          *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	Items           []Item          `gorm:"foreignKey:OrderID"`
	History         []StatusChange  `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// Item is a line of an order. Product data is snapshotted at purchase time.
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"column:sku;type:varchar(50);not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// StatusChange is one entry of the order's status history
type StatusChange struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus Status    `gorm:"type:varchar(20)"`
	ToStatus   Status    `gorm:"type:varchar(20);not null"`
	Note       string    `gorm:"type:text"`
	Actor      string    `gorm:"type:varchar(200)"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (StatusChange) TableName() string {
	return "order_status_history"
}

// LineInput describes one product line of a new order
type LineInput struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// NewOrder creates a pending order with totals computed from its lines
func NewOrder(customerID *uuid.UUID, email, name string, address Address, lines []LineInput, shippingFee, tax decimal.Decimal, currency string) (*Order, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid customer email is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name is required")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if shippingFee.IsNegative() || tax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Shipping fee and tax cannot be negative")
	}
	if currency == "" {
		currency = "USD"
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       GenerateOrderNumber(time.Now()),
		CustomerID:        customerID,
		CustomerEmail:     email,
		CustomerName:      strings.TrimSpace(name),
		ShippingAddress:   address,
		ShippingFee:       shippingFee.Round(2),
		Tax:               tax.Round(2),
		Currency:          strings.ToUpper(currency),
		Status:            StatusPending,
		PaymentStatus:     PaymentUnpaid,
	}

	seen := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		if l.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		if idx, dup := seen[l.ProductID]; dup {
			o.Items[idx].Quantity += l.Quantity
			o.Items[idx].LineTotal = o.Items[idx].UnitPrice.Mul(decimal.NewFromInt(int64(o.Items[idx].Quantity)))
			continue
		}
		seen[l.ProductID] = len(o.Items)
		o.Items = append(o.Items, Item{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			SKU:       l.SKU,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.Round(2),
			Quantity:  l.Quantity,
			LineTotal: l.UnitPrice.Round(2).Mul(decimal.NewFromInt(int64(l.Quantity))),
			CreatedAt: o.CreatedAt,
		})
	}
	o.recalculate()
	o.appendHistory("", StatusPending, "Order placed", email)

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// TransitionTo moves the order along the status workflow
func (o *Order) TransitionTo(to Status, note, actor string) error {
	if !to.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", to))
	}
	if o.Status == to {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Order is already %s", to))
	}
	if !o.Status.CanTransitionTo(to) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot change order status from %s to %s", o.Status, to))
	}
	if to == StatusShipped && o.TrackingNumber == "" {
		return shared.NewDomainError("TRACKING_REQUIRED", "A tracking number is required before shipping")
	}

	now := time.Now()
	switch to {
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	case StatusRefunded:
		if o.PaymentStatus == PaymentPaid {
			o.PaymentStatus = PaymentRefunded
		}
	}

	from := o.Status
	o.Status = to
	o.appendHistory(from, to, note, actor)
	o.touch()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, to, note))
	return nil
}

// Cancel cancels the order. Customers may only cancel pending orders.
func (o *Order) Cancel(reason, actor string, byCustomer bool) error {
	if byCustomer && o.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending orders can be cancelled by the customer")
	}
	return o.TransitionTo(StatusCancelled, reason, actor)
}

// MarkPaid records payment
func (o *Order) MarkPaid(actor string) error {
	if o.PaymentStatus == PaymentPaid {
		return shared.NewDomainError("ALREADY_PAID", "Order is already paid")
	}
	if o.Status == StatusCancelled || o.Status == StatusRefunded {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a cancelled or refunded order as paid")
	}
	now := time.Now()
	o.PaymentStatus = PaymentPaid
	o.PaidAt = &now
	o.appendHistory(o.Status, o.Status, "Payment received", actor)
	o.touch()
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// UpdateShipping sets carrier and tracking number
func (o *Order) UpdateShipping(carrier, trackingNumber string) error {
	if o.Status.IsTerminal() || o.Status == StatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Shipping details cannot change after delivery or cancellation")
	}
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number cannot be empty")
	}
	if len(trackingNumber) > 100 || len(carrier) > 50 {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number or carrier is too long")
	}
	o.Carrier = strings.TrimSpace(carrier)
	o.TrackingNumber = trackingNumber
	o.touch()
	return nil
}

// AddNote appends an internal note
func (o *Order) AddNote(note, actor string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return shared.NewDomainError("INVALID_NOTE", "Note cannot be empty")
	}
	stamp := time.Now().UTC().Format("2006-01-02 15:04")
	entry := fmt.Sprintf("[%s %s] %s", stamp, actor, note)
	if o.Notes == "" {
		o.Notes = entry
	} else {
		o.Notes = o.Notes + "\n" + entry
	}
	o.touch()
	return nil
}

// BelongsTo reports whether the order was placed by the customer
func (o *Order) BelongsTo(customerID uuid.UUID) bool {
	return o.CustomerID != nil && *o.CustomerID == customerID
}

// ContainsProduct reports whether any line references productID
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// ItemCount returns the total number of units
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func (o *Order) recalculate() {
	subtotal := decimal.Zero
	for _, it := range o.Items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	o.Subtotal = subtotal.Round(2)
	o.Total = o.Subtotal.Add(o.ShippingFee).Add(o.Tax).Round(2)
}

func (o *Order) appendHistory(from, to Status, note, actor string) {
	o.History = append(o.History, StatusChange{
		ID:         uuid.New(),
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		Actor:      actor,
		CreatedAt:  time.Now(),
	})
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber returns a number in the form ORD-YYYYMMDD-XXXXXX
func GenerateOrderNumber(now time.Time) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		copy(b, []byte(fmt.Sprintf("%06d", now.UnixNano()%1000000)))
	}
	for i := range b {
		b[i] = orderNumberAlphabet[int(b[i])%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), string(b))
}
