package order

import (
	"context"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/order"
)

// TransactionScope runs order placement and stock movements atomically.
// If fn returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to the
// current transaction. Products and orders share the same transaction.
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Orders() order.Repository
}

// InvoiceRenderer produces the PDF invoice of an order
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, o *order.Order) ([]byte, error)
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	products catalog.ProductRepository
	orders   order.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(products catalog.ProductRepository, orders order.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{products: products, orders: orders}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.products
}

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() order.Repository {
	return s.orders
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
