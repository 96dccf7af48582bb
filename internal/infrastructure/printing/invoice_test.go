package printing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRenderer struct {
	req *RenderRequest
}

func (c *captureRenderer) Render(_ context.Context, req *RenderRequest) ([]byte, error) {
	c.req = req
	return []byte("%PDF-1.7"), nil
}

func (c *captureRenderer) Close() error { return nil }

func newInvoiceOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(nil, "ada@example.com", "Ada <Lovelace>",
		order.Address{Line1: "1 Analytical St", City: "London", PostalCode: "N1", Country: "GB"},
		[]order.LineInput{
			{ProductID: uuid.New(), SKU: "MUG-01", Name: "Mug", UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2},
		},
		decimal.RequireFromString("4.99"), decimal.Zero, "eur")
	require.NoError(t, err)
	return o
}

func TestInvoicePrinter_InvoiceHTML(t *testing.T) {
	p := NewInvoicePrinter(&captureRenderer{}, config.PrintingConfig{ShopName: "Shopfront", ShopAddress: "Main St 1"})
	o := newInvoiceOrder(t)

	markup, err := p.InvoiceHTML(o)
	require.NoError(t, err)

	assert.Contains(t, markup, o.OrderNumber)
	assert.Contains(t, markup, "Shopfront")
	assert.Contains(t, markup, "MUG-01")
	assert.Contains(t, markup, "25.00 EUR")
	assert.Contains(t, markup, "29.99 EUR")
	assert.Contains(t, markup, "Ada &lt;Lovelace&gt;", "customer data is escaped")
}

func TestInvoicePrinter_RenderInvoice(t *testing.T) {
	renderer := &captureRenderer{}
	p := NewInvoicePrinter(renderer, config.PrintingConfig{ShopName: "Shopfront"})
	o := newInvoiceOrder(t)

	pdf, err := p.RenderInvoice(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.7"), pdf)
	require.NotNil(t, renderer.req)
	assert.Equal(t, "Invoice "+o.OrderNumber, renderer.req.Title)
	assert.Equal(t, PaperA4, renderer.req.PaperSize)
	assert.Contains(t, renderer.req.FooterHTML, "pageNumber")
}
