package printing

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	apporder "github.com/shopfront/backend/internal/application/order"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
)

//go:embed templates/invoice.html
var invoiceHTML string

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal, currency string) string {
		return d.StringFixed(2) + " " + currency
	},
	"date": func(t time.Time) string {
		return t.UTC().Format("2006-01-02")
	},
}).Parse(invoiceHTML))

const invoiceFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#888">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

// Shop is the seller block printed on invoices
type Shop struct {
	Name    string
	Address string
}

// InvoicePrinter renders orders as PDF invoices
type InvoicePrinter struct {
	renderer PDFRenderer
	shop     Shop
	paper    PaperSize
}

// NewInvoicePrinter creates an invoice printer on top of renderer
func NewInvoicePrinter(renderer PDFRenderer, cfg config.PrintingConfig) *InvoicePrinter {
	return &InvoicePrinter{
		renderer: renderer,
		shop:     Shop{Name: cfg.ShopName, Address: cfg.ShopAddress},
		paper:    PaperA4,
	}
}

type invoiceView struct {
	Shop  Shop
	Order *order.Order
}

// InvoiceHTML renders the invoice markup for o
func (p *InvoicePrinter) InvoiceHTML(o *order.Order) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, invoiceView{Shop: p.shop, Order: o}); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

// RenderInvoice prints o to PDF
func (p *InvoicePrinter) RenderInvoice(ctx context.Context, o *order.Order) ([]byte, error) {
	markup, err := p.InvoiceHTML(o)
	if err != nil {
		return nil, err
	}
	return p.renderer.Render(ctx, &RenderRequest{
		HTML:       markup,
		Title:      "Invoice " + o.OrderNumber,
		PaperSize:  p.paper,
		Margins:    DefaultMargins(),
		FooterHTML: invoiceFooter,
	})
}

var _ apporder.InvoiceRenderer = (*InvoicePrinter)(nil)
