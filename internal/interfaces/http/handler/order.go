package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/application/order"
)

// OrderHandler serves order management and storefront checkout
type OrderHandler struct {
	BaseHandler
	orderService    *order.OrderService
	customerService *identity.CustomerService
}

// NewOrderHandler creates a new order handler. customerService fills the
// customer name of signed-in checkouts and may be nil.
func NewOrderHandler(orderService *order.OrderService, customerService *identity.CustomerService) *OrderHandler {
	return &OrderHandler{orderService: orderService, customerService: customerService}
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        search         query string false "Order number, email or name"
// @Param        status         query string false "Order status"
// @Param        payment_status query string false "unpaid, paid or refunded"
// @Param        from           query string false "Created from (YYYY-MM-DD)"
// @Param        to             query string false "Created to (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]order.OrderListItemResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter order.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	o, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// GetByNumber godoc
// @Summary      Look up an order by its number
// @Tags         orders
// @Produce      json
// @Param        number path string true "Order number, e.g. ORD-20240101-AB12CD"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/by-number/{number} [get]
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	o, err := h.orderService.GetByNumber(c.Request.Context(), strings.ToUpper(strings.TrimSpace(c.Param("number"))))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UpdateStatus godoc
// @Summary      Change order status
// @Description  Cancelling or refunding returns reserved stock
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Order ID"
// @Param        request body order.UpdateStatusRequest true "Status"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	var req order.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.UpdateStatus(c.Request.Context(), id, req, h.actorEmail(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Cancel godoc
// @Summary      Cancel an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Order ID"
// @Param        request body order.CancelOrderRequest false "Reason"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	var req order.CancelOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.Cancel(c.Request.Context(), id, req, h.actorEmail(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// MarkPaid godoc
// @Summary      Record payment
// @Tags         orders
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/paid [post]
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	o, err := h.orderService.MarkPaid(c.Request.Context(), id, h.actorEmail(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UpdateShipping godoc
// @Summary      Set tracking information
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Order ID"
// @Param        request body order.UpdateShippingRequest true "Tracking"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/shipping [put]
func (h *OrderHandler) UpdateShipping(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	var req order.UpdateShippingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.UpdateShipping(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// AddNote godoc
// @Summary      Add an internal note
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Order ID"
// @Param        request body order.AddNoteRequest true "Note"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/notes [post]
func (h *OrderHandler) AddNote(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	var req order.AddNoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.AddNote(c.Request.Context(), id, req, h.actorEmail(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Invoice godoc
// @Summary      Download the PDF invoice
// @Tags         orders
// @Produce      application/pdf
// @Param        id path string true "Order ID"
// @Success      200 {file} binary
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	pdf, filename, err := h.orderService.RenderInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Stats godoc
// @Summary      Order statistics
// @Tags         orders
// @Produce      json
// @Param        from query string false "From (YYYY-MM-DD)"
// @Param        to   query string false "To, inclusive (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=order.StatsResponse}
// @Security     BearerAuth
// @Router       /admin/orders/stats [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	var q order.StatsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	stats, err := h.orderService.Stats(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Place godoc
// @Summary      Place an order
// @Description  Guests must provide customer_email and customer_name
// @Tags         store-orders
// @Accept       json
// @Produce      json
// @Param        request body order.PlaceOrderRequest true "Checkout"
// @Success      201 {object} dto.Response{data=order.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	var req order.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.Place(c.Request.Context(), h.checkoutCustomer(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}

// ListMine godoc
// @Summary      My orders
// @Tags         store-orders
// @Produce      json
// @Param        page      query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]order.OrderListItemResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /store/orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var q struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.orderService.ListMine(c.Request.Context(), customerID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// GetMine godoc
// @Summary      One of my orders
// @Tags         store-orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders/{id} [get]
func (h *OrderHandler) GetMine(c *gin.Context) {
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	o, err := h.orderService.GetForCustomer(c.Request.Context(), customerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// CancelMine godoc
// @Summary      Cancel one of my orders
// @Description  Only pending orders can be cancelled by the customer
// @Tags         store-orders
// @Accept       json
// @Produce      json
// @Param        id      path string                   true  "Order ID"
// @Param        request body order.CancelOrderRequest false "Reason"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders/{id}/cancel [post]
func (h *OrderHandler) CancelMine(c *gin.Context) {
	claims := getClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	customerID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id", "order")
	if !ok {
		return
	}
	var req order.CancelOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.CancelByCustomer(c.Request.Context(),
		order.Customer{ID: customerID, Email: claims.Email}, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// checkoutCustomer returns nil for guest checkout
func (h *OrderHandler) checkoutCustomer(c *gin.Context) *order.Customer {
	claims := getClaims(c)
	if claims == nil {
		return nil
	}
	customerID, err := claims.GetUserUUID()
	if err != nil {
		return nil
	}
	customer := &order.Customer{ID: customerID, Email: claims.Email}
	if h.customerService != nil {
		if profile, err := h.customerService.Me(c.Request.Context(), customerID); err == nil {
			customer.Name = profile.Name
		}
	}
	return customer
}

// actorEmail names the admin in the order history
func (h *OrderHandler) actorEmail(c *gin.Context) string {
	if claims := getClaims(c); claims != nil {
		return claims.Email
	}
	return "system"
}
