package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/server/http/dto"
	"github.com/polkiloo/retailpos/internal/usecase"
)

// IdempotencyKeyHeader lets clients retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentActor(c), usecase.CreateOrderInput{
		Customer:       toCustomer(req.Customer),
		Notes:          req.Notes,
		Items:          toLines(req.Items),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders with an optional ?status filter.
func (h *OrderHandler) List(c *gin.Context) {
	var status *model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := model.OrderStatus(raw)
		status = &s
	}

	orders, err := h.facade.Orders(c.Request.Context(), CurrentActor(c), status)
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Update handles PUT /api/orders/:id.
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	in := usecase.UpdateOrderInput{Notes: req.Notes}
	if req.Customer != nil {
		customer := toCustomer(*req.Customer)
		in.Customer = &customer
	}
	if req.Items != nil {
		in.Items = toLines(*req.Items)
		if in.Items == nil {
			in.Items = []model.LineRequest{}
		}
	}

	order, err := h.facade.UpdateOrder(c.Request.Context(), CurrentActor(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Delete handles DELETE /api/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteOrder(c.Request.Context(), CurrentActor(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit handles POST /api/orders/:id/submit.
func (h *OrderHandler) Submit(c *gin.Context) {
	h.transition(c, h.facade.SubmitOrder)
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.facade.CancelOrder)
}

func (h *OrderHandler) transition(c *gin.Context, apply func(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := apply(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toCustomer(c dto.Customer) model.Customer {
	return model.Customer{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func toLines(items []dto.LineRequest) []model.LineRequest {
	if len(items) == 0 {
		return nil
	}
	out := make([]model.LineRequest, 0, len(items))
	for _, it := range items {
		out = append(out, model.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return dto.OrderResponse{
		ID:     order.ID,
		Number: order.Number,
		Customer: dto.Customer{
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
		},
		SalesRepID:  order.SalesRepID,
		Status:      string(order.Status),
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		Discount:    order.Discount,
		Total:       order.Total,
		Notes:       order.Notes,
		Items:       items,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		SubmittedAt: order.SubmittedAt,
		PaidAt:      order.PaidAt,
	}
}
