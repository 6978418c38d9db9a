package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/server/http/dto"
)

// PaymentHandler serves payment collection and receipt lookups.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Create handles POST /api/orders/:id/payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	payment, err := h.facade.CreatePayment(c.Request.Context(), CurrentActor(c), orderID, model.PaymentMethod(req.Method), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPaymentResponse(*payment))
}

// List handles GET /api/orders/:id/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.facade.Payments(c.Request.Context(), CurrentActor(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// Confirm handles POST /api/payments/:id/confirm.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payment, receipt, err := h.facade.ConfirmPayment(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ConfirmationResponse{
		Payment: toPaymentResponse(*payment),
		Receipt: toReceiptResponse(*receipt),
	})
}

// Receipt handles GET /api/payments/:id/receipt.
func (h *PaymentHandler) Receipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	receipt, err := h.facade.Receipt(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReceiptResponse(*receipt))
}

func toPaymentResponse(p model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:           p.ID,
		OrderID:      p.OrderID,
		AccountantID: p.AccountantID,
		Amount:       p.Amount,
		Method:       string(p.Method),
		Status:       string(p.Status),
		ConfirmedAt:  p.ConfirmedAt,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
	}
}

func toReceiptResponse(r model.Receipt) dto.ReceiptResponse {
	return dto.ReceiptResponse{
		ID:          r.ID,
		PaymentID:   r.PaymentID,
		Number:      r.Number,
		FilePath:    r.FilePath,
		GeneratedAt: r.GeneratedAt,
	}
}
