package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/server/http/dto"
)

// DiscountHandler serves the discount request workflow.
type DiscountHandler struct {
	facade DiscountFacade
}

// NewDiscountHandler constructs DiscountHandler.
func NewDiscountHandler(facade DiscountFacade) *DiscountHandler {
	return &DiscountHandler{facade: facade}
}

// File handles POST /api/orders/:id/discounts.
func (h *DiscountHandler) File(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	request, err := h.facade.FileDiscount(c.Request.Context(), CurrentActor(c), orderID, req.Amount, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDiscountResponse(*request))
}

// List handles GET /api/discounts with an optional ?status filter.
func (h *DiscountHandler) List(c *gin.Context) {
	var status *model.DiscountStatus
	if raw := c.Query("status"); raw != "" {
		s := model.DiscountStatus(raw)
		status = &s
	}
	requests, err := h.facade.Discounts(c.Request.Context(), CurrentActor(c), status)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.DiscountResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, toDiscountResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/discounts/:id.
func (h *DiscountHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	request, err := h.facade.Discount(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDiscountResponse(*request))
}

// Approve handles POST /api/discounts/:id/approve.
func (h *DiscountHandler) Approve(c *gin.Context) {
	h.review(c, h.facade.ApproveDiscount)
}

// Reject handles POST /api/discounts/:id/reject.
func (h *DiscountHandler) Reject(c *gin.Context) {
	h.review(c, h.facade.RejectDiscount)
}

type reviewFunc func(ctx context.Context, actor model.Actor, id int64, notes string) (*model.DiscountRequest, error)

func (h *DiscountHandler) review(c *gin.Context, decide reviewFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
	}
	request, err := decide(c.Request.Context(), CurrentActor(c), id, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDiscountResponse(*request))
}

func toDiscountResponse(r model.DiscountRequest) dto.DiscountResponse {
	return dto.DiscountResponse{
		ID:          r.ID,
		OrderID:     r.OrderID,
		RequestedBy: r.RequestedBy,
		Amount:      r.Amount,
		Reason:      r.Reason,
		Status:      string(r.Status),
		ReviewedBy:  r.ReviewedBy,
		ReviewedAt:  r.ReviewedAt,
		AdminNotes:  r.AdminNotes,
		CreatedAt:   r.CreatedAt,
	}
}
