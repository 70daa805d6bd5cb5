package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/application/service"
	"github.com/mwenda/sokopos-api/internal/domain/repository"
	"github.com/mwenda/sokopos-api/internal/presentation/http/dto/request"
	"github.com/mwenda/sokopos-api/internal/presentation/http/dto/response"
	"github.com/mwenda/sokopos-api/pkg/pagination"
)

// RefundHandler handles refund-related HTTP requests
type RefundHandler struct {
	refundService *service.RefundService
}

// NewRefundHandler creates a new refund handler
func NewRefundHandler(refundService *service.RefundService) *RefundHandler {
	return &RefundHandler{refundService: refundService}
}

// Create handles creating a pending refund against an order
func (h *RefundHandler) Create(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	lines := make([]service.CreateRefundLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = service.CreateRefundLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: toCents(line.UnitPrice),
		}
	}

	refund, err := h.refundService.CreateRefund(c.Request.Context(), &service.CreateRefundInput{
		OrderID: orderID,
		Reason:  req.Reason,
		Lines:   lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Refund created successfully", refund)
}

// Process handles completing a pending refund
func (h *RefundHandler) Process(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid refund ID")
		return
	}

	refund, err := h.refundService.ProcessRefund(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Refund processed successfully", refund)
}

// Get handles getting a single refund with its line items
func (h *RefundHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid refund ID")
		return
	}

	refund, err := h.refundService.GetRefund(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Refund retrieved successfully", refund)
}

// List handles listing refunds
func (h *RefundHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.RefundFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	}

	if orderIDStr := c.Query("order_id"); orderIDStr != "" {
		if orderID, err := uuid.Parse(orderIDStr); err == nil {
			params.OrderID = &orderID
		}
	}

	result, err := h.refundService.ListRefunds(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Refunds retrieved successfully", result)
}
