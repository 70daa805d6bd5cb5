package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/application/service"
	"github.com/mwenda/sokopos-api/internal/presentation/http/dto/request"
	"github.com/mwenda/sokopos-api/internal/presentation/http/dto/response"
)

// StockHandler handles stock receipt and read-side stock HTTP requests
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// ReceiveBatch handles booking received stock as a new batch
func (h *StockHandler) ReceiveBatch(c *gin.Context) {
	var req request.ReceiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	var expiryDate *time.Time
	if req.ExpiryDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			response.BadRequest(c, "Invalid expiry date")
			return
		}
		expiryDate = &parsed
	}

	batch, err := h.stockService.ReceiveBatch(c.Request.Context(), &service.ReceiveBatchInput{
		ProductID:     req.ProductID,
		UnitID:        req.UnitID,
		BatchNumber:   req.BatchNumber,
		ExpiryDate:    expiryDate,
		Quantity:      req.Quantity,
		PurchasePrice: toCents(req.PurchasePrice),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stock batch received successfully", batch)
}

// ListBatches handles listing a product's batches
func (h *StockHandler) ListBatches(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	batches, err := h.stockService.ListBatches(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batches retrieved successfully", batches)
}

// GetQuantity handles reading a product's aggregate quantity
func (h *StockHandler) GetQuantity(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	quantity, err := h.stockService.GetQuantity(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quantity retrieved successfully", gin.H{
		"product_id": productID,
		"quantity":   quantity,
	})
}

// GetLowStock handles listing products at or below their alert threshold
func (h *StockHandler) GetLowStock(c *gin.Context) {
	products, err := h.stockService.GetLowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock products retrieved successfully", products)
}
