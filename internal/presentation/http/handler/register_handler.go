package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/application/service"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/presentation/http/dto/request"
	"github.com/mwenda/sokopos-api/internal/presentation/http/dto/response"
)

// RegisterHandler handles cash register HTTP requests
type RegisterHandler struct {
	registerService *service.RegisterService
}

// NewRegisterHandler creates a new register handler
func NewRegisterHandler(registerService *service.RegisterService) *RegisterHandler {
	return &RegisterHandler{registerService: registerService}
}

// Open handles opening a register. The authenticated user becomes the
// operator.
func (h *RegisterHandler) Open(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid register ID")
		return
	}

	var req request.OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	operator := GetUserName(c)
	if operator == "" {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	register, err := h.registerService.Open(c.Request.Context(), id, operator, req.PIN, toCents(req.OpeningFloat))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Register opened successfully", register)
}

// Close handles closing a register
func (h *RegisterHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid register ID")
		return
	}

	register, err := h.registerService.Close(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Register closed successfully", register)
}

// CashIn handles adding cash to the drawer
func (h *RegisterHandler) CashIn(c *gin.Context) {
	h.move(c, h.registerService.CashIn, "Cash added successfully")
}

// CashOut handles removing cash from the drawer
func (h *RegisterHandler) CashOut(c *gin.Context) {
	h.move(c, h.registerService.CashOut, "Cash removed successfully")
}

func (h *RegisterHandler) move(c *gin.Context, op func(ctx context.Context, registerID uuid.UUID, value int64, description *string) (*entity.Register, error), message string) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid register ID")
		return
	}

	var req request.CashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	register, err := op(c.Request.Context(), id, toCents(req.Value), req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, register)
}

// Get handles getting a register with its history
func (h *RegisterHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid register ID")
		return
	}

	register, err := h.registerService.GetRegister(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Register retrieved successfully", register)
}

// History handles listing a register's movement trail
func (h *RegisterHandler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid register ID")
		return
	}

	entries, err := h.registerService.GetHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Register history retrieved successfully", entries)
}

// List handles listing all registers
func (h *RegisterHandler) List(c *gin.Context) {
	registers, err := h.registerService.ListRegisters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Registers retrieved successfully", registers)
}
