package request

// OpenRegisterRequest represents a register open request. The PIN is checked
// against the register's stored operator PIN hash.
type OpenRegisterRequest struct {
	OpeningFloat float64 `json:"opening_float" binding:"min=0"`
	PIN          string  `json:"pin" binding:"required,min=4,max=10"`
}

// CashMovementRequest represents a cash-in or cash-out request
type CashMovementRequest struct {
	Value       float64 `json:"value" binding:"required,gt=0"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}
