package handler

import (
	"math"

	"github.com/gin-gonic/gin"
)

// GetUserName extracts the user name from the Gin context
func GetUserName(c *gin.Context) string {
	name, exists := c.Get("user_name")
	if !exists {
		return ""
	}
	return name.(string)
}

// toCents converts a decimal amount from the API into cents
func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}
