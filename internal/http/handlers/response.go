package handlers

import (
	"github.com/gin-gonic/gin"

	"todo_webapp/internal/validation"
)

// envelope is the JSON shape of every response.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  validation.Errors `json:"errors,omitempty"`
	Count   *int              `json:"count,omitempty"`
}

func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondList(c *gin.Context, data any, count int) {
	c.JSON(200, envelope{Success: true, Data: data, Count: &count})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

func respondValidation(c *gin.Context, errs validation.Errors) {
	c.JSON(400, envelope{Success: false, Message: "Validation failed", Errors: errs})
}
