package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
)

// Health handles GET /health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewHealthResponse())
}
