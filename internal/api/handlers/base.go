package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
)

// WriteError aborts the request with err as the JSON body.
func WriteError(c *gin.Context, err dto.APIError) {
	c.AbortWithStatusJSON(err.Status, err)
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// parseRunID reads the :id path parameter
func parseRunID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(c, dto.BadRequestError("invalid run ID"))
		return 0, false
	}
	return id, true
}
