package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParsePagination reads page and limit query parameters, falling back to
// page 1 and the given default limit. Limits are capped at 100.
func ParsePagination(c *gin.Context, defaultLimit int) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
