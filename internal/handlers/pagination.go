package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Fixed page size for the gym-scoped instructor and client listings.
const listPageSize = 10

func pageParam(c *gin.Context) int {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	return page
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
