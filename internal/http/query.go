package http

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"watch-catalog/internal/repository"
)

// sortFromQuery lee _sort y _order; un _order desconocido deja el orden por defecto.
func sortFromQuery(c *gin.Context) repository.Sort {
	return repository.Sort{
		Field: strings.TrimSpace(c.Query("_sort")),
		Order: repository.SortOrder(strings.ToLower(strings.TrimSpace(c.Query("_order")))),
	}
}

func setTotalCount(c *gin.Context, total int64) {
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
}
