package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Message writes {"message": msg} with 200.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Errors writes {"errors": errs} with the given status.
func Errors(c *gin.Context, status int, errs any) {
	c.AbortWithStatusJSON(status, gin.H{"errors": errs})
}

// Error writes a single message with an error status.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal server error")
}

// Page is the envelope for paginated listings.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPage[T any](items []T, page, pageSize, total int) Page[T] {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}
