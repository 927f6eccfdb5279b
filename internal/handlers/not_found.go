package handlers

import (
	"net/http"

	"github.com/alimgiray/orgscope/internal/middleware"
	"github.com/gin-gonic/gin"
)

type NotFoundHandler struct{}

func NewNotFoundHandler() *NotFoundHandler {
	return &NotFoundHandler{}
}

// NotFound handles 404 errors for non-existent routes
func (h *NotFoundHandler) NotFound(c *gin.Context) {
	middleware.AbortWithError(c, http.StatusNotFound, "Cannot "+c.Request.Method+" "+c.Request.URL.Path)
}
