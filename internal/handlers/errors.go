package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/alimgiray/orgscope/internal/githubapi"
	"github.com/alimgiray/orgscope/internal/middleware"
	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps a service error to the HTTP status and message the client sees
func statusFor(err error) (int, string) {
	var (
		notFound *models.NotFoundError
		upstream *githubapi.UpstreamError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case githubapi.IsRateLimited(err):
		return http.StatusForbidden, "GitHub API rate limit exceeded"
	case errors.Is(err, middleware.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "GitHub API is unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError logs err and writes the matching error response
func respondError(c *gin.Context, err error) {
	status, message := statusFor(err)

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"path":       c.Request.URL.Path,
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request failed")
	}

	_ = c.Error(err)
	middleware.AbortWithError(c, status, message)
}
