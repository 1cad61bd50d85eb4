package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"aboard/internal/domain"
)

type errorResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// writeError renders the envelope. Causes of internal errors go to the log only.
func (h *Handler) writeError(c *gin.Context, err error) {
	apiErr := domain.AsError(err)
	if apiErr.Kind == domain.KindInternal {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(apiErr.Status, errorResponse{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
	})
}
