package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "climbing-holds/internal/application"
	"climbing-holds/internal/domain/entity"
)

// StatusClientClosedRequest клиент ушёл, не дождавшись ответа
const StatusClientClosedRequest = 499

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnsupportedLabel),
		errors.Is(err, entity.ErrInvalidImage),
		errors.Is(err, entity.ErrUnsupportedStrategy):
		return http.StatusBadRequest
	case app.IsCancelled(err):
		return StatusClientClosedRequest
	case errors.Is(err, app.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	detail := err.Error()
	switch status {
	case StatusClientClosedRequest:
		h.logger.Info("request cancelled", zap.String("path", c.Request.URL.Path))
		detail = "Request cancelled"
	case http.StatusInternalServerError:
		h.logger.Error("failed to process image", zap.String("path", c.Request.URL.Path), zap.Error(err))
		detail = "Error processing image: " + err.Error()
	default:
		h.logger.Warn("bad request", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Detail: detail, RequestID: c.GetString(requestIDKey)})
}

func (h *Handler) badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Detail: detail, RequestID: c.GetString(requestIDKey)})
}
