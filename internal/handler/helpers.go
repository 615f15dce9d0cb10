package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/gateway"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/service"
	"github.com/MAVERICK-VF142/Drx.MediMate/pkg/response"
)

// TextResponse carries generated text back to the client.
type TextResponse struct {
	Response string `json:"response"`
}

// writeAssistantError maps AssistantService failures onto HTTP responses.
func writeAssistantError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDrugName),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrEmptyInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, gateway.ErrExhaustedRetries):
		logger.Warn("assistant unavailable", zap.Error(err))
		response.ServiceUnavailable(c, "AI service is unavailable, please try again later")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(c, "request cancelled")
	default:
		logger.Error("assistant request failed", zap.Error(err))
		response.InternalError(c, "failed to process request")
	}
}
