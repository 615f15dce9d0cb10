package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/service"
	"github.com/MAVERICK-VF142/Drx.MediMate/pkg/response"
)

type InvitationHandler struct {
	inviteService service.InviteService
	logger        *zap.Logger
}

func NewInvitationHandler(inviteService service.InviteService, logger *zap.Logger) *InvitationHandler {
	return &InvitationHandler{inviteService: inviteService, logger: logger}
}

type VerifyInvitationRequest struct {
	Code  string `json:"code" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// Verify redeems an invitation. Rejections carry their reason with a 400.
func (h *InvitationHandler) Verify(c *gin.Context) {
	var req VerifyInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invitation code and email are required")
		return
	}

	err := h.inviteService.VerifyAndRedeem(c.Request.Context(), req.Code, req.Email)
	switch {
	case err == nil:
		response.Success(c, gin.H{"verified": true})
	case service.IsRedeemRejection(err):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error("verify invitation failed", zap.Error(err))
		response.InternalError(c, "Failed to verify invitation")
	}
}
