package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/handler/middleware"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/service"
	"github.com/MAVERICK-VF142/Drx.MediMate/pkg/crypto"
	"github.com/MAVERICK-VF142/Drx.MediMate/pkg/response"
)

type AdminHandler struct {
	inviteService service.InviteService
	logger        *zap.Logger
}

func NewAdminHandler(inviteService service.InviteService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{inviteService: inviteService, logger: logger}
}

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required"`
	// TTLHours overrides the configured lifetime when positive.
	TTLHours int `json:"ttl_hours"`
}

type CreateInvitationResponse struct {
	InvitationCode string    `json:"invitation_code"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// InvitationView is the admin listing shape; timestamps render as ISO-8601.
type InvitationView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	Used      bool       `json:"used"`
}

func newInvitationView(inv model.Invitation) InvitationView {
	view := InvitationView{
		ID:        inv.ID.String(),
		Email:     inv.Email,
		Code:      inv.Code,
		CreatedAt: inv.CreatedAt.UTC(),
		Used:      inv.Used,
	}
	if inv.ExpiresAt != nil {
		expires := inv.ExpiresAt.UTC()
		view.ExpiresAt = &expires
	}
	return view
}

// CreateInvitation issues a one-time admin invitation for an email address.
func (h *AdminHandler) CreateInvitation(c *gin.Context) {
	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email is required")
		return
	}
	if req.TTLHours < 0 {
		response.BadRequest(c, "ttl_hours must not be negative")
		return
	}

	inv, err := h.inviteService.Issue(c.Request.Context(), req.Email, time.Duration(req.TTLHours)*time.Hour)
	if errors.Is(err, service.ErrInvalidEmail) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("create invitation failed", zap.Error(err))
		response.InternalError(c, "failed to create invitation")
		return
	}

	if claims, ok := middleware.ClaimsFromContext(c); ok {
		h.logger.Info("invitation created by admin",
			zap.String("admin", claims.Subject),
			zap.String("code", crypto.CodePrefix(inv.Code)),
		)
	}
	response.Created(c, CreateInvitationResponse{
		InvitationCode: inv.Code,
		ExpiresAt:      *inv.ExpiresAt,
	})
}

// ListInvitations returns all invitations, newest first.
func (h *AdminHandler) ListInvitations(c *gin.Context) {
	invitations, err := h.inviteService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list invitations failed", zap.Error(err))
		response.InternalError(c, "failed to list invitations")
		return
	}

	views := make([]InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		views = append(views, newInvitationView(inv))
	}
	response.Success(c, views)
}
