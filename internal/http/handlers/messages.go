package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/drivingschool/internal/service/session"
	"github.com/gin-gonic/gin"
)

type MessageService interface {
	SendOTP(ctx context.Context, req session.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req session.VerifyOTPRequest) error
	SendContact(ctx context.Context, req session.ContactRequest) error
}

type MessagesHandler struct {
	svc MessageService
}

func NewMessagesHandler(svc MessageService) *MessagesHandler {
	return &MessagesHandler{svc: svc}
}

// POST /api/user/sendOtp
func (h *MessagesHandler) SendOTP(ctx *gin.Context) {
	var req session.SendOTPRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := h.svc.SendOTP(ctx.Request.Context(), req); err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, gin.H{}, "Otp sent successfully")
}

// POST /api/user/verifyOtp
func (h *MessagesHandler) VerifyOTP(ctx *gin.Context) {
	var req session.VerifyOTPRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := h.svc.VerifyOTP(ctx.Request.Context(), req); err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, gin.H{}, "Otp verified successfully")
}

// POST /api/user/sendMsg
func (h *MessagesHandler) SendContact(ctx *gin.Context) {
	var req session.ContactRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := h.svc.SendContact(ctx.Request.Context(), req); err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, gin.H{}, "Message sent successfully")
}
