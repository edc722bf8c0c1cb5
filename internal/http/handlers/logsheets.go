package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/gin-gonic/gin"
)

type LogsheetService interface {
	Upload(ctx context.Context, userID string, req logsheet.CreateRequest) (logsheet.Logsheet, error)
	Update(ctx context.Context, userID, logID string, req logsheet.UpdateRequest) (logsheet.Logsheet, error)
	Delete(ctx context.Context, userID, logID string) (logsheet.Logsheet, error)
	ListForUser(ctx context.Context, userID string) ([]logsheet.Logsheet, error)
}

type LogsheetsHandler struct {
	svc LogsheetService
}

func NewLogsheetsHandler(svc LogsheetService) *LogsheetsHandler {
	return &LogsheetsHandler{svc: svc}
}

// GET /api/user/logsheet/:userId
func (h *LogsheetsHandler) List(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "userId") {
		return
	}

	sheets, err := h.svc.ListForUser(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	if sheets == nil {
		sheets = []logsheet.Logsheet{}
	}

	RespondOK(ctx, http.StatusOK, sheets, "Logsheets fetched successfully")
}

// POST /api/user/logsheet/upload/:userId
func (h *LogsheetsHandler) Upload(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "userId") {
		return
	}

	var req logsheet.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	l, err := h.svc.Upload(ctx.Request.Context(), ctx.Param("userId"), req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusCreated, l, "Logsheet uploaded successfully")
}

// PUT /api/user/logsheet/update/:userId/:logId
func (h *LogsheetsHandler) Update(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "userId", "logId") {
		return
	}

	var req logsheet.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	l, err := h.svc.Update(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("logId"), req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, l, "Logsheet updated successfully")
}

// DELETE /api/user/logsheet/delete/:userId/:logId
func (h *LogsheetsHandler) Delete(ctx *gin.Context) {
	if !RequireUUIDParam(ctx, "userId", "logId") {
		return
	}

	l, err := h.svc.Delete(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("logId"))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondOK(ctx, http.StatusOK, l, "Logsheet deleted successfully")
}
