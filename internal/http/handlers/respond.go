package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/geocoder89/drivingschool/internal/http/envelope"
	"github.com/gin-gonic/gin"
)

func RespondOK(ctx *gin.Context, status int, data interface{}, message string) {
	envelope.OK(ctx, status, data, message)
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	envelope.Fail(ctx, status, code, message, details)
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

// RespondErr writes the failure envelope for any service error. Internal
// causes are logged and never leave the process.
func RespondErr(ctx *gin.Context, err error) {
	appErr := apperr.From(err)

	if appErr.Kind == apperr.KindInternal {
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"request_id", envelope.RequestID(ctx),
			"err", appErr.Err,
		)
	}

	RespondError(ctx, appErr.Status(), appErr.Code, appErr.Message, appErr.Details)
}
