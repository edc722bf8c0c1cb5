package middlewares

import "github.com/geocoder89/drivingschool/internal/http/envelope"

const (
	CtxRequestID = envelope.RequestIDKey
	ctxUserIDKey = "auth.userID"
)
