// Package envelope writes the response shape every endpoint shares, so
// handlers and middleware rejections look the same to clients.
package envelope

import (
	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/gin-gonic/gin"
)

const RequestIDKey = "request_id"

type Success struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

type Failure struct {
	StatusCode int         `json:"statusCode"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Errors     interface{} `json:"errors"`
	RequestID  string      `json:"requestId,omitempty"`
	Success    bool        `json:"success"`
}

func OK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Success{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func Fail(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, failure(c, status, code, message, details))
}

// Abort writes the failure envelope and stops the handler chain.
func Abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.Status(), failure(c, err.Status(), err.Code, err.Message, err.Details))
}

func failure(c *gin.Context, status int, code, message string, details interface{}) Failure {
	if details == nil {
		details = []interface{}{}
	}

	return Failure{
		StatusCode: status,
		Code:       code,
		Message:    message,
		Errors:     details,
		RequestID:  RequestID(c),
		Success:    false,
	}
}

func RequestID(c *gin.Context) string {
	if v, ok := c.Get(RequestIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	// fallback header
	return c.GetHeader("X-Request-Id")
}
