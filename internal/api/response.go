package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_chaoslearn/internal/toolutil"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// respondServiceError maps a service error onto status and code by its kind.
func respondServiceError(c *gin.Context, err error) {
	RespondError(c, toolutil.HTTPStatus(err), toolutil.Code(err), err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
