package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moviegraph/internal/platform/apierr"
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

// RespondServiceError maps err to a status through apierr.
func RespondServiceError(c *gin.Context, fallbackCode string, err error) {
	ae := apierr.From(err, fallbackCode)
	if ae.Err == nil {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
