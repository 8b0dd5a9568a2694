package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"fleetlens/internal/apperr"
)

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Status: true, Message: message, Data: data})
}

// respondError maps a classified error onto its HTTP status and the error
// envelope. Unclassified errors are reported as a generic 500.
func respondError(c *gin.Context, err error) {
	kind, ok := apperr.KindOf(err)
	status := http.StatusInternalServerError
	if ok {
		status = kind.HTTPStatus()
	} else {
		kind = "InternalError"
	}

	c.JSON(status, envelope{
		Status:  false,
		Message: err.Error(),
		Data: gin.H{
			"error_type":  string(kind),
			"status_code": status,
		},
	})
}

// bindingError converts gin/validator binding failures into a
// ValidationError with a readable field message.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.New(apperr.KindValidation, "invalid field %q: failed %q check", fe.Field(), fe.Tag())
	}
	return apperr.Wrap(apperr.KindValidation, err, "malformed request")
}
