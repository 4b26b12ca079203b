package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GenericErrorDetail is returned for failures without a caller facing message.
const GenericErrorDetail = "internal server error"

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Path   string `json:"path"`
}

// SuccessResponse writes data as a 200 JSON body.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// ErrorResponse writes err as an ErrorBody. Errors that are not AppErrors
// become a 500 with a generic detail.
func ErrorResponse(c echo.Context, err error) error {
	appErr := AsAppError(err)
	return c.JSON(appErr.Status, ErrorBody{
		Detail: appErr.Detail,
		Type:   appErr.Type,
		Path:   c.Request().URL.Path,
	})
}

// AsAppError unwraps err into an AppError. Echo HTTP errors keep their status.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return statusError(he.Code, fmt.Sprint(he.Message))
	}
	return InternalError(GenericErrorDetail).WithError(err)
}

// HTTPErrorHandler renders errors returned by handlers and middleware.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(AsAppError(err).Status)
		return
	}
	_ = ErrorResponse(c, err)
}
