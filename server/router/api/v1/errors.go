package v1

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/lmchat/server/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// renderError writes {"error": message} with the status matching the error code.
func renderError(c echo.Context, err error) error {
	var svcErr *errors.ServiceError
	if !stderrors.As(err, &svcErr) {
		svcErr = errors.Internal("internal error", err)
	}
	if errors.IsCode(svcErr, errors.ErrCodeInternal) {
		slog.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return c.JSON(statusForCode(svcErr.Code), errorResponse{Error: svcErr.Message})
}

func badRequest(c echo.Context, err error) error {
	return renderError(c, errors.InvalidArgument(err.Error()))
}
