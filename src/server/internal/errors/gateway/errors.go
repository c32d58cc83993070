package gateway

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/voxsplit/voxsplit-be/src/server/api_error"
	"github.com/voxsplit/voxsplit-be/src/server/internal/download/errors"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/api"
	"github.com/voxsplit/voxsplit-be/src/server/internal/separation/errors"
	"net/http"
)

var httpStatusCodeMap = map[api.ErrorCode]int{
	api.DefaultErrorCode:                   http.StatusInternalServerError,
	separationerrors.JobNotFoundCode:       http.StatusNotFound,
	separationerrors.BadUploadCode:         http.StatusBadRequest,
	separationerrors.UploadFailedCode:      http.StatusInternalServerError,
	separationerrors.JobDispatchFailedCode: http.StatusInternalServerError,
	downloaderrors.InvalidPathCode:         http.StatusBadRequest,
	downloaderrors.FileNotFoundCode:        http.StatusNotFound,
	downloaderrors.JobNotCompletedCode:     http.StatusBadRequest,
	downloaderrors.StemsMissingCode:        http.StatusNotFound,
}

func ErrorResponse(c echo.Context, err *api.Error) error {
	statusCode, ok := httpStatusCodeMap[err.ErrorCode]
	if !ok {
		msg := fmt.Sprintf("Error code %s has no HTTP status code mapping", err.ErrorCode)
		panic(msg)
	}

	return c.JSON(statusCode, api_error.JSONAPIError{
		Code:         string(err.ErrorCode),
		Msg:          err.UserMessage,
		ErrorDetails: err.Error(),
	})
}
