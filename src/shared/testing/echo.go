package testing

import (
	"github.com/labstack/echo/v4"
	"net/http"
)

// PrepareEchoContext wraps a request/response pair in a fresh echo context
// for handler-level tests.
func PrepareEchoContext(request *http.Request, response http.ResponseWriter) echo.Context {
	return echo.New().NewContext(request, response)
}
