package request

import (
	"context"
	"github.com/labstack/echo/v4"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/env"
)

// Context picks the context that downstream calls should run under.
func Context(c echo.Context) context.Context {
	switch env.Get() {
	case env.Development:
		// a detached context in development, so that pausing in a
		// debugger doesn't cancel the request mid-step
		return context.Background()

	case env.Production, env.Test:
		return c.Request().Context()

	default:
		panic("Unrecognized environment")
	}
}
