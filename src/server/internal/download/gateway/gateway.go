package downloadgateway

import (
	"github.com/labstack/echo/v4"
	"github.com/voxsplit/voxsplit-be/src/server/internal/download/usecase"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/api"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/gateway"
	"github.com/voxsplit/voxsplit-be/src/server/internal/lib/request"
)

type Gateway struct {
	usecase downloadusecase.Usecase
}

func NewGateway(usecase downloadusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) DownloadAll(c echo.Context, jobID string) error {
	ctx := request.Context(c)

	archive, apiErr := g.usecase.BuildArchive(ctx, jobID)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to build the stem archive")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.Attachment(archive.FilePath, archive.Name)
}

func (g Gateway) DownloadFile(c echo.Context, relPath string) error {
	absPath, apiErr := g.usecase.ResolveFile(relPath)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to resolve the download path")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.File(absPath)
}
