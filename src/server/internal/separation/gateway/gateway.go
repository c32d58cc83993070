package separationgateway

import (
	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/api"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/gateway"
	"github.com/voxsplit/voxsplit-be/src/server/internal/lib/request"
	"github.com/voxsplit/voxsplit-be/src/server/internal/separation/errors"
	"github.com/voxsplit/voxsplit-be/src/server/internal/separation/usecase"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/shared/stempath"
	"net/http"
	"path"
)

// UploadFileField is the multipart form field that carries the audio file.
const UploadFileField = "audio_file"

const uploadedMessage = "Uploaded. Separation is in progress."

type Gateway struct {
	usecase separationusecase.Usecase
}

func NewGateway(usecase separationusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) ProcessAudio(c echo.Context) error {
	ctx := request.Context(c)

	fileHeader, err := c.FormFile(UploadFileField)
	if err != nil {
		err = errors.Wrap(err, "Failed to read the audio file form field")
		apiErr := api.CommitError(err,
			separationerrors.BadUploadCode,
			"No audio file found in the request. Please attach one under the audio_file field")
		return gateway.ErrorResponse(c, apiErr)
	}

	src, err := fileHeader.Open()
	if err != nil {
		err = errors.Wrap(err, "Failed to open the uploaded file")
		apiErr := api.CommitError(err,
			separationerrors.BadUploadCode,
			"The uploaded file couldn't be read. Please try again")
		return gateway.ErrorResponse(c, apiErr)
	}
	defer src.Close()

	job, apiErr := g.usecase.CreateJob(ctx, fileHeader.Filename, src)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to create the separation job")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, newUploadReceipt(job))
}

func (g Gateway) GetJobStatus(c echo.Context, jobID string) error {
	ctx := request.Context(c)

	job, apiErr := g.usecase.GetJob(ctx, jobID)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to get the separation job")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, newJobStatusView(job))
}

type uploadReceipt struct {
	Message       string   `json:"message"`
	JobID         string   `json:"job_id"`
	StatusPath    string   `json:"status_path"`
	DownloadPaths []string `json:"download_paths"`
	ArchivePath   string   `json:"archive_path"`
}

func newUploadReceipt(job jobentity.Job) uploadReceipt {
	// both engines are run with an mp3 codec, so the expected stem paths
	// are known before the job ever runs
	return uploadReceipt{
		Message:    uploadedMessage,
		JobID:      job.ID,
		StatusPath: statusPath(job),
		DownloadPaths: []string{
			stempath.RelStemPath(job.ID, jobentity.VocalsStem+".mp3"),
			stempath.RelStemPath(job.ID, jobentity.AccompanimentStem+".mp3"),
		},
		ArchivePath: archivePath(job),
	}
}

type jobStatusView struct {
	JobID         string            `json:"job_id"`
	Status        string            `json:"status"`
	StemPaths     map[string]string `json:"stem_paths,omitempty"`
	ArchivePath   string            `json:"archive_path,omitempty"`
	ErrorMessage  string            `json:"error_message,omitempty"`
	ErrorDebugLog string            `json:"error_debug_log,omitempty"`
}

func newJobStatusView(job jobentity.Job) jobStatusView {
	view := jobStatusView{
		JobID:  job.ID,
		Status: string(job.Status),
	}

	switch job.Status {
	case jobentity.StatusCompleted:
		view.StemPaths = job.StemPaths
		view.ArchivePath = archivePath(job)

	case jobentity.StatusError:
		view.ErrorMessage = job.ErrorMessage
		view.ErrorDebugLog = job.ErrorDebugLog
	}

	return view
}

func statusPath(job jobentity.Job) string {
	return path.Join("/status", job.ID)
}

func archivePath(job jobentity.Job) string {
	return path.Join("/download", job.ID, "all")
}
