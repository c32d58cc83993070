package downloadusecase

import (
	"archive/zip"
	"context"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/voxsplit/voxsplit-be/src/server/internal/download/errors"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/api"
	"github.com/voxsplit/voxsplit-be/src/server/internal/separation/errors"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	jobstorage "github.com/voxsplit/voxsplit-be/src/shared/job/storage"
	"github.com/voxsplit/voxsplit-be/src/shared/stempath"
	"io"
	"os"
	"path/filepath"
	"sort"
)

type Usecase struct {
	jobStore      jobentity.Store
	pathGenerator stempath.Generator
}

func NewUsecase(jobStore jobentity.Store, pathGenerator stempath.Generator) Usecase {
	return Usecase{
		jobStore:      jobStore,
		pathGenerator: pathGenerator,
	}
}

// Archive is a built stem archive, ready to serve.
type Archive struct {
	FilePath string
	Name     string
}

// BuildArchive zips the job's stems into <output-root>/<job-id>/<base>_stems.zip.
// The archive is rebuilt from the stem files on every call, so a stale or
// corrupted archive from an earlier request gets overwritten, not served.
func (u Usecase) BuildArchive(ctx context.Context, jobID string) (Archive, *api.Error) {
	job, apiErr := u.getJob(ctx, jobID)
	if apiErr != nil {
		return Archive{}, api.WrapError(apiErr, "Failed to fetch the job for the archive")
	}

	if !job.IsCompleted() {
		err := errors.New("Job has not completed yet")
		return Archive{}, api.CommitError(err,
			downloaderrors.JobNotCompletedCode,
			"This separation job hasn't finished yet. Check its status before downloading")
	}

	stemFilePaths, apiErr := u.stemFilePaths(job)
	if apiErr != nil {
		return Archive{}, api.WrapError(apiErr, "Failed to locate the job's stem files")
	}

	archivePath := u.pathGenerator.ArchivePath(job.ID, job.OriginalFilename)

	if err := buildZip(archivePath, stemFilePaths); err != nil {
		err = errors.Wrap(err, "Failed to build the stem archive")
		return Archive{}, api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to package the stems. Please contact the developer")
	}

	return Archive{
		FilePath: archivePath,
		Name:     u.pathGenerator.ArchiveName(job.OriginalFilename),
	}, nil
}

// ResolveFile maps a service relative download path to the file on disk.
// Paths that escape the output directory are rejected outright, whether or
// not anything exists at the target.
func (u Usecase) ResolveFile(relPath string) (string, *api.Error) {
	absPath, err := u.pathGenerator.Resolve(relPath)
	if err != nil {
		err = errors.Wrap(err, "Failed to resolve the download path")
		switch {
		case markers.Is(err, stempath.EscapesRootMark):
			return "", api.CommitError(err,
				downloaderrors.InvalidPathCode,
				"This download path is not valid")

		default:
			return "", api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: Failed to resolve the download path")
		}
	}

	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		if err == nil {
			err = errors.New("The download path points at a directory")
		}

		err = errors.Wrap(err, "No servable file at the download path")
		return "", api.CommitError(err,
			downloaderrors.FileNotFoundCode,
			"There is no file at this download path")
	}

	return absPath, nil
}

func (u Usecase) getJob(ctx context.Context, jobID string) (jobentity.Job, *api.Error) {
	job, err := u.jobStore.GetJob(ctx, jobID)
	if err != nil {
		err = errors.Wrap(err, "Failed to get job from the store")
		switch {
		case markers.Is(err, jobstorage.JobNotFound):
			return jobentity.Job{}, api.CommitError(err,
				separationerrors.JobNotFoundCode,
				"This separation job can't be found")

		default:
			return jobentity.Job{}, api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: Failed to fetch the separation job")
		}
	}

	return job, nil
}

// stemFilePaths resolves the job's recorded stem paths against the output
// root and verifies every one of them still exists on disk.
func (u Usecase) stemFilePaths(job jobentity.Job) ([]string, *api.Error) {
	if len(job.StemPaths) == 0 {
		err := errors.New("Completed job has no recorded stems")
		return nil, api.CommitError(err,
			downloaderrors.StemsMissingCode,
			"The stems for this job can't be found")
	}

	stemNames := make([]string, 0, len(job.StemPaths))
	for stemName := range job.StemPaths {
		stemNames = append(stemNames, stemName)
	}
	sort.Strings(stemNames)

	filePaths := make([]string, 0, len(stemNames))
	for _, stemName := range stemNames {
		absPath, err := u.pathGenerator.Resolve(job.StemPaths[stemName])
		if err != nil {
			err = errors.Wrap(err, "Failed to resolve a recorded stem path")
			return nil, api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: The job's stem records are unusable")
		}

		if _, err := os.Stat(absPath); err != nil {
			err = errors.Wrap(err, "A recorded stem file is gone from disk")
			return nil, api.CommitError(err,
				downloaderrors.StemsMissingCode,
				"The stems for this job can't be found")
		}

		filePaths = append(filePaths, absPath)
	}

	return filePaths, nil
}

func buildZip(archivePath string, filePaths []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return errors.Wrap(err, "Failed to create the archive file")
	}
	defer archiveFile.Close()

	zipWriter := zip.NewWriter(archiveFile)

	for _, filePath := range filePaths {
		if err := addZipEntry(zipWriter, filePath); err != nil {
			return errors.Wrap(err, "Failed to add a stem to the archive")
		}
	}

	if err := zipWriter.Close(); err != nil {
		return errors.Wrap(err, "Failed to finalize the archive")
	}

	return nil
}

func addZipEntry(zipWriter *zip.Writer, filePath string) error {
	src, err := os.Open(filePath)
	if err != nil {
		return errors.Wrap(err, "Failed to open the stem file")
	}
	defer src.Close()

	// flat entry names - the zip holds the stem files themselves, not the
	// job directory layout around them
	entry, err := zipWriter.Create(filepath.Base(filePath))
	if err != nil {
		return errors.Wrap(err, "Failed to create the archive entry")
	}

	if _, err := io.Copy(entry, src); err != nil {
		return errors.Wrap(err, "Failed to write the archive entry")
	}

	return nil
}
