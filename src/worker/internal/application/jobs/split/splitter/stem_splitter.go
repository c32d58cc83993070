package splitter

import (
	"context"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/shared/stempath"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/fileutil"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/working_dir"
	"os"
	"path/filepath"
)

type StemSplitter struct {
	splitter      FileSplitter
	pathGenerator stempath.Generator
	workingDir    working_dir.WorkingDir
}

func NewStemSplitter(splitter FileSplitter, pathGenerator stempath.Generator, workingDir working_dir.WorkingDir) StemSplitter {
	return StemSplitter{
		splitter:      splitter,
		pathGenerator: pathGenerator,
		workingDir:    workingDir,
	}
}

// SplitUpload runs the engine against the job's upload and reconciles the
// engine's output layout into the service's own: the engine names its output
// directory after the input file, the service keys everything by job ID.
// The returned map carries service relative download paths per stem.
func (s StemSplitter) SplitUpload(ctx context.Context, job jobentity.Job) (StemFilePaths, error) {
	errctx := cerr.Fields(cerr.F{
		"job_id":      job.ID,
		"upload_path": job.UploadPath,
	})

	scratchDir, err := os.MkdirTemp(s.workingDir.TempDir(), "split-*")
	if err != nil {
		return nil, errctx.Field("temp_dir", s.workingDir.TempDir()).
			Wrap(err).Error("Failed to create a scratch dir for the engine output")
	}
	defer func() {
		_ = os.RemoveAll(scratchDir)
	}()

	enginePaths, err := s.splitter.SplitFile(ctx, job.UploadPath, scratchDir)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to split the upload into stems")
	}

	canonical, engineDir, err := canonicalStemFiles(enginePaths)
	if err != nil {
		return nil, errctx.Wrap(err).Error("The engine output doesn't match the expected stems")
	}

	destDir := s.pathGenerator.JobDir(job.ID)
	if err := fileutil.ReplaceDir(engineDir, destDir); err != nil {
		return nil, errctx.Field("dest_dir", destDir).
			Wrap(err).Error("Failed to move the engine output into place")
	}

	stemPaths := StemFilePaths{}
	for canonicalName, engineFileName := range canonical {
		canonicalFileName := canonicalName + filepath.Ext(engineFileName)

		if engineFileName != canonicalFileName {
			err := os.Rename(
				filepath.Join(destDir, engineFileName),
				filepath.Join(destDir, canonicalFileName),
			)
			if err != nil {
				return nil, errctx.Field("stem_file", engineFileName).
					Wrap(err).Error("Failed to rename a stem to its canonical name")
			}
		}

		stemPaths[canonicalName] = stempath.RelStemPath(job.ID, canonicalFileName)
	}

	return stemPaths, nil
}
