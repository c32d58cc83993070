package file_splitter

import (
	"context"
	"fmt"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/executor"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split/splitter"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/working_dir"
	"path/filepath"

	"github.com/apex/log"
)

const spleeterTwoStemsModel = "spleeter:2stems"

var _ splitter.FileSplitter = LocalFileSplitter{}

func NewLocalFileSplitter(workingDirStr string, engine splitter.EngineType, binPath string, executor executor.Executor) (LocalFileSplitter, error) {
	workingDir, err := working_dir.NewWorkingDir(workingDirStr)
	if err != nil {
		return LocalFileSplitter{}, cerr.Wrap(err).Error("Failed to convert working dir to absolute format")
	}

	return LocalFileSplitter{
		workingDir: workingDir,
		engine:     engine,
		binPath:    binPath,
		executor:   executor,
	}, nil
}

type LocalFileSplitter struct {
	workingDir working_dir.WorkingDir
	engine     splitter.EngineType
	binPath    string
	executor   executor.Executor
}

func (l LocalFileSplitter) SplitFile(ctx context.Context, originalFilePath string, stemsOutputDir string) (splitter.StemFilePaths, error) {
	absOriginalFilePath, err := filepath.Abs(originalFilePath)
	if err != nil {
		return nil, cerr.Wrap(err).Error("Cannot convert source path to absolute format")
	}

	errctx := cerr.Field("original_filepath", absOriginalFilePath)

	absStemsOutputDir, err := filepath.Abs(stemsOutputDir)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Cannot convert destination path to absolute format")
	}

	// splitting is a lengthy process, if we want to halt now is the time
	if ctx.Err() != nil {
		return nil, cerr.Wrap(ctx.Err()).Error("Context cancelled before splitting could happen")
	}

	switch l.engine {
	case splitter.SpleeterEngine:
		if err := l.runSpleeter(absOriginalFilePath, absStemsOutputDir); err != nil {
			return nil, errctx.Field("output_dir", absStemsOutputDir).
				Wrap(err).Error("Failed to execute spleeter")
		}

	case splitter.DemucsEngine:
		if err := l.runDemucs(absOriginalFilePath, absStemsOutputDir); err != nil {
			return nil, errctx.Field("output_dir", absStemsOutputDir).
				Wrap(err).Error("Failed to execute demucs")
		}

	default:
		return nil, cerr.Field("engine", l.engine).Error("Unrecognized split engine")
	}

	engineOutputDir, err := locateEngineOutputDir(absStemsOutputDir)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to locate the engine's output directory")
	}

	return collectStemFilePaths(engineOutputDir)
}

func (l LocalFileSplitter) runSpleeter(sourcePath string, destPath string) error {
	logger := log.WithFields(log.Fields{
		"sourcePath": sourcePath,
		"destPath":   destPath,
		"workingDir": l.workingDir,
	})

	logger.Info("Running spleeter command")

	args := []string{"separate", "-p", spleeterTwoStemsModel, "-o", destPath, "-c", "mp3", "-b", "320k", sourcePath}

	errctx := cerr.Field("spleeter_bin_path", l.binPath).Field("spleeter_args", args)

	cmd := l.executor.Command(l.binPath, args...)
	cmd.SetDir(l.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errctx.Field("spleeter_output", string(output)).
			Wrap(err).
			Error(fmt.Sprintf("Error occurred while running spleeter: %s", string(output)))
	}

	logger.Debug(string(output))
	logger.Info("Finished spleeter command")

	return nil
}

func (l LocalFileSplitter) runDemucs(sourcePath string, destPath string) error {
	logger := log.WithFields(log.Fields{
		"sourcePath": sourcePath,
		"destPath":   destPath,
		"workingDir": l.workingDir,
	})

	logger.Info("Running demucs command")

	args := []string{"--two-stems", "vocals", "-o", destPath, "--mp3", "-d", "cpu", sourcePath}

	errctx := cerr.Field("demucs_bin_path", l.binPath).Field("demucs_args", args)

	cmd := l.executor.Command(l.binPath, args...)
	cmd.SetDir(l.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errctx.Field("demucs_output", string(output)).
			Wrap(err).
			Error(fmt.Sprintf("Error occurred while running demucs: %s", string(output)))
	}

	logger.Debug(string(output))
	logger.Info("Finished demucs command")

	return nil
}
